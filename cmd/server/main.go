package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "discharge-companion",
		Short: "Plain-language discharge summary service",
		Long: "discharge-companion turns hospital discharge summaries into " +
			"plain-language patient summaries and answers questions grounded " +
			"in the uploaded document.",
	}
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
