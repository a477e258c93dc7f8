package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"discharge-companion/internal/auth"
	"discharge-companion/internal/config"
	"discharge-companion/internal/core"
	"discharge-companion/internal/db"
	httpserver "discharge-companion/internal/http"
	"discharge-companion/internal/llm"
	"discharge-companion/internal/logging"
	"discharge-companion/internal/normalize"
	"discharge-companion/internal/session"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logging.New(cfg.Logging.File, cfg.Logging.Debug)
	defer log.Sync() //nolint:errcheck

	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("llm api key is not configured")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	gate, err := auth.NewGate(cfg.Auth.Passcode, cfg.Auth.PasscodeHash, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	if err != nil {
		return fmt.Errorf("configure auth gate: %w", err)
	}

	var ledger db.Ledger = db.NopLedger{}
	if cfg.Postgres.URL != "" {
		conn, err := sql.Open("postgres", cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer conn.Close()
		if err := conn.PingContext(pingCtx); err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		ledger = db.NewRepository(conn)
	} else {
		log.Info("usage ledger disabled: no postgres url configured")
	}

	summaryLLM := llm.NewOpenAIClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.SummaryTemperature, "summary")
	chatLLM := llm.NewOpenAIClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.ChatTemperature, "chat")

	// The lock must outlive the slowest completion call so a stalled
	// request cannot hold a session forever.
	lockTTL := 2 * cfg.Server.RequestTimeout

	srv, err := httpserver.NewServer(httpserver.Deps{
		Store:          session.NewRedisStore(rdb),
		Lock:           session.NewRedisLock(rdb, lockTTL),
		Gate:           gate,
		Normalizer:     normalize.New(),
		Summarizer:     core.NewSummarizer(summaryLLM),
		Chat:           core.NewChatService(chatLLM),
		Ledger:         ledger,
		Log:            log,
		SessionTTL:     cfg.Auth.SessionTTL,
		RequestTimeout: cfg.Server.RequestTimeout,
		QuestionCap:    cfg.Limits.QuestionCap,
		MaxUploadBytes: cfg.Limits.MaxUploadBytes,
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("server listening",
		zap.String("address", cfg.Server.Address),
		zap.String("model", cfg.LLM.Model))
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
