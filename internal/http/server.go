// Package http hosts the session controller: it gates access, owns the
// per-session document/summary/turn state, and drives the normalizer,
// summarizer, and chat service in response to user actions.
package http

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"discharge-companion/internal/auth"
	"discharge-companion/internal/core"
	"discharge-companion/internal/db"
	"discharge-companion/internal/normalize"
	"discharge-companion/internal/session"
	"discharge-companion/pkg"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionCookie = "session_token"

// Deps bundles everything the server needs.
type Deps struct {
	Store          session.Store
	Lock           session.Locker
	Gate           *auth.Gate
	Normalizer     *normalize.Normalizer
	Summarizer     *core.Summarizer
	Chat           *core.ChatService
	Ledger         db.Ledger
	Log            *zap.Logger
	SessionTTL     time.Duration
	RequestTimeout time.Duration
	QuestionCap    int
	MaxUploadBytes int64
}

// Server implements http.Handler over the embedded templates.
type Server struct {
	Deps
	templates *template.Template
	metrics   http.Handler
}

// NewServer parses the embedded templates and constructs the server.
func NewServer(d Deps) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{Deps: d, templates: tmpl, metrics: promhttp.Handler()}, nil
}

// ServeHTTP dispatches requests.  Minimal routing keeps dependencies light.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/" && r.Method == http.MethodGet:
		s.handleHome(w, r)
	case r.URL.Path == "/login" && r.Method == http.MethodPost:
		s.handleLogin(w, r)
	case r.URL.Path == "/logout" && r.Method == http.MethodPost:
		s.handleLogout(w, r)
	case r.URL.Path == "/documents" && r.Method == http.MethodPost:
		s.requirePage(w, r, s.handleDocument)
	case r.URL.Path == "/summary" && r.Method == http.MethodPost:
		s.requirePage(w, r, s.handleGenerate)
	case r.URL.Path == "/questions" && r.Method == http.MethodPost:
		s.requireFragment(w, r, s.handleQuestion)
	case r.URL.Path == "/reset" && r.Method == http.MethodPost:
		s.requirePage(w, r, s.handleReset)
	case r.URL.Path == "/healthz" && r.Method == http.MethodGet:
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	case r.URL.Path == "/metrics" && r.Method == http.MethodGet:
		s.metrics.ServeHTTP(w, r)
	default:
		http.NotFound(w, r)
	}
}

// currentSession resolves the caller's session from the signed cookie.
// Any failure (missing cookie, bad token, expired state) yields nil: no
// valid session, no core work.
func (s *Server) currentSession(r *http.Request) *pkg.Session {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	sessionID, err := s.Gate.ParseToken(cookie.Value)
	if err != nil {
		return nil
	}
	sess, err := s.Store.Get(r.Context(), sessionID)
	if err != nil {
		return nil
	}
	return sess
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *pkg.Session)

// requirePage guards full-page actions; unauthenticated callers land on
// the login screen.
func (s *Server) requirePage(w http.ResponseWriter, r *http.Request, h sessionHandler) {
	sess := s.currentSession(r)
	if sess == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h(w, r, sess)
}

// requireFragment guards HTMX endpoints; unauthenticated callers get an
// inline alert instead of a redirect.
func (s *Server) requireFragment(w http.ResponseWriter, r *http.Request, h sessionHandler) {
	sess := s.currentSession(r)
	if sess == nil {
		s.renderAlert(w, "Your session has expired. Please log in again.")
		return
	}
	h(w, r, sess)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.Log.Error("render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) renderAlert(w http.ResponseWriter, message string) {
	s.render(w, "alert.html", struct{ Message string }{Message: message})
}
