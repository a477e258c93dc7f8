package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"discharge-companion/internal/auth"
	"discharge-companion/internal/core"
	"discharge-companion/internal/db"
	"discharge-companion/internal/metrics"
	"discharge-companion/internal/session"
	"discharge-companion/pkg"
)

const (
	msgEmptyInput   = "Please provide some discharge text first."
	msgLLMError     = "Error while calling the language model. Please try again."
	msgInFlight     = "A request for this session is already in progress. Please wait."
	msgBadPasscode  = "Incorrect passcode. Please try again."
	msgNoPasscode   = "Access is not configured. Contact the administrator."
	msgUnsupported  = "This file type is not supported. Upload a PDF, DOCX, or TXT file."
	msgParseFailure = "Could not extract text from this file."
	msgNoText       = "The file contained no extractable text. Paste the text instead."
)

type loginData struct {
	Error string
}

type inputData struct {
	Text   string
	Notice string
	Error  string
}

type summaryData struct {
	Summary    string
	Turns      []pkg.ConversationTurn
	Error      string
	CapReached bool
}

// handleHome shows one of the three screens: login, document input, or
// summary plus chat, depending on session state.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(r)
	switch {
	case sess == nil:
		s.render(w, "login.html", loginData{})
	case sess.Summary != nil:
		s.render(w, "summary.html", s.summaryView(sess, ""))
	default:
		var text string
		if sess.Document != nil {
			text = sess.Document.Text
		}
		s.render(w, "input.html", inputData{Text: text})
	}
}

func (s *Server) summaryView(sess *pkg.Session, errMsg string) summaryData {
	return summaryData{
		Summary:    sess.Summary.Text,
		Turns:      sess.Turns,
		Error:      errMsg,
		CapReached: s.QuestionCap > 0 && sess.QuestionCount() >= s.QuestionCap,
	}
}

// handleLogin verifies the passcode and starts a fresh session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, "login.html", loginData{Error: msgBadPasscode})
		return
	}
	if err := s.Gate.Verify(r.FormValue("passcode")); err != nil {
		msg := msgBadPasscode
		if errors.Is(err, auth.ErrNoPasscode) {
			msg = msgNoPasscode
			s.Log.Warn("login attempted with no passcode configured")
		}
		s.render(w, "login.html", loginData{Error: msg})
		return
	}

	sess := session.New(s.SessionTTL)
	if err := s.Store.Save(r.Context(), sess); err != nil {
		s.Log.Error("save new session", zap.Error(err))
		s.render(w, "login.html", loginData{Error: "Could not start a session. Please try again."})
		return
	}
	token, err := s.Gate.IssueToken(sess.ID)
	if err != nil {
		s.Log.Error("issue session token", zap.Error(err))
		s.render(w, "login.html", loginData{Error: "Could not start a session. Please try again."})
		return
	}
	s.recordEvent(r.Context(), sess.ID, db.EventSessionStarted)
	metrics.SessionsStarted.Inc()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLogout drops the cookie and the session state.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := s.currentSession(r); sess != nil {
		if err := s.Store.Delete(r.Context(), sess.ID); err != nil {
			s.Log.Warn("delete session", zap.Error(err))
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleDocument normalizes an uploaded file and adopts the result as the
// session's canonical document.  The extracted text is shown for editing
// before generation.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request, sess *pkg.Session) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.MaxUploadBytes); err != nil {
		s.render(w, "input.html", inputData{Error: "Upload failed. The file may be too large."})
		return
	}
	file, header, err := r.FormFile("document")
	if err != nil {
		s.render(w, "input.html", inputData{Error: "Please choose a file to upload."})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.render(w, "input.html", inputData{Error: "Upload failed. Please try again."})
		return
	}

	doc, err := s.Normalizer.Normalize(data, header.Header.Get("Content-Type"))
	if err != nil {
		var nerr *pkg.NormalizationError
		msg := msgParseFailure
		if errors.As(err, &nerr) && nerr.Reason == pkg.ReasonUnsupportedType {
			msg = msgUnsupported
		}
		s.Log.Info("normalization failed",
			zap.String("session", sess.ID),
			zap.String("content_type", header.Header.Get("Content-Type")),
			zap.Error(err))
		s.render(w, "input.html", inputData{Error: msg})
		return
	}

	sess.AdoptDocument(doc)
	if err := s.Store.Save(r.Context(), sess); err != nil {
		s.Log.Error("save session", zap.Error(err))
		s.render(w, "input.html", inputData{Error: "Could not store the document. Please try again."})
		return
	}
	s.recordEvent(r.Context(), sess.ID, db.EventDocumentAdopted)

	if doc.Empty() {
		s.render(w, "input.html", inputData{Error: msgNoText})
		return
	}
	s.render(w, "input.html", inputData{
		Text:   doc.Text,
		Notice: "File uploaded and text extracted. You can edit the text before generating.",
	})
}

// handleGenerate runs the summary generator over the submitted text.  A
// failed generation never clears an existing summary.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, sess *pkg.Session) {
	if err := r.ParseForm(); err != nil {
		s.render(w, "input.html", inputData{Error: msgEmptyInput})
		return
	}
	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		// precondition check: no completion call for empty input
		s.render(w, "input.html", inputData{Error: msgEmptyInput})
		return
	}

	// Pre-generation edits replace the canonical document.
	if sess.Document == nil || sess.Document.Text != text {
		source := pkg.SourcePlainText
		if sess.Document != nil {
			source = sess.Document.Source
		}
		sess.AdoptDocument(&pkg.CanonicalDocument{Text: text, Source: source})
	}

	release, ok, err := s.Lock.Acquire(r.Context(), sess.ID)
	if err != nil {
		s.Log.Error("acquire session lock", zap.Error(err))
		s.render(w, "input.html", inputData{Text: text, Error: msgLLMError})
		return
	}
	if !ok {
		s.render(w, "input.html", inputData{Text: text, Error: msgInFlight})
		return
	}
	defer release()

	ctx, cancel := context.WithTimeout(r.Context(), s.RequestTimeout)
	defer cancel()

	summary, err := s.Summarizer.Generate(ctx, sess.Document)
	if err != nil {
		s.Log.Warn("summary generation failed", zap.String("session", sess.ID), zap.Error(err))
		s.recordEvent(r.Context(), sess.ID, db.EventGenerationFailed)
		if sess.Summary != nil {
			s.render(w, "summary.html", s.summaryView(sess, msgLLMError))
			return
		}
		s.render(w, "input.html", inputData{Text: text, Error: msgLLMError})
		return
	}

	sess.Summary = summary
	sess.Turns = nil
	if err := s.Store.Save(r.Context(), sess); err != nil {
		s.Log.Error("save session", zap.Error(err))
		s.render(w, "input.html", inputData{Text: text, Error: "Could not store the summary. Please try again."})
		return
	}
	s.recordEvent(r.Context(), sess.ID, db.EventSummaryGenerated)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleQuestion answers one question about the session's document and
// returns an HTMX fragment with the new turns.  Committed turns survive
// any failure untouched.
func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request, sess *pkg.Session) {
	if err := r.ParseForm(); err != nil {
		s.renderAlert(w, "Please type a question.")
		return
	}
	question := strings.TrimSpace(r.FormValue("question"))
	if question == "" {
		s.renderAlert(w, "Please type a question.")
		return
	}
	if sess.Document.Empty() {
		s.renderAlert(w, msgEmptyInput)
		return
	}
	if s.QuestionCap > 0 && sess.QuestionCount() >= s.QuestionCap {
		s.render(w, "turns.html", struct{ Turns []pkg.ConversationTurn }{
			Turns: []pkg.ConversationTurn{{Role: pkg.RoleAssistant, Content: core.CapMessage}},
		})
		return
	}

	release, ok, err := s.Lock.Acquire(r.Context(), sess.ID)
	if err != nil {
		s.Log.Error("acquire session lock", zap.Error(err))
		s.renderAlert(w, msgLLMError)
		return
	}
	if !ok {
		s.renderAlert(w, msgInFlight)
		return
	}
	defer release()

	ctx, cancel := context.WithTimeout(r.Context(), s.RequestTimeout)
	defer cancel()

	_, updated, err := s.Chat.Answer(ctx, sess.Document, sess.Turns, question)
	if err != nil {
		s.Log.Warn("answer generation failed", zap.String("session", sess.ID), zap.Error(err))
		s.recordEvent(r.Context(), sess.ID, db.EventGenerationFailed)
		s.renderAlert(w, msgLLMError)
		return
	}

	sess.Turns = updated
	if err := s.Store.Save(r.Context(), sess); err != nil {
		s.Log.Error("save session", zap.Error(err))
		s.renderAlert(w, msgLLMError)
		return
	}
	s.recordEvent(r.Context(), sess.ID, db.EventQuestionAnswered)

	// only the two new turns are appended to the chat log
	s.render(w, "turns.html", struct{ Turns []pkg.ConversationTurn }{
		Turns: updated[len(updated)-2:],
	})
}

// handleReset clears all per-document state so the user can start over.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sess *pkg.Session) {
	sess.Reset()
	if err := s.Store.Save(r.Context(), sess); err != nil {
		s.Log.Error("save session", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// recordEvent writes to the usage ledger; ledger trouble never blocks the
// user flow.
func (s *Server) recordEvent(ctx context.Context, sessionID string, kind db.EventKind) {
	if err := s.Ledger.Record(ctx, sessionID, kind); err != nil {
		s.Log.Warn("record ledger event", zap.String("kind", string(kind)), zap.Error(err))
	}
}
