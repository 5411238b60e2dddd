package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	appaccount "github.com/voiceunleashed/fluency/internal/application/account"
	appanalysis "github.com/voiceunleashed/fluency/internal/application/analysis"
	domain "github.com/voiceunleashed/fluency/internal/domain/analysis"
	"github.com/voiceunleashed/fluency/internal/domain/identity"
	"github.com/voiceunleashed/fluency/internal/domain/mail"
	"github.com/voiceunleashed/fluency/internal/middleware"
)

type Router struct {
	analysisSvc *appanalysis.Service
	accountSvc  *appaccount.Service
	mailer      mail.Sender
}

func NewRouter(analysisSvc *appanalysis.Service, accountSvc *appaccount.Service, mailer mail.Sender, verifier identity.Verifier) http.Handler {
	r := &Router{analysisSvc: analysisSvc, accountSvc: accountSvc, mailer: mailer}
	mux := chi.NewRouter()

	mux.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Fluency App server is running!"))
	})

	// Welcome mail is sent right after signup, before the client holds
	// a token, so it stays outside the auth group.
	mux.Post("/api/send-welcome-email", r.wrap(r.handleWelcomeEmail))

	mux.Group(func(g chi.Router) {
		g.Use(middleware.BearerAuth(verifier))
		g.Post("/api/analyze-audio", r.wrap(r.handleAnalyzeAudio))
		g.Post("/api/analyze-video", r.wrap(r.handleAnalyzeVideo))
		g.Get("/api/chat-history", r.wrap(r.handleChatHistory))
		g.Post("/api/delete-account", r.wrap(r.handleDeleteAccount))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		log.Printf("request failed: method=%s path=%s err=%v", req.Method, req.URL.Path, err)
		switch {
		case errors.Is(err, domain.ErrNoFile):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, identity.ErrUnauthenticated):
			writeError(w, http.StatusUnauthorized, "unauthorized")
		case errors.Is(err, domain.ErrNoTranscript):
			writeError(w, http.StatusInternalServerError, "Could not transcribe audio.")
		default:
			writeError(w, http.StatusInternalServerError, "Analysis failed. Check server logs.")
		}
	}
}

// POST /api/analyze-audio (multipart field "audioFile")
func (r *Router) handleAnalyzeAudio(w http.ResponseWriter, req *http.Request) error {
	return r.handleAnalyze(w, req, domain.KindAudio, "audioFile")
}

// POST /api/analyze-video (multipart field "videoFile")
func (r *Router) handleAnalyzeVideo(w http.ResponseWriter, req *http.Request) error {
	return r.handleAnalyze(w, req, domain.KindVideo, "videoFile")
}

func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request, kind domain.MediaKind, field string) error {
	user := middleware.GetUserFromContext(req.Context())
	if user == nil {
		return identity.ErrUnauthenticated
	}

	if err := req.ParseMultipartForm(middleware.MaxUploadBytes); err != nil {
		return domain.ErrNoFile
	}
	file, _, err := req.FormFile(field)
	if err != nil {
		return domain.ErrNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	if err := middleware.ValidateUpload(data); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil
	}

	middleware.IncrementAnalyses()
	fb, err := r.analysisSvc.Analyze(req.Context(), appanalysis.Command{
		UserID: user.ID,
		Kind:   kind,
		Media:  data,
	})
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}

	return writeJSON(w, fb)
}

// GET /api/chat-history
func (r *Router) handleChatHistory(w http.ResponseWriter, req *http.Request) error {
	user := middleware.GetUserFromContext(req.Context())
	if user == nil {
		return identity.ErrUnauthenticated
	}

	entries, err := r.accountSvc.ListHistory(req.Context(), user.ID)
	if err != nil {
		return err
	}
	return writeJSON(w, entries)
}

// POST /api/delete-account
func (r *Router) handleDeleteAccount(w http.ResponseWriter, req *http.Request) error {
	user := middleware.GetUserFromContext(req.Context())
	if user == nil {
		return identity.ErrUnauthenticated
	}
	token := middleware.GetTokenFromContext(req.Context())

	if err := r.accountSvc.DeleteAccount(req.Context(), user.ID, token); err != nil {
		return err
	}
	return writeJSON(w, map[string]string{
		"message": "Account and all associated history deleted successfully.",
	})
}

// POST /api/send-welcome-email
// Body: {"email": "<address>"}
func (r *Router) handleWelcomeEmail(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required.")
		return nil
	}
	if err := middleware.ValidateEmail(body.Email); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil
	}

	// The account already exists by the time this is called, so a mail
	// failure still answers 200.
	if err := r.mailer.SendWelcome(req.Context(), body.Email); err != nil {
		log.Printf("welcome mail to %s failed: %v", body.Email, err)
		return writeJSON(w, map[string]string{
			"message": "User created, but welcome email failed to send.",
		})
	}
	return writeJSON(w, map[string]string{
		"message": "Welcome email sent successfully.",
	})
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
