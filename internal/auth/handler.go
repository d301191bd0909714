package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/indiepro/indiepro/internal/platform/httpx"
	"github.com/indiepro/indiepro/internal/shared"
	"github.com/indiepro/indiepro/internal/users"
)

// Handler wires HTTP endpoints for the login code flow.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	validator      *validator.Validate
	exposeCode     bool
}

// NewHandler constructs a Handler. When exposeCode is set the raw code is
// echoed back to the caller instead of relying on delivery.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, exposeCode bool) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		validator:      validator.New(),
		exposeCode:     exposeCode,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/request-code", h.handleRequestCode)
	r.Post("/verify", h.handleVerify)
	r.Post("/logout", h.handleLogout)
}

type requestCodeForm struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyForm struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

type requestCodeResponse struct {
	OK        bool      `json:"ok"`
	ExpiresAt time.Time `json:"expiresAt"`
	DevCode   string    `json:"devCode,omitempty"`
}

type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type verifyResponse struct {
	OK   bool        `json:"ok"`
	User userPayload `json:"user"`
}

func (h *Handler) handleRequestCode(w http.ResponseWriter, r *http.Request) {
	var form requestCodeForm
	if err := httpx.DecodeJSON(w, r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	form.Email = users.NormalizeEmail(form.Email)
	if fields := h.validate(form); len(fields) > 0 {
		httpx.ValidationProblem(w, fields)
		return
	}

	issued, err := h.service.RequestCode(r.Context(), form.Email)
	switch {
	case err == nil:
	case errors.Is(err, users.ErrInvalidEmail):
		httpx.ValidationProblem(w, map[string]string{"email": "invalid email"})
		return
	case errors.Is(err, ErrTooManyRequests):
		httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "wait before requesting another code")
		return
	default:
		h.logger.Error("request login code", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	resp := requestCodeResponse{OK: true, ExpiresAt: issued.ExpiresAt}
	if h.exposeCode {
		resp.DevCode = issued.Code
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var form verifyForm
	if err := httpx.DecodeJSON(w, r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	form.Email = users.NormalizeEmail(form.Email)
	if fields := h.validate(form); len(fields) > 0 {
		httpx.ValidationProblem(w, fields)
		return
	}

	sess, err := h.service.VerifyCode(r.Context(), form.Email, form.Code)
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidCodeFormat):
		httpx.ValidationProblem(w, map[string]string{"code": err.Error()})
		return
	case errors.Is(err, ErrTooManyAttempts):
		httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "request a new code")
		return
	case errors.Is(err, shared.ErrInvalidCredentials):
		h.logger.Info("login code rejected", slog.String("email", form.Email), slog.Any("reason", err))
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired code")
		return
	default:
		h.logger.Error("verify login code", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	h.sessionManager.SetCookie(w, sess.Token)
	httpx.JSON(w, http.StatusOK, verifyResponse{
		OK:   true,
		User: userPayload{ID: sess.User.ID, Email: sess.User.Email},
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessionManager.Clear(w)
	httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) validate(form any) map[string]string {
	err := h.validator.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"general": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fieldErr := range verrs {
		fields[fieldErr.Field()] = fieldErr.Error()
	}
	return fields
}
