package checklist

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/indiepro/indiepro/internal/platform/httpx"
	"github.com/indiepro/indiepro/internal/shared"
)

// Handler exposes checklist progress. Routes expect an authenticated user.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers checklist routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{slug}", h.handleProgress)
	r.Post("/{slug}/steps/{stepID}/toggle", h.handleToggle)
	r.Delete("/{slug}", h.handleReset)
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	userID, _ := shared.UserIDFromContext(r.Context())
	p, err := h.service.Progress(r.Context(), userID, chi.URLParam(r, "slug"))
	h.respond(w, p, err)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	userID, _ := shared.UserIDFromContext(r.Context())
	p, err := h.service.Toggle(r.Context(), userID, chi.URLParam(r, "slug"), chi.URLParam(r, "stepID"))
	h.respond(w, p, err)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	userID, _ := shared.UserIDFromContext(r.Context())
	p, err := h.service.Reset(r.Context(), userID, chi.URLParam(r, "slug"))
	h.respond(w, p, err)
}

func (h *Handler) respond(w http.ResponseWriter, p *Progress, err error) {
	switch {
	case err == nil:
		httpx.JSON(w, http.StatusOK, p)
	case errors.Is(err, ErrUnknownChecklist):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrUnknownStep):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("checklist", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
