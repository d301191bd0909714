package content

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/indiepro/indiepro/internal/platform/httpx"
	"github.com/indiepro/indiepro/internal/shared"
)

// UnlockChecker reports paid access.
type UnlockChecker interface {
	IsUnlocked(ctx context.Context, userID string) (bool, error)
}

// Handler serves the guide catalog. Anonymous readers get previews.
type Handler struct {
	logger   *slog.Logger
	unlocked UnlockChecker
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, unlocked UnlockChecker) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, unlocked: unlocked}
}

// MountRoutes registers learn routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{slug}", h.handleGuide)
}

type guideSummary struct {
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	HasGatedContent bool   `json:"hasGatedContent"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	unlocked, ok := h.isUnlocked(w, r)
	if !ok {
		return
	}
	list := List()
	items := make([]guideSummary, 0, len(list))
	for _, g := range list {
		items = append(items, guideSummary{Slug: g.Slug, Title: g.Title, Subtitle: g.Subtitle, HasGatedContent: g.HasGatedContent()})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"unlocked": unlocked, "guides": items})
}

func (h *Handler) handleGuide(w http.ResponseWriter, r *http.Request) {
	g, found := Lookup(chi.URLParam(r, "slug"))
	if !found {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "guide not found")
		return
	}
	unlocked, ok := h.isUnlocked(w, r)
	if !ok {
		return
	}
	locked := g.HasGatedContent() && !unlocked
	if locked {
		g.Gated = nil
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"guide": g, "locked": locked})
}

func (h *Handler) isUnlocked(w http.ResponseWriter, r *http.Request) (bool, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		return false, true
	}
	unlocked, err := h.unlocked.IsUnlocked(r.Context(), userID)
	if err != nil {
		h.logger.Error("content: entitlement", slog.Any("error", err))
		httpx.RespondError(w, err)
		return false, false
	}
	return unlocked, true
}
