package csvtemplates

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/indiepro/indiepro/internal/platform/httpx"
	"github.com/indiepro/indiepro/internal/shared"
	"github.com/indiepro/indiepro/internal/usage"
)

// Tracker records downloads.
type Tracker interface {
	Track(ctx context.Context, userID string, event usage.Event, slug string, meta map[string]any)
}

// Handler serves template downloads behind the unlock gate.
type Handler struct {
	logger  *slog.Logger
	tracker Tracker
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, tracker Tracker) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, tracker: tracker}
}

// MountRoutes registers template routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{slug}", h.handleDownload)
}

type listItem struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Filename string `json:"filename"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items := make([]listItem, 0, len(registry))
	for _, t := range List() {
		items = append(items, listItem{Slug: t.Slug, Title: t.Title, Filename: t.Filename})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"templates": items})
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	tmpl, ok := Lookup(slug)
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "template not found")
		return
	}

	var buf bytes.Buffer
	if err := Write(&buf, tmpl); err != nil {
		h.logger.Error("render csv template", slog.String("slug", slug), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if userID, ok := shared.UserIDFromContext(r.Context()); ok && h.tracker != nil {
		h.tracker.Track(r.Context(), userID, usage.EventTemplateDownloaded, slug, nil)
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+tmpl.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
