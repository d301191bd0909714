package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/indiepro/indiepro/internal/platform/httpx"
	"github.com/indiepro/indiepro/internal/shared"
	"github.com/indiepro/indiepro/internal/users"
)

// UserFinder resolves the session user.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*users.User, error)
}

// UnlockChecker reports paid access.
type UnlockChecker interface {
	IsUnlocked(ctx context.Context, userID string) (bool, error)
}

// Handler serves the current-user view, profile saves and onboarding previews.
type Handler struct {
	logger   *slog.Logger
	store    Store
	users    UserFinder
	unlocked UnlockChecker
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, store Store, finder UserFinder, unlocked UnlockChecker) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, store: store, users: finder, unlocked: unlocked}
}

// MountRoutes registers routes. requireUser guards the write endpoint.
func (h *Handler) MountRoutes(r chi.Router, requireUser func(http.Handler) http.Handler) {
	r.Get("/me", h.handleMe)
	r.With(requireUser).Put("/profile", h.handleSave)
	r.Post("/onboarding/resolve", h.handleResolve)
}

type meUser struct {
	ID              string          `json:"id"`
	Email           string          `json:"email"`
	Unlocked        bool            `json:"unlocked"`
	Profile         *Profile        `json:"profile"`
	IncomeStructure IncomeStructure `json:"incomeStructure"`
	StructureLabel  string          `json:"structureLabel"`
	RoleLabel       string          `json:"roleLabel"`
}

type resolution struct {
	IncomeStructure IncomeStructure `json:"incomeStructure"`
	StructureLabel  string          `json:"structureLabel"`
	RoleLabel       string          `json:"roleLabel"`
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	anonymous := map[string]any{"user": nil}
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusOK, anonymous)
		return
	}
	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.JSON(w, http.StatusOK, anonymous)
			return
		}
		h.logger.Error("me: find user", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	unlocked, err := h.unlocked.IsUnlocked(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("me: entitlement", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	prof, err := h.store.Get(r.Context(), user.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		h.logger.Error("me: profile", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	var answers Answers
	if prof != nil {
		answers = prof.Answers
	}
	structure := ResolveIncomeStructure(answers)
	httpx.JSON(w, http.StatusOK, map[string]any{"user": meUser{
		ID:              user.ID,
		Email:           user.Email,
		Unlocked:        unlocked,
		Profile:         prof,
		IncomeStructure: structure,
		StructureLabel:  StructureLabel(structure),
		RoleLabel:       RoleLabel(answers.Role),
	}})
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	userID, _ := shared.UserIDFromContext(r.Context())
	var answers Answers
	if err := httpx.DecodeJSON(w, r, &answers); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if fields := answers.Validate(); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	prof, err := h.store.Save(r.Context(), userID, answers)
	if err != nil {
		h.logger.Error("save profile", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "profile": prof})
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var answers Answers
	if err := httpx.DecodeJSON(w, r, &answers); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if fields := answers.Validate(); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	structure := ResolveIncomeStructure(answers)
	httpx.JSON(w, http.StatusOK, resolution{
		IncomeStructure: structure,
		StructureLabel:  StructureLabel(structure),
		RoleLabel:       RoleLabel(answers.Role),
	})
}
