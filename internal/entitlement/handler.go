package entitlement

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/indiepro/indiepro/internal/checkout"
	"github.com/indiepro/indiepro/internal/platform/httpx"
	"github.com/indiepro/indiepro/internal/shared"
	"github.com/indiepro/indiepro/internal/users"
)

// Handler exposes checkout start and completion.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	store     Store
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, store Store) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, store: store, validator: validator.New()}
}

// MountAPI registers JSON routes under /api.
func (h *Handler) MountAPI(r chi.Router) {
	r.Post("/checkout", h.handleStartCheckout)
}

// MountCheckout registers the provider redirect target.
func (h *Handler) MountCheckout(r chi.Router) {
	r.Get("/checkout/success", h.handleSuccess)
}

type checkoutForm struct {
	Email string `json:"email" validate:"omitempty,email"`
}

func (h *Handler) handleStartCheckout(w http.ResponseWriter, r *http.Request) {
	var form checkoutForm
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(w, r, &form); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
			return
		}
	}
	form.Email = users.NormalizeEmail(form.Email)
	if err := h.validator.Struct(form); err != nil {
		httpx.ValidationProblem(w, map[string]string{"email": "invalid email"})
		return
	}

	userID, signedIn := shared.UserIDFromContext(r.Context())
	if form.Email == "" && signedIn {
		user, err := h.store.FindUserByID(r.Context(), userID)
		if err == nil {
			form.Email = user.Email
		} else if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("checkout lookup user", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
	}

	url, err := h.service.StartCheckout(r.Context(), form.Email, userID)
	if err != nil {
		h.logger.Error("start checkout", slog.Any("error", err))
		if errors.Is(err, checkout.ErrNotConfigured) {
			httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "checkout is not configured")
			return
		}
		httpx.RespondError(w, httpx.ErrUpstream)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) handleSuccess(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Redirect(w, r, "/unlock", http.StatusSeeOther)
		return
	}

	grant, err := h.service.Reconcile(r.Context(), sessionID)
	switch {
	case err == nil:
	case errors.Is(err, ErrCheckoutNotPaid):
		h.logger.Warn("reconcile unpaid checkout", slog.String("session", sessionID))
		httpx.Problem(w, http.StatusBadRequest, "Payment Incomplete", "checkout session is not paid")
		return
	case errors.Is(err, ErrCheckoutLookup), errors.Is(err, ErrMissingCustomerEmail):
		h.logger.Error("reconcile checkout", slog.String("session", sessionID), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Bad Gateway", "could not confirm purchase")
		return
	default:
		h.logger.Error("reconcile checkout", slog.String("session", sessionID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"unlocked": IsUnlocked(grant.Entitlement),
		"email":    grant.User.Email,
	})
}
