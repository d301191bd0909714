package calculators

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/indiepro/indiepro/internal/platform/httpx"
	"github.com/indiepro/indiepro/internal/profile"
	"github.com/indiepro/indiepro/internal/shared"
	"github.com/indiepro/indiepro/internal/usage"
)

// Tracker records tool usage.
type Tracker interface {
	Track(ctx context.Context, userID string, event usage.Event, slug string, meta map[string]any)
}

// ProfileReader loads the saved profile.
type ProfileReader interface {
	Get(ctx context.Context, userID string) (*profile.Profile, error)
}

// Handler serves the gated tools. Every route must sit behind an unlock gate.
type Handler struct {
	logger    *slog.Logger
	tracker   Tracker
	profiles  ProfileReader
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, tracker Tracker, profiles ProfileReader) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, tracker: tracker, profiles: profiles, validator: validator.New()}
}

// MountRoutes registers tool routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/default-expenses", h.handleDefaultExpenses)
	r.Post("/net-income", h.handleNetIncome)
	r.Post("/quarterly-estimate", h.handleQuarterlyEstimate)
	r.Get("/income-pipeline", h.handlePipeline)
}

type netIncomeForm struct {
	GrossIncome float64   `json:"grossIncome" validate:"gte=0"`
	Expenses    []Expense `json:"expenses" validate:"dive"`
}

type quarterlyForm struct {
	AnnualNetIncome float64 `json:"annualNetIncome" validate:"gte=0"`
}

func (h *Handler) handleDefaultExpenses(w http.ResponseWriter, r *http.Request) {
	role := profile.Role(r.URL.Query().Get("role"))
	httpx.JSON(w, http.StatusOK, map[string]any{"role": role, "expenses": DefaultExpenses(role)})
}

func (h *Handler) handleNetIncome(w http.ResponseWriter, r *http.Request) {
	var form netIncomeForm
	if err := httpx.DecodeJSON(w, r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if fields := h.validate(form); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	res := NetIncome(form.GrossIncome, form.Expenses)
	h.track(r, usage.EventCalculatorUsed, "net-income", map[string]any{"gross": res.GrossIncome, "net": res.NetIncome})
	httpx.JSON(w, http.StatusOK, map[string]any{
		"result":    res,
		"formatted": map[string]string{"net": FormatCurrency(res.NetIncome), "totalExpenses": FormatCurrency(res.TotalExpenses)},
	})
}

func (h *Handler) handleQuarterlyEstimate(w http.ResponseWriter, r *http.Request) {
	var form quarterlyForm
	if err := httpx.DecodeJSON(w, r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if fields := h.validate(form); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	res := QuarterlyEstimate(form.AnnualNetIncome)
	h.track(r, usage.EventCalculatorUsed, "quarterly-estimate", map[string]any{"annualNet": res.AnnualNetIncome})
	httpx.JSON(w, http.StatusOK, map[string]any{
		"result": res,
		"formatted": map[string]string{
			"totalAnnualTax":   FormatCurrency(res.TotalAnnualTax),
			"quarterlyPayment": FormatCurrency(res.QuarterlyPayment),
		},
	})
}

func (h *Handler) handlePipeline(w http.ResponseWriter, r *http.Request) {
	userID, _ := shared.UserIDFromContext(r.Context())
	var answers profile.Answers
	if override := profile.IncomeStructure(r.URL.Query().Get("structure")); override != "" {
		answers.IncomeStructure = override
		if fields := answers.Validate(); fields != nil {
			httpx.ValidationProblem(w, fields)
			return
		}
	} else if h.profiles != nil {
		p, err := h.profiles.Get(r.Context(), userID)
		switch {
		case err == nil:
			answers = p.Answers
		case errors.Is(err, shared.ErrNotFound):
		default:
			h.logger.Error("pipeline: load profile", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
	}
	pipeline := IncomePipeline(profile.ResolveIncomeStructure(answers))
	h.track(r, usage.EventPipelineViewed, "income-pipeline", map[string]any{"structure": string(pipeline.Structure)})
	httpx.JSON(w, http.StatusOK, map[string]any{
		"pipeline":  pipeline,
		"roleLabel": profile.RoleLabel(answers.Role),
	})
}

func (h *Handler) track(r *http.Request, event usage.Event, slug string, meta map[string]any) {
	if h.tracker == nil {
		return
	}
	if userID, ok := shared.UserIDFromContext(r.Context()); ok {
		h.tracker.Track(r.Context(), userID, event, slug, meta)
	}
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
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Error()
	}
	return fields
}
