package subscriptions

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/robson-hennes/myfinai/internal/platform/httpx"
)

// Handler wires the subscription endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers subscription routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
}

type subscriptionView struct {
	Subscription
	MonthlyRevenue float64 `json:"monthly_revenue"`
}

func view(s Subscription) subscriptionView {
	return subscriptionView{Subscription: s, MonthlyRevenue: s.MonthlyRevenue()}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListSubscriptionsRequest{Limit: 200}
	if raw := r.URL.Query().Get("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", "client_id must be a uuid")
			return
		}
		req.ClientID = &id
	}
	if raw := r.URL.Query().Get("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", "is_active must be a boolean")
			return
		}
		req.IsActive = &active
	}

	subs, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list subscriptions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]subscriptionView, 0, len(subs))
	for _, s := range subs {
		views = append(views, view(s))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": views})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateSubscriptionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sub, err := h.service.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidRecurrence) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("create subscription", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, view(*sub))
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	sub, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondLookupError(w, err, "get subscription")
		return
	}
	httpx.JSON(w, http.StatusOK, view(*sub))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateSubscriptionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sub, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrInvalidRecurrence) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.respondLookupError(w, err, "update subscription")
		return
	}
	httpx.JSON(w, http.StatusOK, view(*sub))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondLookupError(w, err, "delete subscription")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "subscription id must be a uuid")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondLookupError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "subscription not found")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
