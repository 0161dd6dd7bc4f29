package collections

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/robson-hennes/myfinai/internal/platform/httpx"
	"github.com/robson-hennes/myfinai/internal/subscriptions"
)

// Handler wires the collections worklist endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers collections routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/{id}/notify", h.notify)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Worklist(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("collections worklist", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Item{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *Handler) notify(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "subscription id must be a uuid")
		return
	}

	trigger, err := h.service.Notify(r.Context(), id, time.Now())
	if err != nil {
		if errors.Is(err, subscriptions.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "subscription not found")
			return
		}
		h.logger.Error("manual charge", slog.Any("error", err), slog.String("subscription_id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"trigger": trigger})
}
