package notify

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/robson-hennes/myfinai/internal/platform/httpx"
)

// Handler exposes the notification log.
type Handler struct {
	logger *slog.Logger
	log    LogRepository
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, log LogRepository) *Handler {
	return &Handler{logger: logger, log: log}
}

// MountRoutes registers notification routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.log.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("list notifications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []LogEntry{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": entries})
}
