package templates

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/robson-hennes/myfinai/internal/platform/httpx"
)

// Handler wires the notification template endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers template routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var req ListTemplatesRequest
	if raw := r.URL.Query().Get("channel"); raw != "" {
		channel := Channel(raw)
		if !channel.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", "channel must be email or whatsapp")
			return
		}
		req.Channel = &channel
	}
	if raw := r.URL.Query().Get("trigger"); raw != "" {
		trigger := Trigger(raw)
		if !trigger.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", "trigger must be reminder, due, overdue or receipt")
			return
		}
		req.Trigger = &trigger
	}

	tpls, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list templates", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if tpls == nil {
		tpls = []Template{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": tpls})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	tpl, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create template", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, tpl)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	tpl, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondLookupError(w, err, "get template")
		return
	}
	httpx.JSON(w, http.StatusOK, tpl)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateTemplateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	tpl, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondLookupError(w, err, "update template")
		return
	}
	httpx.JSON(w, http.StatusOK, tpl)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondLookupError(w, err, "delete template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "template id must be a uuid")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondLookupError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "template not found")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
