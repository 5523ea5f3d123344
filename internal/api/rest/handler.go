package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ecuevas97/PartyPal/internal/converter"
	"github.com/ecuevas97/PartyPal/internal/model"
	"github.com/ecuevas97/PartyPal/internal/repository"
	svc "github.com/ecuevas97/PartyPal/internal/service"
	"github.com/ecuevas97/PartyPal/internal/service/events"
)

// maxBodyBytes ограничение размера тела запроса
const maxBodyBytes = 1 << 20

// Коды ошибок в теле ответа
const (
	codeNotFound   = "EVENT_NOT_FOUND"
	codeValidation = "VALIDATION_ERROR"
	codeInternal   = "INTERNAL_ERROR"
)

// Handler реализует REST ресурс /events
type Handler struct {
	eventService svc.EventService
	feed         *events.ChangeFeed
	log          *slog.Logger
	now          func() time.Time
}

// NewHandler создает новый экземпляр REST хэндлера.
// feed может быть nil, тогда /events/changes отвечает 404.
func NewHandler(eventService svc.EventService, feed *events.ChangeFeed, log *slog.Logger) *Handler {
	return &Handler{
		eventService: eventService,
		feed:         feed,
		log:          log,
		now:          time.Now,
	}
}

// Register регистрирует маршруты на mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /events", h.ListEvents)
	mux.HandleFunc("POST /events", h.CreateEvent)
	mux.HandleFunc("GET /events/{id}", h.GetEvent)
	mux.HandleFunc("PUT /events/{id}", h.UpdateEvent)
	mux.HandleFunc("DELETE /events/{id}", h.DeleteEvent)
	mux.HandleFunc("GET /events/changes", h.StreamChanges)
	mux.HandleFunc("GET /events.ics", h.ExportCalendar)
}

// Health отвечает OK, пока процесс жив
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// ListEvents возвращает все события
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.eventService.List(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if list == nil {
		list = []model.Event{}
	}

	writeJSON(w, http.StatusOK, list)
}

// GetEvent возвращает событие по ID
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.eventService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// CreateEvent создает событие из черновика
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	draft, err := decodeEvent(w, r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	created, err := h.eventService.Create(r.Context(), draft)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Location", "/events/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

// UpdateEvent полностью заменяет событие
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	event, err := decodeEvent(w, r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	updated, err := h.eventService.Update(r.Context(), r.PathValue("id"), event)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteEvent удаляет событие
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.eventService.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// StreamChanges отдает изменения событий как NDJSON, по одному объекту на строку.
// Через wsproxy тот же поток доступен по WebSocket.
func (h *Handler) StreamChanges(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		http.NotFound(w, r)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, codeInternal, "streaming not supported")
		return
	}

	ch := h.feed.Subscribe()
	defer h.feed.Unsubscribe(ch)

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	h.log.Info("change stream opened", "remote", r.RemoteAddr)
	defer h.log.Info("change stream closed", "remote", r.RemoteAddr)

	enc := json.NewEncoder(w)
	for {
		select {
		case <-r.Context().Done():
			return
		case change, ok := <-ch:
			if !ok {
				return
			}
			if err := enc.Encode(change); err != nil {
				h.log.Error("failed to write change", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

// ExportCalendar отдает все события как iCalendar файл
func (h *Handler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	list, err := h.eventService.List(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	cal := converter.ModelsToCalendar(list, h.now().UTC())

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=events.ics")
	if _, err := w.Write([]byte(cal.Serialize())); err != nil {
		h.log.Error("failed to write calendar", "error", err)
	}
}

// decodeEvent читает JSON событие из тела запроса
func decodeEvent(w http.ResponseWriter, r *http.Request) (model.Event, error) {
	var event model.Event
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&event); err != nil {
		return model.Event{}, fmt.Errorf("%w: invalid JSON body: %v", model.ErrValidation, err)
	}
	return event, nil
}

// handleError конвертирует внутренние ошибки в HTTP статусы
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "event not found")
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
	default:
		h.log.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

// errorResponse тело ответа с ошибкой
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}
