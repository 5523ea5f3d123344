package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ecuevas97/PartyPal/internal/api/http/middleware"
	"github.com/ecuevas97/PartyPal/internal/ui"
)

const sessionCookie = "partypal_session"

// formFields текстовые поля формы в порядке отображения
var formFields = []string{ui.FieldTitle, ui.FieldDate, ui.FieldLocation, ui.FieldDescription, ui.FieldImage}

// Server веб-интерфейс: одна ui.Page на сессию браузера
type Server struct {
	renderer *ui.Renderer
	sessions *Sessions
	log      *slog.Logger
}

// NewServer создает веб-интерфейс поверх API
func NewServer(api ui.EventsAPI, reconcile ui.Reconcile, sessionTTL time.Duration, log *slog.Logger) (*Server, error) {
	renderer, err := ui.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("ui.NewRenderer: %w", err)
	}

	return &Server{
		renderer: renderer,
		sessions: NewSessions(sessionTTL, func() *ui.Page {
			return ui.NewPage(api, reconcile, log)
		}),
		log: log,
	}, nil
}

// Sessions хранилище сессий (для фоновой очистки)
func (s *Server) Sessions() *Sessions {
	return s.sessions
}

// Handler возвращает маршруты, обернутые в Recover и Logging
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /{$}", s.list)
	mux.HandleFunc("GET /events", s.list)
	mux.HandleFunc("GET /add", s.addForm)
	mux.HandleFunc("POST /add", s.submitAdd)
	mux.HandleFunc("GET /edit/{id}", s.editForm)
	mux.HandleFunc("POST /edit/{id}", s.submitEdit)
	mux.HandleFunc("POST /events/{id}/delete", s.deleteEvent)
	mux.HandleFunc("POST /cancel", s.cancel)

	var handler http.Handler = mux
	handler = middleware.Logging(s.log, handler)
	return middleware.Recover(s.log, handler)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

// list монтирует список. После удаления или сохранения рисуется уже согласованное состояние.
func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if !sess.skipLoad.Swap(false) {
		// ошибка уже записана в состояние страницы
		_ = sess.page.Load(r.Context())
	}

	status := http.StatusOK
	state := sess.page.State()
	if state.Phase == ui.PhaseError {
		status = http.StatusBadGateway
	}
	s.render(w, status, s.renderer.List, state)
}

func (s *Server) addForm(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.page.OpenAdd()
	s.render(w, http.StatusOK, s.renderer.Form, sess.page.State())
}

func (s *Server) submitAdd(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if form := sess.page.State().Form; form == nil || form.IsEdit() {
		sess.page.OpenAdd()
	}
	s.submit(w, r, sess)
}

func (s *Server) editForm(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if err := sess.page.OpenEdit(r.Context(), r.PathValue("id")); err != nil {
		s.render(w, http.StatusNotFound, s.renderer.Form, formlessState(sess.page.State()))
		return
	}
	s.render(w, http.StatusOK, s.renderer.Form, sess.page.State())
}

func (s *Server) submitEdit(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	id := r.PathValue("id")
	if form := sess.page.State().Form; form == nil || form.TargetID != id {
		if err := sess.page.OpenEdit(r.Context(), id); err != nil {
			s.render(w, http.StatusNotFound, s.renderer.Form, formlessState(sess.page.State()))
			return
		}
	}
	s.submit(w, r, sess)
}

// submit переносит поля запроса в форму и отправляет ее.
// Успех ведет на список, ошибка оставляет форму открытой.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, sess *session) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	for _, field := range formFields {
		if err := sess.page.SetField(field, r.PostForm.Get(field)); err != nil {
			s.log.Error("failed to set form field", "field", field, "error", err)
		}
	}
	_ = sess.page.SetAttending(r.PostForm.Get("isAttending") == "true")

	err := sess.page.SubmitForm(r.Context())
	switch {
	case err == nil:
		sess.skipLoad.Store(true)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, ui.ErrRequired):
		s.render(w, http.StatusUnprocessableEntity, s.renderer.Form, sess.page.State())
	case errors.Is(err, ui.ErrBusy):
		s.render(w, http.StatusConflict, s.renderer.Form, sess.page.State())
	default:
		s.render(w, http.StatusBadGateway, s.renderer.Form, sess.page.State())
	}
}

// deleteEvent удаляет событие и показывает список без повторной загрузки
func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	// ошибка уже записана в состояние и будет показана в списке
	_ = sess.page.Delete(r.Context(), r.PathValue("id"))
	sess.skipLoad.Store(true)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// cancel закрывает форму и возвращает на список, который загрузится заново
func (s *Server) cancel(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if err := sess.page.CancelForm(); err != nil && !errors.Is(err, ui.ErrNoForm) {
		s.log.Error("failed to cancel form", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// session находит сессию по cookie или заводит новую
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}

	sess, sessionID, created := s.sessions.get(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sessionID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

// render рисует в буфер, чтобы ошибка шаблона не оставила половину страницы
func (s *Server) render(w http.ResponseWriter, status int, view func(io.Writer, ui.State) error, state ui.State) {
	var buf bytes.Buffer
	if err := view(&buf, state); err != nil {
		s.log.Error("failed to render page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// formlessState снимок для страницы "запись не найдена"
func formlessState(state ui.State) ui.State {
	state.Form = nil
	return state
}
