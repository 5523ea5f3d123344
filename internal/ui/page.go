package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/ecuevas97/PartyPal/internal/model"
)

// Сообщения, которые видит пользователь
const (
	MsgLoadFailed   = "Failed to load events."
	MsgSaveFailed   = "Failed to save event."
	MsgDeleteFailed = "Failed to delete event."
	MsgNotFound     = "Event not found."
	MsgRequired     = "Title and date are required."
)

var (
	// ErrBusy возвращается SubmitForm, пока предыдущая отправка еще выполняется
	ErrBusy = errors.New("submit already in progress")
	// ErrNoForm возвращается, если форма не открыта
	ErrNoForm = errors.New("no form is open")
)

// Phase фаза жизненного цикла страницы
type Phase string

const (
	PhaseLoading  Phase = "loading"
	PhaseReady    Phase = "ready"
	PhaseError    Phase = "error"
	PhaseFormOpen Phase = "form-open"
)

// Reconcile способ обновить коллекцию после create/update
type Reconcile string

const (
	// ReconcileRefetch запрашивает список заново
	ReconcileRefetch Reconcile = "refetch"
	// ReconcileLocal добавляет или заменяет запись на месте
	ReconcileLocal Reconcile = "local"
)

// ParseReconcile разбирает значение из конфига, пустая строка дает ReconcileRefetch
func ParseReconcile(s string) (Reconcile, error) {
	switch Reconcile(s) {
	case "", ReconcileRefetch:
		return ReconcileRefetch, nil
	case ReconcileLocal:
		return ReconcileLocal, nil
	default:
		return "", fmt.Errorf("unknown reconcile strategy %q", s)
	}
}

// EventsAPI операции backend-а, которые нужны странице
type EventsAPI interface {
	List(ctx context.Context) ([]model.Event, error)
	Get(ctx context.Context, id string) (model.Event, error)
	Create(ctx context.Context, draft model.Event) (model.Event, error)
	Update(ctx context.Context, id string, event model.Event) (model.Event, error)
	Delete(ctx context.Context, id string) error
}

// FormState снимок открытой формы
type FormState struct {
	// TargetID пустой у формы создания
	TargetID string
	Values   model.Event
	Message  string
}

// IsEdit сообщает, что форма редактирует существующую запись
func (f *FormState) IsEdit() bool {
	return f.TargetID != ""
}

// State неизменяемый снимок страницы. Рендеринг зависит только от него.
type State struct {
	Phase   Phase
	Events  []model.Event
	Form    *FormState
	Message string
}

// Page владеет коллекцией событий одного открытого представления.
// Все изменения состояния идут только через методы Page.
type Page struct {
	api       EventsAPI
	log       *slog.Logger
	reconcile Reconcile

	// opMu сериализует операции (включая сетевые вызовы), stateMu защищает поля
	opMu       sync.Mutex
	stateMu    sync.Mutex
	submitting atomic.Bool

	phase       Phase
	loaded      bool
	events      []model.Event
	message     string
	form        *Form
	formTarget  string
	formMessage string
	formReturn  Phase

	subscribers map[int]func(State)
	nextSubID   int
}

// NewPage создает страницу в фазе loading
func NewPage(api EventsAPI, reconcile Reconcile, log *slog.Logger) *Page {
	if reconcile == "" {
		reconcile = ReconcileRefetch
	}
	return &Page{
		api:         api,
		log:         log,
		reconcile:   reconcile,
		phase:       PhaseLoading,
		subscribers: make(map[int]func(State)),
	}
}

// State возвращает текущий снимок
func (p *Page) State() State {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	return p.snapshot()
}

// Subscribe регистрирует наблюдателя, который получает снимок после каждого изменения.
// Возвращает функцию отписки.
func (p *Page) Subscribe(fn func(State)) (unsubscribe func()) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn

	return func() {
		p.stateMu.Lock()
		defer p.stateMu.Unlock()
		delete(p.subscribers, id)
	}
}

// Load запрашивает список событий (монтирование страницы).
// Открытая форма при этом отбрасывается.
func (p *Page) Load(ctx context.Context) error {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.mutate(func() {
		p.form = nil
		p.formTarget = ""
		p.formMessage = ""
		p.phase = PhaseLoading
		p.message = ""
	})

	return p.fetch(ctx)
}

// OpenAdd открывает пустую форму создания
func (p *Page) OpenAdd() {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.mutate(func() {
		p.openForm(NewForm(nil), "")
	})
}

// OpenEdit открывает форму, заполненную записью id.
// Если записи нет в локальной коллекции, она запрашивается у backend-а.
func (p *Page) OpenEdit(ctx context.Context, id string) error {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.stateMu.Lock()
	idx := slices.IndexFunc(p.events, func(e model.Event) bool { return e.ID == id })
	var event model.Event
	if idx >= 0 {
		event = p.events[idx]
	}
	p.stateMu.Unlock()

	if idx < 0 {
		fetched, err := p.api.Get(ctx, id)
		if err != nil {
			p.log.Error("failed to fetch event", "id", id, "error", err)
			p.mutate(func() {
				p.message = MsgNotFound
			})
			return fmt.Errorf("get event %s: %w", id, err)
		}
		event = fetched
	}

	p.mutate(func() {
		p.openForm(NewForm(&event), id)
	})
	return nil
}

// SetField меняет одно поле открытой формы
func (p *Page) SetField(field, value string) error {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	if p.form == nil {
		return ErrNoForm
	}
	return p.form.Set(field, value)
}

// SetAttending меняет флаг участия в открытой форме
func (p *Page) SetAttending(attending bool) error {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	if p.form == nil {
		return ErrNoForm
	}
	p.form.SetAttending(attending)
	return nil
}

// SubmitForm сохраняет рабочую копию формы: create для новой записи, update для существующей.
// При ошибке форма остается открытой, коллекция не меняется.
func (p *Page) SubmitForm(ctx context.Context) error {
	if !p.submitting.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer p.submitting.Store(false)

	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.stateMu.Lock()
	form, target := p.form, p.formTarget
	p.stateMu.Unlock()
	if form == nil {
		return ErrNoForm
	}

	var saved model.Event
	err := form.Submit(func(values model.Event) error {
		var err error
		if target == "" {
			saved, err = p.api.Create(ctx, values)
		} else {
			saved, err = p.api.Update(ctx, target, values)
		}
		return err
	})

	switch {
	case errors.Is(err, ErrRequired):
		p.mutate(func() {
			p.formMessage = MsgRequired
		})
		return err
	case err != nil:
		p.log.Error("failed to save event", "id", target, "error", err)
		p.mutate(func() {
			p.formMessage = MsgSaveFailed
		})
		return fmt.Errorf("save event: %w", err)
	}

	if p.reconcile == ReconcileRefetch || !p.loaded {
		p.mutate(p.closeForm)
		// Ошибка повторной загрузки уже отражена в State, сохранение при этом прошло
		_ = p.fetch(ctx)
		return nil
	}

	p.mutate(func() {
		if idx := slices.IndexFunc(p.events, func(e model.Event) bool { return e.ID == saved.ID }); idx >= 0 {
			p.events[idx] = saved
		} else {
			p.events = append(p.events, saved)
		}
		p.closeForm()
	})
	return nil
}

// CancelForm закрывает форму без сохранения
func (p *Page) CancelForm() error {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.stateMu.Lock()
	form := p.form
	p.stateMu.Unlock()
	if form == nil {
		return ErrNoForm
	}

	form.Cancel(func() {
		p.mutate(p.closeForm)
	})
	return nil
}

// Delete удаляет событие на backend-е и затем убирает его из коллекции без повторной загрузки.
// Страница, которая еще не загружалась (новая или истекшая сессия), сначала загружает список.
func (p *Page) Delete(ctx context.Context, id string) error {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	if !p.loaded {
		// ошибка загрузки уже отражена в State
		_ = p.fetch(ctx)
	}

	if err := p.api.Delete(ctx, id); err != nil {
		p.log.Error("failed to delete event", "id", id, "error", err)
		p.mutate(func() {
			p.message = MsgDeleteFailed
		})
		return fmt.Errorf("delete event %s: %w", id, err)
	}

	p.mutate(func() {
		p.events = slices.DeleteFunc(p.events, func(e model.Event) bool { return e.ID == id })
		p.message = ""
	})
	return nil
}

// fetch загружает список, вызывается под opMu
func (p *Page) fetch(ctx context.Context) error {
	list, err := p.api.List(ctx)
	if err != nil {
		p.log.Error("failed to load events", "error", err)
		p.mutate(func() {
			p.phase = PhaseError
			p.message = MsgLoadFailed
		})
		return fmt.Errorf("list events: %w", err)
	}

	p.mutate(func() {
		p.events = list
		p.loaded = true
		p.message = ""
		if p.form == nil {
			p.phase = PhaseReady
		}
	})
	return nil
}

// openForm вызывается под stateMu
func (p *Page) openForm(form *Form, target string) {
	if p.form == nil {
		p.formReturn = p.phase
	}
	p.form = form
	p.formTarget = target
	p.formMessage = ""
	p.message = ""
	p.phase = PhaseFormOpen
}

// closeForm вызывается под stateMu
func (p *Page) closeForm() {
	p.form = nil
	p.formTarget = ""
	p.formMessage = ""
	p.phase = p.formReturn
	if p.loaded {
		p.phase = PhaseReady
	}
}

// mutate применяет изменение под stateMu и оповещает подписчиков
func (p *Page) mutate(change func()) {
	p.stateMu.Lock()
	change()
	state := p.snapshot()
	subs := make([]func(State), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.stateMu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// snapshot вызывается под stateMu
func (p *Page) snapshot() State {
	s := State{
		Phase:   p.phase,
		Events:  slices.Clone(p.events),
		Message: p.message,
	}
	if s.Events == nil {
		s.Events = []model.Event{}
	}
	if p.form != nil {
		s.Form = &FormState{
			TargetID: p.formTarget,
			Values:   p.form.Values(),
			Message:  p.formMessage,
		}
	}
	return s
}
