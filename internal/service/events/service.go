package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ecuevas97/PartyPal/internal/model"
	"github.com/ecuevas97/PartyPal/internal/repository"
	svc "github.com/ecuevas97/PartyPal/internal/service"
)

var _ svc.EventService = (*service)(nil)

type service struct {
	eventRepository repository.EventRepository
	feed            *ChangeFeed
	now             func() time.Time
}

// NewEventService создает новый экземпляр сервиса для работы с событиями.
// feed может быть nil, тогда изменения никуда не публикуются.
func NewEventService(eventRepository repository.EventRepository, feed *ChangeFeed) svc.EventService {
	return &service{
		eventRepository: eventRepository,
		feed:            feed,
		now:             time.Now,
	}
}

// Create сохраняет новое событие
func (s *service) Create(ctx context.Context, draft model.Event) (model.Event, error) {
	if !draft.IsDraft() {
		return model.Event{}, fmt.Errorf("%w: id must not be set on create", model.ErrValidation)
	}

	event := normalize(draft)
	if err := event.Validate(); err != nil {
		return model.Event{}, err
	}

	// ID будет сгенерирован в репозитории
	created, err := s.eventRepository.Create(ctx, event)
	if err != nil {
		return model.Event{}, err
	}

	s.publish(model.ChangeCreated, created)
	return created, nil
}

// Get возвращает событие по его ID
func (s *service) Get(ctx context.Context, id string) (model.Event, error) {
	if id == "" {
		return model.Event{}, fmt.Errorf("%w: id cannot be empty", model.ErrValidation)
	}

	return s.eventRepository.GetByID(ctx, id)
}

// List возвращает список всех событий
func (s *service) List(ctx context.Context) ([]model.Event, error) {
	events, err := s.eventRepository.List(ctx)
	if err != nil {
		return nil, err
	}

	return events, nil
}

// Update заменяет событие целиком, без слияния со старыми значениями
func (s *service) Update(ctx context.Context, id string, event model.Event) (model.Event, error) {
	if id == "" {
		return model.Event{}, fmt.Errorf("%w: id cannot be empty", model.ErrValidation)
	}

	// ID цели всегда берется из аргумента, а не из тела
	event = normalize(event)
	event.ID = id
	if err := event.Validate(); err != nil {
		return model.Event{}, err
	}

	updated, err := s.eventRepository.Update(ctx, event)
	if err != nil {
		return model.Event{}, err
	}

	s.publish(model.ChangeUpdated, updated)
	return updated, nil
}

// Delete удаляет событие по ID
func (s *service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id cannot be empty", model.ErrValidation)
	}

	if err := s.eventRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("eventRepository.Delete: %w", err)
	}

	s.publish(model.ChangeDeleted, model.Event{ID: id})
	return nil
}

func (s *service) publish(t model.ChangeType, event model.Event) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(model.Change{Type: t, Event: event, At: s.now()})
}

// normalize обрезает пробелы в текстовых полях
func normalize(e model.Event) model.Event {
	e.Title = strings.TrimSpace(e.Title)
	e.Date = strings.TrimSpace(e.Date)
	e.Location = strings.TrimSpace(e.Location)
	e.Description = strings.TrimSpace(e.Description)
	e.Image = strings.TrimSpace(e.Image)
	return e
}
