package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/ecuevas97/PartyPal/internal/model"
	"github.com/ecuevas97/PartyPal/internal/repository"

	"github.com/google/uuid"
)

var _ repository.EventRepository = (*Repository)(nil)

// Repository in-memory хранилище событий на основе map.
// Порядок создания хранится отдельно, чтобы List был детерминированным.
type Repository struct {
	mu     sync.RWMutex
	events map[string]model.Event
	order  []string
}

// NewRepository создает новый экземпляр in-memory репозитория
func NewRepository() *Repository {
	return &Repository{
		events: make(map[string]model.Event),
	}
}

// NewRepositoryWith создает репозиторий, заполненный событиями (например, из файла).
// События без ID получают новый UUID.
func NewRepositoryWith(events []model.Event) *Repository {
	r := NewRepository()
	for _, event := range events {
		if event.ID == "" {
			event.ID = uuid.New().String()
		}
		if _, exists := r.events[event.ID]; !exists {
			r.order = append(r.order, event.ID)
		}
		r.events[event.ID] = event
	}
	return r
}

// Create создает новое событие и возвращает его с ID
func (r *Repository) Create(ctx context.Context, event model.Event) (model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// ID всегда назначает хранилище
	event.ID = uuid.New().String()

	r.events[event.ID] = event
	r.order = append(r.order, event.ID)

	return event, nil
}

// GetByID возвращает событие по его ID
func (r *Repository) GetByID(ctx context.Context, id string) (model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, exists := r.events[id]
	if !exists {
		return model.Event{}, repository.ErrNotFound
	}

	return event, nil
}

// List возвращает список всех событий в порядке создания
func (r *Repository) List(ctx context.Context) ([]model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]model.Event, 0, len(r.order))
	for _, id := range r.order {
		events = append(events, r.events[id])
	}

	return events, nil
}

// Update заменяет существующее событие целиком
func (r *Repository) Update(ctx context.Context, event model.Event) (model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[event.ID]; !exists {
		return model.Event{}, repository.ErrNotFound
	}

	r.events[event.ID] = event

	return event, nil
}

// Delete удаляет событие по ID
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[id]; !exists {
		return repository.ErrNotFound
	}

	delete(r.events, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })

	return nil
}

// Position возвращает позицию события в порядке создания, -1 если его нет
func (r *Repository) Position(id string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Index(r.order, id)
}

// Restore возвращает удаленное событие на позицию index.
// Используется для отката, когда удаление не удалось сохранить.
func (r *Repository) Restore(event model.Event, index int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[event.ID]; exists {
		r.events[event.ID] = event
		return
	}

	index = max(0, min(index, len(r.order)))
	r.events[event.ID] = event
	r.order = slices.Insert(r.order, index, event.ID)
}
