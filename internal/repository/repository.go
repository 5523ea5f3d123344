package repository

import (
	"context"
	"errors"

	"github.com/ecuevas97/PartyPal/internal/model"
)

// ErrNotFound возвращается, когда событие не найдено в хранилище
var ErrNotFound = errors.New("event not found")

// EventRepository интерфейс для работы с событиями в хранилище
type EventRepository interface {
	// Create сохраняет черновик и возвращает событие с назначенным ID
	Create(ctx context.Context, event model.Event) (model.Event, error)

	// GetByID возвращает событие по его ID
	GetByID(ctx context.Context, id string) (model.Event, error)

	// List возвращает все события в порядке создания
	List(ctx context.Context) ([]model.Event, error)

	// Update полностью заменяет существующее событие
	Update(ctx context.Context, event model.Event) (model.Event, error)

	// Delete удаляет событие по ID
	Delete(ctx context.Context, id string) error
}
