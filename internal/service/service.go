package service

import (
	"context"

	"github.com/ecuevas97/PartyPal/internal/model"
)

// EventService интерфейс для бизнес-логики работы с событиями
type EventService interface {
	// Create сохраняет черновик и возвращает событие с ID, назначенным хранилищем
	Create(ctx context.Context, draft model.Event) (model.Event, error)

	// Get возвращает событие по его ID
	Get(ctx context.Context, id string) (model.Event, error)

	// List возвращает список всех событий
	List(ctx context.Context) ([]model.Event, error)

	// Update полностью заменяет событие с указанным ID (ID из тела игнорируется)
	Update(ctx context.Context, id string, event model.Event) (model.Event, error)

	// Delete удаляет событие по ID
	Delete(ctx context.Context, id string) error
}
