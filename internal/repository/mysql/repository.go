package mysql

import (
	"context"
	"fmt"

	"github.com/ecuevas97/PartyPal/internal/model"
	"github.com/ecuevas97/PartyPal/internal/repository"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var _ repository.EventRepository = (*Repository)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	seq BIGINT PRIMARY KEY AUTO_INCREMENT,
	id VARCHAR(36) NOT NULL UNIQUE,
	title VARCHAR(200) NOT NULL,
	` + "`date`" + ` VARCHAR(10) NOT NULL,
	location VARCHAR(200) NOT NULL DEFAULT '',
	description TEXT NOT NULL,
	image VARCHAR(400) NOT NULL DEFAULT '',
	is_attending TINYINT NOT NULL DEFAULT '0'
)
`

const selectColumns = "SELECT id, title, `date`, location, description, image, is_attending FROM events"

// Repository хранилище событий в MySQL
type Repository struct {
	db *sqlx.DB
}

// Open подключается к MySQL по DSN и создает таблицу, если ее нет
func Open(ctx context.Context, dsn string) (*Repository, error) {
	db, err := sqlx.ConnectContext(ctx, "mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlx.ConnectContext: %w", err)
	}

	repo := New(db)
	if err := repo.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// New оборачивает уже открытое соединение
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// InitSchema создает таблицу events
func (r *Repository) InitSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}
	return nil
}

// Close закрывает соединение с базой
func (r *Repository) Close() error {
	return r.db.Close()
}

// Create вставляет событие с новым UUID
func (r *Repository) Create(ctx context.Context, event model.Event) (model.Event, error) {
	event.ID = uuid.New().String()

	const query = "INSERT INTO events (id, title, `date`, location, description, image, is_attending) " +
		"VALUES (:id, :title, :date, :location, :description, :image, :is_attending)"
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return model.Event{}, fmt.Errorf("failed to insert event: %w", err)
	}

	return event, nil
}

// GetByID возвращает событие по его ID
func (r *Repository) GetByID(ctx context.Context, id string) (model.Event, error) {
	var events []model.Event
	if err := r.db.SelectContext(ctx, &events, selectColumns+" WHERE id = ?", id); err != nil {
		return model.Event{}, fmt.Errorf("failed to select event: %w", err)
	}
	if len(events) == 0 {
		return model.Event{}, repository.ErrNotFound
	}

	return events[0], nil
}

// List возвращает события в порядке вставки
func (r *Repository) List(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := r.db.SelectContext(ctx, &events, selectColumns+" ORDER BY seq ASC"); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	if events == nil {
		events = make([]model.Event, 0)
	}

	return events, nil
}

// Update полностью заменяет событие
func (r *Repository) Update(ctx context.Context, event model.Event) (model.Event, error) {
	// RowsAffected у MySQL равен 0 и для неизмененной строки, поэтому существование проверяем отдельно
	if _, err := r.GetByID(ctx, event.ID); err != nil {
		return model.Event{}, err
	}

	const query = "UPDATE events SET title = :title, `date` = :date, location = :location, " +
		"description = :description, image = :image, is_attending = :is_attending WHERE id = :id"
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return model.Event{}, fmt.Errorf("failed to update event: %w", err)
	}

	return event, nil
}

// Delete удаляет событие по ID
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}
