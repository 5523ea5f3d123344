package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ecuevas97/PartyPal/internal/model"
	"github.com/ecuevas97/PartyPal/internal/repository"
	"github.com/ecuevas97/PartyPal/internal/repository/memory"

	"gopkg.in/yaml.v3"
)

var _ repository.EventRepository = (*Repository)(nil)

// document формат файла базы событий
type document struct {
	Events []model.Event `yaml:"events"`
}

// Repository хранилище событий в YAML-файле.
// Данные держатся в памяти, файл перезаписывается после каждой успешной мутации.
type Repository struct {
	// mu сериализует мутации вместе с записью файла
	mu   sync.Mutex
	path string
	mem  *memory.Repository
}

// Open загружает события из файла. Отсутствующий файл означает пустую базу.
func Open(path string) (*Repository, error) {
	if path == "" {
		return nil, errors.New("storage path is empty")
	}

	var doc document
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("yaml.Unmarshal %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// первая загрузка, файл будет создан при первой записи
	default:
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}

	return &Repository{
		path: path,
		mem:  memory.NewRepositoryWith(doc.Events),
	}, nil
}

// Create создает событие и сохраняет файл
func (r *Repository) Create(ctx context.Context, event model.Event) (model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created, err := r.mem.Create(ctx, event)
	if err != nil {
		return model.Event{}, err
	}
	if err := r.save(ctx); err != nil {
		// откатываем, чтобы память не расходилась с файлом
		_ = r.mem.Delete(ctx, created.ID)
		return model.Event{}, err
	}

	return created, nil
}

// GetByID возвращает событие по его ID
func (r *Repository) GetByID(ctx context.Context, id string) (model.Event, error) {
	return r.mem.GetByID(ctx, id)
}

// List возвращает все события в порядке файла
func (r *Repository) List(ctx context.Context) ([]model.Event, error) {
	return r.mem.List(ctx)
}

// Update заменяет событие и сохраняет файл
func (r *Repository) Update(ctx context.Context, event model.Event) (model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, err := r.mem.GetByID(ctx, event.ID)
	if err != nil {
		return model.Event{}, err
	}

	updated, err := r.mem.Update(ctx, event)
	if err != nil {
		return model.Event{}, err
	}
	if err := r.save(ctx); err != nil {
		_, _ = r.mem.Update(ctx, previous)
		return model.Event{}, err
	}

	return updated, nil
}

// Delete удаляет событие и сохраняет файл
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, err := r.mem.GetByID(ctx, id)
	if err != nil {
		return err
	}
	position := r.mem.Position(id)

	if err := r.mem.Delete(ctx, id); err != nil {
		return err
	}
	if err := r.save(ctx); err != nil {
		// файл не изменился, событие возвращается на прежнее место
		r.mem.Restore(previous, position)
		return err
	}

	return nil
}

// save атомарно записывает снимок: временный файл в той же директории + rename
func (r *Repository) save(ctx context.Context) error {
	events, err := r.mem.List(ctx)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(document{Events: events})
	if err != nil {
		return fmt.Errorf("yaml.Marshal: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".partypal-events-*.tmp")
	if err != nil {
		return fmt.Errorf("os.CreateTemp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}

	return nil
}
