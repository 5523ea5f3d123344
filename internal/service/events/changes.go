package events

import (
	"sync"

	"github.com/ecuevas97/PartyPal/internal/model"
)

// ChangeFeed управляет подписчиками на изменения событий
type ChangeFeed struct {
	subscribers map[chan model.Change]bool
	mu          sync.RWMutex
	bufferSize  int
	closed      bool
}

// NewChangeFeed создает новый экземпляр ChangeFeed
func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{
		subscribers: make(map[chan model.Change]bool),
		bufferSize:  10,
	}
}

// Subscribe добавляет нового подписчика и возвращает канал для получения изменений.
// После Close возвращается уже закрытый канал.
func (f *ChangeFeed) Subscribe() chan model.Change {
	ch := make(chan model.Change, f.bufferSize)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(ch)
		return ch
	}
	f.subscribers[ch] = true
	return ch
}

// Unsubscribe удаляет подписчика и закрывает его канал
func (f *ChangeFeed) Unsubscribe(ch chan model.Change) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subscribers[ch]; ok {
		close(ch)
		delete(f.subscribers, ch)
	}
}

// Publish отправляет изменение всем подписчикам.
// Если канал подписчика переполнен, изменение для него пропускается.
func (f *ChangeFeed) Publish(change model.Change) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for ch := range f.subscribers {
		select {
		case ch <- change:
		default:
		}
	}
}

// Subscribers возвращает текущее число подписчиков
func (f *ChangeFeed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

// Close закрывает каналы всех подписчиков, чтобы потоковые обработчики завершились
// до остановки HTTP сервера
func (f *ChangeFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for ch := range f.subscribers {
		close(ch)
		delete(f.subscribers, ch)
	}
}
