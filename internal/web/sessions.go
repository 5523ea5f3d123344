package web

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ecuevas97/PartyPal/internal/ui"

	"github.com/google/uuid"
)

// session одно открытое представление браузера
type session struct {
	page     *ui.Page
	lastSeen time.Time
	// skipLoad следующий GET / рисует текущее состояние без повторной загрузки
	skipLoad atomic.Bool
}

// Sessions хранит страницы по идентификатору сессии с TTL простоя
type Sessions struct {
	mu      sync.Mutex
	items   map[string]*session
	ttl     time.Duration
	newPage func() *ui.Page
	now     func() time.Time
}

// NewSessions создает хранилище сессий. newPage вызывается для каждой новой сессии.
func NewSessions(ttl time.Duration, newPage func() *ui.Page) *Sessions {
	return &Sessions{
		items:   make(map[string]*session),
		ttl:     ttl,
		newPage: newPage,
		now:     time.Now,
	}
}

// get возвращает сессию id или создает новую, если id неизвестен или истек
func (s *Sessions) get(id string) (sess *session, sessionID string, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sess, ok := s.items[id]; ok && !s.expired(sess, now) {
		sess.lastSeen = now
		return sess, id, false
	}
	delete(s.items, id)

	sessionID = uuid.NewString()
	sess = &session{page: s.newPage(), lastSeen: now}
	s.items[sessionID] = sess
	return sess, sessionID, true
}

func (s *Sessions) expired(sess *session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastSeen) > s.ttl
}

// Sweep удаляет истекшие сессии и возвращает их количество
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.items {
		if s.expired(sess, now) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

// Len количество живых сессий
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Run периодически чистит истекшие сессии до отмены ctx
func (s *Sessions) Run(ctx context.Context, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Debug("expired sessions removed", "count", n)
			}
		}
	}
}
