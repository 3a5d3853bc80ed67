package server

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"weather-dashboard/viewmodel"
)

const sessionCookie = "wd_session"

// Sessions view-model на каждую вкладку браузера, по cookie.
// Только память процесса: после перезапуска состояние начинается с Idle.
type Sessions struct {
	mu    sync.Mutex
	items map[string]*session
	ttl   time.Duration
	newVM func() *viewmodel.ViewModel
	now   func() time.Time
}

type session struct {
	vm       *viewmodel.ViewModel
	lastSeen time.Time
}

func NewSessions(ttl time.Duration, newVM func() *viewmodel.ViewModel) *Sessions {
	return &Sessions{
		items: make(map[string]*session),
		ttl:   ttl,
		newVM: newVM,
		now:   time.Now,
	}
}

// Get возвращает view-model сессии, при необходимости создает новую и ставит cookie
func (s *Sessions) Get(w http.ResponseWriter, r *http.Request) *viewmodel.ViewModel {
	id := ""
	if c, err := r.Cookie(sessionCookie); err == nil {
		if parsed, err := uuid.Parse(c.Value); err == nil {
			id = parsed.String()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.items[id]; ok {
		sess.lastSeen = s.now()
		return sess.vm
	}

	if id == "" {
		id = uuid.NewString()
	}
	sess := &session{vm: s.newVM(), lastSeen: s.now()}
	s.items[id] = sess

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess.vm
}

// Prune удаляет сессии без активности дольше ttl
func (s *Sessions) Prune() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, sess := range s.items {
		if sess.lastSeen.Before(cutoff) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

// Len число активных сессий
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Sessions) pruneLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.Prune(); n > 0 {
				log.Printf("sessions pruned=%d active=%d", n, s.Len())
			}
		case <-ctx.Done():
			return
		}
	}
}
