package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCookieName is used when no cookie name is configured.
const DefaultCookieName = "paperrank_session"

// ErrTooManySessions is returned when the session cap is reached and no
// session can be ended to make room.
var ErrTooManySessions = errors.New("too many active sessions")

type entry struct {
	store    *Store
	lastSeen time.Time
}

// Manager owns every live session. A session ends when its cookie is lost or
// when it has been idle longer than the TTL.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entry

	codec       *TokenCodec
	cookieName  string
	ttl         time.Duration
	maxSessions int
	secure      bool
	now         func() time.Time
}

type ManagerOption func(*Manager)

func WithCookieName(name string) ManagerOption {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

// WithTTL sets the idle lifetime. Zero keeps sessions until the process exits.
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) { m.ttl = ttl }
}

// WithMaxSessions caps the number of live sessions. Zero means no cap.
func WithMaxSessions(n int) ManagerOption {
	return func(m *Manager) { m.maxSessions = n }
}

func WithSecureCookie(secure bool) ManagerOption {
	return func(m *Manager) { m.secure = secure }
}

func withClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

func NewManager(codec *TokenCodec, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions:   make(map[uuid.UUID]*entry),
		codec:      codec,
		cookieName: DefaultCookieName,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lookup returns the live session named by r's cookie without creating one.
func (m *Manager) Lookup(r *http.Request) (uuid.UUID, *Store, bool) {
	c, err := r.Cookie(m.cookieName)
	if err != nil {
		return uuid.Nil, nil, false
	}
	id, err := m.codec.Parse(c.Value)
	if err != nil {
		return uuid.Nil, nil, false
	}

	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return uuid.Nil, nil, false
	}
	if m.expired(e, now) {
		delete(m.sessions, id)
		return uuid.Nil, nil, false
	}
	e.lastSeen = now
	return id, e.store, true
}

// Load returns the session named by r's cookie. When the cookie is missing,
// forged or names an ended session, a fresh session is created and cookie is
// non-nil; the caller must set it on the response.
//
// With a session cap, creating a session past the cap first ends the least
// recently seen idle session. ErrTooManySessions is returned when every
// session has a search running.
func (m *Manager) Load(r *http.Request) (uuid.UUID, *Store, *http.Cookie, error) {
	if id, store, ok := m.Lookup(r); ok {
		return id, store, nil, nil
	}

	now := m.now()
	id := uuid.New()
	value, err := m.codec.Sign(id, now)
	if err != nil {
		return uuid.Nil, nil, nil, err
	}
	store := NewStore()

	m.mu.Lock()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions && !m.evictOldestLocked() {
		m.mu.Unlock()
		return uuid.Nil, nil, nil, ErrTooManySessions
	}
	m.sessions[id] = &entry{store: store, lastSeen: now}
	m.mu.Unlock()

	cookie := &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	return id, store, cookie, nil
}

// evictOldestLocked drops the least recently seen session without a running
// search. m.mu must be held.
func (m *Manager) evictOldestLocked() bool {
	var (
		oldestID uuid.UUID
		oldest   *entry
	)
	for id, e := range m.sessions {
		if e.store.Busy() {
			continue
		}
		if oldest == nil || e.lastSeen.Before(oldest.lastSeen) {
			oldestID, oldest = id, e
		}
	}
	if oldest == nil {
		return false
	}
	delete(m.sessions, oldestID)
	return true
}

func (m *Manager) expired(e *entry, now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.lastSeen) > m.ttl
}

// Sweep ends idle sessions and returns how many were dropped. Sessions with a
// search still running are kept.
func (m *Manager) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for id, e := range m.sessions {
		if m.expired(e, now) && !e.store.Busy() {
			delete(m.sessions, id)
			dropped++
		}
	}
	return dropped
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration, onSweep func(dropped int)) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
