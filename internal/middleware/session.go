package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/paperrank/app/internal/session"
)

type contextKey string

const (
	SessionIDKey    contextKey = "sessionID"
	SessionStoreKey contextKey = "sessionStore"
)

type SessionMiddleware struct {
	manager *session.Manager
	log     logrus.FieldLogger
}

func NewSessionMiddleware(manager *session.Manager, log logrus.FieldLogger) *SessionMiddleware {
	return &SessionMiddleware{manager: manager, log: log}
}

// Attach puts the visitor's existing session into the request context.
// Visitors without one get an empty store that is not kept, so read-only
// requests never allocate a session.
func (m *SessionMiddleware) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, store, ok := m.manager.Lookup(r)
		if !ok {
			id, store = uuid.Nil, session.NewStore()
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), id, store)))
	})
}

// Require resolves the visitor's session, starting one and issuing its cookie
// for new visitors.
func (m *SessionMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, store, cookie, err := m.manager.Load(r)
		if errors.Is(err, session.ErrTooManySessions) {
			m.log.Warn("session cap reached")
			http.Error(w, "Server busy, please try again later", http.StatusServiceUnavailable)
			return
		}
		if err != nil {
			m.log.WithError(err).Error("failed to start session")
			http.Error(w, "Failed to start session", http.StatusInternalServerError)
			return
		}
		if cookie != nil {
			http.SetCookie(w, cookie)
			m.log.WithField("session", id).Debug("session started")
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), id, store)))
	})
}

func withSession(ctx context.Context, id uuid.UUID, store *session.Store) context.Context {
	ctx = context.WithValue(ctx, SessionIDKey, id)
	return context.WithValue(ctx, SessionStoreKey, store)
}

func GetSessionID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(SessionIDKey).(uuid.UUID)
	return id, ok
}

func GetSession(ctx context.Context) (*session.Store, bool) {
	store, ok := ctx.Value(SessionStoreKey).(*session.Store)
	return store, ok
}
