package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/triage-gateway/internal/model"
)

// TerminateFunc observes session termination. Hooks run synchronously;
// they must not call back into the store for the same session.
type TerminateFunc func(sessionID string, reason model.TerminationReason)

// Store holds active clinician sessions keyed by gateway session ID.
// A session owns the upstream bearer credential; terminating it is the
// single point where that credential is cleared.
type Store struct {
	sessions   *cache.Cache
	defaultTTL time.Duration

	mu      sync.Mutex
	reasons map[string]model.TerminationReason
	hooks   []TerminateFunc
}

func NewStore(defaultTTL, cleanupInterval time.Duration) *Store {
	s := &Store{
		sessions:   cache.New(defaultTTL, cleanupInterval),
		defaultTTL: defaultTTL,
		reasons:    make(map[string]model.TerminationReason),
	}
	// Every removal funnels through the eviction callback: explicit
	// terminations record their reason first, TTL evictions default
	// to expired.
	s.sessions.OnEvicted(func(id string, v interface{}) {
		s.mu.Lock()
		reason, ok := s.reasons[id]
		if ok {
			delete(s.reasons, id)
		} else {
			reason = model.TerminationExpired
		}
		hooks := make([]TerminateFunc, len(s.hooks))
		copy(hooks, s.hooks)
		s.mu.Unlock()

		log.Info().Str("session_id", id).Str("reason", string(reason)).Msg("session terminated")
		for _, fn := range hooks {
			fn(id, reason)
		}
	})
	return s
}

// OnTerminate registers a hook invoked whenever a session ends,
// regardless of reason.
func (s *Store) OnTerminate(fn TerminateFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Create stores a new session around an upstream credential. The TTL
// follows the token's exp claim when one can be read, else the
// configured default.
func (s *Store) Create(email, token string) *model.Session {
	now := time.Now()
	expiresAt := now.Add(s.defaultTTL)
	if exp, ok := tokenExpiry(token); ok && exp.After(now) {
		expiresAt = exp
	}

	sess := &model.Session{
		ID:        uuid.New().String(),
		Email:     email,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	s.sessions.Set(sess.ID, sess, time.Until(expiresAt))
	return sess
}

// Get returns the session for an ID, or ErrSessionNotFound.
func (s *Store) Get(id string) (*model.Session, error) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return v.(*model.Session), nil
}

// Terminate removes a session and notifies hooks. Idempotent: a
// second call for the same ID is a no-op.
func (s *Store) Terminate(id string, reason model.TerminationReason) {
	if _, ok := s.sessions.Get(id); !ok {
		return
	}
	s.mu.Lock()
	s.reasons[id] = reason
	s.mu.Unlock()
	s.sessions.Delete(id)
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	return s.sessions.ItemCount()
}

// tokenExpiry reads the exp claim without verifying the signature.
// The gateway never trusts the token's contents for authorization,
// verification belongs to the upstream auth service.
func tokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
