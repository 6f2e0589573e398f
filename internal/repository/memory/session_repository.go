package memory

import (
	"time"

	"chatbot-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// AnonymousSession is a conversation held only in memory for callers without an account.
type AnonymousSession struct {
	ID       string
	Messages []entity.Message
}

type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository keeps sessions for ttl after their last write and
// purges expired ones every ttl/6.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := cache.New(ttl, ttl/6)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *AnonymousSession) {
	cp := &AnonymousSession{
		ID:       session.ID,
		Messages: append([]entity.Message(nil), session.Messages...),
	}
	r.cache.Set(session.ID, cp, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*AnonymousSession, bool) {
	if x, found := r.cache.Get(sessionID); found {
		s := x.(*AnonymousSession)
		return &AnonymousSession{
			ID:       s.ID,
			Messages: append([]entity.Message(nil), s.Messages...),
		}, true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
