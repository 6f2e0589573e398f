package memory

import (
	"fmt"
	"sync"

	"chatbot-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// Snapshot is the full content of a Store at one point in time.
type Snapshot struct {
	Users []*entity.User
	Chats []*entity.Chat
}

// PersistFunc receives the state after every mutation. A returned error
// rolls the mutation back.
type PersistFunc func(snapshot *Snapshot) error

// Store keeps users and chats for the lifetime of the process. Repositories
// created from the same Store share its data.
type Store struct {
	mu          sync.RWMutex
	users       *cache.Cache
	chats       *cache.Cache
	emailToUser map[string]string
	persist     PersistFunc
}

func NewStore() *Store {
	return &Store{
		users:       cache.New(cache.NoExpiration, 0),
		chats:       cache.New(cache.NoExpiration, 0),
		emailToUser: make(map[string]string),
	}
}

// NewPersistentStore seeds a Store from snapshot and calls persist after each write.
func NewPersistentStore(snapshot *Snapshot, persist PersistFunc) *Store {
	s := NewStore()
	if snapshot != nil {
		for _, u := range snapshot.Users {
			cp := *u
			s.users.Set(u.Id.String(), &cp, cache.NoExpiration)
			s.emailToUser[u.Email] = u.Id.String()
		}
		for _, c := range snapshot.Chats {
			s.chats.Set(c.Id.String(), c.Clone(), cache.NoExpiration)
		}
	}
	s.persist = persist
	return s
}

// Snapshot copies the current users and chats.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// snapshotLocked must be called with mu held.
func (s *Store) snapshotLocked() *Snapshot {
	snap := &Snapshot{}
	for _, item := range s.users.Items() {
		cp := *item.Object.(*entity.User)
		snap.Users = append(snap.Users, &cp)
	}
	for _, item := range s.chats.Items() {
		snap.Chats = append(snap.Chats, item.Object.(*entity.Chat).Clone())
	}
	return snap
}

// commitLocked persists the current state, running undo when that fails.
func (s *Store) commitLocked(undo func()) error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist(s.snapshotLocked()); err != nil {
		undo()
		return fmt.Errorf("persist store: %w", err)
	}
	return nil
}
