package unitofwork

import (
	"context"
	"fmt"

	"chatbot-be/internal/repository/contract"
	"chatbot-be/internal/repository/memory"
)

// StoreUnitOfWork serves the memory and file backends. Every repository call
// is applied immediately, so Begin/Commit/Rollback only track state.
type StoreUnitOfWork struct {
	store  *memory.Store
	active bool
}

func NewStoreUnitOfWork(store *memory.Store) UnitOfWork {
	return &StoreUnitOfWork{store: store}
}

func (u *StoreUnitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return fmt.Errorf("transaction already started")
	}
	u.active = true
	return nil
}

func (u *StoreUnitOfWork) Commit() error {
	if !u.active {
		return fmt.Errorf("no transaction to commit")
	}
	u.active = false
	return nil
}

func (u *StoreUnitOfWork) Rollback() error {
	if !u.active {
		return fmt.Errorf("no transaction to rollback")
	}
	u.active = false
	return nil
}

func (u *StoreUnitOfWork) UserRepository() contract.UserRepository {
	return memory.NewUserRepository(u.store)
}

func (u *StoreUnitOfWork) ChatRepository() contract.ChatRepository {
	return memory.NewChatRepository(u.store)
}
