package unitofwork

import (
	"context"

	"chatbot-be/internal/repository/memory"

	"gorm.io/gorm"
)

type RepositoryFactoryImpl struct {
	db *gorm.DB
}

func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &RepositoryFactoryImpl{
		db: db,
	}
}

// NewUnitOfWork is short lived, one per request.
func (f *RepositoryFactoryImpl) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return NewUnitOfWork(f.db)
}

type StoreRepositoryFactory struct {
	store *memory.Store
}

func NewStoreRepositoryFactory(store *memory.Store) RepositoryFactory {
	return &StoreRepositoryFactory{store: store}
}

func (f *StoreRepositoryFactory) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return NewStoreUnitOfWork(f.store)
}
