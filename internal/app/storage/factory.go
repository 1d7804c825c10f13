// Package storage builds the store backend selected by the configuration and
// owns the resources behind it.
package storage

import (
	"context"
	"fmt"

	"github.com/devpulse/devpulse-api/internal/config"
	"github.com/devpulse/devpulse-api/internal/store"
)

//go:generate mockgen -destination=mocks/mock_factory.go -package=mocks -source=factory.go Factory

// Factory creates the store and manages the lifecycle of its resources
type Factory interface {
	// CreateStore returns the store. Repeated calls return stores sharing
	// the same underlying resources.
	CreateStore(ctx context.Context) (store.Store, error)

	// Cleanup releases any resources held by this factory. For the database
	// factory this closes the connection pool.
	Cleanup()
}

// NewStorageFactory creates a storage factory based on the configured storage type
func NewStorageFactory(ctx context.Context, cfg *config.Config, opts ...DatabaseFactoryOption) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.Storage.Type {
	case config.StorageTypePostgres:
		return NewDatabaseFactory(ctx, cfg, opts...)
	case config.StorageTypeMemory, "":
		return NewMemoryFactory(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}
}

// MemoryFactory serves a single in-process store
type MemoryFactory struct {
	store *store.MemoryStore
}

var _ Factory = (*MemoryFactory)(nil)

// NewMemoryFactory creates a factory around a fresh memory store
func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{store: store.NewMemoryStore()}
}

// CreateStore implements Factory
func (m *MemoryFactory) CreateStore(context.Context) (store.Store, error) {
	return m.store, nil
}

// Cleanup implements Factory
func (*MemoryFactory) Cleanup() {}
