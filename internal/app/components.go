package app

import (
	"github.com/devpulse/devpulse-api/internal/cache"
	"github.com/devpulse/devpulse-api/internal/dashboard"
	"github.com/devpulse/devpulse-api/internal/scheduler"
	"github.com/devpulse/devpulse-api/internal/store"
	pkgsync "github.com/devpulse/devpulse-api/internal/sync"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Store persists connections, repositories and activities
	Store store.Store

	// Cache holds dashboard responses until a sync invalidates them
	Cache *cache.Cache

	// SyncEngine runs user syncs and per-user periodic timers
	SyncEngine *pkgsync.Engine

	// Scheduler runs the health check, full sync and cleanup jobs
	Scheduler *scheduler.Scheduler

	// Dashboard serves the cached dashboard reads
	Dashboard dashboard.Service
}
