package app

import (
	"github.com/robfig/cron/v3"

	"github.com/talkincode/hexshop/config"
	"github.com/talkincode/hexshop/internal/shopapi"
	"github.com/talkincode/hexshop/internal/storefront"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// ShopProvider provides the remote shop API client
type ShopProvider interface {
	ShopAPI() *shopapi.Client
}

// WorkspaceProvider provides the per-session workspaces
type WorkspaceProvider interface {
	Workspaces() *storefront.Registry
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines all provider interfaces for full application context
// Handlers should depend on specific providers or this combined interface
type AppContext interface {
	ConfigProvider
	ShopProvider
	WorkspaceProvider
	SchedulerProvider

	// SweepWorkspaces drops workspaces idle longer than the session timeout
	SweepWorkspaces() int
}
