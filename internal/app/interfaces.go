package app

import (
	"github.com/robfig/cron/v3"

	"github.com/alchepastry/pastryadmin/config"
	"github.com/alchepastry/pastryadmin/internal/catalog"
	"github.com/alchepastry/pastryadmin/internal/dashboard"
	"github.com/alchepastry/pastryadmin/pkg/metrics"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// CatalogProvider provides the shared product catalog
type CatalogProvider interface {
	Catalog() *catalog.Store
}

// SessionProvider provides the per-session dashboard controllers
type SessionProvider interface {
	Sessions() *dashboard.Registry
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// MetricsProvider provides the metrics recorder. It returns nil when metrics
// are disabled.
type MetricsProvider interface {
	Metrics() *metrics.Recorder
}

// AppContext combines all provider interfaces for full application context
// Handlers should depend on specific providers or this combined interface
type AppContext interface {
	ConfigProvider
	CatalogProvider
	SessionProvider
	SchedulerProvider
	MetricsProvider
}
