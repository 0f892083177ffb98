// Package svcctx provides service context for dependency injection via
// context. This package is separate from server to avoid import cycles with
// endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/mizutori/pagelens/internal/cache"
	"github.com/mizutori/pagelens/internal/config"
	"github.com/mizutori/pagelens/internal/jobs"
	"github.com/mizutori/pagelens/internal/metrics"
	"github.com/mizutori/pagelens/internal/pipeline"
)

// Services holds all core services that flow through context. Handlers
// extract what they need via the individual extractors.
type Services struct {
	Cache     *cache.Store
	Jobs      *jobs.Manager
	Pipeline  *pipeline.Processor
	Counters  *metrics.Counters
	ConfigMgr *config.Manager
	Logger    *slog.Logger
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// CacheFrom extracts the cache store from context.
func CacheFrom(ctx context.Context) *cache.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Cache
	}
	return nil
}

// JobsFrom extracts the chapter job manager from context.
func JobsFrom(ctx context.Context) *jobs.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.Jobs
	}
	return nil
}

// PipelineFrom extracts the page pipeline processor from context.
func PipelineFrom(ctx context.Context) *pipeline.Processor {
	if s := ServicesFrom(ctx); s != nil {
		return s.Pipeline
	}
	return nil
}

// CountersFrom extracts the process counters from context.
func CountersFrom(ctx context.Context) *metrics.Counters {
	if s := ServicesFrom(ctx); s != nil {
		return s.Counters
	}
	return nil
}

// ConfigManagerFrom extracts the config manager from context.
func ConfigManagerFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.ConfigMgr
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}
