// Package jobs drives whole-chapter precomputation: a bounded-concurrency
// fan-out of the page pipeline across an explicit page list, with progress
// tracking and debounced cache persistence.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mizutori/pagelens/internal/cache"
	"github.com/mizutori/pagelens/internal/metrics"
	"github.com/mizutori/pagelens/internal/ocr"
)

const (
	// DefaultPageConcurrency bounds how many page pipelines run at once
	// within a chapter job.
	DefaultPageConcurrency = 6

	// DefaultSaveEvery is how many page completions pass between periodic
	// cache save attempts.
	DefaultSaveEvery = 5
)

// ErrAlreadyProcessing is returned when a chapter job for the same base URL
// is already active.
var ErrAlreadyProcessing = errors.New("chapter already processing")

// PageProcessor runs the whole-page pipeline for one URL. Implemented by
// pipeline.Processor.
type PageProcessor interface {
	Process(ctx context.Context, url, user, pass string) ([]ocr.Result, error)
}

// Progress is a chapter job's completion state. Entries exist only while the
// job is active.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// ChapterRequest describes a chapter precompute job.
type ChapterRequest struct {
	BaseURL string
	Pages   []string
	User    string
	Pass    string
	Context string
}

// Status is the answer to a chapter status query.
type Status struct {
	State   string // "processing", "processed", or "idle"
	Current int
	Total   int
}

// Manager owns the active-chapter map and runs chapter jobs.
type Manager struct {
	mu     sync.RWMutex
	active map[string]*Progress // keyed by chapter base URL

	cache       *cache.Store
	processor   PageProcessor
	counters    *metrics.Counters
	logger      *slog.Logger
	concurrency int
	saveEvery   int
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	Cache     *cache.Store
	Processor PageProcessor
	Counters  *metrics.Counters
	Logger    *slog.Logger
	// PageConcurrency bounds concurrent page pipelines per job (default 6).
	PageConcurrency int
	// SaveEvery is the periodic-save interval in completed pages (default 5).
	SaveEvery int
}

// NewManager creates a chapter job manager.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.PageConcurrency <= 0 {
		cfg.PageConcurrency = DefaultPageConcurrency
	}
	if cfg.SaveEvery <= 0 {
		cfg.SaveEvery = DefaultSaveEvery
	}
	return &Manager{
		active:      make(map[string]*Progress),
		cache:       cfg.Cache,
		processor:   cfg.Processor,
		counters:    cfg.Counters,
		logger:      cfg.Logger,
		concurrency: cfg.PageConcurrency,
		saveEvery:   cfg.SaveEvery,
	}
}

// StartChapter registers and launches a chapter job. It returns
// ErrAlreadyProcessing, without starting any work, when a job for the same
// base URL is active. The job runs detached from the caller's request;
// cancelling the request does not cancel the job.
func (m *Manager) StartChapter(ctx context.Context, req ChapterRequest) error {
	m.mu.Lock()
	if _, running := m.active[req.BaseURL]; running {
		m.mu.Unlock()
		return ErrAlreadyProcessing
	}
	m.active[req.BaseURL] = &Progress{Total: len(req.Pages)}
	m.mu.Unlock()

	m.counters.JobStarted()

	go m.runChapter(context.WithoutCancel(ctx), req)
	return nil
}

// runChapter processes the page list with bounded concurrency. Failed pages
// are logged and left uncached; they never fail the job.
func (m *Manager) runChapter(ctx context.Context, req ChapterRequest) {
	logger := m.logger.With("job_id", uuid.NewString(), "chapter", req.BaseURL)
	logger.Info("chapter job started", "context", req.Context, "pages", len(req.Pages))

	defer func() {
		// Always persist, deregister, and decrement, regardless of
		// individual page outcomes.
		if err := m.cache.Save(); err != nil {
			logger.Warn("final cache save failed", "error", err)
		}
		m.counters.JobFinished()

		m.mu.Lock()
		delete(m.active, req.BaseURL)
		m.mu.Unlock()

		logger.Info("chapter job finished", "context", req.Context)
	}()

	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for _, pageURL := range req.Pages {
		g.Go(func() error {
			key := cache.Key(pageURL)
			if m.cache.Has(key) {
				logger.Debug("page skipped, already cached", "url", pageURL)
			} else if results, err := m.processor.Process(gctx, pageURL, req.User, req.Pass); err != nil {
				logger.Warn("page failed", "url", pageURL, "error", err)
			} else {
				m.cache.Insert(key, cache.Entry{Context: req.Context, Data: results})
				logger.Debug("page processed", "url", pageURL, "regions", len(results))
			}

			// Progress counts completions, in completion order.
			current := int(completed.Add(1))
			m.mu.Lock()
			if p, ok := m.active[req.BaseURL]; ok {
				p.Current = current
			}
			m.mu.Unlock()

			if current%m.saveEvery == 0 {
				m.cache.TrySave()
			}
			return nil
		})
	}
	_ = g.Wait()
}

// ChapterStatus reports a chapter's state: processing with live progress
// while a job is active, processed when the chapter's representative first
// page is cached, else idle.
func (m *Manager) ChapterStatus(baseURL string) Status {
	m.mu.RLock()
	p, running := m.active[baseURL]
	var snapshot Progress
	if running {
		snapshot = *p
	}
	m.mu.RUnlock()

	if running {
		return Status{State: "processing", Current: snapshot.Current, Total: snapshot.Total}
	}
	if m.cache.Has(cache.Key(baseURL + "0")) {
		return Status{State: "processed"}
	}
	return Status{State: "idle"}
}

// ActiveChapters returns the number of chapters currently processing.
func (m *Manager) ActiveChapters() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active)
}
