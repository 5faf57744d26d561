package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"reelsync/internal/catalog"
	"reelsync/internal/config"
	"reelsync/internal/logging"
	"reelsync/internal/metadata"
	"reelsync/internal/query"
	"reelsync/internal/reconcile"
	"reelsync/internal/resolve"
	"reelsync/internal/services"
)

// Resolver is the resolution surface the manager drives.
type Resolver interface {
	Resolve(ctx context.Context, q query.Query) (*metadata.Record, error)
	FetchMovie(ctx context.Context, movieID int64, language string) (*metadata.Record, error)
	FetchShow(ctx context.Context, req resolve.FetchRequest) (*metadata.Record, error)
}

// Reconciler applies resolution results to the catalog.
type Reconciler interface {
	UpdateDatabase(ctx context.Context, page catalog.Page, rec *metadata.Record, resolveErr error) (reconcile.State, error)
	Wait()
}

// Notifier receives page lifecycle events. Implementations decide which
// events actually go out.
type Notifier interface {
	NotifyPageSynced(ctx context.Context, title string)
	NotifyDuplicate(ctx context.Context, title string)
	NotifySyncError(ctx context.Context, title, message string)
}

type noopNotifier struct{}

func (noopNotifier) NotifyPageSynced(context.Context, string)        {}
func (noopNotifier) NotifyDuplicate(context.Context, string)         {}
func (noopNotifier) NotifySyncError(context.Context, string, string) {}

// Stats is a snapshot of loop activity, served by the daemon status endpoint.
type Stats struct {
	LastCycleID       string        `json:"last_cycle_id"`
	LastCycleAt       time.Time     `json:"last_cycle_at"`
	LastCycleDuration time.Duration `json:"last_cycle_duration"`
	LastCyclePages    int           `json:"last_cycle_pages"`
	TotalSynced       int           `json:"total_synced"`
	TotalErrors       int           `json:"total_errors"`
	TotalDuplicates   int           `json:"total_duplicates"`
	InFlight          int           `json:"in_flight"`
}

// Manager owns the sync loop goroutines: the short-interval poll cycle and
// the scheduled full-catalog refresh. Both share one Guard so a page mid
// cycle under one trigger is skipped by the other.
type Manager struct {
	store    catalog.Store
	resolver Resolver
	engine   Reconciler
	notifier Notifier
	guard    *Guard
	logger   *slog.Logger

	pollInterval    time.Duration
	refreshInterval time.Duration
	retryInterval   time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool

	statsMu sync.Mutex
	stats   Stats
}

// NewManager wires a Manager from its collaborators. A nil notifier is
// replaced with a no-op.
func NewManager(cfg config.Workflow, store catalog.Store, resolver Resolver, engine Reconciler, notifier Notifier, logger *slog.Logger) *Manager {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		store:           store,
		resolver:        resolver,
		engine:          engine,
		notifier:        notifier,
		guard:           NewGuard(),
		logger:          logger.With(logging.String(logging.FieldComponent, "workflow")),
		pollInterval:    time.Duration(cfg.PollInterval) * time.Second,
		refreshInterval: time.Duration(cfg.FullRefreshInterval) * time.Second,
		retryInterval:   time.Duration(cfg.ErrorRetryInterval) * time.Second,
	}
}

// Start launches the poll loop and the full-refresh ticker. It fails when the
// manager is already running.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return services.Wrap(services.ErrValidation, "workflow", "start", "sync loop already running", nil)
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.started = true

	m.wg.Add(2)
	go m.pollLoop(runCtx)
	go m.refreshLoop(runCtx)

	m.logger.Info("sync loop started",
		logging.Duration("poll_interval", m.pollInterval),
		logging.Duration("full_refresh_interval", m.refreshInterval))
	return nil
}

// Stop cancels the loops and waits for in-flight work, including scheduled
// duplicate archives.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.cancel()
	m.started = false
	m.mu.Unlock()

	m.wg.Wait()
	m.engine.Wait()
	m.logger.Info("sync loop stopped")
}

func (m *Manager) pollLoop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		if _, err := m.RunCycle(ctx); err != nil && ctx.Err() == nil {
			m.logger.Error("sync cycle failed", logging.Error(err))
			// Back off before the next attempt so a broken store does not
			// get hammered at the poll interval.
			if m.retryInterval > m.pollInterval {
				select {
				case <-ctx.Done():
					return
				case <-time.After(m.retryInterval - m.pollInterval):
				}
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Manager) refreshLoop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.RunFullRefresh(ctx); err != nil && ctx.Err() == nil {
				m.logger.Error("full catalog refresh failed", logging.Error(err))
			}
		}
	}
}

// Stats returns a snapshot of loop activity.
func (m *Manager) Stats() Stats {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	snapshot := m.stats
	snapshot.InFlight = m.guard.Len()
	return snapshot
}
