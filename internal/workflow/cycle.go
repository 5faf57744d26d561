package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelsync/internal/catalog"
	"reelsync/internal/logging"
	"reelsync/internal/metadata"
	"reelsync/internal/query"
	"reelsync/internal/reconcile"
	"reelsync/internal/resolve"
	"reelsync/internal/services"
)

// Trigger names a reason a page entered a cycle.
type Trigger string

const (
	TriggerPending    Trigger = "pending"
	TriggerUnreleased Trigger = "unreleased"
	TriggerRefresh    Trigger = "refresh"
	TriggerFull       Trigger = "full-refresh"
)

// terminalStatuses are the release states that need no further polling.
var terminalStatuses = []string{"Released", "Ended", "Canceled"}

func isTerminal(status string) bool {
	for _, s := range terminalStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// CycleResult summarizes one cycle.
type CycleResult struct {
	Processed  int
	Synced     int
	Errors     int
	Duplicates int
	Skipped    int
}

// RunCycle runs the three triggers once, sequentially per page. Query
// failures against the store abort the cycle; per-page failures are logged
// and the cycle moves on.
func (m *Manager) RunCycle(ctx context.Context) (CycleResult, error) {
	cycleID := uuid.NewString()
	logger := m.logger.With(logging.String(logging.FieldCycleID, cycleID))
	started := time.Now()
	var result CycleResult

	pending, err := m.store.QueryPages(ctx, catalog.Filter{TitleEndsWith: query.Delimiter})
	if err != nil {
		return result, services.Wrap(services.ErrReconciliation, "workflow", "query_pending",
			"query pending pages", err)
	}
	for _, page := range pending {
		m.processPage(ctx, logger, page, TriggerPending, &result, m.resolvePending)
	}

	stale, err := m.collectStalePages(ctx)
	if err != nil {
		return result, err
	}
	for _, page := range stale {
		m.processPage(ctx, logger, page, TriggerUnreleased, &result, m.refreshIncremental)
	}

	flagged, err := m.collectRefreshFlagged(ctx)
	if err != nil {
		return result, err
	}
	for _, page := range flagged {
		m.processPage(ctx, logger, page, TriggerRefresh, &result, m.refreshFull)
	}

	m.recordCycle(cycleID, started, result)
	if result.Processed > 0 {
		logger.Info("sync cycle finished",
			logging.Int("processed", result.Processed),
			logging.Int("synced", result.Synced),
			logging.Int("errors", result.Errors),
			logging.Int("duplicates", result.Duplicates))
	}
	return result, nil
}

// RunFullRefresh re-resolves every synced top-level page incrementally. It
// shares the guard with RunCycle, so pages mid-cycle are skipped.
func (m *Manager) RunFullRefresh(ctx context.Context) (CycleResult, error) {
	cycleID := uuid.NewString()
	logger := m.logger.With(
		logging.String(logging.FieldCycleID, cycleID),
		logging.String(logging.FieldTrigger, string(TriggerFull)))
	started := time.Now()
	var result CycleResult

	pages, err := m.store.QueryPages(ctx, catalog.Filter{
		TypeIn: []string{
			string(metadata.TypeMovie),
			string(metadata.TypeTelevision),
			string(metadata.TypeMiniseries),
		},
	})
	if err != nil {
		return result, services.Wrap(services.ErrReconciliation, "workflow", "query_catalog",
			"query catalog for full refresh", err)
	}
	for _, page := range pages {
		m.processPage(ctx, logger, page, TriggerFull, &result, m.refreshIncremental)
	}

	m.recordCycle(cycleID, started, result)
	logger.Info("full catalog refresh finished", logging.Int("processed", result.Processed))
	return result, nil
}

type pageHandler func(ctx context.Context, page catalog.Page) (reconcile.State, error)

// processPage guards a single page, runs the handler, updates counters and
// sends notifications. The guard release is deferred so it runs whether the
// handler succeeded or failed.
func (m *Manager) processPage(ctx context.Context, logger *slog.Logger, page catalog.Page, trigger Trigger, result *CycleResult, handle pageHandler) {
	if ctx.Err() != nil {
		return
	}
	if !m.guard.Acquire(page.ID) {
		result.Skipped++
		return
	}
	defer m.guard.Release(page.ID)

	state, err := handle(ctx, page)
	if err != nil {
		result.Errors++
		logger.Error("page processing failed",
			logging.String(logging.FieldPageID, page.ID),
			logging.String(logging.FieldTrigger, string(trigger)),
			logging.Error(err))
		return
	}
	result.Processed++

	switch state {
	case reconcile.StateSynced:
		result.Synced++
		if trigger == TriggerPending {
			m.notifier.NotifyPageSynced(ctx, strings.TrimSuffix(strings.TrimSpace(page.Title), query.Delimiter))
		}
	case reconcile.StateError:
		result.Errors++
		m.notifier.NotifySyncError(ctx, page.Title, "resolution failed")
	case reconcile.StateDuplicate:
		result.Duplicates++
		m.notifier.NotifyDuplicate(ctx, page.Title)
	}

	logger.Info("page processed",
		logging.String(logging.FieldPageID, page.ID),
		logging.String(logging.FieldTrigger, string(trigger)),
		logging.String("state", string(state)))
}

// resolvePending handles a first-time resolution: parse the title query,
// resolve it, and hand the result (or the error) to the engine. Parse and
// resolution errors travel the same path as success records.
func (m *Manager) resolvePending(ctx context.Context, page catalog.Page) (reconcile.State, error) {
	q, err := query.Parse(page.Title)
	if err != nil {
		return m.engine.UpdateDatabase(ctx, page, nil, err)
	}

	if len(q.Dropped) > 0 {
		m.logger.Info("query filters dropped",
			logging.String(logging.FieldPageID, page.ID),
			logging.String(logging.FieldQuery, q.Main),
			logging.Any("dropped", q.Dropped))
	}

	rec, resolveErr := m.resolver.Resolve(ctx, q)
	return m.engine.UpdateDatabase(ctx, page, rec, resolveErr)
}

// refreshIncremental re-resolves a synced page by stored TMDB id, fetching
// only children not already terminal locally.
func (m *Manager) refreshIncremental(ctx context.Context, page catalog.Page) (reconcile.State, error) {
	return m.refresh(ctx, page, false)
}

// refreshFull re-resolves a page with a complete hierarchy re-fetch.
func (m *Manager) refreshFull(ctx context.Context, page catalog.Page) (reconcile.State, error) {
	return m.refresh(ctx, page, true)
}

func (m *Manager) refresh(ctx context.Context, page catalog.Page, full bool) (reconcile.State, error) {
	tmdbID := page.Properties.TMDBID
	if tmdbID == 0 {
		return "", services.Wrap(services.ErrValidation, "workflow", "refresh",
			fmt.Sprintf("page %s has no TMDB id to refresh from", page.ID), nil)
	}

	var (
		rec        *metadata.Record
		resolveErr error
	)
	switch page.Properties.Type {
	case string(metadata.TypeMovie):
		rec, resolveErr = m.resolver.FetchMovie(ctx, tmdbID, "")
	case string(metadata.TypeTelevision), string(metadata.TypeMiniseries):
		req := resolve.FetchRequest{ShowID: tmdbID, AllSeasons: true, AllEpisodes: true}
		if !full {
			known, knownEpisodes, err := m.knownChildren(ctx, page.ID)
			if err != nil {
				return "", err
			}
			req.KnownSeasons = known
			req.KnownEpisodes = knownEpisodes
		}
		rec, resolveErr = m.resolver.FetchShow(ctx, req)
	default:
		return "", services.Wrap(services.ErrValidation, "workflow", "refresh",
			fmt.Sprintf("page %s has unexpected type %q", page.ID, page.Properties.Type), nil)
	}

	return m.engine.UpdateDatabase(ctx, page, rec, resolveErr)
}

// knownChildren collects the season and episode numbers under a show page
// that are already terminal. Non-terminal children stay unknown so the
// incremental fetch picks them up again.
func (m *Manager) knownChildren(ctx context.Context, showPageID string) (map[int]bool, map[int]map[int]bool, error) {
	seasons, err := m.store.QueryPages(ctx, catalog.Filter{
		TypeIn:             []string{string(metadata.TypeSeason)},
		ShowRelationEquals: showPageID,
	})
	if err != nil {
		return nil, nil, services.Wrap(services.ErrReconciliation, "workflow", "known_children",
			fmt.Sprintf("query seasons under page %s", showPageID), err)
	}
	episodes, err := m.store.QueryPages(ctx, catalog.Filter{
		TypeIn:             []string{string(metadata.TypeEpisode)},
		ShowRelationEquals: showPageID,
	})
	if err != nil {
		return nil, nil, services.Wrap(services.ErrReconciliation, "workflow", "known_children",
			fmt.Sprintf("query episodes under page %s", showPageID), err)
	}

	knownSeasons := make(map[int]bool)
	for _, season := range seasons {
		if isTerminal(season.Properties.ReleaseStatus) {
			knownSeasons[season.Properties.SeasonNumber] = true
		}
	}
	knownEpisodes := make(map[int]map[int]bool)
	for _, episode := range episodes {
		if !isTerminal(episode.Properties.ReleaseStatus) {
			continue
		}
		season := episode.Properties.SeasonNumber
		if knownEpisodes[season] == nil {
			knownEpisodes[season] = make(map[int]bool)
		}
		knownEpisodes[season][episode.Properties.EpisodeNumber] = true
	}
	return knownSeasons, knownEpisodes, nil
}

// collectStalePages gathers pages needing a re-poll: release date today or
// later, or a non-terminal status. Child pages redirect to their parent show
// so one fetch covers the whole branch.
func (m *Manager) collectStalePages(ctx context.Context) ([]catalog.Page, error) {
	today := time.Now().UTC().Format("2006-01-02")

	upcoming, err := m.store.QueryPages(ctx, catalog.Filter{ReleaseDateOnOrAfter: today})
	if err != nil {
		return nil, services.Wrap(services.ErrReconciliation, "workflow", "query_unreleased",
			"query unreleased pages", err)
	}
	unsettled, err := m.store.QueryPages(ctx, catalog.Filter{StatusNotIn: terminalStatuses})
	if err != nil {
		return nil, services.Wrap(services.ErrReconciliation, "workflow", "query_unreleased",
			"query non-terminal pages", err)
	}

	return m.redirectToTopLevel(ctx, append(upcoming, unsettled...))
}

// collectRefreshFlagged gathers pages whose refresh checkbox is set.
func (m *Manager) collectRefreshFlagged(ctx context.Context) ([]catalog.Page, error) {
	flagged := true
	pages, err := m.store.QueryPages(ctx, catalog.Filter{RefreshEquals: &flagged})
	if err != nil {
		return nil, services.Wrap(services.ErrReconciliation, "workflow", "query_refresh",
			"query refresh-flagged pages", err)
	}
	return m.redirectToTopLevel(ctx, pages)
}

// redirectToTopLevel maps child season/episode pages to their parent show
// page, drops pending and never-synced pages, and deduplicates.
func (m *Manager) redirectToTopLevel(ctx context.Context, pages []catalog.Page) ([]catalog.Page, error) {
	seen := make(map[string]bool)
	var out []catalog.Page
	for _, page := range pages {
		if strings.HasSuffix(strings.TrimSpace(page.Title), query.Delimiter) {
			continue
		}
		if page.Properties.ShowPageID != "" {
			parent, err := m.store.GetPage(ctx, page.Properties.ShowPageID)
			if err != nil {
				m.logger.Error("parent show page lookup failed",
					logging.String(logging.FieldPageID, page.ID),
					logging.Error(err))
				continue
			}
			page = parent
		}
		if page.Properties.TMDBID == 0 || seen[page.ID] {
			continue
		}
		seen[page.ID] = true
		out = append(out, page)
	}
	return out, nil
}

func (m *Manager) recordCycle(cycleID string, started time.Time, result CycleResult) {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	m.stats.LastCycleID = cycleID
	m.stats.LastCycleAt = started
	m.stats.LastCycleDuration = time.Since(started)
	m.stats.LastCyclePages = result.Processed
	m.stats.TotalSynced += result.Synced
	m.stats.TotalErrors += result.Errors
	m.stats.TotalDuplicates += result.Duplicates
}
