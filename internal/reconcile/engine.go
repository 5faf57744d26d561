package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"reelsync/internal/catalog"
	"reelsync/internal/logging"
	"reelsync/internal/metadata"
	"reelsync/internal/query"
	"reelsync/internal/services"
)

// State is the terminal state a page reaches after one reconciliation pass.
type State string

const (
	StateSynced    State = "synced"
	StateError     State = "error"
	StateDuplicate State = "duplicate-archived"
)

// DefaultArchiveWait is the delay before a duplicate page is archived, giving
// the user a moment to see the notice.
const DefaultArchiveWait = 30 * time.Second

// Engine applies resolution results to the catalog.
type Engine struct {
	store       catalog.Store
	logger      *slog.Logger
	archiveWait time.Duration

	wg sync.WaitGroup
}

// New creates an Engine. archiveWait <= 0 selects DefaultArchiveWait.
func New(store catalog.Store, logger *slog.Logger, archiveWait time.Duration) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	if archiveWait <= 0 {
		archiveWait = DefaultArchiveWait
	}
	return &Engine{
		store:       store,
		logger:      logger.With(logging.String(logging.FieldComponent, "reconcile")),
		archiveWait: archiveWait,
	}
}

// Wait blocks until all scheduled duplicate archives have completed. Used on
// shutdown and in tests.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// UpdateDatabase applies one resolution result to a page. Success and error
// results flow through the same path: annotations are cleared first, then the
// result decides the terminal state. Store failures are returned for the
// caller to log; the page is left for a later cycle.
func (e *Engine) UpdateDatabase(ctx context.Context, page catalog.Page, rec *metadata.Record, resolveErr error) (State, error) {
	if err := e.clearAnnotations(ctx, page.ID); err != nil {
		return "", err
	}

	if resolveErr != nil {
		return e.markError(ctx, page, resolveErr)
	}

	duplicate, err := e.findDuplicate(ctx, page, rec)
	if err != nil {
		return "", err
	}
	if duplicate != nil {
		return e.markDuplicate(ctx, page, duplicate)
	}

	if err := e.reconcileChildren(ctx, page.ID, rec); err != nil {
		return "", err
	}

	props := catalog.PropertiesFromRecord(*rec)
	props.ShowPageID = page.Properties.ShowPageID
	props.SeasonPageID = page.Properties.SeasonPageID
	title := rec.Title
	if err := e.store.UpdatePage(ctx, page.ID, catalog.Update{Title: &title, Properties: &props}); err != nil {
		return "", services.Wrap(services.ErrReconciliation, "reconcile", "update_page",
			fmt.Sprintf("write properties for page %s", page.ID), err)
	}
	return StateSynced, nil
}

// clearAnnotations removes previously attached notices. Running it on a page
// without annotations is a no-op, which keeps the whole pass idempotent.
func (e *Engine) clearAnnotations(ctx context.Context, pageID string) error {
	blocks, err := e.store.ListBlocks(ctx, pageID)
	if err != nil {
		return services.Wrap(services.ErrReconciliation, "reconcile", "clear_annotations",
			fmt.Sprintf("list blocks for page %s", pageID), err)
	}
	for _, block := range blocks {
		if block.Type != catalog.BlockCallout && block.Type != catalog.BlockLinkToPage {
			continue
		}
		if err := e.store.DeleteBlock(ctx, block.ID); err != nil {
			return services.Wrap(services.ErrReconciliation, "reconcile", "clear_annotations",
				fmt.Sprintf("delete block %s", block.ID), err)
		}
	}
	return nil
}

// markError strips the pending delimiter and attaches the error notice. The
// page stays untouched until the user re-appends the delimiter.
func (e *Engine) markError(ctx context.Context, page catalog.Page, resolveErr error) (State, error) {
	title := stripDelimiter(page.Title)
	if err := e.store.UpdatePage(ctx, page.ID, catalog.Update{Title: &title}); err != nil {
		return "", services.Wrap(services.ErrReconciliation, "reconcile", "mark_error",
			fmt.Sprintf("rewrite title for page %s", page.ID), err)
	}
	if err := e.store.AppendCallout(ctx, page.ID, services.UserMessage(resolveErr)); err != nil {
		return "", services.Wrap(services.ErrReconciliation, "reconcile", "mark_error",
			fmt.Sprintf("attach error notice to page %s", page.ID), err)
	}
	e.logger.Info("page marked with resolution error",
		logging.String(logging.FieldPageID, page.ID),
		logging.Error(resolveErr))
	return StateError, nil
}

// findDuplicate returns a completed page, other than this one, already
// carrying the record's TMDB id, or nil.
func (e *Engine) findDuplicate(ctx context.Context, page catalog.Page, rec *metadata.Record) (*catalog.Page, error) {
	id := rec.TMDBID
	candidates, err := e.store.QueryPages(ctx, catalog.Filter{
		TMDBIDEquals: &id,
		TypeIn:       []string{string(rec.Type)},
	})
	if err != nil {
		return nil, services.Wrap(services.ErrReconciliation, "reconcile", "find_duplicate",
			fmt.Sprintf("query duplicates for TMDB id %d", id), err)
	}
	for i := range candidates {
		candidate := candidates[i]
		if candidate.ID == page.ID {
			continue
		}
		// Pending pages have not completed; they are not duplicates yet.
		if strings.HasSuffix(strings.TrimSpace(candidate.Title), query.Delimiter) {
			continue
		}
		return &candidate, nil
	}
	return nil, nil
}

// markDuplicate strips the delimiter, attaches the duplicate notice with a
// link to the surviving page, and schedules the archive after the configured
// delay.
func (e *Engine) markDuplicate(ctx context.Context, page catalog.Page, existing *catalog.Page) (State, error) {
	title := stripDelimiter(page.Title)
	if err := e.store.UpdatePage(ctx, page.ID, catalog.Update{Title: &title}); err != nil {
		return "", services.Wrap(services.ErrReconciliation, "reconcile", "mark_duplicate",
			fmt.Sprintf("rewrite title for page %s", page.ID), err)
	}
	notice := fmt.Sprintf("Duplicate entry: %q already exists. This page will be archived.", existing.Title)
	if err := e.store.AppendCallout(ctx, page.ID, notice); err != nil {
		return "", services.Wrap(services.ErrReconciliation, "reconcile", "mark_duplicate",
			fmt.Sprintf("attach duplicate notice to page %s", page.ID), err)
	}
	if err := e.store.AppendLink(ctx, page.ID, existing.ID); err != nil {
		return "", services.Wrap(services.ErrReconciliation, "reconcile", "mark_duplicate",
			fmt.Sprintf("attach duplicate link to page %s", page.ID), err)
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		timer := time.NewTimer(e.archiveWait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if err := e.store.ArchivePage(context.Background(), page.ID); err != nil {
			e.logger.Error("archiving duplicate page failed",
				logging.String(logging.FieldPageID, page.ID),
				logging.Error(err))
		}
	}()

	e.logger.Info("duplicate page scheduled for archive",
		logging.String(logging.FieldPageID, page.ID),
		logging.String("existing_page_id", existing.ID))
	return StateDuplicate, nil
}

// reconcileChildren creates or updates the child hierarchy of a show record.
// A miniseries with a single season is flattened: its episodes hang directly
// off the show with no season layer.
func (e *Engine) reconcileChildren(ctx context.Context, showPageID string, rec *metadata.Record) error {
	if !rec.IsShow() {
		return nil
	}

	if rec.Type == metadata.TypeMiniseries && len(rec.Seasons) == 1 {
		for _, episode := range rec.Seasons[0].Episodes {
			if _, err := e.reconcileChild(ctx, episode, showPageID, ""); err != nil {
				return err
			}
		}
		return nil
	}

	for _, season := range rec.Seasons {
		seasonPageID, err := e.reconcileChild(ctx, season, showPageID, "")
		if err != nil {
			return err
		}
		for _, episode := range season.Episodes {
			if _, err := e.reconcileChild(ctx, episode, showPageID, seasonPageID); err != nil {
				return err
			}
		}
	}
	return nil
}

// reconcileChild looks up an existing child page by TMDB id under the parent
// and updates it in place, creating it when absent. Returns the child page id.
func (e *Engine) reconcileChild(ctx context.Context, rec metadata.Record, showPageID, seasonPageID string) (string, error) {
	id := rec.TMDBID
	filter := catalog.Filter{
		TMDBIDEquals:       &id,
		TypeIn:             []string{string(rec.Type)},
		ShowRelationEquals: showPageID,
	}
	existing, err := e.store.QueryPages(ctx, filter)
	if err != nil {
		return "", services.Wrap(services.ErrReconciliation, "reconcile", "lookup_child",
			fmt.Sprintf("look up %s with TMDB id %d", rec.Type, id), err)
	}

	props := catalog.PropertiesFromRecord(rec)
	props.ShowPageID = showPageID
	props.SeasonPageID = seasonPageID

	if len(existing) > 0 {
		pageID := existing[0].ID
		title := rec.Title
		if err := e.store.UpdatePage(ctx, pageID, catalog.Update{Title: &title, Properties: &props}); err != nil {
			return "", services.Wrap(services.ErrReconciliation, "reconcile", "update_child",
				fmt.Sprintf("update child page %s", pageID), err)
		}
		return pageID, nil
	}

	created, err := e.store.CreatePage(ctx, catalog.Page{Title: rec.Title, Properties: props})
	if err != nil {
		return "", services.Wrap(services.ErrReconciliation, "reconcile", "create_child",
			fmt.Sprintf("create %s page for TMDB id %d", rec.Type, id), err)
	}
	return created.ID, nil
}

func stripDelimiter(title string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(title), query.Delimiter))
}
