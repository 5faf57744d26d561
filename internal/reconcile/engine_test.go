package reconcile_test

import (
	"context"
	"testing"
	"time"

	"reelsync/internal/catalog"
	"reelsync/internal/metadata"
	"reelsync/internal/reconcile"
	"reelsync/internal/services"
	"reelsync/internal/testsupport"
)

const testArchiveWait = 5 * time.Millisecond

func movieRecord() *metadata.Record {
	return &metadata.Record{
		Type:     metadata.TypeMovie,
		TMDBID:   348,
		Title:    "Alien",
		Status:   "Released",
		Director: "Ridley Scott",
	}
}

func showRecord() *metadata.Record {
	return &metadata.Record{
		Type:   metadata.TypeTelevision,
		TMDBID: 1396,
		Title:  "Breaking Bad",
		Status: "Ended",
		Seasons: []metadata.Record{
			{
				Type: metadata.TypeSeason, TMDBID: 3572, Title: "Season 1", SeasonNumber: 1,
				Episodes: []metadata.Record{
					{Type: metadata.TypeEpisode, TMDBID: 62085, Title: "Pilot", SeasonNumber: 1, EpisodeNumber: 1},
				},
			},
			{
				Type: metadata.TypeSeason, TMDBID: 3573, Title: "Season 2", SeasonNumber: 2,
			},
		},
	}
}

func TestPendingPageEndsSynced(t *testing.T) {
	store := testsupport.NewMemoryStore()
	pageID := store.Seed(catalog.Page{Title: "Alien[type=movie];", Properties: catalog.Properties{Refresh: true}})
	engine := reconcile.New(store, nil, testArchiveWait)

	page, _ := store.Page(pageID)
	state, err := engine.UpdateDatabase(context.Background(), page, movieRecord(), nil)
	if err != nil {
		t.Fatalf("UpdateDatabase failed: %v", err)
	}
	if state != reconcile.StateSynced {
		t.Fatalf("expected synced, got %q", state)
	}

	updated, _ := store.Page(pageID)
	if updated.Title != "Alien" {
		t.Fatalf("delimiter not cleared: %q", updated.Title)
	}
	if updated.Properties.TMDBID != 348 || updated.Properties.Director != "Ridley Scott" {
		t.Fatalf("properties not written: %+v", updated.Properties)
	}
	if updated.Properties.Refresh {
		t.Fatal("refresh flag should be cleared after a sync")
	}
}

func TestErrorResultAnnotatesAndStripsDelimiter(t *testing.T) {
	store := testsupport.NewMemoryStore()
	pageID := store.Seed(catalog.Page{Title: "Nonexistent;"})
	engine := reconcile.New(store, nil, testArchiveWait)

	resolveErr := services.Wrap(services.ErrNotFound, "resolve", "search", "No results found", nil)
	page, _ := store.Page(pageID)
	state, err := engine.UpdateDatabase(context.Background(), page, nil, resolveErr)
	if err != nil {
		t.Fatalf("UpdateDatabase failed: %v", err)
	}
	if state != reconcile.StateError {
		t.Fatalf("expected error state, got %q", state)
	}

	updated, _ := store.Page(pageID)
	if updated.Title != "Nonexistent" {
		t.Fatalf("delimiter not stripped on error: %q", updated.Title)
	}
	blocks := store.Blocks(pageID)
	if len(blocks) != 1 || blocks[0].Type != catalog.BlockCallout || blocks[0].Text != "No results found" {
		t.Fatalf("expected one error callout, got %+v", blocks)
	}
}

func TestAnnotationCleanupIsIdempotent(t *testing.T) {
	store := testsupport.NewMemoryStore()
	pageID := store.Seed(catalog.Page{Title: "Nonexistent;"})
	engine := reconcile.New(store, nil, testArchiveWait)

	resolveErr := services.Wrap(services.ErrNotFound, "resolve", "search", "No results found", nil)
	for i := 0; i < 2; i++ {
		page, _ := store.Page(pageID)
		if _, err := engine.UpdateDatabase(context.Background(), page, nil, resolveErr); err != nil {
			t.Fatalf("pass %d failed: %v", i, err)
		}
	}
	if blocks := store.Blocks(pageID); len(blocks) != 1 {
		t.Fatalf("stale annotations not cleared, got %+v", blocks)
	}
}

func TestDuplicateDetectionArchivesNewcomer(t *testing.T) {
	store := testsupport.NewMemoryStore()
	existingID := store.Seed(catalog.Page{
		Title:      "Alien",
		Properties: catalog.Properties{TMDBID: 348, Type: "Movie"},
	})
	newcomerID := store.Seed(catalog.Page{Title: "Alien (1979);"})
	engine := reconcile.New(store, nil, testArchiveWait)

	page, _ := store.Page(newcomerID)
	state, err := engine.UpdateDatabase(context.Background(), page, movieRecord(), nil)
	if err != nil {
		t.Fatalf("UpdateDatabase failed: %v", err)
	}
	if state != reconcile.StateDuplicate {
		t.Fatalf("expected duplicate state, got %q", state)
	}

	blocks := store.Blocks(newcomerID)
	var haveCallout, haveLink bool
	for _, block := range blocks {
		switch block.Type {
		case catalog.BlockCallout:
			haveCallout = true
		case catalog.BlockLinkToPage:
			haveLink = block.LinkPageID == existingID
		}
	}
	if !haveCallout || !haveLink {
		t.Fatalf("expected duplicate notice and link, got %+v", blocks)
	}

	engine.Wait()
	archived, _ := store.Page(newcomerID)
	if !archived.Archived {
		t.Fatal("newcomer should be archived after the delay")
	}
	survivor, _ := store.Page(existingID)
	if survivor.Archived {
		t.Fatal("surviving page must not be archived")
	}
}

func TestShowChildrenReconciledInPlace(t *testing.T) {
	store := testsupport.NewMemoryStore()
	pageID := store.Seed(catalog.Page{Title: "Breaking Bad[all=yes];"})
	engine := reconcile.New(store, nil, testArchiveWait)

	for i := 0; i < 2; i++ {
		page, _ := store.Page(pageID)
		state, err := engine.UpdateDatabase(context.Background(), page, showRecord(), nil)
		if err != nil {
			t.Fatalf("pass %d failed: %v", i, err)
		}
		if state != reconcile.StateSynced {
			t.Fatalf("pass %d: expected synced, got %q", i, state)
		}
	}

	// Show + 2 seasons + 1 episode; a second identical pass must not add pages.
	pages := store.Pages()
	if len(pages) != 4 {
		t.Fatalf("expected 4 pages after two identical passes, got %d: %+v", len(pages), pages)
	}

	var seasonPageID string
	for _, page := range pages {
		switch page.Properties.Type {
		case string(metadata.TypeSeason):
			if page.Properties.ShowPageID != pageID {
				t.Fatalf("season not related to show: %+v", page)
			}
			if page.Properties.TMDBID == 3572 {
				seasonPageID = page.ID
			}
		}
	}
	for _, page := range pages {
		if page.Properties.Type == string(metadata.TypeEpisode) {
			if page.Properties.ShowPageID != pageID || page.Properties.SeasonPageID != seasonPageID {
				t.Fatalf("episode relations wrong: %+v", page)
			}
		}
	}
}

func TestMiniseriesFlattening(t *testing.T) {
	store := testsupport.NewMemoryStore()
	pageID := store.Seed(catalog.Page{Title: "Chernobyl[all=yes];"})
	engine := reconcile.New(store, nil, testArchiveWait)

	rec := &metadata.Record{
		Type:   metadata.TypeMiniseries,
		TMDBID: 87108,
		Title:  "Chernobyl",
		Seasons: []metadata.Record{
			{
				Type: metadata.TypeSeason, TMDBID: 111, Title: "Season 1", SeasonNumber: 1,
				Episodes: []metadata.Record{
					{Type: metadata.TypeEpisode, TMDBID: 201, Title: "1:23:45", SeasonNumber: 1, EpisodeNumber: 1},
					{Type: metadata.TypeEpisode, TMDBID: 202, Title: "Please Remain Calm", SeasonNumber: 1, EpisodeNumber: 2},
				},
			},
		},
	}

	page, _ := store.Page(pageID)
	if _, err := engine.UpdateDatabase(context.Background(), page, rec, nil); err != nil {
		t.Fatalf("UpdateDatabase failed: %v", err)
	}

	for _, p := range store.Pages() {
		switch p.Properties.Type {
		case string(metadata.TypeSeason):
			t.Fatalf("miniseries must not create a season page: %+v", p)
		case string(metadata.TypeEpisode):
			if p.Properties.ShowPageID != pageID || p.Properties.SeasonPageID != "" {
				t.Fatalf("flattened episode relations wrong: %+v", p)
			}
		}
	}
	if len(store.Pages()) != 3 {
		t.Fatalf("expected show plus two episodes, got %+v", store.Pages())
	}
}
