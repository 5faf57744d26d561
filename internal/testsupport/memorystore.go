package testsupport

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"reelsync/internal/catalog"
)

// MemoryStore is an in-memory catalog.Store for tests. Filter evaluation
// mirrors the store contract: set predicates are conjoined, zero predicates
// are ignored, and archived pages are never returned.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int
	pages   map[string]*catalog.Page
	blocks  map[string][]catalog.Block
	blockID int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pages:  make(map[string]*catalog.Page),
		blocks: make(map[string][]catalog.Block),
	}
}

// Seed inserts a page directly, returning its assigned id.
func (s *MemoryStore) Seed(page catalog.Page) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page.ID == "" {
		s.nextID++
		page.ID = fmt.Sprintf("page-%d", s.nextID)
	}
	copied := page
	s.pages[copied.ID] = &copied
	return copied.ID
}

// Page returns a copy of the page by id.
func (s *MemoryStore) Page(id string) (catalog.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.pages[id]
	if !ok {
		return catalog.Page{}, false
	}
	return *page, true
}

// Pages returns copies of all pages, archived included, ordered by id.
func (s *MemoryStore) Pages() []catalog.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Page, 0, len(s.pages))
	for _, page := range s.pages {
		out = append(out, *page)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Blocks returns the annotation blocks attached to a page.
func (s *MemoryStore) Blocks(pageID string) []catalog.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]catalog.Block(nil), s.blocks[pageID]...)
}

func (s *MemoryStore) QueryPages(_ context.Context, filter catalog.Filter) ([]catalog.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []catalog.Page
	for _, page := range s.pages {
		if page.Archived || !matches(*page, filter) {
			continue
		}
		out = append(out, *page)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func matches(page catalog.Page, filter catalog.Filter) bool {
	if filter.TitleEndsWith != "" && !strings.HasSuffix(strings.TrimSpace(page.Title), filter.TitleEndsWith) {
		return false
	}
	if filter.RefreshEquals != nil && page.Properties.Refresh != *filter.RefreshEquals {
		return false
	}
	if filter.ReleaseDateOnOrAfter != "" {
		if page.Properties.ReleaseDate == "" || page.Properties.ReleaseDate < filter.ReleaseDateOnOrAfter {
			return false
		}
	}
	if len(filter.StatusNotIn) > 0 {
		for _, status := range filter.StatusNotIn {
			if page.Properties.ReleaseStatus == status {
				return false
			}
		}
	}
	if len(filter.TypeIn) > 0 {
		found := false
		for _, t := range filter.TypeIn {
			if page.Properties.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.ShowRelationEquals != "" && page.Properties.ShowPageID != filter.ShowRelationEquals {
		return false
	}
	if filter.SeasonRelationEquals != "" && page.Properties.SeasonPageID != filter.SeasonRelationEquals {
		return false
	}
	if filter.TMDBIDEquals != nil && page.Properties.TMDBID != *filter.TMDBIDEquals {
		return false
	}
	return true
}

func (s *MemoryStore) GetPage(_ context.Context, pageID string) (catalog.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.pages[pageID]
	if !ok {
		return catalog.Page{}, fmt.Errorf("page %s not found", pageID)
	}
	return *page, nil
}

func (s *MemoryStore) CreatePage(_ context.Context, page catalog.Page) (catalog.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	page.ID = fmt.Sprintf("page-%d", s.nextID)
	copied := page
	s.pages[copied.ID] = &copied
	return copied, nil
}

func (s *MemoryStore) UpdatePage(_ context.Context, pageID string, update catalog.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.pages[pageID]
	if !ok {
		return fmt.Errorf("page %s not found", pageID)
	}
	if update.Title != nil {
		page.Title = *update.Title
	}
	if update.Properties != nil {
		page.Properties = *update.Properties
	}
	if update.Archived != nil {
		page.Archived = *update.Archived
	}
	return nil
}

func (s *MemoryStore) ListBlocks(_ context.Context, pageID string) ([]catalog.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]catalog.Block(nil), s.blocks[pageID]...), nil
}

func (s *MemoryStore) AppendCallout(_ context.Context, pageID, text string) error {
	return s.appendBlock(pageID, catalog.Block{Type: catalog.BlockCallout, Text: text})
}

func (s *MemoryStore) AppendLink(_ context.Context, pageID, targetPageID string) error {
	return s.appendBlock(pageID, catalog.Block{Type: catalog.BlockLinkToPage, LinkPageID: targetPageID})
}

func (s *MemoryStore) appendBlock(pageID string, block catalog.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockID++
	block.ID = fmt.Sprintf("block-%d", s.blockID)
	s.blocks[pageID] = append(s.blocks[pageID], block)
	return nil
}

func (s *MemoryStore) DeleteBlock(_ context.Context, blockID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for pageID, blocks := range s.blocks {
		for i, block := range blocks {
			if block.ID == blockID {
				s.blocks[pageID] = append(blocks[:i], blocks[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (s *MemoryStore) ArchivePage(_ context.Context, pageID string) error {
	archived := true
	return s.UpdatePage(context.Background(), pageID, catalog.Update{Archived: &archived})
}
