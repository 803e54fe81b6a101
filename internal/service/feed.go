package service

import (
	"context"
	"strings"
	"sync"

	"github.com/cookbook/backend/internal/live"
	"github.com/cookbook/backend/internal/models"
	"github.com/cookbook/backend/internal/task"
)

// FeedRowSize is the number of recipes per feed row, matching the
// two-column grid the list screens render.
const FeedRowSize = 2

// FeedItem pairs a recipe with the viewer's favourite flag and the
// aggregate like count.
type FeedItem struct {
	Recipe    models.Recipe `json:"recipe"`
	Favourite bool          `json:"favourite"`
	Likes     int64         `json:"likes"`
}

// FeedRow is one rendered row, holding at most FeedRowSize items.
type FeedRow []FeedItem

// FeedService derives the browsing feed from the catalog and the ledger
// and dispatches favourite toggles as fire-and-forget tasks.
type FeedService struct {
	catalog *CatalogService
	ledger  *LedgerService
	runner  *task.Runner
}

func NewFeedService(catalog *CatalogService, ledger *LedgerService, runner *task.Runner) *FeedService {
	return &FeedService{
		catalog: catalog,
		ledger:  ledger,
		runner:  runner,
	}
}

// Feed is a composed, live view of the catalog for one viewer. It
// recomputes whenever the source recipes, the favourite set, or the search
// text change. Close releases the upstream subscriptions; a closed feed
// never emits again.
type Feed struct {
	viewerID int64

	mu      sync.Mutex
	closed  bool
	search  string
	recipes []models.Recipe
	favs    map[int64]bool
	counts  map[int64]int64

	rows *live.Value[[]FeedRow]
	subs []*live.Subscription
}

// ComposeFeed builds the feed a screen renders: the category (or full)
// catalog, minus the viewer's own recipes, filtered by search, paired with
// favourite state and chunked into rows. categoryID nil means no category
// filter.
func (s *FeedService) ComposeFeed(viewerID int64, categoryID *int64, search string) *Feed {
	f := &Feed{
		viewerID: viewerID,
		search:   search,
		favs:     make(map[int64]bool),
		counts:   make(map[int64]int64),
		rows:     live.NewValueOf([]FeedRow{}),
	}

	source := s.catalog.AllRecipes()
	if categoryID != nil {
		source = s.catalog.RecipesByCategory(*categoryID)
	}

	f.subs = append(f.subs,
		source.Subscribe(func(recipes []models.Recipe) {
			f.mu.Lock()
			f.recipes = recipes
			f.mu.Unlock()
			f.recompute()
		}),
		s.ledger.UserFavourites(viewerID).Subscribe(func(favourites []models.Recipe) {
			favs := make(map[int64]bool, len(favourites))
			for _, r := range favourites {
				favs[r.ID] = true
			}
			f.mu.Lock()
			f.favs = favs
			f.mu.Unlock()
			f.recompute()
		}),
		s.ledger.RecipeLikeCounts().Subscribe(func(counts map[int64]int64) {
			f.mu.Lock()
			f.counts = counts
			f.mu.Unlock()
			f.recompute()
		}),
	)
	return f
}

// ToggleFavourite flips the favourite state for the viewer without blocking:
// delete when current is true, add otherwise. done, if non-nil, observes the
// task result; the live favourite flag remains the source of truth for
// whether the toggle took.
func (s *FeedService) ToggleFavourite(recipeID, viewerID int64, current bool, done func(error)) {
	s.runner.Submit(func(ctx context.Context) error {
		if current {
			return s.ledger.DeleteFavourite(ctx, recipeID, viewerID)
		}
		return s.ledger.AddFavourite(ctx, recipeID, viewerID)
	}, done)
}

// Rows is the live sequence of feed rows.
func (f *Feed) Rows() *live.Value[[]FeedRow] {
	return f.rows
}

// SetSearch updates the free-text filter and recomputes. Matching is a
// case-insensitive substring test against the recipe name; empty matches
// everything.
func (f *Feed) SetSearch(search string) {
	f.mu.Lock()
	f.search = search
	f.mu.Unlock()
	f.recompute()
}

// Close detaches the feed from its upstream observables.
func (f *Feed) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()

	for _, sub := range f.subs {
		sub.Cancel()
	}
}

func (f *Feed) recompute() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	recipes := f.recipes
	search := strings.ToLower(f.search)
	favs := f.favs
	counts := f.counts
	viewerID := f.viewerID
	f.mu.Unlock()

	// Source ordering (id descending) is preserved through filtering and
	// chunking.
	items := make([]FeedItem, 0, len(recipes))
	for _, r := range recipes {
		if r.AuthorID == viewerID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.Name), search) {
			continue
		}
		items = append(items, FeedItem{
			Recipe:    r,
			Favourite: favs[r.ID],
			Likes:     counts[r.ID],
		})
	}

	rows := make([]FeedRow, 0, (len(items)+FeedRowSize-1)/FeedRowSize)
	for start := 0; start < len(items); start += FeedRowSize {
		end := start + FeedRowSize
		if end > len(items) {
			end = len(items)
		}
		rows = append(rows, FeedRow(items[start:end]))
	}
	f.rows.Set(rows)
}
