package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/cookbook/backend/internal/live"
	"github.com/cookbook/backend/internal/models"
)

var (
	ErrRecipeNotFound  = errors.New("recipe not found")
	ErrNotRecipeAuthor = errors.New("only the author can delete a recipe")
	ErrUnknownCategory = errors.New("unknown category")
)

// CatalogService stores recipe records and exposes live catalog queries
// ordered most-recent-first (id descending). Deleting a recipe runs the
// favourite cascade through the ledger.
type CatalogService struct {
	db     *gorm.DB
	ledger *LedgerService
	change *live.Signal

	mu      sync.Mutex
	allObs  *live.Value[[]models.Recipe]
	catObs  map[int64]*live.Value[[]models.Recipe]
	userObs map[int64]*live.Value[[]models.Recipe]
}

func NewCatalogService(db *gorm.DB, ledger *LedgerService) *CatalogService {
	s := &CatalogService{
		db:      db,
		ledger:  ledger,
		change:  live.NewSignal(),
		catObs:  make(map[int64]*live.Value[[]models.Recipe]),
		userObs: make(map[int64]*live.Value[[]models.Recipe]),
	}
	s.change.Subscribe(s.refresh)
	return s
}

// ChangeSignal fires after every committed catalog mutation.
func (s *CatalogService) ChangeSignal() *live.Signal {
	return s.change
}

// CreateRecipe persists a new recipe. The id is assigned by the store and
// stable afterwards.
func (s *CatalogService) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	if models.CategoryName(recipe.CategoryID) == "" {
		return ErrUnknownCategory
	}
	if recipe.Complexity == "" {
		recipe.Complexity = models.ComplexityBeginner
	}
	if recipe.Servings <= 0 {
		recipe.Servings = 1
	}
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return err
	}
	s.change.Notify()
	return nil
}

// GetRecipe retrieves a recipe by id.
func (s *CatalogService) GetRecipe(ctx context.Context, id int64) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// DeleteRecipe removes a recipe and cascades away its favourites in one
// transaction, so a failure leaves both tables untouched. Only the recipe's
// author may delete it.
func (s *CatalogService) DeleteRecipe(ctx context.Context, id, authorID int64) error {
	recipe, err := s.GetRecipe(ctx, id)
	if err != nil {
		return err
	}
	if recipe.AuthorID != authorID {
		return ErrNotRecipeAuthor
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Recipe{}, "id = ?", id).Error; err != nil {
			return err
		}
		return deleteFavouritesByRecipe(tx, id)
	})
	if err != nil {
		logrus.Errorf("catalog: delete recipe %d: %v", id, err)
		return err
	}

	s.ledger.afterMutation(ctx)
	s.change.Notify()
	return nil
}

// AllRecipes returns the live list of every recipe, id descending.
func (s *CatalogService) AllRecipes() *live.Value[[]models.Recipe] {
	s.mu.Lock()
	if s.allObs != nil {
		v := s.allObs
		s.mu.Unlock()
		return v
	}
	v := live.NewValueOf([]models.Recipe{})
	s.allObs = v
	s.mu.Unlock()

	s.populate(v, nil)
	return v
}

// RecipesByCategory returns the live list of recipes in a category.
func (s *CatalogService) RecipesByCategory(categoryID int64) *live.Value[[]models.Recipe] {
	s.mu.Lock()
	if v, ok := s.catObs[categoryID]; ok {
		s.mu.Unlock()
		return v
	}
	v := live.NewValueOf([]models.Recipe{})
	s.catObs[categoryID] = v
	s.mu.Unlock()

	s.populate(v, func(q *gorm.DB) *gorm.DB { return q.Where("category_id = ?", categoryID) })
	return v
}

// RecipesByUser returns the live list of recipes a user authored. These are
// the "my recipes" entries excluded from the browsing feed.
func (s *CatalogService) RecipesByUser(userID int64) *live.Value[[]models.Recipe] {
	s.mu.Lock()
	if v, ok := s.userObs[userID]; ok {
		s.mu.Unlock()
		return v
	}
	v := live.NewValueOf([]models.Recipe{})
	s.userObs[userID] = v
	s.mu.Unlock()

	s.populate(v, func(q *gorm.DB) *gorm.DB { return q.Where("author_id = ?", userID) })
	return v
}

// ListOptions narrows a one-shot catalog listing.
type ListOptions struct {
	CategoryID *int64
	AuthorID   *int64
	Query      string
}

// ListRecipes performs a one-shot filtered listing, id descending.
func (s *CatalogService) ListRecipes(ctx context.Context, opts ListOptions) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	q := s.db.WithContext(ctx)
	if opts.CategoryID != nil {
		q = q.Where("category_id = ?", *opts.CategoryID)
	}
	if opts.AuthorID != nil {
		q = q.Where("author_id = ?", *opts.AuthorID)
	}
	if opts.Query != "" {
		like := "%" + strings.ToLower(opts.Query) + "%"
		q = q.Where("LOWER(name) LIKE ?", like)
	}
	if err := q.Order("id DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// SearchRecipes performs a one-shot case-insensitive name search.
func (s *CatalogService) SearchRecipes(ctx context.Context, query string) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	q := s.db.WithContext(ctx)
	if query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q = q.Where("LOWER(name) LIKE ?", like)
	}
	if err := q.Order("id DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

type scopeFn func(*gorm.DB) *gorm.DB

func (s *CatalogService) populate(v *live.Value[[]models.Recipe], scope scopeFn) {
	if recipes, err := s.query(context.Background(), scope); err == nil {
		v.Set(recipes)
	}
}

func (s *CatalogService) query(ctx context.Context, scope scopeFn) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	q := s.db.WithContext(ctx).Model(&models.Recipe{})
	if scope != nil {
		q = scope(q)
	}
	if err := q.Order("id DESC").Find(&recipes).Error; err != nil {
		logrus.Warnf("catalog: query recipes: %v", err)
		return nil, err
	}
	return recipes, nil
}

// refresh re-runs every registered catalog query; failed queries keep the
// previous emission.
func (s *CatalogService) refresh() {
	s.mu.Lock()
	all := s.allObs
	cats := make(map[int64]*live.Value[[]models.Recipe], len(s.catObs))
	for k, v := range s.catObs {
		cats[k] = v
	}
	users := make(map[int64]*live.Value[[]models.Recipe], len(s.userObs))
	for k, v := range s.userObs {
		users[k] = v
	}
	s.mu.Unlock()

	if all != nil {
		s.populate(all, nil)
	}
	for categoryID, v := range cats {
		id := categoryID
		s.populate(v, func(q *gorm.DB) *gorm.DB { return q.Where("category_id = ?", id) })
	}
	for userID, v := range users {
		id := userID
		s.populate(v, func(q *gorm.DB) *gorm.DB { return q.Where("author_id = ?", id) })
	}
}
