package service

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cookbook/backend/internal/cache"
	"github.com/cookbook/backend/internal/live"
	"github.com/cookbook/backend/internal/models"
)

type favKey struct {
	recipeID, userID int64
}

// LedgerService owns the favourite relationship records. Mutations are
// idempotent; reads are exposed as live values that re-query the store
// whenever the favourite set changes.
//
// Persistence failures on refresh are logged and leave the affected
// observable at its last emitted value. Favourites are non-critical, so a
// stale flag beats a crashed screen.
type LedgerService struct {
	db     *gorm.DB
	likes  *cache.LikeCache
	change *live.Signal

	// Observable caches are append-only for the process lifetime; the set
	// of concurrently viewed recipes is small.
	mu        sync.Mutex
	flagObs   map[favKey]*live.Value[bool]
	userObs   map[int64]*live.Value[[]models.Recipe]
	countsObs *live.Value[map[int64]int64]
}

// NewLedgerService creates a ledger on db. likes may be nil to run without
// the redis count cache.
func NewLedgerService(db *gorm.DB, likes *cache.LikeCache) *LedgerService {
	s := &LedgerService{
		db:      db,
		likes:   likes,
		change:  live.NewSignal(),
		flagObs: make(map[favKey]*live.Value[bool]),
		userObs: make(map[int64]*live.Value[[]models.Recipe]),
	}
	s.change.Subscribe(s.refresh)
	return s
}

// ChangeSignal fires after every committed ledger mutation.
func (s *LedgerService) ChangeSignal() *live.Signal {
	return s.change
}

// AddFavourite records that userID favourited recipeID. Inserting an
// existing pair is a no-op, not an error.
func (s *LedgerService) AddFavourite(ctx context.Context, recipeID, userID int64) error {
	fav := models.Favourite{RecipeID: recipeID, UserID: userID}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&fav).Error; err != nil {
		logrus.Errorf("ledger: add favourite recipe=%d user=%d: %v", recipeID, userID, err)
		return err
	}
	s.afterMutation(ctx)
	return nil
}

// DeleteFavourite removes the pair if present; absent pairs succeed as a
// no-op.
func (s *LedgerService) DeleteFavourite(ctx context.Context, recipeID, userID int64) error {
	err := s.db.WithContext(ctx).
		Where("recipe_id = ? AND user_id = ?", recipeID, userID).
		Delete(&models.Favourite{}).Error
	if err != nil {
		logrus.Errorf("ledger: delete favourite recipe=%d user=%d: %v", recipeID, userID, err)
		return err
	}
	s.afterMutation(ctx)
	return nil
}

// DeleteFavouritesByRecipeID bulk-removes every favourite referencing a
// recipe. Recipe deletion runs the same statement inside its transaction
// via deleteFavouritesByRecipe.
func (s *LedgerService) DeleteFavouritesByRecipeID(ctx context.Context, recipeID int64) error {
	if err := deleteFavouritesByRecipe(s.db.WithContext(ctx), recipeID); err != nil {
		logrus.Errorf("ledger: cascade delete favourites recipe=%d: %v", recipeID, err)
		return err
	}
	s.afterMutation(ctx)
	return nil
}

func deleteFavouritesByRecipe(tx *gorm.DB, recipeID int64) error {
	return tx.Where("recipe_id = ?", recipeID).Delete(&models.Favourite{}).Error
}

// IsFavourite returns the live favourite flag for the pair. The value is
// false until data arrives and tracks the store afterwards. Repeated calls
// for the same pair share one observable.
func (s *LedgerService) IsFavourite(recipeID, userID int64) *live.Value[bool] {
	key := favKey{recipeID, userID}

	s.mu.Lock()
	if v, ok := s.flagObs[key]; ok {
		s.mu.Unlock()
		return v
	}
	v := live.NewValueOf(false)
	s.flagObs[key] = v
	s.mu.Unlock()

	if flag, err := s.queryFlag(context.Background(), key); err == nil {
		v.Set(flag)
	}
	return v
}

// UserFavourites returns the live list of recipes userID has favourited,
// joined against the catalog, most recent recipe first.
func (s *LedgerService) UserFavourites(userID int64) *live.Value[[]models.Recipe] {
	s.mu.Lock()
	if v, ok := s.userObs[userID]; ok {
		s.mu.Unlock()
		return v
	}
	v := live.NewValueOf([]models.Recipe{})
	s.userObs[userID] = v
	s.mu.Unlock()

	if recipes, err := s.queryUserFavourites(context.Background(), userID); err == nil {
		v.Set(recipes)
	}
	return v
}

// RecipeLikeCounts returns the live recipeID -> favourite-count map,
// aggregated over all users. Recipes with no favourites carry no entry.
func (s *LedgerService) RecipeLikeCounts() *live.Value[map[int64]int64] {
	s.mu.Lock()
	if s.countsObs != nil {
		v := s.countsObs
		s.mu.Unlock()
		return v
	}
	v := live.NewValueOf(map[int64]int64{})
	s.countsObs = v
	s.mu.Unlock()

	if counts, err := s.queryCounts(context.Background()); err == nil {
		v.Set(counts)
	}
	return v
}

func (s *LedgerService) afterMutation(ctx context.Context) {
	if s.likes != nil {
		if err := s.likes.Invalidate(ctx); err != nil {
			logrus.Warnf("ledger: invalidate like cache: %v", err)
		}
	}
	s.change.Notify()
}

// refresh re-queries every registered observable after a mutation. Failed
// queries keep the previous emission.
func (s *LedgerService) refresh() {
	ctx := context.Background()

	s.mu.Lock()
	flags := make(map[favKey]*live.Value[bool], len(s.flagObs))
	for k, v := range s.flagObs {
		flags[k] = v
	}
	users := make(map[int64]*live.Value[[]models.Recipe], len(s.userObs))
	for k, v := range s.userObs {
		users[k] = v
	}
	counts := s.countsObs
	s.mu.Unlock()

	for key, v := range flags {
		if flag, err := s.queryFlag(ctx, key); err == nil {
			v.Set(flag)
		}
	}
	for userID, v := range users {
		if recipes, err := s.queryUserFavourites(ctx, userID); err == nil {
			v.Set(recipes)
		}
	}
	if counts != nil {
		if m, err := s.queryCounts(ctx); err == nil {
			counts.Set(m)
		}
	}
}

func (s *LedgerService) queryFlag(ctx context.Context, key favKey) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Favourite{}).
		Where("recipe_id = ? AND user_id = ?", key.recipeID, key.userID).
		Count(&n).Error
	if err != nil {
		logrus.Warnf("ledger: query favourite flag recipe=%d user=%d: %v", key.recipeID, key.userID, err)
		return false, err
	}
	return n > 0, nil
}

func (s *LedgerService) queryUserFavourites(ctx context.Context, userID int64) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Joins("JOIN favourites ON favourites.recipe_id = recipes.id").
		Where("favourites.user_id = ?", userID).
		Order("recipes.id DESC").
		Find(&recipes).Error
	if err != nil {
		logrus.Warnf("ledger: query user favourites user=%d: %v", userID, err)
		return nil, err
	}
	return recipes, nil
}

func (s *LedgerService) queryCounts(ctx context.Context) (map[int64]int64, error) {
	if s.likes != nil {
		counts, ok, err := s.likes.GetCounts(ctx)
		if err != nil {
			logrus.Warnf("ledger: like cache read: %v", err)
		} else if ok {
			return counts, nil
		}
	}

	var rows []models.RecipeLikeCount
	err := s.db.WithContext(ctx).Model(&models.Favourite{}).
		Select("recipe_id, COUNT(*) AS count").
		Group("recipe_id").
		Scan(&rows).Error
	if err != nil {
		logrus.Warnf("ledger: query like counts: %v", err)
		return nil, err
	}

	counts := make(map[int64]int64, len(rows))
	for _, row := range rows {
		counts[row.RecipeID] = row.Count
	}

	if s.likes != nil {
		if err := s.likes.SetCounts(ctx, counts); err != nil {
			logrus.Warnf("ledger: like cache write: %v", err)
		}
	}
	return counts, nil
}
