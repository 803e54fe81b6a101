package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookbook/backend/internal/models"
)

func TestAddFavouriteIsIdempotent(t *testing.T) {
	db := setupDB(t)
	ledger := NewLedgerService(db, nil)
	ctx := context.Background()

	createUser(t, db, 1, "author@example.com")
	createUser(t, db, 2, "fan@example.com")
	createRecipe(t, db, 10, 1, "Pancakes")

	require.NoError(t, ledger.AddFavourite(ctx, 10, 2))
	require.NoError(t, ledger.AddFavourite(ctx, 10, 2))

	var n int64
	require.NoError(t, db.Model(&models.Favourite{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	assert.True(t, ledger.IsFavourite(10, 2).Get())
}

func TestDeleteFavouriteAbsentIsNoop(t *testing.T) {
	db := setupDB(t)
	ledger := NewLedgerService(db, nil)

	assert.NoError(t, ledger.DeleteFavourite(context.Background(), 99, 42))
}

func TestFavouriteLifecycle(t *testing.T) {
	// User A (id=1) creates recipe 10; user B (id=2) favourites then
	// unfavourites it.
	db := setupDB(t)
	ledger := NewLedgerService(db, nil)
	ctx := context.Background()

	createUser(t, db, 1, "a@example.com")
	createUser(t, db, 2, "b@example.com")
	createRecipe(t, db, 10, 1, "Recipe X")

	flag := ledger.IsFavourite(10, 2)
	counts := ledger.RecipeLikeCounts()
	assert.False(t, flag.Get())

	require.NoError(t, ledger.AddFavourite(ctx, 10, 2))
	assert.True(t, flag.Get())
	assert.Equal(t, map[int64]int64{10: 1}, counts.Get())

	require.NoError(t, ledger.DeleteFavourite(ctx, 10, 2))
	assert.False(t, flag.Get())
	_, present := counts.Get()[10]
	assert.False(t, present)
}

func TestLikeCountsCountDistinctUsers(t *testing.T) {
	db := setupDB(t)
	ledger := NewLedgerService(db, nil)
	ctx := context.Background()

	createUser(t, db, 1, "a@example.com")
	createUser(t, db, 2, "b@example.com")
	createUser(t, db, 3, "c@example.com")
	createRecipe(t, db, 10, 1, "Soup")
	createRecipe(t, db, 11, 1, "Salad")

	require.NoError(t, ledger.AddFavourite(ctx, 10, 2))
	require.NoError(t, ledger.AddFavourite(ctx, 10, 3))
	require.NoError(t, ledger.AddFavourite(ctx, 10, 3)) // duplicate, ignored
	require.NoError(t, ledger.AddFavourite(ctx, 11, 2))

	assert.Equal(t, map[int64]int64{10: 2, 11: 1}, ledger.RecipeLikeCounts().Get())
}

func TestUserFavouritesJoinsCatalog(t *testing.T) {
	db := setupDB(t)
	ledger := NewLedgerService(db, nil)
	ctx := context.Background()

	createUser(t, db, 1, "a@example.com")
	createUser(t, db, 2, "b@example.com")
	createRecipe(t, db, 10, 1, "Older")
	createRecipe(t, db, 11, 1, "Newer")

	favs := ledger.UserFavourites(2)
	assert.Empty(t, favs.Get())

	require.NoError(t, ledger.AddFavourite(ctx, 10, 2))
	require.NoError(t, ledger.AddFavourite(ctx, 11, 2))

	got := favs.Get()
	require.Len(t, got, 2)
	// Most recent recipe first.
	assert.Equal(t, int64(11), got[0].ID)
	assert.Equal(t, int64(10), got[1].ID)
}

func TestDeleteFavouritesByRecipeIDRemovesAllUsers(t *testing.T) {
	db := setupDB(t)
	ledger := NewLedgerService(db, nil)
	ctx := context.Background()

	createUser(t, db, 1, "a@example.com")
	createUser(t, db, 2, "b@example.com")
	createUser(t, db, 3, "c@example.com")
	createRecipe(t, db, 10, 1, "Stew")

	require.NoError(t, ledger.AddFavourite(ctx, 10, 2))
	require.NoError(t, ledger.AddFavourite(ctx, 10, 3))

	require.NoError(t, ledger.DeleteFavouritesByRecipeID(ctx, 10))

	assert.False(t, ledger.IsFavourite(10, 2).Get())
	assert.False(t, ledger.IsFavourite(10, 3).Get())
	_, present := ledger.RecipeLikeCounts().Get()[10]
	assert.False(t, present)
	assert.Empty(t, ledger.UserFavourites(2).Get())
}

func TestIsFavouriteObservableIsShared(t *testing.T) {
	db := setupDB(t)
	ledger := NewLedgerService(db, nil)

	assert.Same(t, ledger.IsFavourite(10, 2), ledger.IsFavourite(10, 2))
}

func TestObservablesEmitOnMutation(t *testing.T) {
	db := setupDB(t)
	ledger := NewLedgerService(db, nil)
	ctx := context.Background()

	createUser(t, db, 1, "a@example.com")
	createUser(t, db, 2, "b@example.com")
	createRecipe(t, db, 10, 1, "Tart")

	var flags []bool
	ledger.IsFavourite(10, 2).Subscribe(func(v bool) { flags = append(flags, v) })

	require.NoError(t, ledger.AddFavourite(ctx, 10, 2))
	require.NoError(t, ledger.DeleteFavourite(ctx, 10, 2))

	assert.Equal(t, false, flags[0])
	assert.Contains(t, flags, true)
	assert.Equal(t, false, flags[len(flags)-1])
}

func TestFavouriteUnknownRecipeIsHarmless(t *testing.T) {
	// A zero or dangling recipe id can be favourited without error; it
	// simply never matches a catalog row.
	db := setupDB(t)
	ledger := NewLedgerService(db, nil)
	ctx := context.Background()

	createUser(t, db, 2, "b@example.com")

	require.NoError(t, ledger.AddFavourite(ctx, 0, 2))
	assert.Empty(t, ledger.UserFavourites(2).Get())
}
