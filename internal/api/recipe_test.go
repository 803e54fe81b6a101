package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookbook/backend/internal/models"
)

func TestCreateRecipe(t *testing.T) {
	router, env := SetupTestRouter(t)
	userID, token := CreateTestUserAndToken(t, env, "cook@example.com")

	w := PerformRequest(router, "POST", "/api/v1/recipes", token, map[string]interface{}{
		"name":         "Shakshuka",
		"instructions": "Simmer tomatoes, crack eggs on top.",
		"ingredients":  "tomatoes, eggs, paprika",
		"prep_time":    "25 min",
		"category_id":  models.CategoryBreakfast,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Recipe models.Recipe `json:"recipe"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotZero(t, resp.Recipe.ID)
	assert.Equal(t, userID, resp.Recipe.AuthorID)
	assert.Equal(t, models.ComplexityBeginner, resp.Recipe.Complexity)
}

func TestCreateRecipeUnknownCategory(t *testing.T) {
	router, env := SetupTestRouter(t)
	_, token := CreateTestUserAndToken(t, env, "cook@example.com")

	w := PerformRequest(router, "POST", "/api/v1/recipes", token, map[string]interface{}{
		"name":         "Mystery Dish",
		"instructions": "???",
		"ingredients":  "???",
		"category_id":  99,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRecipe(t *testing.T) {
	router, env := SetupTestRouter(t)
	userID, token := CreateTestUserAndToken(t, env, "cook@example.com")
	recipe := CreateTestRecipe(t, env, userID, "Beef Stew")

	w := PerformRequest(router, "GET", fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, recipe.ID, got.ID)
	assert.Equal(t, "Beef Stew", got.Name)

	w = PerformRequest(router, "GET", "/api/v1/recipes/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = PerformRequest(router, "GET", "/api/v1/recipes/not-a-number", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListRecipesFilters(t *testing.T) {
	router, env := SetupTestRouter(t)
	userID, token := CreateTestUserAndToken(t, env, "cook@example.com")
	otherID, _ := CreateTestUserAndToken(t, env, "other@example.com")

	CreateTestRecipe(t, env, userID, "Chocolate Cake")
	CreateTestRecipe(t, env, otherID, "Pancakes")

	type listResponse struct {
		Recipes []models.Recipe `json:"recipes"`
	}

	w := PerformRequest(router, "GET", "/api/v1/recipes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Recipes, 2)

	w = PerformRequest(router, "GET", fmt.Sprintf("/api/v1/recipes?author=%d", otherID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Recipes, 1)
	assert.Equal(t, "Pancakes", resp.Recipes[0].Name)

	w = PerformRequest(router, "GET", "/api/v1/recipes?q=CAKE", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Recipes, 2)

	w = PerformRequest(router, "GET", "/api/v1/recipes?category=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteRecipeAuthorOnly(t *testing.T) {
	router, env := SetupTestRouter(t)
	authorID, authorToken := CreateTestUserAndToken(t, env, "author@example.com")
	_, otherToken := CreateTestUserAndToken(t, env, "other@example.com")
	recipe := CreateTestRecipe(t, env, authorID, "Beef Stew")

	w := PerformRequest(router, "DELETE", fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = PerformRequest(router, "DELETE", fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), authorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = PerformRequest(router, "DELETE", fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), authorToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFavouriteEndpoints(t *testing.T) {
	router, env := SetupTestRouter(t)
	authorID, _ := CreateTestUserAndToken(t, env, "author@example.com")
	_, token := CreateTestUserAndToken(t, env, "viewer@example.com")
	recipe := CreateTestRecipe(t, env, authorID, "Beef Stew")

	path := fmt.Sprintf("/api/v1/recipes/%d/favorite", recipe.ID)

	w := PerformRequest(router, "POST", path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Favouriting twice stays a single row.
	w = PerformRequest(router, "POST", path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.Favourite{}).Where("recipe_id = ?", recipe.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	type likesResponse struct {
		Likes []models.RecipeLikeCount `json:"likes"`
	}
	w = PerformRequest(router, "GET", "/api/v1/likes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var likes likesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &likes))
	require.Len(t, likes.Likes, 1)
	assert.Equal(t, recipe.ID, likes.Likes[0].RecipeID)
	assert.Equal(t, int64(1), likes.Likes[0].Count)

	type favouritesResponse struct {
		Recipes []models.Recipe `json:"recipes"`
	}
	w = PerformRequest(router, "GET", "/api/v1/favourites", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var favs favouritesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &favs))
	require.Len(t, favs.Recipes, 1)
	assert.Equal(t, recipe.ID, favs.Recipes[0].ID)

	w = PerformRequest(router, "DELETE", path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, env.DB.Model(&models.Favourite{}).Where("recipe_id = ?", recipe.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestListLikeCountsOrderedByRecipeID(t *testing.T) {
	router, env := SetupTestRouter(t)
	authorID, _ := CreateTestUserAndToken(t, env, "author@example.com")
	_, token := CreateTestUserAndToken(t, env, "viewer@example.com")

	var recipes []models.Recipe
	for _, name := range []string{"First", "Second", "Third"} {
		recipes = append(recipes, CreateTestRecipe(t, env, authorID, name))
	}
	// Favourite in reverse so map iteration cannot accidentally look sorted.
	for i := len(recipes) - 1; i >= 0; i-- {
		w := PerformRequest(router, "POST", fmt.Sprintf("/api/v1/recipes/%d/favorite", recipes[i].ID), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	type likesResponse struct {
		Likes []models.RecipeLikeCount `json:"likes"`
	}
	w := PerformRequest(router, "GET", "/api/v1/likes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp likesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Likes, 3)
	for i := 1; i < len(resp.Likes); i++ {
		assert.Less(t, resp.Likes[i-1].RecipeID, resp.Likes[i].RecipeID)
	}
}

func TestToggleFavouriteAsync(t *testing.T) {
	router, env := SetupTestRouter(t)
	authorID, _ := CreateTestUserAndToken(t, env, "author@example.com")
	viewerID, token := CreateTestUserAndToken(t, env, "viewer@example.com")
	recipe := CreateTestRecipe(t, env, authorID, "Beef Stew")

	path := fmt.Sprintf("/api/v1/recipes/%d/favorite/toggle", recipe.ID)

	w := PerformRequest(router, "POST", path, token, map[string]interface{}{"current": false})
	require.Equal(t, http.StatusAccepted, w.Code)

	hasFavourite := func() bool {
		var count int64
		err := env.DB.Model(&models.Favourite{}).
			Where("recipe_id = ? AND user_id = ?", recipe.ID, viewerID).
			Count(&count).Error
		return err == nil && count == 1
	}
	assert.Eventually(t, hasFavourite, time.Second, 10*time.Millisecond)

	w = PerformRequest(router, "POST", path, token, map[string]interface{}{"current": true})
	require.Equal(t, http.StatusAccepted, w.Code)

	assert.Eventually(t, func() bool { return !hasFavourite() }, time.Second, 10*time.Millisecond)
}
