package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cookbook/backend/internal/models"
	"github.com/cookbook/backend/internal/service"
)

type RecipeHandler struct {
	catalog     *service.CatalogService
	ledger      *service.LedgerService
	feeds       *service.FeedService
	rateLimiter gin.HandlerFunc
}

// NewRecipeHandler wires the catalog, ledger and feed services into the
// recipe routes. rateLimiter may be nil when redis is not configured.
func NewRecipeHandler(catalog *service.CatalogService, ledger *service.LedgerService, feeds *service.FeedService, rateLimiter gin.HandlerFunc) *RecipeHandler {
	return &RecipeHandler{
		catalog:     catalog,
		ledger:      ledger,
		feeds:       feeds,
		rateLimiter: rateLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		if h.rateLimiter != nil {
			recipes.POST("", h.rateLimiter, h.CreateRecipe)
		} else {
			recipes.POST("", h.CreateRecipe)
		}
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.POST("/:id/favorite", h.FavouriteRecipe)
		recipes.DELETE("/:id/favorite", h.UnfavouriteRecipe)
		recipes.POST("/:id/favorite/toggle", h.ToggleFavourite)
	}
	router.GET("/favourites", h.ListFavourites)
	router.GET("/likes", h.ListLikeCounts)
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	opts := service.ListOptions{Query: c.Query("q")}

	if category := c.Query("category"); category != "" {
		id, err := strconv.ParseInt(category, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}
		opts.CategoryID = &id
	}
	if author := c.Query("author"); author != "" {
		id, err := strconv.ParseInt(author, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		opts.AuthorID = &id
	}

	recipes, err := h.catalog.ListRecipes(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.catalog.GetRecipe(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe := models.Recipe{
		Name:         req.Name,
		Instructions: req.Instructions,
		Ingredients:  req.Ingredients,
		PrepTime:     req.PrepTime,
		Complexity:   req.Complexity,
		Servings:     req.Servings,
		CategoryID:   req.CategoryID,
		ImageURL:     req.ImageURL,
		AuthorID:     c.GetInt64("user_id"),
	}

	if err := h.catalog.CreateRecipe(c.Request.Context(), &recipe); err != nil {
		if errors.Is(err, service.ErrUnknownCategory) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipe"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	err := h.catalog.DeleteRecipe(c.Request.Context(), id, c.GetInt64("user_id"))
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
	case errors.Is(err, service.ErrNotRecipeAuthor):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recipe"})
	default:
		c.JSON(http.StatusOK, gin.H{
			"message": "Recipe deleted successfully",
			"id":      id,
		})
	}
}

func (h *RecipeHandler) FavouriteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := h.ledger.AddFavourite(c.Request.Context(), id, c.GetInt64("user_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to favourite recipe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Recipe favourited successfully",
		"id":      id,
	})
}

func (h *RecipeHandler) UnfavouriteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := h.ledger.DeleteFavourite(c.Request.Context(), id, c.GetInt64("user_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfavourite recipe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Recipe unfavourited successfully",
		"id":      id,
	})
}

// ToggleFavourite dispatches the flip without waiting for the store; the
// caller observes the result through the favourite flag on its next read.
func (h *RecipeHandler) ToggleFavourite(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	var req ToggleFavouriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.feeds.ToggleFavourite(id, c.GetInt64("user_id"), req.Current, nil)
	c.JSON(http.StatusAccepted, gin.H{"id": id})
}

func (h *RecipeHandler) ListFavourites(c *gin.Context) {
	recipes := h.ledger.UserFavourites(c.GetInt64("user_id")).Get()
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) ListLikeCounts(c *gin.Context) {
	counts := h.ledger.RecipeLikeCounts().Get()

	likes := make([]models.RecipeLikeCount, 0, len(counts))
	for recipeID, count := range counts {
		likes = append(likes, models.RecipeLikeCount{RecipeID: recipeID, Count: count})
	}
	sort.Slice(likes, func(i, j int) bool { return likes[i].RecipeID < likes[j].RecipeID })
	c.JSON(http.StatusOK, gin.H{"likes": likes})
}

func recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return 0, false
	}
	return id, true
}
