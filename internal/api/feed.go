package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cookbook/backend/internal/service"
)

type FeedHandler struct {
	feeds *service.FeedService
}

func NewFeedHandler(feeds *service.FeedService) *FeedHandler {
	return &FeedHandler{feeds: feeds}
}

func (h *FeedHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/feed", h.GetFeed)
}

// GetFeed returns a snapshot of the viewer's feed. The feed is composed
// per request and closed once the rows have been read.
func (h *FeedHandler) GetFeed(c *gin.Context) {
	var categoryID *int64
	if category := c.Query("category"); category != "" {
		id, err := strconv.ParseInt(category, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}
		categoryID = &id
	}

	feed := h.feeds.ComposeFeed(c.GetInt64("user_id"), categoryID, c.Query("q"))
	defer feed.Close()

	c.JSON(http.StatusOK, gin.H{"rows": feed.Rows().Get()})
}
