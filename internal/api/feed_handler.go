package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/willcldrr/exoticweeklywebiste/internal/models"
	"github.com/willcldrr/exoticweeklywebiste/internal/service"
	"github.com/willcldrr/exoticweeklywebiste/internal/validation"
)

// FeedHandler serves the public read views from the in-memory list
type FeedHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(services *service.Services, log zerolog.Logger) *FeedHandler {
	return &FeedHandler{
		services: services,
		log:      log.With().Str("handler", "feed").Logger(),
	}
}

// Featured handles GET /v1/feed/featured
func (h *FeedHandler) Featured(c *gin.Context) {
	respondStories(c, h.services.Stories.Featured())
}

// Published handles GET /v1/feed/published
func (h *FeedHandler) Published(c *gin.Context) {
	respondStories(c, h.services.Stories.Published())
}

// Latest handles GET /v1/feed/latest?n=
func (h *FeedHandler) Latest(c *gin.Context) {
	n := 0
	if raw := c.Query("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a positive integer"})
			return
		}
		n = v
	}
	respondStories(c, h.services.Stories.Latest(n))
}

// ByCategory handles GET /v1/feed/category/:category
func (h *FeedHandler) ByCategory(c *gin.Context) {
	category := c.Param("category")
	if !validation.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.InvalidCategoryMessage()})
		return
	}
	respondStories(c, h.services.Stories.ByCategory(models.Category(category)))
}

// BySlug handles GET /v1/feed/slug/:slug. Unpublished stories are not
// visible here.
func (h *FeedHandler) BySlug(c *gin.Context) {
	story, ok := h.services.Stories.BySlug(c.Param("slug"))
	if !ok || !story.IsPublished() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Story not found"})
		return
	}
	c.JSON(http.StatusOK, story)
}

// Status handles GET /v1/feed/status
func (h *FeedHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Stories.Status())
}

func respondStories(c *gin.Context, stories []models.Story) {
	c.JSON(http.StatusOK, gin.H{"stories": stories, "count": len(stories)})
}
