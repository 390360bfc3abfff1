package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/willcldrr/exoticweeklywebiste/internal/config"
	"github.com/willcldrr/exoticweeklywebiste/internal/models"
	"github.com/willcldrr/exoticweeklywebiste/internal/repository"
	"github.com/willcldrr/exoticweeklywebiste/internal/service"
	"github.com/willcldrr/exoticweeklywebiste/internal/validation"
)

// StoryHandler handles the story write path and admin listing
type StoryHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *StoryHandler {
	return &StoryHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "stories").Logger(),
	}
}

// List handles GET /v1/stories?status=&category=&featured=&limit=
func (h *StoryHandler) List(c *gin.Context) {
	var filter models.ListFilter

	if status := c.Query("status"); status != "" {
		if !validation.ValidStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validation.InvalidStatusMessage()})
			return
		}
		filter.Status = models.Status(status)
	}
	if category := c.Query("category"); category != "" {
		if !validation.ValidCategory(category) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validation.InvalidCategoryMessage()})
			return
		}
		filter.Category = models.Category(category)
	}
	if featured := c.Query("featured"); featured != "" {
		v, err := strconv.ParseBool(featured)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "featured must be true or false"})
			return
		}
		filter.Featured = v
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		filter.Limit = n
	}

	ctx, cancel := contextWithTimeout(c, h.cfg.API.RequestTimeout)
	defer cancel()

	stories, err := h.services.Stories.Query(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list stories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stories": stories, "count": len(stories)})
}

// Get handles GET /v1/stories/:id
func (h *StoryHandler) Get(c *gin.Context) {
	story, ok := h.services.Stories.ByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Story not found"})
		return
	}
	c.JSON(http.StatusOK, story)
}

// Create handles POST /v1/stories from the automation path
func (h *StoryHandler) Create(c *gin.Context) {
	h.create(c, models.OriginIngest)
}

// CreateAdmin handles POST /v1/admin/stories from the admin form
func (h *StoryHandler) CreateAdmin(c *gin.Context) {
	h.create(c, models.OriginAdmin)
}

func (h *StoryHandler) create(c *gin.Context, origin models.Origin) {
	var in models.StoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	validation.Sanitize(&in)
	if errs := validation.ValidateCreate(&in); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs.First(), "details": errs})
		return
	}

	ctx, cancel := contextWithTimeout(c, h.cfg.API.RequestTimeout)
	defer cancel()

	created, err := h.services.Stories.Add(ctx, in.Story(origin, time.Now()))
	if err != nil {
		h.writeError(c, err, "create")
		return
	}

	h.log.Info().
		Str("story_id", created.ID).
		Str("slug", created.Slug).
		Str("origin", string(origin)).
		Msg("Story created")

	c.JSON(http.StatusCreated, gin.H{"success": true, "story": created})
}

// Update handles PATCH /v1/stories/:id
func (h *StoryHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var in models.StoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	validation.Sanitize(&in)
	if errs := validation.ValidatePatch(&in); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs.First(), "details": errs})
		return
	}

	ctx, cancel := contextWithTimeout(c, h.cfg.API.RequestTimeout)
	defer cancel()

	updated, err := h.services.Stories.Update(ctx, id, in.Patch())
	if err != nil {
		h.writeError(c, err, "update")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "story": updated})
}

// Delete handles DELETE /v1/stories/:id
func (h *StoryHandler) Delete(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.API.RequestTimeout)
	defer cancel()

	if err := h.services.Stories.Delete(ctx, c.Param("id")); err != nil {
		h.writeError(c, err, "delete")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Refresh handles POST /v1/stories/refresh
func (h *StoryHandler) Refresh(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.API.RequestTimeout)
	defer cancel()

	if err := h.services.Stories.Refresh(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Refresh served fallback stories")
	}

	c.JSON(http.StatusOK, h.services.Stories.Status())
}

// writeError maps service errors onto HTTP responses
func (h *StoryHandler) writeError(c *gin.Context, err error, op string) {
	var verrs validation.Errors
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Story not found"})
	case errors.Is(err, repository.ErrSlugConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Slug already in use"})
	case errors.Is(err, service.ErrInvalidSlug):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": verrs.First(), "details": verrs})
	default:
		h.log.Error().Err(err).
			Str("op", op).
			Str("request_id", c.GetString("request_id")).
			Msg("Story write failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + op + " story"})
	}
}
