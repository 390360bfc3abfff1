package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/willcldrr/exoticweeklywebiste/internal/models"
	"github.com/willcldrr/exoticweeklywebiste/internal/service"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /v1/exports/stories?format=...
// Streams the export directly to the response
func (h *ExportHandler) StreamExport(c *gin.Context) {
	format := models.ExportFormat(c.Query("format"))
	if format == "" {
		format = models.ExportNDJSON // Default to NDJSON for streaming
	}

	switch format {
	case models.ExportNDJSON:
		c.Header("Content-Type", "application/x-ndjson")
		c.Header("Content-Disposition", "attachment; filename=stories.ndjson")
	case models.ExportJSON:
		c.Header("Content-Type", "application/json")
		c.Header("Content-Disposition", "attachment; filename=stories.json")
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of: ndjson, json"})
		return
	}

	h.log.Info().Str("format", string(format)).Msg("Starting streaming export")

	c.Status(http.StatusOK)
	count, err := h.services.Export.Export(c.Request.Context(), c.Writer, format)
	if err != nil {
		h.log.Error().Err(err).Int("written", count).Msg("Export failed")
		// Can't return error JSON after streaming has started
		return
	}
}
