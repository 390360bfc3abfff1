package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/willcldrr/exoticweeklywebiste/internal/config"
	"github.com/willcldrr/exoticweeklywebiste/internal/models"
	"github.com/willcldrr/exoticweeklywebiste/internal/service"
)

// ImportHandler handles import endpoints
type ImportHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "import").Logger(),
	}
}

// CreateImport handles POST /v1/imports/stories?origin=ingest|admin
// Accepts a multipart file upload or a raw NDJSON body
func (h *ImportHandler) CreateImport(c *gin.Context) {
	origin := models.Origin(c.DefaultQuery("origin", string(models.OriginIngest)))
	if origin != models.OriginIngest && origin != models.OriginAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin must be one of: ingest, admin"})
		return
	}

	maxSize := h.cfg.API.MaxImportSize
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)

	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file upload is required"})
			return
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".ndjson" && ext != ".jsonl" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stories import requires an NDJSON file"})
			return
		}
		body = file
	}

	report, err := h.services.Import.Import(c.Request.Context(), body, origin)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":  fmt.Sprintf("import too large, max size is %d MB", maxSize/(1024*1024)),
				"report": report,
			})
			return
		}
		h.log.Error().Err(err).Msg("Import aborted")
		c.JSON(http.StatusBadRequest, gin.H{"error": "import aborted: " + err.Error(), "report": report})
		return
	}

	h.log.Info().
		Str("origin", string(origin)).
		Int("total", report.TotalRecords).
		Int("successful", report.SuccessfulCount).
		Int("failed", report.FailedCount).
		Msg("Import finished")

	c.JSON(http.StatusOK, report)
}
