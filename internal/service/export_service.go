package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/willcldrr/exoticweeklywebiste/internal/models"
)

// exportService is the concrete implementation of ExportService
type exportService struct {
	stories StoryService
	log     zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(stories StoryService, log zerolog.Logger) *exportService {
	return &exportService{
		stories: stories,
		log:     log.With().Str("service", "export").Logger(),
	}
}

// Export streams every story in the in-memory list, in any status, and
// returns how many were written
func (s *exportService) Export(ctx context.Context, w io.Writer, format models.ExportFormat) (int, error) {
	s.log.Info().Str("format", string(format)).Msg("Starting stories export")

	stories := s.stories.All()

	var (
		count int
		err   error
	)
	switch format {
	case models.ExportNDJSON, "":
		count, err = s.streamNDJSON(ctx, w, stories)
	case models.ExportJSON:
		count, err = s.streamJSON(ctx, w, stories)
	default:
		return 0, fmt.Errorf("unsupported format: %s", format)
	}

	s.log.Info().Int("count", count).Msg("Stories export completed")
	return count, err
}

func (s *exportService) streamNDJSON(ctx context.Context, w io.Writer, stories []models.Story) (int, error) {
	flusher, _ := w.(http.Flusher)
	count := 0

	for i := range stories {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		data, err := json.Marshal(&stories[i])
		if err != nil {
			return count, err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return count, err
		}
		count++

		// Flush every 100 records for streaming
		if count%100 == 0 && flusher != nil {
			flusher.Flush()
		}
	}
	return count, nil
}

func (s *exportService) streamJSON(ctx context.Context, w io.Writer, stories []models.Story) (int, error) {
	if _, err := w.Write([]byte("[")); err != nil {
		return 0, err
	}

	count := 0
	for i := range stories {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if count > 0 {
			if _, err := w.Write([]byte(",")); err != nil {
				return count, err
			}
		}

		data, err := json.Marshal(&stories[i])
		if err != nil {
			return count, err
		}
		if _, err := w.Write(data); err != nil {
			return count, err
		}
		count++
	}

	_, err := w.Write([]byte("]"))
	return count, err
}
