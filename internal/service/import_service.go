package service

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/willcldrr/exoticweeklywebiste/internal/models"
	"github.com/willcldrr/exoticweeklywebiste/internal/repository"
	"github.com/willcldrr/exoticweeklywebiste/internal/validation"
)

// maxReportedErrors bounds the errors kept in one import report.
// Further failures are still counted.
const maxReportedErrors = 1000

// importService is the concrete implementation of ImportService
type importService struct {
	stories StoryService
	now     func() time.Time
	log     zerolog.Logger
}

// newImportService creates a new ImportService
func newImportService(stories StoryService, now func() time.Time, log zerolog.Logger) *importService {
	if now == nil {
		now = time.Now
	}
	return &importService{
		stories: stories,
		now:     now,
		log:     log.With().Str("service", "import").Logger(),
	}
}

// Import reads NDJSON stories and adds each valid one through the same
// sanitize, validate and Add path as a single create. Invalid lines are
// reported and skipped.
func (s *importService) Import(ctx context.Context, r io.Reader, origin models.Origin) (*models.ImportReport, error) {
	if origin == "" {
		origin = models.OriginIngest
	}
	startTime := time.Now()
	report := &models.ImportReport{
		Origin:     origin,
		CreatedIDs: []string{},
	}

	s.log.Info().Str("origin", string(origin)).Msg("Starting stories import")

	scanner := bufio.NewScanner(r)
	// Increase buffer size for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		report.TotalRecords++

		if lineNum%100 == 0 {
			if err := ctx.Err(); err != nil {
				s.finish(report, startTime)
				return report, err
			}
		}

		var in models.StoryInput
		if err := json.Unmarshal([]byte(line), &in); err != nil {
			s.fail(report, models.ImportError{
				Line:    lineNum,
				Field:   "json",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}

		validation.Sanitize(&in)
		if errs := validation.ValidateCreate(&in); len(errs) > 0 {
			for i, e := range errs {
				ie := models.ImportError{Line: lineNum, Field: e.Field, Message: e.Message, Value: e.Value}
				if i == 0 {
					s.fail(report, ie)
				} else {
					s.record(report, ie)
				}
			}
			continue
		}

		created, err := s.stories.Add(ctx, in.Story(origin, s.now()))
		if err != nil {
			field := "store"
			if errors.Is(err, repository.ErrSlugConflict) || errors.Is(err, ErrInvalidSlug) {
				field = "slug"
			}
			s.fail(report, models.ImportError{Line: lineNum, Field: field, Message: err.Error()})
			continue
		}
		report.SuccessfulCount++
		report.CreatedIDs = append(report.CreatedIDs, created.ID)
	}

	s.finish(report, startTime)

	var errorRate float64
	if report.TotalRecords > 0 {
		errorRate = float64(report.FailedCount) / float64(report.TotalRecords) * 100
	}
	s.log.Info().
		Int("total", report.TotalRecords).
		Int("successful", report.SuccessfulCount).
		Int("failed", report.FailedCount).
		Float64("error_rate_pct", errorRate).
		Int64("duration_ms", report.DurationMs).
		Msg("Import completed")

	return report, scanner.Err()
}

// fail counts a rejected record and records its first error
func (s *importService) fail(report *models.ImportReport, e models.ImportError) {
	report.FailedCount++
	s.record(report, e)
}

func (s *importService) record(report *models.ImportReport, e models.ImportError) {
	if len(report.Errors) < maxReportedErrors {
		report.Errors = append(report.Errors, e)
	}
}

func (s *importService) finish(report *models.ImportReport, startTime time.Time) {
	duration := time.Since(startTime)
	report.DurationMs = duration.Milliseconds()
	if report.TotalRecords > 0 && duration.Seconds() > 0 {
		report.RowsPerSec = float64(report.TotalRecords) / duration.Seconds()
	}
}
