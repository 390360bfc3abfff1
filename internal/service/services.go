package service

import (
	"context"
	"io"

	"github.com/willcldrr/exoticweeklywebiste/internal/models"
	"github.com/willcldrr/exoticweeklywebiste/internal/repository"
)

// StoryService owns the in-memory story list and keeps it synchronized
// with the active store
type StoryService interface {
	Refresh(ctx context.Context) error
	Add(ctx context.Context, story models.Story) (*models.Story, error)
	Update(ctx context.Context, id string, patch models.StoryPatch) (*models.Story, error)
	Delete(ctx context.Context, id string) error

	ByID(id string) (models.Story, bool)
	BySlug(slug string) (models.Story, bool)
	Featured() []models.Story
	Published() []models.Story
	ByCategory(category models.Category) []models.Story
	Latest(n int) []models.Story
	All() []models.Story

	Query(ctx context.Context, filter models.ListFilter) ([]models.Story, error)

	Status() LoadStatus
	Remote() bool
	Loading() bool
}

// ExportService defines the interface for export operations
type ExportService interface {
	Export(ctx context.Context, w io.Writer, format models.ExportFormat) (int, error)
}

// ImportService defines the interface for import operations
type ImportService interface {
	Import(ctx context.Context, r io.Reader, origin models.Origin) (*models.ImportReport, error)
}

// Services holds all service interfaces
type Services struct {
	Stories StoryService
	Export  ExportService
	Import  ImportService
}

// NewServices creates all services over the active store
func NewServices(store repository.StoryStore, opts StoryOptions) *Services {
	stories := NewStoryService(store, opts)
	return &Services{
		Stories: stories,
		Export:  newExportService(stories, opts.Log),
		Import:  newImportService(stories, opts.Now, opts.Log),
	}
}
