package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/willcldrr/exoticweeklywebiste/internal/events"
	"github.com/willcldrr/exoticweeklywebiste/internal/models"
)

// Publisher announces story changes after they are persisted
type Publisher interface {
	PublishStory(ctx context.Context, action events.Action, story *models.Story) error
	PublishDeleted(ctx context.Context, id string) error
}
