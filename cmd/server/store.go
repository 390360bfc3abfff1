package main

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/willcldrr/exoticweeklywebiste/internal/api"
	"github.com/willcldrr/exoticweeklywebiste/internal/config"
	"github.com/willcldrr/exoticweeklywebiste/internal/database"
	"github.com/willcldrr/exoticweeklywebiste/internal/repository"
	"github.com/willcldrr/exoticweeklywebiste/internal/storage/sqlite"
)

const storeProbeTimeout = 5 * time.Second

// storeSetup is the active story store and the resources behind it
type storeSetup struct {
	store   repository.StoryStore
	remote  bool
	pinger  api.Pinger
	closers []io.Closer
}

// openStore picks the remote store when it is configured, the local slot
// otherwise. An unreachable remote store is not fatal: the adapter is still
// installed and the first load falls back to the bundled stories.
func openStore(cfg *config.Config, log zerolog.Logger) (*storeSetup, error) {
	if !cfg.Store.Configured() {
		slot, err := sqlite.Open(cfg.Local.Path)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.Local.Path).Msg("No remote store configured, using local slot")
		return &storeSetup{
			store:   repository.NewLocalStoryRepo(slot, cfg.Local.Key, log),
			closers: []io.Closer{slot},
		}, nil
	}

	db, err := database.Open(&cfg.Store, log)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeProbeTimeout)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		log.Error().Err(err).Str("host", cfg.Store.Host()).Msg("Story store unreachable, migrations skipped")
	} else if err := db.RunMigrations(cfg.Store.MigrationsPath); err != nil {
		log.Error().Err(err).Msg("Failed to run database migrations")
	}

	return &storeSetup{
		store:   repository.NewStoryRepo(db, log),
		remote:  true,
		pinger:  db,
		closers: []io.Closer{db},
	}, nil
}
