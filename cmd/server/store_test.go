package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willcldrr/exoticweeklywebiste/internal/config"
	"github.com/willcldrr/exoticweeklywebiste/internal/models"
	"github.com/willcldrr/exoticweeklywebiste/internal/repository"
	"github.com/willcldrr/exoticweeklywebiste/internal/service"
)

func TestOpenStore_UnreachableRemoteServesBundled(t *testing.T) {
	cfg := &config.Config{
		Store: config.StoreConfig{
			// Nothing listens on port 1, so every connect is refused
			URL:            "postgres://exotics@127.0.0.1:1/stories?sslmode=disable&connect_timeout=1",
			Key:            "secret",
			MaxOpenConns:   2,
			MaxIdleConns:   1,
			MaxLifetime:    time.Minute,
			MigrationsPath: "../../migrations",
		},
	}

	setup, err := openStore(cfg, zerolog.Nop())
	require.NoError(t, err, "an unreachable store must not abort startup")
	t.Cleanup(func() { closeAll(setup.closers, zerolog.Nop()) })

	assert.True(t, setup.remote)
	assert.Equal(t, repository.StoreRemote, setup.store.Name())
	require.NotNil(t, setup.pinger)
	assert.Error(t, setup.pinger.HealthCheck(context.Background()))

	services := service.NewServices(setup.store, service.StoryOptions{Remote: setup.remote, Log: zerolog.Nop()})
	err = services.Stories.Refresh(context.Background())
	require.Error(t, err)

	status := services.Stories.Status()
	assert.Equal(t, service.SourceBundled, status.Source)
	assert.NotEmpty(t, status.Error)
	assert.True(t, services.Stories.Remote())
	assert.Len(t, services.Stories.All(), len(models.SampleStories()))
	assert.NotEmpty(t, services.Stories.Featured())
}

func TestOpenStore_LocalSlot(t *testing.T) {
	cfg := &config.Config{
		Local: config.LocalConfig{
			Path: filepath.Join(t.TempDir(), "stories.db"),
			Key:  repository.DefaultSlotKey,
		},
	}

	setup, err := openStore(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { closeAll(setup.closers, zerolog.Nop()) })

	assert.False(t, setup.remote)
	assert.Nil(t, setup.pinger)
	assert.Equal(t, repository.StoreLocal, setup.store.Name())

	stories, err := setup.store.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, stories, len(models.SampleStories()))
}
