package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ecuevas97/PartyPal/internal/config"
	"github.com/ecuevas97/PartyPal/internal/logger"
	"github.com/ecuevas97/PartyPal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRepository(t *testing.T) {
	ctx := context.Background()

	repo, closeRepo, err := OpenRepository(ctx, &config.ConfigStorage{Driver: "memory"})
	require.NoError(t, err)
	assert.NotNil(t, repo)
	assert.NoError(t, closeRepo())

	path := filepath.Join(t.TempDir(), "db.yaml")
	repo, _, err = OpenRepository(ctx, &config.ConfigStorage{Driver: "file", Path: path})
	require.NoError(t, err)
	created, err := repo.Create(ctx, model.Event{Title: "Launch", Date: "2025-01-01"})
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.NotEmpty(t, created.ID)

	_, _, err = OpenRepository(ctx, &config.ConfigStorage{Driver: "file"})
	assert.Error(t, err)

	_, _, err = OpenRepository(ctx, &config.ConfigStorage{Driver: "mysql"})
	assert.Error(t, err)

	_, _, err = OpenRepository(ctx, &config.ConfigStorage{Driver: "postgres"})
	assert.Error(t, err)
}

func TestServer_InitializeAndStop(t *testing.T) {
	cfg := &config.Config{}
	cfg.Normalize()
	cfg.Server.Port = 0
	cfg.Swagger.Enabled = true

	srv := NewServer(cfg, logger.Discard())
	require.NoError(t, srv.Initialize(context.Background()))
	require.NotNil(t, srv.HTTP)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Отмененный контекст: сервер сразу выполняет graceful shutdown
	assert.NoError(t, srv.Run(ctx))
}

func TestServer_RunWithoutInitialize(t *testing.T) {
	cfg := &config.Config{}
	cfg.Normalize()

	err := NewServer(cfg, logger.Discard()).Run(context.Background())

	assert.Error(t, err)
}
