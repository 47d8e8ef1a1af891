package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *ConnectionManager {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	config := DefaultConnectionConfig()
	config.DatabasePath = filepath.Join(t.TempDir(), "nested", "dailysales.db")
	config.Logger = logger

	manager := NewConnectionManager(config)
	require.NoError(t, manager.Connect(context.Background()))
	t.Cleanup(func() { manager.Close() })

	return manager
}

func TestConnectionManager_ConnectMigratesSchema(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	require.NotNil(t, manager.GetDB())
	assert.NoError(t, manager.Ping(ctx))
	assert.NoError(t, manager.CheckHealth(ctx))

	migrations := manager.GetMigrationManager()
	require.NotNil(t, migrations)
	assert.NoError(t, migrations.ValidateSchema())

	status, err := migrations.GetMigrationStatus()
	require.NoError(t, err)
	assert.True(t, status.Applied)
	assert.False(t, status.Dirty)
	assert.Equal(t, uint(1), status.Version)

	health := manager.GetHealthStatus(ctx)
	assert.True(t, health.Healthy)
	assert.Equal(t, "sqlite3", health.Details["driver"])
}

func TestConnectionManager_ConnectTwice(t *testing.T) {
	manager := newTestManager(t)

	err := manager.Connect(context.Background())
	assert.Error(t, err)
}

func TestMigrationManager_RollbackAndReapply(t *testing.T) {
	manager := newTestManager(t)
	migrations := manager.GetMigrationManager()

	require.NoError(t, migrations.RollbackMigration())

	status, err := migrations.GetMigrationStatus()
	require.NoError(t, err)
	assert.False(t, status.Applied)
	assert.Error(t, migrations.ValidateSchema())

	// Nothing left to roll back.
	assert.Error(t, migrations.RollbackMigration())

	require.NoError(t, migrations.RunMigrations())
	require.NoError(t, migrations.RunMigrations())
	assert.NoError(t, migrations.ValidateSchema())
}

func TestConnectionManager_ClosedState(t *testing.T) {
	manager := NewConnectionManager(&ConnectionConfig{DatabasePath: filepath.Join(t.TempDir(), "x.db")})

	assert.Nil(t, manager.GetDB())
	assert.Nil(t, manager.GetMigrationManager())
	assert.Error(t, manager.Ping(context.Background()))
	assert.NoError(t, manager.Close())
	assert.False(t, manager.GetHealthStatus(context.Background()).Healthy)
}
