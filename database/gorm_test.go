package database

import (
	"path/filepath"
	"testing"

	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStartGORM_Sqlite(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "bridge.db"))

	store, err := StartGORM()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", store.Dialect())

	require.NoError(t, store.Init())
	require.NoError(t, store.HealthCheck())

	db := store.GetDB().(*gorm.DB)
	assert.True(t, db.Migrator().HasTable(&model.Shortlist{}))

	require.NoError(t, store.Close())
	assert.Error(t, store.HealthCheck())
}

func TestStartGORM_UnsupportedDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")

	_, err := StartGORM()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported DB_DRIVER "mysql"`)
}
