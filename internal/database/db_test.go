package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/models"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/permissions"
)

func TestOpenSQLiteInMemory(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, sqlDB.Ping())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "mongodb"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestAutoMigrateAndSeedCreatesAdmin(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrateAndSeed(db))

	var admin models.User
	require.NoError(t, db.First(&admin, "role = ?", string(permissions.RoleAdmin)).Error)
	require.True(t, admin.IsActive)
	require.NotEmpty(t, admin.Password)

	// A second run must not create a duplicate.
	require.NoError(t, AutoMigrateAndSeed(db))
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{
		User:     "pms",
		Password: "secret",
		Name:     "pms",
		Host:     "db.internal",
		Port:     3307,
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "pms:secret@tcp(db.internal:3307)/pms?")
	require.Contains(t, dsn, "parseTime=True")

	_, err = buildMySQLDSN(Config{Host: "db.internal"})
	require.Error(t, err)
}

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User: "pms",
		Name: "pms",
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=localhost")
	require.Contains(t, dsn, "port=5432")
	require.Contains(t, dsn, "sslmode=disable")

	dsn, err = buildPostgresDSN(Config{
		User:    "pms",
		Name:    "pms",
		Options: map[string]string{"sslmode": "require"},
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "sslmode=require")
}
