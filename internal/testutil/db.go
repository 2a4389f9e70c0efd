package testutil

import (
	"testing"

	"edutoken-backend/internal/infrastructure/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// OpenDB returns a migrated in-memory SQLite database that lives for the test.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
