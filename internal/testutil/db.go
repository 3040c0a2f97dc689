package testutil

import (
	"testing"

	"mailsweep/internal/schema"
	"mailsweep/pkg/database"

	"gorm.io/gorm"
)

// NewTestDB opens an in-memory sqlite database with the schema migrated.
// It is closed when the test completes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewSQLiteConnection(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	if err := schema.Migrate(db); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
