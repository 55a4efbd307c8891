package testdb

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	gorm_logrus "github.com/onrik/gorm-logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open private in-memory sqlite database with dst migrated, closed on test cleanup.
// A single connection keeps every statement on the same in-memory database.
func Open(t *testing.T, dst ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gorm_logrus.New(),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(dst...))
	return db
}
