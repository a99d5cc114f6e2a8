// Package dbtest backs handler tests with a throwaway in-memory SQLite
// database installed as database.DB.
package dbtest

import (
	"fmt"
	"testing"

	"agency-backend/internal/database"
	"agency-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open migrates a fresh database and installs it as database.DB until the
// test ends. Tests using it must not run in parallel.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		_ = sqlDB.Close()
	})
	return db
}

// User inserts an active user with the given role.
func User(t testing.TB, db *gorm.DB, name string, role models.UserRole) models.User {
	t.Helper()
	u := models.User{
		Name:         name,
		Email:        uuid.NewString() + "@agency.test",
		PasswordHash: "x",
		Role:         role,
		Active:       true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}
