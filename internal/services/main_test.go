package services

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ibqn/hacker-news/internal/db"
	"github.com/ibqn/hacker-news/internal/models"
)

// setupTestDB points the global connection at a fresh sqlite database in a
// per-test temp dir. A single pooled connection keeps transactions serialized
// the way a real server's storage engine would.
func setupTestDB(t *testing.T) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.Migrate(conn))

	db.DB = conn
}

func createTestUser(t *testing.T, username string) *models.User {
	t.Helper()

	user := models.User{Username: username, Password: "not-a-real-hash"}
	require.NoError(t, db.DB.Create(&user).Error)
	return &user
}

func createTestPost(t *testing.T, user *models.User, title string) *models.Post {
	t.Helper()

	post := models.Post{UserID: user.ID, Title: title, Content: "some content"}
	require.NoError(t, db.DB.Create(&post).Error)
	return &post
}

func countRows(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.DB.Model(model).Where(query, args...).Count(&count).Error)
	return count
}

func uniqueName(prefix string, i int) string {
	return fmt.Sprintf("%s%d", prefix, i)
}
