package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestIsSQLite(t *testing.T) {
	assert.True(t, IsSQLite("file::memory:"))
	assert.True(t, IsSQLite("sqlite:chat.db"))
	assert.True(t, IsSQLite("local.db"))
	assert.False(t, IsSQLite("host=localhost user=postgres dbname=chat port=5432 sslmode=disable"))
	assert.False(t, IsSQLite("postgres://postgres@localhost:5432/chat"))
}

func TestOpen_SQLiteAndMigrate(t *testing.T) {
	db, err := Open("file::memory:", logger.Silent)
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"users", "chats", "messages"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
