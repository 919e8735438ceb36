package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanews/ya-news/config"
	"github.com/yanews/ya-news/database/model"
)

func setup(t *testing.T) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "news.db")
	require.NoError(t, InitDB(config.NewSQLiteConfig(dbPath)))
	t.Cleanup(func() {
		assert.NoError(t, CloseDB())
	})
}

func TestInitDBRejectsInvalidConfig(t *testing.T) {
	assert.Error(t, InitDB(config.NewSQLiteConfig("")))
}

func TestDefaultsOnCreate(t *testing.T) {
	setup(t)

	before := time.Now().Add(-time.Second)
	news := &model.News{Title: "Тестовая новость", Text: "Просто текст"}
	require.NoError(t, GetDB().Create(news).Error)
	assert.True(t, news.Date.After(before), "date defaults to creation time")

	user := &model.User{Username: "Commenter", Password: "x"}
	require.NoError(t, GetDB().Create(user).Error)

	comment := &model.Comment{NewsId: news.Id, AuthorId: user.Id, Text: "Текст 0"}
	require.NoError(t, GetDB().Create(comment).Error)
	assert.True(t, comment.Created.After(before))

	fixed := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	dated := &model.News{Title: "Старая", Text: "Текст", Date: fixed}
	require.NoError(t, GetDB().Create(dated).Error)
	assert.True(t, dated.Date.Equal(fixed))
}

func TestCommentRequiresExistingNews(t *testing.T) {
	setup(t)

	user := &model.User{Username: "author", Password: "x"}
	require.NoError(t, GetDB().Create(user).Error)

	orphan := &model.Comment{NewsId: 404, AuthorId: user.Id, Text: "нет новости"}
	assert.Error(t, GetDB().Create(orphan).Error)
}

func TestIsNotFound(t *testing.T) {
	setup(t)

	err := GetDB().First(&model.News{}, 1).Error
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(nil))
}

func TestDatesStoredInUTC(t *testing.T) {
	setup(t)

	msk := time.FixedZone("MSK", 3*60*60)
	earlier := &model.News{Title: "Раньше", Text: "Текст", Date: time.Date(2024, 1, 1, 2, 0, 0, 0, msk)}
	later := &model.News{Title: "Позже", Text: "Текст", Date: time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC)}
	require.NoError(t, GetDB().Create(earlier).Error)
	require.NoError(t, GetDB().Create(later).Error)
	assert.Equal(t, time.UTC, earlier.Date.Location())

	var titles []string
	require.NoError(t, GetDB().Model(&model.News{}).Order("date DESC").Pluck("title", &titles).Error)
	assert.Equal(t, []string{"Позже", "Раньше"}, titles)
}
