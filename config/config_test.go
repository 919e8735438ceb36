package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNewsCountOnHomePage(t *testing.T) {
	t.Setenv("NEWS_COUNT_ON_HOME_PAGE", "")
	assert.Equal(t, 10, GetNewsCountOnHomePage())

	t.Setenv("NEWS_COUNT_ON_HOME_PAGE", "3")
	assert.Equal(t, 3, GetNewsCountOnHomePage())

	t.Setenv("NEWS_COUNT_ON_HOME_PAGE", "zero")
	assert.Equal(t, 10, GetNewsCountOnHomePage())

	t.Setenv("NEWS_COUNT_ON_HOME_PAGE", "-1")
	assert.Equal(t, 10, GetNewsCountOnHomePage())
}

func TestGetBasePath(t *testing.T) {
	cases := map[string]string{
		"":      "/",
		"/":     "/",
		"news":  "/news/",
		"/news": "/news/",
		"news/": "/news/",
		"/a/b/": "/a/b/",
	}
	for raw, want := range cases {
		t.Setenv("NEWS_BASE_PATH", raw)
		assert.Equal(t, want, GetBasePath(), "base path %q", raw)
	}
}

func TestGetBadWords(t *testing.T) {
	t.Setenv("NEWS_BAD_WORDS", "")
	os.Unsetenv("NEWS_BAD_WORDS")
	assert.Equal(t, []string{"редиска", "негодяй"}, GetBadWords())

	t.Setenv("NEWS_BAD_WORDS", " Spam, ,EGGS ")
	assert.Equal(t, []string{"spam", "eggs"}, GetBadWords())

	t.Setenv("NEWS_BAD_WORDS", "")
	assert.Empty(t, GetBadWords())
}

func TestGetSessionStore(t *testing.T) {
	t.Setenv("NEWS_SESSION_STORE", "redis")
	assert.Equal(t, SessionStoreRedis, GetSessionStore())

	t.Setenv("NEWS_SESSION_STORE", "memcached")
	assert.Equal(t, SessionStoreCookie, GetSessionStore())
}

func TestLoadEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("NEWS_PORT=9100\n"), 0o600))

	t.Setenv("NEWS_ENV_FILE", envFile)
	t.Setenv("NEWS_PORT", "")
	os.Unsetenv("NEWS_PORT")

	require.NoError(t, LoadEnv())
	assert.Equal(t, 9100, GetPort())

	t.Setenv("NEWS_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, LoadEnv())
}

func TestDatabaseConfigValidate(t *testing.T) {
	c := NewSQLiteConfig("")
	assert.Error(t, c.ValidateConfig())

	c = NewSQLiteConfig("/tmp/news.db")
	assert.NoError(t, c.ValidateConfig())
	assert.True(t, c.IsSQLite())
	assert.Contains(t, c.GetDSN(), "/tmp/news.db?")

	c.Type = DatabaseTypePostgreSQL
	assert.NoError(t, c.ValidateConfig())
	assert.Contains(t, c.GetDSN(), "dbname=ya_news")

	c.Postgres.Port = 70000
	assert.Error(t, c.ValidateConfig())

	c.Type = "mysql"
	assert.Error(t, c.ValidateConfig())
}

func TestGetDatabaseConfigFromEnv(t *testing.T) {
	t.Setenv("NEWS_DB_TYPE", "postgres")
	t.Setenv("NEWS_DB_HOST", "db.internal")
	t.Setenv("NEWS_DB_PORT", "6432")
	t.Setenv("NEWS_DB_NAME", "news")

	c := GetDatabaseConfig()
	assert.True(t, c.IsPostgreSQL())
	assert.Equal(t, "db.internal", c.Postgres.Host)
	assert.Equal(t, 6432, c.Postgres.Port)
	assert.NoError(t, c.ValidateConfig())

	t.Setenv("NEWS_DB_PORT", "five")
	assert.Error(t, GetDatabaseConfig().ValidateConfig())
}
