package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanews/ya-news/config"
	"github.com/yanews/ya-news/database"
	"github.com/yanews/ya-news/database/model"
)

func TestDecode(t *testing.T) {
	news, err := Decode([]byte(`{"title":"Заголовок","text":"Текст","date":"2024-03-01"}`))
	require.NoError(t, err)
	assert.Equal(t, "Заголовок", news.Title)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), news.Date)

	news, err = Decode([]byte(`{"title":"Без даты","text":"Текст"}`))
	require.NoError(t, err)
	assert.True(t, news.Date.IsZero())

	cases := []string{
		`not json`,
		`{"title":"","text":"Текст"}`,
		`{"title":"Заголовок","text":"  "}`,
		`{"title":"Заголовок","text":"Текст","date":"yesterday"}`,
		`{"title":"` + strings.Repeat("а", 51) + `","text":"Текст"}`,
	}
	for _, value := range cases {
		_, err := Decode([]byte(value))
		assert.ErrorIs(t, err, ErrMalformed, value)
	}
}

func TestNewsMessageRoundTrip(t *testing.T) {
	date := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	value, err := json.Marshal(NewNewsMessage(&model.News{Title: "Заголовок", Text: "Текст", Date: date}))
	require.NoError(t, err)

	news, err := Decode(value)
	require.NoError(t, err)
	assert.True(t, news.Date.Equal(date))
}

func TestConsumerHandle(t *testing.T) {
	require.NoError(t, database.InitDB(config.NewSQLiteConfig(filepath.Join(t.TempDir(), "ingest.db"))))
	t.Cleanup(func() { _ = database.CloseDB() })

	c := &Consumer{}
	ctx := context.Background()

	require.NoError(t, c.handle(ctx, []byte(`{"title":"Из Kafka","text":"Текст"}`)))
	assert.ErrorIs(t, c.handle(ctx, []byte(`{}`)), ErrMalformed)

	consumed, failed := c.Stats()
	assert.Equal(t, int64(1), consumed)
	assert.Equal(t, int64(1), failed)

	var count int64
	require.NoError(t, database.GetDB().Model(model.News{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

type flakyStore struct {
	failures int
	calls    int
	stored   []*model.News
}

func (s *flakyStore) AddNews(ctx context.Context, items ...*model.News) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("database is locked")
	}
	s.stored = append(s.stored, items...)
	return nil
}

func TestStoreMessageRetriesUntilStored(t *testing.T) {
	store := &flakyStore{failures: 2}
	c := &Consumer{store: store, delay: time.Millisecond}

	m := kafka.Message{Offset: 7, Value: []byte(`{"title":"Повтор","text":"Текст"}`)}
	require.NoError(t, c.storeMessage(context.Background(), m))
	assert.Equal(t, 3, store.calls)
	if assert.Len(t, store.stored, 1) {
		assert.Equal(t, "Повтор", store.stored[0].Title)
	}

	consumed, failed := c.Stats()
	assert.Equal(t, int64(1), consumed)
	assert.Equal(t, int64(0), failed)
}

func TestStoreMessageSkipsMalformed(t *testing.T) {
	store := &flakyStore{}
	c := &Consumer{store: store, delay: time.Millisecond}

	require.NoError(t, c.storeMessage(context.Background(), kafka.Message{Value: []byte(`not json`)}))
	assert.Equal(t, 0, store.calls)
}

func TestStoreMessageStopsOnCancel(t *testing.T) {
	store := &flakyStore{failures: 1 << 30}
	c := &Consumer{store: store, delay: time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.storeMessage(ctx, kafka.Message{Value: []byte(`{"title":"Заголовок","text":"Текст"}`)})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, store.stored)
}
