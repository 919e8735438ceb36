// Package ingest feeds news items published on a Kafka topic into the database.
package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/yanews/ya-news/database/model"
)

// ErrMalformed marks messages that can never be stored and are skipped.
var ErrMalformed = errors.New("malformed news message")

const maxTitleLength = 50

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// NewsMessage is the JSON payload of one news item. An empty date means now.
type NewsMessage struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Date  string `json:"date,omitempty"`
}

func NewNewsMessage(news *model.News) NewsMessage {
	m := NewsMessage{Title: news.Title, Text: news.Text}
	if !news.Date.IsZero() {
		m.Date = news.Date.Format(time.RFC3339)
	}
	return m
}

// Decode parses and validates a message value.
func Decode(value []byte) (*model.News, error) {
	var m NewsMessage
	if err := json.Unmarshal(value, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return m.ToNews()
}

func (m NewsMessage) ToNews() (*model.News, error) {
	title := strings.TrimSpace(m.Title)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLength {
		return nil, fmt.Errorf("%w: title must have 1..%d characters", ErrMalformed, maxTitleLength)
	}
	if strings.TrimSpace(m.Text) == "" {
		return nil, fmt.Errorf("%w: empty text", ErrMalformed)
	}

	news := &model.News{Title: title, Text: m.Text}
	if m.Date != "" {
		date, err := parseDate(m.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		news.Date = date
	}
	return news, nil
}

func parseDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
