package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/yanews/ya-news/database/model"
	"github.com/yanews/ya-news/logger"
	"github.com/yanews/ya-news/util/common"
	"github.com/yanews/ya-news/web/service"
	"go.uber.org/atomic"
)

const (
	retryDelay    = time.Second
	maxRetryDelay = 30 * time.Second
)

// NewsStore persists ingested news.
type NewsStore interface {
	AddNews(ctx context.Context, items ...*model.News) error
}

// Consumer reads news messages from Kafka and stores them.
type Consumer struct {
	reader *kafka.Reader
	store  NewsStore
	delay  time.Duration

	consumed atomic.Int64
	failed   atomic.Int64
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
	logger.Infof("Kafka consumer initialized for %v, topic %s, group %s", brokers, topic, groupID)
	return &Consumer{reader: reader, store: &service.NewsService{}, delay: retryDelay}
}

// Run consumes until ctx is cancelled. A message is committed once its item
// is stored, or right away when it is malformed. Storage failures are retried
// with growing delays and block the partition until they succeed.
func (c *Consumer) Run(ctx context.Context) {
	defer common.Recover("kafka consumer panic")
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("Kafka consumer stopped")
				return
			}
			logger.Warning("fetch news message failed:", err)
			if !sleep(ctx, retryDelay) {
				return
			}
			continue
		}

		if err := c.storeMessage(ctx, m); err != nil {
			// not committed, so the message is fetched again after a restart
			logger.Info("Kafka consumer stopped")
			return
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			logger.Warning("commit news message failed:", err)
		}
	}
}

// storeMessage handles m until it is stored or rejected as malformed. It only
// gives up when ctx is cancelled.
func (c *Consumer) storeMessage(ctx context.Context, m kafka.Message) error {
	delay := c.delay
	if delay <= 0 {
		delay = retryDelay
	}
	for {
		err := c.handle(ctx, m.Value)
		if err == nil || errors.Is(err, ErrMalformed) {
			return nil
		}
		logger.Warningf("store news message at offset %d failed, retry in %v: %v", m.Offset, delay, err)
		if !sleep(ctx, delay) {
			return ctx.Err()
		}
		delay = min(delay*2, maxRetryDelay)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (c *Consumer) handle(ctx context.Context, value []byte) error {
	news, err := Decode(value)
	if err != nil {
		c.failed.Inc()
		logger.Warningf("skip news message: %v", err)
		return err
	}
	if err := c.newsStore().AddNews(ctx, news); err != nil {
		return err
	}
	c.consumed.Inc()
	logger.Debugf("news %d ingested: %s", news.Id, news.Title)
	return nil
}

func (c *Consumer) newsStore() NewsStore {
	if c.store == nil {
		return &service.NewsService{}
	}
	return c.store
}

// Stats returns the number of stored and rejected messages.
func (c *Consumer) Stats() (consumed int64, failed int64) {
	return c.consumed.Load(), c.failed.Load()
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
