package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"github.com/yanews/ya-news/database/model"
)

// Producer publishes news items to the ingestion topic.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{writer: writer}
}

func (p *Producer) Publish(ctx context.Context, items ...*model.News) error {
	msgs := make([]kafka.Message, 0, len(items))
	for _, news := range items {
		value, err := json.Marshal(NewNewsMessage(news))
		if err != nil {
			return fmt.Errorf("failed to marshal news: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(news.Title),
			Value: value,
			Time:  time.Now(),
		})
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
