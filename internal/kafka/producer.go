package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-schedule/internal/logger"
	"ms-schedule/internal/models"
)

// MessageWriter is the part of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	Writer MessageWriter
	Logger *logger.Logger
}

func NewProducer(brokers []string, topic string, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &Producer{Writer: writer, Logger: log}
}

// PublishFavouriteToggled streams a favourite change, keyed by user so one
// viewer's toggles stay ordered.
func (p *Producer) PublishFavouriteToggled(ctx context.Context, e models.FavouriteToggledEventDto) error {
	msgBytes, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal favourite event: %w", err)
	}

	p.Logger.Debug("KAFKA", fmt.Sprintf("Publishing [favourite_toggled]: %s", string(msgBytes)))

	return p.Writer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(e.UserID),
			Value: msgBytes,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(e.EventID.String())},
			},
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// NopPublisher drops events; used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishFavouriteToggled(context.Context, models.FavouriteToggledEventDto) error {
	return nil
}
