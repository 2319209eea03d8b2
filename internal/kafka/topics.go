package kafka

import (
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-schedule/internal/logger"
)

// EnsureTopicsExist creates topics through the cluster controller, skipping
// those that already exist.
func EnsureTopicsExist(brokers []string, topics []string, log *logger.Logger) error {
	if len(brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}

	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("find controller: %w", err)
	}
	controllerConn, err := kafka.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer controllerConn.Close()

	for _, topic := range topics {
		err = controllerConn.CreateTopics(kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
		switch {
		case err == nil:
			log.Info("KAFKA", "Created topic: "+topic)
		case errors.Is(err, kafka.TopicAlreadyExists):
			log.Debug("KAFKA", "Topic already exists: "+topic)
		default:
			// keep going; the writer can still auto-create
			log.Warn("KAFKA", fmt.Sprintf("Error creating topic %s: %v", topic, err))
		}
	}
	return nil
}
