// Package flash keeps one-shot messages for the next page a viewer renders.
package flash

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-schedule/internal/logger"
)

type Message struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{Client: client, TTL: ttl}
}

func key(userID string) string {
	return "flash:" + userID
}

// Add queues a message for userID.
func (s *Store) Add(ctx context.Context, userID string, msg Message) error {
	if userID == "" {
		return nil
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	pipe := s.Client.TxPipeline()
	pipe.RPush(ctx, key(userID), payload)
	pipe.Expire(ctx, key(userID), s.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store flash message: %w", err)
	}
	return nil
}

// Pop returns and clears every queued message for userID, oldest first.
func (s *Store) Pop(ctx context.Context, userID string) ([]Message, error) {
	if userID == "" {
		return nil, nil
	}

	pipe := s.Client.TxPipeline()
	lrange := pipe.LRange(ctx, key(userID), 0, -1)
	pipe.Del(ctx, key(userID))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read flash messages: %w", err)
	}

	var out []Message
	for _, raw := range lrange.Val() {
		var msg Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// Connect opens a client and checks it with PING.
func Connect(ctx context.Context, addr string, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Error("REDIS", fmt.Sprintf("Failed to connect to Redis at %s: %v", addr, err))
		client.Close()
		return nil, err
	}

	log.Info("REDIS", fmt.Sprintf("Connected to Redis at %s", addr))
	return client, nil
}
