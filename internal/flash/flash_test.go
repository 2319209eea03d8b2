package flash

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-schedule/internal/logger"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestAddThenPop(t *testing.T) {
	client, mr := setupTestRedis(t)
	s := NewStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "u1", Message{Category: "info", Text: "first"}))
	require.NoError(t, s.Add(ctx, "u1", Message{Category: "info", Text: "second"}))
	assert.Equal(t, time.Minute, mr.TTL("flash:u1"))

	msgs, err := s.Pop(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []Message{{"info", "first"}, {"info", "second"}}, msgs)

	msgs, err = s.Pop(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.False(t, mr.Exists("flash:u1"))
}

func TestMessagesExpire(t *testing.T) {
	client, mr := setupTestRedis(t)
	s := NewStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "u1", Message{Text: "stale"}))
	mr.FastForward(2 * time.Minute)

	msgs, err := s.Pop(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestAnonymousIsIgnored(t *testing.T) {
	client, mr := setupTestRedis(t)
	s := NewStore(client, time.Minute)

	require.NoError(t, s.Add(context.Background(), "", Message{Text: "x"}))
	assert.Empty(t, mr.Keys())
}

func TestConnect(t *testing.T) {
	_, mr := setupTestRedis(t)
	client, err := Connect(context.Background(), mr.Addr(), logger.NewTestLogger(&bytes.Buffer{}))
	require.NoError(t, err)
	client.Close()
}
