package cache

import (
	"context"
	"testing"
	"time"

	"alarm-clock-backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "stats:anonymous", Key(models.AnonymousScope))
	assert.Equal(t, "stats:u1", Key(models.Scope("u1")))
}

// An unreachable Redis must degrade to cache misses, never to errors
func TestUnreachableRedisIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := NewRedisStatsCacheFromClient(client, time.Minute)
	ctx := context.Background()

	c.Set(ctx, models.Scope("u1"), models.Stats{Streak: 3})
	_, ok := c.Get(ctx, models.Scope("u1"))
	assert.False(t, ok)
	c.Invalidate(ctx, models.Scope("u1"))
}
