package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/dietrec/backend/config"
)

func TestRedisOptions(t *testing.T) {
	opts, err := RedisOptions(config.RedisConfig{Host: "cache", Port: 6380, DB: 2, Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "pw", opts.Password)

	opts, err = RedisOptions(config.RedisConfig{URL: "redis://redis.internal:6379/3", Host: "ignored", Password: "fallback"})
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6379", opts.Addr)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, "fallback", opts.Password)

	_, err = RedisOptions(config.RedisConfig{URL: "://nope"})
	assert.Error(t, err)

	_, err = RedisOptions(config.RedisConfig{})
	assert.Error(t, err)
}

func TestNewRedisClientUnreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRedisClient(ctx, config.RedisConfig{Host: "127.0.0.1", Port: 1})
	assert.Error(t, err)
}
