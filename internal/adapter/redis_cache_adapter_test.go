package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"history-quiz/internal/domain"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

const hintKey = "history:hint:topic:1911 Revolution (1911)"

func TestRedisCacheAdapter_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	adapter := NewRedisCacheAdapter(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectGet("outline").SetVal("- point")
		val, err := adapter.Get(ctx, "outline")
		assert.NoError(t, err)
		assert.Equal(t, "- point", val)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CacheMiss", func(t *testing.T) {
		mock.ExpectGet("outline").SetErr(redis.Nil)
		val, err := adapter.Get(ctx, "outline")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
		assert.Empty(t, val)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RedisError", func(t *testing.T) {
		redisErr := errors.New("connection reset")
		mock.ExpectGet("outline").SetErr(redisErr)
		_, err := adapter.Get(ctx, "outline")
		assert.ErrorIs(t, err, redisErr)
		assert.NotErrorIs(t, err, domain.ErrCacheMiss)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisCacheAdapter_SetAndDelete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	adapter := NewRedisCacheAdapter(db)
	ctx := context.Background()

	mock.ExpectSet("outline", "- point", time.Hour).SetVal("OK")
	assert.NoError(t, adapter.Set(ctx, "outline", "- point", time.Hour))

	redisErr := errors.New("read only replica")
	mock.ExpectSet("outline", "- point", time.Hour).SetErr(redisErr)
	assert.ErrorIs(t, adapter.Set(ctx, "outline", "- point", time.Hour), redisErr)

	mock.ExpectDel("outline").SetVal(1)
	assert.NoError(t, adapter.Delete(ctx, "outline"))

	mock.ExpectDel("outline").SetVal(0)
	assert.NoError(t, adapter.Delete(ctx, "outline"), "deleting a missing key is not an error")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheAdapter_Ping(t *testing.T) {
	db, mock := redismock.NewClientMock()
	adapter := NewRedisCacheAdapter(db)

	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, adapter.Ping(context.Background()))

	mock.ExpectPing().SetErr(errors.New("down"))
	assert.Error(t, adapter.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheAdapter_Hash(t *testing.T) {
	db, mock := redismock.NewClientMock()
	adapter := NewRedisCacheAdapter(db)
	ctx := context.Background()

	mock.ExpectHSet(hintKey, "abc", "Think about Wuchang.").SetVal(1)
	assert.NoError(t, adapter.HSet(ctx, hintKey, "abc", "Think about Wuchang."))

	mock.ExpectExpire(hintKey, 24*time.Hour).SetVal(true)
	assert.NoError(t, adapter.Expire(ctx, hintKey, 24*time.Hour))

	mock.ExpectHGet(hintKey, "abc").SetVal("Think about Wuchang.")
	val, err := adapter.HGet(ctx, hintKey, "abc")
	assert.NoError(t, err)
	assert.Equal(t, "Think about Wuchang.", val)

	mock.ExpectHGet(hintKey, "missing").SetErr(redis.Nil)
	_, err = adapter.HGet(ctx, hintKey, "missing")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	assert.NoError(t, mock.ExpectationsWereMet())
}
