package counter

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/d0ngw/mobydock/cache"
	"github.com/d0ngw/mobydock/cache/redistest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCounter(t *testing.T, expire int) (*RedisCounter, *redistest.Pool) {
	pool := redistest.NewPool()
	client := cache.NewRedisClient(map[string][]*cache.RedisServer{"feed": {cache.NewRedisServer("test", pool)}})
	counter, err := NewRedisCounter(client, cache.NewParamConf("feed", "", expire))
	require.NoError(t, err)
	return counter, pool
}

func counters(t *testing.T) map[string]Counter {
	redisCounter, _ := newRedisCounter(t, 0)
	return map[string]Counter{
		"memory": NewMemoryCounter(),
		"redis":  redisCounter,
	}
}

func TestReadAbsent(t *testing.T) {
	ctx := context.Background()
	for name, counter := range counters(t) {
		v, err := counter.Read(ctx, "feed_count")
		assert.NoError(t, err, name)
		assert.EqualValues(t, 0, v, name)

		v, err = counter.Read(ctx, "feed_count")
		assert.NoError(t, err, name)
		assert.EqualValues(t, 0, v, name)
	}
}

func TestSequentialIncr(t *testing.T) {
	ctx := context.Background()
	for name, counter := range counters(t) {
		for i := 1; i <= 7; i++ {
			v, err := IncrOne(ctx, counter, "feed_count")
			assert.NoError(t, err, name)
			assert.EqualValues(t, i, v, name)
		}
		v, err := counter.Read(ctx, "feed_count")
		assert.NoError(t, err, name)
		assert.EqualValues(t, 7, v, name)

		v, err = counter.Incr(ctx, "feed_count", 3)
		assert.NoError(t, err, name)
		assert.EqualValues(t, 10, v, name)

		v, err = counter.Incr(ctx, "feed_count", 0)
		assert.NoError(t, err, name)
		assert.EqualValues(t, 10, v, name)

		other, err := counter.Read(ctx, "other")
		assert.NoError(t, err, name)
		assert.EqualValues(t, 0, other, name)
	}
}

func TestInvalidIncr(t *testing.T) {
	ctx := context.Background()
	for name, counter := range counters(t) {
		_, err := counter.Incr(ctx, "feed_count", -1)
		assert.True(t, errors.Is(err, ErrInvalidAmount), name)
		_, err = counter.Incr(ctx, "", 1)
		assert.True(t, errors.Is(err, ErrInvalidKey), name)
		_, err = counter.Read(ctx, "")
		assert.True(t, errors.Is(err, ErrInvalidKey), name)

		v, err := counter.Read(ctx, "feed_count")
		assert.NoError(t, err, name)
		assert.EqualValues(t, 0, v, name)
	}
}

func TestConcurrentIncr(t *testing.T) {
	const workers, times = 16, 50
	ctx := context.Background()
	for name, counter := range counters(t) {
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < times; j++ {
					_, err := IncrOne(ctx, counter, "feed_count")
					assert.NoError(t, err)
				}
			}()
		}
		wg.Wait()

		v, err := counter.Read(ctx, "feed_count")
		assert.NoError(t, err, name)
		assert.EqualValues(t, workers*times, v, name)
	}
}

func TestMemoryReadDoesNotCreate(t *testing.T) {
	counter := NewMemoryCounter()
	_, err := counter.Read(context.Background(), "feed_count")
	assert.NoError(t, err)
	assert.False(t, counter.Exists("feed_count"))
	_, err = IncrOne(context.Background(), counter, "feed_count")
	assert.NoError(t, err)
	assert.True(t, counter.Exists("feed_count"))
}

func TestRedisCounter(t *testing.T) {
	ctx := context.Background()
	counter, pool := newRedisCounter(t, 0)

	_, err := counter.Read(ctx, "feed_count")
	assert.NoError(t, err)
	assert.False(t, pool.Has("feed_count"))
	assert.Equal(t, 0, pool.Commands("SET"))

	_, err = IncrOne(ctx, counter, "feed_count")
	assert.NoError(t, err)
	v, ok := pool.Value("feed_count")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Equal(t, 0, pool.TTL("feed_count"))

	pool.Put("broken", "moby")
	_, err = counter.Read(ctx, "broken")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrCacheUnavailable))
}

func TestRedisCounterExpire(t *testing.T) {
	ctx := context.Background()
	counter, pool := newRedisCounter(t, 3600)
	_, err := IncrOne(ctx, counter, "feed_count")
	assert.NoError(t, err)
	assert.Equal(t, 3600, pool.TTL("feed_count"))
}

func TestRedisCounterUnavailable(t *testing.T) {
	ctx := context.Background()
	counter, pool := newRedisCounter(t, 0)
	_, err := IncrOne(ctx, counter, "feed_count")
	require.NoError(t, err)

	pool.SetDown(true)
	_, err = counter.Read(ctx, "feed_count")
	assert.True(t, errors.Is(err, ErrCacheUnavailable))
	_, err = IncrOne(ctx, counter, "feed_count")
	assert.True(t, errors.Is(err, ErrCacheUnavailable))

	pool.SetDown(false)
	v, err := counter.Read(ctx, "feed_count")
	assert.NoError(t, err)
	assert.EqualValues(t, 1, v)

	pool.SetReplyError("LOADING Redis is loading the dataset in memory")
	_, err = IncrOne(ctx, counter, "feed_count")
	assert.True(t, errors.Is(err, ErrCacheUnavailable))
	pool.SetReplyError("")
}

func TestNewRedisCounterInvalid(t *testing.T) {
	_, err := NewRedisCounter(nil, cache.NewParamConf("feed", "", 0))
	assert.Error(t, err)
	client := cache.NewRedisClient(nil)
	_, err = NewRedisCounter(client, nil)
	assert.Error(t, err)
	_, err = NewRedisCounter(client, cache.NewParamConf("", "", 0))
	assert.Error(t, err)
}
