// Package counter supply named integer counters stored in cache
package counter

import (
	"context"
	"errors"

	"github.com/d0ngw/mobydock/cache"
)

var (
	// ErrCacheUnavailable the underlying cache can't be reached
	ErrCacheUnavailable = cache.ErrUnavailable
	// ErrInvalidAmount the increment amount is negative
	ErrInvalidAmount = errors.New("invalid increment amount")
	// ErrInvalidKey the counter key is empty
	ErrInvalidKey = errors.New("invalid counter key")
)

// Counter 命名的非负整数计数器
type Counter interface {
	// Read 返回key的当前值,key不存在时返回0,不会创建key
	Read(ctx context.Context, key string) (int64, error)
	// Incr 将key的值增加amount并返回增加后的值,key不存在时视为0
	Incr(ctx context.Context, key string, amount int64) (int64, error)
}

// IncrOne 将key的值增加1
func IncrOne(ctx context.Context, counter Counter, key string) (int64, error) {
	return counter.Incr(ctx, key, 1)
}

func checkIncr(key string, amount int64) error {
	if key == "" {
		return ErrInvalidKey
	}
	if amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}
