package counter

import (
	"context"
	"fmt"

	"github.com/d0ngw/mobydock/cache"
	c "github.com/d0ngw/mobydock/common"
)

// RedisCounter use redis implements Counter,Incr使用INCRBY保证并发下不丢失更新
type RedisCounter struct {
	redisClient *cache.RedisClient
	cacheParam  *cache.ParamConf
}

// NewRedisCounter create RedisCounter,cacheParam指定redis group、key前缀以及过期时间
func NewRedisCounter(redisClient *cache.RedisClient, cacheParam *cache.ParamConf) (*RedisCounter, error) {
	if c.HasNil(redisClient, cacheParam) {
		return nil, fmt.Errorf("redisClient and cacheParam must be set")
	}
	if err := cacheParam.Validate(); err != nil {
		return nil, err
	}
	return &RedisCounter{redisClient: redisClient, cacheParam: cacheParam}, nil
}

// Read implements Counter.Read
func (p *RedisCounter) Read(ctx context.Context, key string) (int64, error) {
	if key == "" {
		return 0, ErrInvalidKey
	}
	val, ok, err := p.redisClient.GetInt64(ctx, p.cacheParam.NewParamKey(key))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return val, nil
}

// Incr implements Counter.Incr
func (p *RedisCounter) Incr(ctx context.Context, key string, amount int64) (int64, error) {
	if err := checkIncr(key, amount); err != nil {
		return 0, err
	}
	param := p.cacheParam.NewParamKey(key)
	val, err := p.redisClient.IncrBy(ctx, param, amount)
	if err != nil {
		return 0, err
	}
	if param.Expire() > 0 {
		if _, err := p.redisClient.Expire(ctx, param); err != nil {
			c.Warnf("expire counter %s fail,err:%v", param.Key(), err)
		}
	}
	return val, nil
}
