package feedback

import (
	"context"
	"errors"
	"fmt"

	"github.com/d0ngw/mobydock/cache"
	c "github.com/d0ngw/mobydock/common"
)

// 消息快照在缓存中的key
const (
	SnapshotKey   = "snapshot"
	GenerationKey = "snapshot_gen"
)

// snapshotData 带有版本号的消息快照,版本号与缓存中的当前版本不一致时快照作废
type snapshotData struct {
	Gen      int64       `json:"gen" codec:"gen"`
	Messages []*Feedback `json:"messages" codec:"messages"`
}

// CachedStore 在redis中缓存全部消息的快照,随机选取时不再访问底层存储.
// Insert和Reset先递增快照版本再删除快照,加载快照前读取的版本写在快照里,
// 过期版本的快照不会被使用;缓存不可用时直接使用底层存储.
type CachedStore struct {
	store       ListStore
	redisClient *cache.RedisClient
	param       *cache.ParamKey
	genParam    *cache.ParamKey
}

// NewCachedStore create CachedStore,cacheParam的expire用于快照,版本号不过期
func NewCachedStore(store ListStore, redisClient *cache.RedisClient, cacheParam *cache.ParamConf) (*CachedStore, error) {
	if c.HasNil(store, redisClient, cacheParam) {
		return nil, fmt.Errorf("store,redisClient and cacheParam must be set")
	}
	if err := cacheParam.Validate(); err != nil {
		return nil, err
	}
	return &CachedStore{
		store:       store,
		redisClient: redisClient,
		param:       cacheParam.NewParamKey(SnapshotKey),
		genParam:    cacheParam.NewWithExpire(0).NewParamKey(GenerationKey),
	}, nil
}

func (p *CachedStore) generation(ctx context.Context) (int64, error) {
	gen, _, err := p.redisClient.GetInt64(ctx, p.genParam)
	return gen, err
}

func (p *CachedStore) snapshot(ctx context.Context) ([]*Feedback, error) {
	gen, err := p.generation(ctx)
	if err != nil {
		return nil, err
	}

	var data snapshotData
	ok, err := p.redisClient.GetObject(ctx, p.param, &data)
	if err == nil && ok && data.Gen == gen {
		return data.Messages, nil
	}
	if err != nil {
		if errors.Is(err, cache.ErrUnavailable) {
			return nil, err
		}
		c.Warnf("load feedback snapshot %s fail,reload,err:%v", p.param.Key(), err)
	} else if ok {
		c.Debugf("feedback snapshot %s gen %d is stale,current %d", p.param.Key(), data.Gen, gen)
	}

	messages, err := p.store.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(messages) > 0 {
		if err := p.redisClient.SetObject(ctx, p.param, &snapshotData{Gen: gen, Messages: messages}); err != nil {
			c.Warnf("save feedback snapshot %s fail,err:%v", p.param.Key(), err)
		}
	}
	return messages, nil
}

// PickRandom implements Store.PickRandom
func (p *CachedStore) PickRandom(ctx context.Context) (*Feedback, error) {
	messages, err := p.snapshot(ctx)
	if errors.Is(err, cache.ErrUnavailable) {
		c.Warnf("feedback snapshot unavailable,use store,err:%v", err)
		return p.store.PickRandom(ctx)
	}
	if err != nil {
		return nil, err
	}
	return pick(messages)
}

// Insert implements Store.Insert
func (p *CachedStore) Insert(ctx context.Context, message string) (*Feedback, error) {
	f, err := p.store.Insert(ctx, message)
	if err != nil {
		return nil, err
	}
	p.Invalidate(ctx)
	return f, nil
}

// Count implements Store.Count
func (p *CachedStore) Count(ctx context.Context) (int64, error) {
	return p.store.Count(ctx)
}

// All implements Lister.All
func (p *CachedStore) All(ctx context.Context) ([]*Feedback, error) {
	return p.store.All(ctx)
}

// Reset implements Resetter.Reset
func (p *CachedStore) Reset(ctx context.Context) error {
	resetter, ok := p.store.(Resetter)
	if !ok {
		return fmt.Errorf("%T can't be reset", p.store)
	}
	if err := resetter.Reset(ctx); err != nil {
		return err
	}
	p.Invalidate(ctx)
	return nil
}

// Seed implements Seeder,在底层存储上初始化消息后使快照失效
func (p *CachedStore) Seed(ctx context.Context, reset bool, messages ...string) (int, error) {
	n, err := Seed(ctx, p.store, reset, messages...)
	p.Invalidate(ctx)
	return n, err
}

// Invalidate 递增快照版本并删除消息快照
func (p *CachedStore) Invalidate(ctx context.Context) {
	if _, err := p.redisClient.IncrBy(ctx, p.genParam, 1); err != nil {
		c.Warnf("bump feedback snapshot gen %s fail,err:%v", p.genParam.Key(), err)
	}
	if _, err := p.redisClient.Del(ctx, p.param); err != nil {
		c.Warnf("invalidate feedback snapshot %s fail,err:%v", p.param.Key(), err)
	}
}
