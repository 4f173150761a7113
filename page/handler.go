// Package page 喂食页面:随机选取一条反馈消息并累加喂食次数
package page

import (
	"context"
	"fmt"

	"github.com/d0ngw/mobydock/cache/counter"
	c "github.com/d0ngw/mobydock/common"
	"github.com/d0ngw/mobydock/feedback"
)

// FeedCountKey 喂食次数的计数器key
const FeedCountKey = "feed_count"

// PageView 页面展示的数据
type PageView struct {
	Message   string `json:"message"`
	FeedCount int64  `json:"feed_count"`
}

// Handler 处理页面请求,store和counter由外部注入
type Handler struct {
	store   feedback.Store
	counter counter.Counter
	metrics *Metrics
}

// NewHandler create Handler,metrics可以为nil
func NewHandler(store feedback.Store, cnt counter.Counter, metrics *Metrics) (*Handler, error) {
	if c.HasNil(store, cnt) {
		return nil, fmt.Errorf("store and counter must be set")
	}
	return &Handler{store: store, counter: cnt, metrics: metrics}, nil
}

// View feed为true时随机选取一条消息并将喂食次数加1,否则返回空消息和当前的喂食次数.
// store为空时返回feedback.ErrEmptyStore,此时不修改计数器
func (p *Handler) View(ctx context.Context, feed bool) (*PageView, error) {
	if !feed {
		count, err := p.counter.Read(ctx, FeedCountKey)
		if err != nil {
			p.metrics.failed(opRead)
			return nil, fmt.Errorf("read %s fail: %w", FeedCountKey, err)
		}
		return &PageView{FeedCount: count}, nil
	}

	msg, err := p.store.PickRandom(ctx)
	if err != nil {
		p.metrics.failed(opPick)
		return nil, fmt.Errorf("pick feedback fail: %w", err)
	}
	count, err := counter.IncrOne(ctx, p.counter, FeedCountKey)
	if err != nil {
		p.metrics.failed(opIncr)
		return nil, fmt.Errorf("incr %s fail: %w", FeedCountKey, err)
	}
	p.metrics.fed()
	c.Debugf("feed #%d,message:%d", count, msg.ID)
	return &PageView{Message: msg.Message, FeedCount: count}, nil
}
