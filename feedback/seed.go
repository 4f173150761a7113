package feedback

import (
	"context"
	"fmt"

	c "github.com/d0ngw/mobydock/common"
)

// DefaultMessages 初始化数据库时写入的消息
var DefaultMessages = []string{
	"Thanks good sir. I'm feeling quite healthy!",
	"Thanks for the meal buddy.",
	"Please stop feeding me. I'm getting huge!",
}

// Seeder 能够自行完成初始化的存储,例如在一个事务中完成
type Seeder interface {
	Seed(ctx context.Context, reset bool, messages ...string) (int, error)
}

// Seed 依次插入messages,reset为true时先清空store.store实现了Seeder时由store完成
func Seed(ctx context.Context, store Store, reset bool, messages ...string) (int, error) {
	if seeder, ok := store.(Seeder); ok {
		n, err := seeder.Seed(ctx, reset, messages...)
		if err != nil {
			return n, err
		}
		c.Infof("seeded %d feedback messages,reset:%v", n, reset)
		return n, nil
	}

	if reset {
		resetter, ok := store.(Resetter)
		if !ok {
			return 0, fmt.Errorf("%T can't be reset", store)
		}
		if err := resetter.Reset(ctx); err != nil {
			return 0, err
		}
		c.Infof("feedback store reset")
	}
	for i, m := range messages {
		if _, err := store.Insert(ctx, m); err != nil {
			return i, fmt.Errorf("seed message %d fail: %w", i, err)
		}
	}
	c.Infof("seeded %d feedback messages", len(messages))
	return len(messages), nil
}
