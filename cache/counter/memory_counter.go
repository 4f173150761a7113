package counter

import (
	"context"
	"sync"
)

// MemoryCounter 进程内的Counter实现
type MemoryCounter struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewMemoryCounter create MemoryCounter
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{values: map[string]int64{}}
}

// Read implements Counter.Read
func (p *MemoryCounter) Read(ctx context.Context, key string) (int64, error) {
	if key == "" {
		return 0, ErrInvalidKey
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.values[key], nil
}

// Incr implements Counter.Incr
func (p *MemoryCounter) Incr(ctx context.Context, key string, amount int64) (int64, error) {
	if err := checkIncr(key, amount); err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] += amount
	return p.values[key], nil
}

// Exists 判断key是否已经被创建
func (p *MemoryCounter) Exists(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.values[key]
	return ok
}
