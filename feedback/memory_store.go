package feedback

import (
	"context"
	"sync"
)

// MemoryStore 内存中的消息存储
type MemoryStore struct {
	mu       sync.RWMutex
	messages []*Feedback
	nextID   int64
}

// NewMemoryStore create MemoryStore with messages
func NewMemoryStore(messages ...string) (*MemoryStore, error) {
	store := &MemoryStore{}
	for _, m := range messages {
		if _, err := store.Insert(context.Background(), m); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// PickRandom implements Store.PickRandom
func (p *MemoryStore) PickRandom(ctx context.Context) (*Feedback, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return pick(p.messages)
}

// Insert implements Store.Insert
func (p *MemoryStore) Insert(ctx context.Context, message string) (*Feedback, error) {
	message, err := normalize(message)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	f := &Feedback{ID: p.nextID, Message: message}
	p.messages = append(p.messages, f)
	copied := *f
	return &copied, nil
}

// Count implements Store.Count
func (p *MemoryStore) Count(ctx context.Context) (int64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return int64(len(p.messages)), nil
}

// All implements Lister.All
func (p *MemoryStore) All(ctx context.Context) ([]*Feedback, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	all := make([]*Feedback, 0, len(p.messages))
	for _, f := range p.messages {
		copied := *f
		all = append(all, &copied)
	}
	return all, nil
}

// Reset implements Resetter.Reset,id重新从1开始
func (p *MemoryStore) Reset(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = nil
	p.nextID = 0
	return nil
}
