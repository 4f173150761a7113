// Package feedback 存储反馈消息,支持随机选取一条消息
package feedback

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
)

var (
	// ErrEmptyStore 没有可供选择的消息
	ErrEmptyStore = errors.New("feedback store is empty")
	// ErrEmptyMessage 消息内容为空
	ErrEmptyMessage = errors.New("feedback message must not be empty")
)

// Feedback 反馈消息,创建后不再修改
type Feedback struct {
	ID      int64  `json:"id" codec:"id"`
	Message string `json:"message" codec:"message"`
}

// Store 反馈消息存储
type Store interface {
	// PickRandom 从当前所有消息中等概率地选取一条,没有消息时返回ErrEmptyStore
	PickRandom(ctx context.Context) (*Feedback, error)
	// Insert 插入一条消息,返回分配了id的消息
	Insert(ctx context.Context, message string) (*Feedback, error)
	// Count 消息的数量
	Count(ctx context.Context) (int64, error)
}

// Lister 能够列出全部消息的存储
type Lister interface {
	All(ctx context.Context) ([]*Feedback, error)
}

// Resetter 能够清空全部消息的存储
type Resetter interface {
	Reset(ctx context.Context) error
}

// ListStore Store + Lister
type ListStore interface {
	Store
	Lister
}

func normalize(message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}
	return message, nil
}

func pick(messages []*Feedback) (*Feedback, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyStore
	}
	f := *messages[rand.IntN(len(messages))]
	return &f, nil
}
