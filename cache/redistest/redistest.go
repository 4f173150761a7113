// Package redistest 提供内存实现的redis连接池,用于测试
package redistest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gomodule/redigo/redis"
)

// ErrDown 模拟的网络错误
var ErrDown = errors.New("dial tcp: connection refused")

// Pool 内存实现的连接池,支持GET、SET、INCRBY、EXISTS、DEL、EXPIRE
type Pool struct {
	mu       sync.Mutex
	data     map[string][]byte
	expires  map[string]int
	commands map[string]int
	down     bool
	replyErr string
}

// NewPool create Pool
func NewPool() *Pool {
	return &Pool{
		data:     map[string][]byte{},
		expires:  map[string]int{},
		commands: map[string]int{},
	}
}

// SetReplyError 所有命令返回msg作为redis的错误回复,msg为空时恢复正常
func (p *Pool) SetReplyError(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replyErr = msg
}

// SetDown 模拟redis不可用
func (p *Pool) SetDown(down bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.down = down
}

// Has 判断key是否存在
func (p *Pool) Has(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.data[key]
	return ok
}

// Value 取得key的原始值
func (p *Pool) Value(key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.data[key]
	return string(v), ok
}

// Put 直接写入key的值
func (p *Pool) Put(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[key] = []byte(value)
}

// TTL 取得key设置的过期秒数,0表示未设置
func (p *Pool) TTL(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.expires[key]
}

// Commands 取得cmd被执行的次数
func (p *Pool) Commands(cmd string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.commands[strings.ToUpper(cmd)]
}

// GetContext implements cache.ConnPool
func (p *Pool) GetContext(ctx context.Context) (redis.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	down := p.down
	p.mu.Unlock()
	if down {
		return nil, ErrDown
	}
	return &conn{pool: p}, nil
}

// Close implements cache.ConnPool
func (p *Pool) Close() error {
	return nil
}

var _ redis.ConnWithContext = (*conn)(nil)

type conn struct {
	pool    *Pool
	pending [][]interface{}
	closed  bool
}

func (c *conn) Close() error {
	c.closed = true
	return nil
}

func (c *conn) Err() error {
	if c.closed {
		return errors.New("redigo: closed")
	}
	return nil
}

func (c *conn) Send(cmd string, args ...interface{}) error {
	c.pending = append(c.pending, append([]interface{}{cmd}, args...))
	return nil
}

func (c *conn) Flush() error {
	return nil
}

func (c *conn) Receive() (interface{}, error) {
	if len(c.pending) == 0 {
		return nil, errors.New("no pending command")
	}
	next := c.pending[0]
	c.pending = c.pending[1:]
	return c.Do(next[0].(string), next[1:]...)
}

func (c *conn) ReceiveContext(ctx context.Context) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.Receive()
}

func (c *conn) ReceiveWithTimeout(timeout time.Duration) (interface{}, error) {
	return c.Receive()
}

func (c *conn) DoContext(ctx context.Context, cmd string, args ...interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.Do(cmd, args...)
}

func (c *conn) DoWithTimeout(timeout time.Duration, cmd string, args ...interface{}) (interface{}, error) {
	return c.Do(cmd, args...)
}

func (c *conn) Do(cmd string, args ...interface{}) (interface{}, error) {
	if c.closed {
		return nil, c.Err()
	}
	return c.pool.exec(strings.ToUpper(cmd), args)
}

func toString(arg interface{}) string {
	switch v := arg.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func (p *Pool) exec(cmd string, args []interface{}) (interface{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.down {
		return nil, ErrDown
	}
	p.commands[cmd]++
	if p.replyErr != "" {
		return nil, redis.Error(p.replyErr)
	}

	switch cmd {
	case "GET":
		if v, ok := p.data[toString(args[0])]; ok {
			return v, nil
		}
		return nil, nil
	case "SET":
		key := toString(args[0])
		p.data[key] = []byte(toString(args[1]))
		delete(p.expires, key)
		if len(args) == 4 && strings.ToUpper(toString(args[2])) == "EX" {
			sec, err := strconv.Atoi(toString(args[3]))
			if err != nil {
				return nil, redis.Error("ERR value is not an integer or out of range")
			}
			p.expires[key] = sec
		}
		return "OK", nil
	case "INCRBY":
		key := toString(args[0])
		delta, err := strconv.ParseInt(toString(args[1]), 10, 64)
		if err != nil {
			return nil, redis.Error("ERR value is not an integer or out of range")
		}
		var cur int64
		if v, ok := p.data[key]; ok {
			cur, err = strconv.ParseInt(string(v), 10, 64)
			if err != nil {
				return nil, redis.Error("ERR value is not an integer or out of range")
			}
		}
		cur += delta
		p.data[key] = []byte(strconv.FormatInt(cur, 10))
		return cur, nil
	case "EXISTS":
		if _, ok := p.data[toString(args[0])]; ok {
			return int64(1), nil
		}
		return int64(0), nil
	case "DEL":
		key := toString(args[0])
		if _, ok := p.data[key]; ok {
			delete(p.data, key)
			delete(p.expires, key)
			return int64(1), nil
		}
		return int64(0), nil
	case "EXPIRE":
		key := toString(args[0])
		if _, ok := p.data[key]; !ok {
			return int64(0), nil
		}
		sec, err := strconv.Atoi(toString(args[1]))
		if err != nil {
			return nil, redis.Error("ERR value is not an integer or out of range")
		}
		p.expires[key] = sec
		return int64(1), nil
	}
	return nil, redis.Error("ERR unknown command '" + cmd + "'")
}
