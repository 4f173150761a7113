package cache

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	c "github.com/d0ngw/mobydock/common"
	"github.com/gomodule/redigo/redis"
)

// Redis命令
const (
	GET    = "GET"
	SET    = "SET"
	DEL    = "DEL"
	EXISTS = "EXISTS"
	EXPIRE = "EXPIRE"
	INCRBY = "INCRBY"
	EX     = "EX"
)

// ReplyOK SET成功的返回
const ReplyOK = "OK"

// RedisClient 按照group访问redis,group内多个实例时按key的hash选择实例
type RedisClient struct {
	groups map[string][]*RedisServer
	codec  Codec
}

// NewRedisClient create RedisClient,对象使用msgpack编码
func NewRedisClient(groups map[string][]*RedisServer) *RedisClient {
	return &RedisClient{groups: groups, codec: newMsgPackCodec()}
}

// SetCodec 设置SetObject和GetObject使用的编码
func (p *RedisClient) SetCodec(codec Codec) {
	if codec != nil {
		p.codec = codec
	}
}

// Codec 当前的对象编码
func (p *RedisClient) Codec() Codec {
	return p.codec
}

func (p *RedisClient) server(param Param) (*RedisServer, error) {
	servers := p.groups[param.Group()]
	if len(servers) == 0 {
		return nil, fmt.Errorf("can't find redis group %s", param.Group())
	}
	if len(servers) == 1 {
		return servers[0], nil
	}
	h := fnv.New32a()
	h.Write([]byte(param.Key()))
	return servers[h.Sum32()%uint32(len(servers))], nil
}

// unavailableReplies 表示实例暂时无法服务的错误回复前缀
var unavailableReplies = []string{"LOADING", "READONLY", "MASTERDOWN", "CLUSTERDOWN", "TRYAGAIN", "BUSY "}

func isUnavailableReply(replyErr redis.Error) bool {
	msg := string(replyErr)
	for _, prefix := range unavailableReplies {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

// Do 在param对应的实例上执行命令,连接或网络错误以及LOADING、READONLY等实例状态错误被包装为ErrUnavailable,
// 其他redis返回的错误原样返回
func (p *RedisClient) Do(ctx context.Context, param Param, cmd string, args ...interface{}) (reply interface{}, err error) {
	server, err := p.server(param)
	if err != nil {
		return nil, err
	}
	conn, err := server.GetConn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: get conn from %s fail,err:%v", ErrUnavailable, server.ID, err)
	}
	defer conn.Close()

	reply, err = redis.DoContext(conn, ctx, cmd, args...)
	if err != nil {
		var replyErr redis.Error
		if errors.As(err, &replyErr) && !isUnavailableReply(replyErr) {
			return nil, err
		}
		c.Debugf("redis %s %s on %s fail,err:%v", cmd, param.Key(), server.ID, err)
		return nil, fmt.Errorf("%w: %s %s fail,err:%v", ErrUnavailable, cmd, param.Key(), err)
	}
	return reply, nil
}

// Get 取得key的值,ok为false表示key不存在
func (p *RedisClient) Get(ctx context.Context, param Param) (reply interface{}, ok bool, err error) {
	reply, err = p.Do(ctx, param, GET, param.Key())
	if err != nil {
		return nil, false, err
	}
	return reply, reply != nil, nil
}

// GetInt64 取得key的int64值,ok为false表示key不存在
func (p *RedisClient) GetInt64(ctx context.Context, param Param) (val int64, ok bool, err error) {
	reply, ok, err := p.Get(ctx, param)
	if err != nil || !ok {
		return 0, ok, err
	}
	val, err = redis.Int64(reply, nil)
	if err != nil {
		return 0, true, fmt.Errorf("parse %s fail,err:%w", param.Key(), err)
	}
	return val, true, nil
}

// Set 设置key的值,param.Expire()大于0时同时设置过期时间
func (p *RedisClient) Set(ctx context.Context, param Param, value interface{}) error {
	var reply interface{}
	var err error
	if param.Expire() > 0 {
		reply, err = p.Do(ctx, param, SET, param.Key(), value, EX, param.Expire())
	} else {
		reply, err = p.Do(ctx, param, SET, param.Key(), value)
	}
	if err != nil {
		return err
	}
	if s, _ := redis.String(reply, nil); s != ReplyOK {
		return fmt.Errorf("set %s fail,reply:%v", param.Key(), reply)
	}
	return nil
}

// IncrBy 原子地将key的值增加delta,key不存在时从0开始,返回增加后的值
func (p *RedisClient) IncrBy(ctx context.Context, param Param, delta int64) (int64, error) {
	return redis.Int64(p.Do(ctx, param, INCRBY, param.Key(), delta))
}

// Exists 判断key是否存在
func (p *RedisClient) Exists(ctx context.Context, param Param) (bool, error) {
	return redis.Bool(p.Do(ctx, param, EXISTS, param.Key()))
}

// Del 删除key,返回key是否存在
func (p *RedisClient) Del(ctx context.Context, param Param) (bool, error) {
	return redis.Bool(p.Do(ctx, param, DEL, param.Key()))
}

// Expire 按照param.Expire()设置key的过期时间,返回key是否存在
func (p *RedisClient) Expire(ctx context.Context, param Param) (bool, error) {
	if param.Expire() <= 0 {
		return false, fmt.Errorf("invalid expire %d", param.Expire())
	}
	return redis.Bool(p.Do(ctx, param, EXPIRE, param.Key(), param.Expire()))
}

// SetObject 使用Codec编码后设置
func (p *RedisClient) SetObject(ctx context.Context, param Param, obj interface{}) error {
	bytes, err := p.codec.Encode(obj)
	if err != nil {
		return err
	}
	return p.Set(ctx, param, bytes)
}

// GetObject 取得key的值并使用Codec解码到dest,ok为false表示key不存在
func (p *RedisClient) GetObject(ctx context.Context, param Param, dest interface{}) (ok bool, err error) {
	reply, ok, err := p.Get(ctx, param)
	if err != nil || !ok {
		return ok, err
	}
	bytes, err := redis.Bytes(reply, nil)
	if err != nil {
		return true, err
	}
	if err = p.codec.Decode(bytes, dest); err != nil {
		return true, fmt.Errorf("decode %s fail,err:%w", param.Key(), err)
	}
	return true, nil
}

// Close 关闭所有的连接池
func (p *RedisClient) Close() error {
	var firstErr error
	for group, servers := range p.groups {
		for _, server := range servers {
			if err := server.Close(); err != nil {
				c.Warnf("close redis %s in group %s fail,err:%v", server.ID, group, err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	return firstErr
}
