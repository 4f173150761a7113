// Package cache 提供基于redis的缓存服务
package cache

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable 表示缓存不可用,例如连接失败、超时
var ErrUnavailable = errors.New("cache unavailable")

// Param is the cache param
type Param interface {
	//Group cache group id
	Group() string
	//Key cache key
	Key() string
	//Expire second time,0 means never expire
	Expire() int
}

// ParamConf is the cache param conf with cache group,key prefix and expire
type ParamConf struct {
	group     string
	keyPrefix string
	expire    int
}

// NewParamConf create ParamConf
func NewParamConf(group, keyPrefix string, expire int) *ParamConf {
	return &ParamConf{
		group:     group,
		keyPrefix: keyPrefix,
		expire:    expire,
	}
}

// Group return cache group
func (p *ParamConf) Group() string {
	return p.group
}

// Expire return expire second
func (p *ParamConf) Expire() int {
	return p.expire
}

// KeyPrefix return key prefix
func (p *ParamConf) KeyPrefix() string {
	return p.keyPrefix
}

// Validate 检查group和expire
func (p *ParamConf) Validate() error {
	if strings.TrimSpace(p.group) == "" {
		return fmt.Errorf("cache group must not be empty")
	}
	if p.expire < 0 {
		return fmt.Errorf("invalid expire %d for group %s", p.expire, p.group)
	}
	return nil
}

// NewWithExpire create new ParamConf with new expire parameter
func (p *ParamConf) NewWithExpire(expire int) *ParamConf {
	var param = *p
	param.expire = expire
	return &param
}

// NewParamKey create new ParamKey with key
func (p *ParamConf) NewParamKey(key string) *ParamKey {
	return &ParamKey{
		ParamConf: p,
		key:       p.keyPrefix + key,
	}
}

// ParamKey is the cache param with key
type ParamKey struct {
	*ParamConf
	key string
}

// Key implements Param.Key()
func (p *ParamKey) Key() string {
	return p.key
}
