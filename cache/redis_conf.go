package cache

import (
	"context"
	"fmt"
	"sort"
	"time"

	c "github.com/d0ngw/mobydock/common"
	"github.com/gomodule/redigo/redis"
)

// Redis连接池的默认参数,时间单位为毫秒
const (
	DefaultConnectTimout = 5 * 1000
	DefaultReadTimeout   = 5 * 1000
	DefaultWriteTimeout  = 5 * 1000
	DefaultMaxActive     = 100
	DefaultMaxIdle       = 2
	DefaultIdleTimeout   = 60 * 1000
)

// ConnPool redis连接池,*redis.Pool实现了该接口
type ConnPool interface {
	GetContext(ctx context.Context) (redis.Conn, error)
	Close() error
}

// RedisConfigurer Redis配置器
type RedisConfigurer interface {
	c.Configurer
	RedisConfig() *RedisConf
}

// RedisPoolConf Redis连接池配置
type RedisPoolConf struct {
	ConnectTimeout int `yaml:"connect_timeout"` //连接超时时间,单位毫秒
	ReadTimeout    int `yaml:"read_timeout"`    //读取超时,单位毫秒
	WriteTimeout   int `yaml:"write_timeout"`   //写超时,单位毫秒
	MaxIdle        int `yaml:"max_idle"`        //最大空闲连接
	MaxActive      int `yaml:"max_active"`      //最大活跃连接,0表示不限制
	IdleTimeout    int `yaml:"idle_timeout"`    //空闲连接的超时时间,单位毫秒
}

var defaultPool = &RedisPoolConf{
	ConnectTimeout: DefaultConnectTimout,
	ReadTimeout:    DefaultReadTimeout,
	WriteTimeout:   DefaultWriteTimeout,
	MaxActive:      DefaultMaxActive,
	MaxIdle:        DefaultMaxIdle,
	IdleTimeout:    DefaultIdleTimeout,
}

// RedisServer Redis实例的配置
type RedisServer struct {
	ID   string   `yaml:"id"`   //Redis实例的id
	Host string   `yaml:"host"` //Redis主机地址
	Port int      `yaml:"port"` //Redis的端口
	Auth string   `yaml:"auth"` //Redis认证密码
	DB   int      `yaml:"db"`   //Redis DB
	pool ConnPool //Redis实例的连接池
}

// NewRedisServer 使用已有的连接池创建RedisServer
func NewRedisServer(id string, pool ConnPool) *RedisServer {
	return &RedisServer{ID: id, pool: pool}
}

func (p *RedisServer) addr() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// initPool 使用指定的参数初始化pool
func (p *RedisServer) initPool(poolConf *RedisPoolConf) error {
	if p.pool != nil {
		return fmt.Errorf("server %s already inited", p.ID)
	}
	options := []redis.DialOption{
		redis.DialConnectTimeout(time.Duration(poolConf.ConnectTimeout) * time.Millisecond),
		redis.DialReadTimeout(time.Duration(poolConf.ReadTimeout) * time.Millisecond),
		redis.DialWriteTimeout(time.Duration(poolConf.WriteTimeout) * time.Millisecond),
		redis.DialDatabase(p.DB),
	}
	if p.Auth != "" {
		options = append(options, redis.DialPassword(p.Auth))
	}

	var addr = p.addr()
	p.pool = &redis.Pool{
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialContext(ctx, "tcp", addr, options...)
		},
		MaxActive:   poolConf.MaxActive,
		MaxIdle:     poolConf.MaxIdle,
		IdleTimeout: time.Duration(poolConf.IdleTimeout) * time.Millisecond,
		Wait:        true,
	}
	return nil
}

// GetConn acquire redis conn
func (p *RedisServer) GetConn(ctx context.Context) (redis.Conn, error) {
	if p.pool == nil {
		return nil, fmt.Errorf("server %s has no pool", p.ID)
	}
	return p.pool.GetContext(ctx)
}

// Close 关闭连接池
func (p *RedisServer) Close() error {
	if p.pool == nil {
		return nil
	}
	return p.pool.Close()
}

// RedisConf redis config
type RedisConf struct {
	Servers   []*RedisServer            `yaml:"servers"`     //实例列表
	Groups    map[string][]string       `yaml:"groups"`      //Redis组定义,key为组ID;value为Server的id列表
	Pool      *RedisPoolConf            `yaml:"pool"`        //默认的连接池配置
	GroupPool map[string]*RedisPoolConf `yaml:"group_pools"` //Redis组的连接池配置
	Codec     string                    `yaml:"codec"`       //对象编码,msgpack或json,默认msgpack
	groups    map[string][]*RedisServer
	codec     Codec
}

// Parse implements Configurer interface
func (p *RedisConf) Parse() error {
	if p == nil {
		c.Warnf("no redis conf")
		return nil
	}
	codec, err := NewCodec(p.Codec)
	if err != nil {
		return err
	}
	groups := map[string][]*RedisServer{}
	servers := map[string]*RedisServer{}

	//检查server的配置
	var dupCheck = map[string]struct{}{}
	for _, server := range p.Servers {
		if server == nil || c.IsEmpty(server.ID, server.Host) {
			return fmt.Errorf("invalid redis server conf,id and host must not be empty")
		}
		if server.Port <= 0 {
			return fmt.Errorf("invalid redis server conf,port %d ", server.Port)
		}

		id := "id " + server.ID
		if _, ok := dupCheck[id]; ok {
			return fmt.Errorf("duplicate server:%s", id)
		}
		dupCheck[id] = struct{}{}

		addr := fmt.Sprintf("%s/%d", server.addr(), server.DB)
		if _, ok := dupCheck[addr]; ok {
			return fmt.Errorf("duplicate server: %s", addr)
		}
		dupCheck[addr] = struct{}{}
		servers[server.ID] = server
	}

	//检查group
	for groupID, groupServers := range p.Groups {
		if groupID == "" {
			return fmt.Errorf("invalid redis group id")
		}
		if len(groupServers) == 0 {
			return fmt.Errorf("redis group id %s has no servers", groupID)
		}
		dupCheck = map[string]struct{}{}
		for _, serverID := range groupServers {
			if _, ok := dupCheck[serverID]; ok {
				return fmt.Errorf("duplicate server id %s in group %s", serverID, groupID)
			}
			dupCheck[serverID] = struct{}{}
		}

		poolConf := p.GroupPool[groupID]
		if poolConf == nil {
			poolConf = p.Pool
		}
		if poolConf == nil {
			poolConf = defaultPool
		}

		//对redis实例进行排序,保证key到实例的映射稳定
		sortedIDs := append([]string(nil), groupServers...)
		sort.Strings(sortedIDs)
		redisServers := make([]*RedisServer, 0, len(sortedIDs))
		for _, serverID := range sortedIDs {
			server := servers[serverID]
			if server == nil {
				return fmt.Errorf("can't find server id %s", serverID)
			}
			groupServer := *server
			groupServer.pool = nil
			if err := groupServer.initPool(poolConf); err != nil {
				return err
			}
			redisServers = append(redisServers, &groupServer)
		}
		groups[groupID] = redisServers
	}
	p.groups = groups
	p.codec = codec
	return nil
}

// RedisConfig implements RedisConfigurer
func (p *RedisConf) RedisConfig() *RedisConf {
	return p
}

// HasGroup 是否定义了group
func (p *RedisConf) HasGroup(group string) bool {
	_, ok := p.groups[group]
	return ok
}

// NewClient 使用解析后的配置创建RedisClient
func (p *RedisConf) NewClient() (*RedisClient, error) {
	if p == nil || p.groups == nil {
		return nil, fmt.Errorf("redis conf is not parsed")
	}
	client := NewRedisClient(p.groups)
	client.SetCodec(p.codec)
	return client, nil
}
