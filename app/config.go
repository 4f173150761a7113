// Package app 组装MobyDock的各个组件
package app

import (
	"fmt"

	"github.com/d0ngw/mobydock/cache"
	c "github.com/d0ngw/mobydock/common"
	dhttp "github.com/d0ngw/mobydock/http"
	"github.com/d0ngw/mobydock/orm"
)

// DefaultKeyPrefix 缓存key的默认前缀
const DefaultKeyPrefix = "mobydock_"

// FeedConfig 喂食功能的配置
type FeedConfig struct {
	RedisGroup     string `yaml:"redis_group"`     //计数器和消息快照使用的redis group,为空时使用内存计数器
	KeyPrefix      string `yaml:"key_prefix"`      //缓存key前缀
	CounterExpire  int    `yaml:"counter_expire"`  //计数器过期时间,单位秒,0表示不过期
	Snapshot       bool   `yaml:"snapshot"`        //是否在redis中缓存消息快照
	SnapshotExpire int    `yaml:"snapshot_expire"` //消息快照过期时间,单位秒,开启snapshot时必须大于0
	SeedRoute      bool   `yaml:"seed_route"`      //是否开启/seed
	MetricsPrefix  string `yaml:"metrics_prefix"`  //prometheus指标的namespace
}

// Parse implements Configurer
func (p *FeedConfig) Parse() error {
	if p.KeyPrefix == "" {
		p.KeyPrefix = DefaultKeyPrefix
	}
	if p.MetricsPrefix == "" {
		p.MetricsPrefix = "mobydock"
	}
	if p.CounterExpire < 0 || p.SnapshotExpire < 0 {
		return fmt.Errorf("invalid feed conf,counter_expire:%d,snapshot_expire:%d", p.CounterExpire, p.SnapshotExpire)
	}
	if p.Snapshot && p.RedisGroup == "" {
		return fmt.Errorf("snapshot need redis_group")
	}
	if p.Snapshot && p.SnapshotExpire == 0 {
		return fmt.Errorf("snapshot need snapshot_expire")
	}
	return nil
}

// Config 应用配置
type Config struct {
	c.AppConfig `yaml:",inline"`
	HTTP        *dhttp.Config   `yaml:"http"`
	Redis       *cache.RedisConf `yaml:"redis"`
	DB          *orm.DBConfig    `yaml:"db"`
	Feed        *FeedConfig      `yaml:"feed"`
}

// Parse implements Configurer
func (p *Config) Parse() error {
	if p.HTTP == nil {
		p.HTTP = dhttp.NewConfig("")
	}
	if p.Feed == nil {
		p.Feed = &FeedConfig{}
	}
	if err := c.Parse(p); err != nil {
		return err
	}
	if p.Feed.RedisGroup != "" && (p.Redis == nil || !p.Redis.HasGroup(p.Feed.RedisGroup)) {
		return fmt.Errorf("can't find redis group %s", p.Feed.RedisGroup)
	}
	return nil
}

// LoadConfig 依次加载addon和paths中的配置,后面的配置覆盖前面的,加载完成后解析
func LoadConfig(addon string, paths ...string) (*Config, error) {
	conf := &Config{}
	if err := c.LoadConfig(conf, addon, "", paths...); err != nil {
		return nil, err
	}
	if err := conf.Parse(); err != nil {
		return nil, err
	}
	return conf, nil
}
