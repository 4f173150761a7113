package orm

import (
	"fmt"

	c "github.com/d0ngw/mobydock/common"
)

// 支持的数据库驱动
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// DBConfig 数据库配置
type DBConfig struct {
	Driver        string `yaml:"driver"` //mysql或sqlite,默认mysql
	User          string `yaml:"user"`
	Pass          string `yaml:"pass"`
	URL           string `yaml:"url"` //mysql为host:port,sqlite为文件路径或:memory:
	Schema        string `yaml:"schema"`
	MaxConn       int    `yaml:"maxConn"`
	MaxIdle       int    `yaml:"maxIdle"`
	MaxTimeSecond int    `yaml:"maxTimeSecond"`
	Charset       string `yaml:"charset"`
}

// Parse implements DBConfigurer
func (p *DBConfig) Parse() error {
	if p.Driver == "" {
		p.Driver = DriverMySQL
	}
	if p.URL == "" {
		return fmt.Errorf("need url")
	}
	switch p.Driver {
	case DriverMySQL:
		if p.Schema == "" {
			return fmt.Errorf("need schema")
		}
		if p.User == "" {
			return fmt.Errorf("need user")
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("unsupported driver %s", p.Driver)
	}
	if p.MaxConn < 0 || p.MaxIdle < 0 || p.MaxTimeSecond < 0 {
		return fmt.Errorf("invalid pool conf,maxConn:%d,maxIdle:%d,maxTimeSecond:%d", p.MaxConn, p.MaxIdle, p.MaxTimeSecond)
	}
	return nil
}

// DBConfig implements DBConfigurer
func (p *DBConfig) DBConfig() *DBConfig {
	return p
}

// DBConfigurer DB配置器
type DBConfigurer interface {
	c.Configurer
	DBConfig() *DBConfig
}
