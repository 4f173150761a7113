package orm

import (
	"context"
	"fmt"
	"time"

	c "github.com/d0ngw/mobydock/common"
)

// DBService is the service that supply Op
type DBService interface {
	c.Service
	OpCreator
}

// SimpleDBService implements DBService interface
type SimpleDBService struct {
	c.BaseService
	Config   DBConfigurer
	poolFunc PoolFunc
	pool     *Pool
}

// NewSimpleDBService build simple db service,poolFunc为nil时使用NewPool
func NewSimpleDBService(config DBConfigurer, poolFunc PoolFunc) *SimpleDBService {
	if poolFunc == nil {
		poolFunc = NewPool
	}
	return &SimpleDBService{
		BaseService: c.BaseService{SName: "db"},
		Config:      config,
		poolFunc:    poolFunc,
	}
}

// Init implements Initable.Init()
func (p *SimpleDBService) Init() error {
	if p.pool != nil {
		return fmt.Errorf("inited")
	}
	if p.Config == nil || p.Config.DBConfig() == nil {
		return fmt.Errorf("no db config")
	}

	pool, err := p.poolFunc(p.Config.DBConfig())
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return err
	}
	c.Infof("db pool inited,driver:%s", pool.Dialect().Name())
	p.pool = pool
	return nil
}

// Stop 关闭连接池
func (p *SimpleDBService) Stop() error {
	if p.pool == nil {
		return nil
	}
	err := p.pool.Close()
	p.pool = nil
	return err
}

// NewOp implements OpCreator.NewOp()
func (p *SimpleDBService) NewOp() (*Op, error) {
	if p.pool == nil {
		return nil, fmt.Errorf("please init db pool")
	}
	return p.pool.NewOp(), nil
}
