package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/d0ngw/mobydock/cache"
	"github.com/d0ngw/mobydock/cache/counter"
	c "github.com/d0ngw/mobydock/common"
	"github.com/d0ngw/mobydock/feedback"
	dhttp "github.com/d0ngw/mobydock/http"
	"github.com/d0ngw/mobydock/orm"
	"github.com/d0ngw/mobydock/page"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ErrNotPersistent 没有配置数据库时不能初始化消息
var ErrNotPersistent = errors.New("seed need a db conf,memory store is not persistent")

// Option App的可选参数
type Option func(*App)

// WithRedisClient 使用已有的redis客户端,不再通过配置创建
func WithRedisClient(client *cache.RedisClient) Option {
	return func(a *App) {
		a.redisClient = client
	}
}

// WithPoolFunc 使用指定的方法创建数据库连接池
func WithPoolFunc(poolFunc orm.PoolFunc) Option {
	return func(a *App) {
		a.poolFunc = poolFunc
	}
}

// App 组装好的应用
type App struct {
	Conf     *Config
	Registry *prometheus.Registry
	Store    feedback.Store
	Counter  counter.Counter
	Handler  *page.Handler
	HTTP     *dhttp.Service

	poolFunc    orm.PoolFunc
	db          *orm.SimpleDBService
	dbStore     *feedback.DBStore
	redisClient *cache.RedisClient
	core        *c.Services
	web         *c.Services
}

// New 根据conf创建App,conf需要已经解析
func New(conf *Config, opts ...Option) (*App, error) {
	if conf == nil || conf.Feed == nil || conf.HTTP == nil {
		return nil, fmt.Errorf("conf is not parsed")
	}
	a := &App{Conf: conf, Registry: prometheus.NewRegistry()}
	for _, opt := range opts {
		opt(a)
	}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := a.buildStore(); err != nil {
		return nil, err
	}
	if err := a.buildCounter(); err != nil {
		return nil, err
	}

	metrics, err := page.NewMetrics(a.Registry, conf.Feed.MetricsPrefix)
	if err != nil {
		return nil, err
	}
	if a.Handler, err = page.NewHandler(a.Store, a.Counter, metrics); err != nil {
		return nil, err
	}
	if err = a.buildHTTP(); err != nil {
		return nil, err
	}

	var core []c.Service
	if a.db != nil {
		core = append(core, a.db)
	}
	a.core = c.NewServices(core...)
	a.web = c.NewServices(a.HTTP)
	return a, nil
}

func (a *App) buildStore() error {
	var store feedback.ListStore
	if a.Conf.DB == nil {
		c.Warnf("no db conf,use memory store with default messages")
		memory, err := feedback.NewMemoryStore(feedback.DefaultMessages...)
		if err != nil {
			return err
		}
		store = memory
	} else {
		a.db = orm.NewSimpleDBService(a.Conf.DB, a.poolFunc)
		a.dbStore = feedback.NewDBStore(a.db)
		store = a.dbStore
	}

	if !a.Conf.Feed.Snapshot {
		a.Store = store
		return nil
	}
	client, err := a.redis()
	if err != nil {
		return err
	}
	param := cache.NewParamConf(a.Conf.Feed.RedisGroup, a.Conf.Feed.KeyPrefix, a.Conf.Feed.SnapshotExpire)
	if a.Store, err = feedback.NewCachedStore(store, client, param); err != nil {
		return err
	}
	return nil
}

func (a *App) buildCounter() error {
	if a.Conf.Feed.RedisGroup == "" {
		c.Warnf("no redis group,use memory counter")
		a.Counter = counter.NewMemoryCounter()
		return nil
	}
	client, err := a.redis()
	if err != nil {
		return err
	}
	param := cache.NewParamConf(a.Conf.Feed.RedisGroup, a.Conf.Feed.KeyPrefix, a.Conf.Feed.CounterExpire)
	a.Counter, err = counter.NewRedisCounter(client, param)
	return err
}

func (a *App) redis() (*cache.RedisClient, error) {
	if a.redisClient != nil {
		return a.redisClient, nil
	}
	client, err := a.Conf.Redis.NewClient()
	if err != nil {
		return nil, err
	}
	a.redisClient = client
	return client, nil
}

func (a *App) buildHTTP() error {
	conf := a.Conf.HTTP
	metrics, err := dhttp.NewMetricsMiddleware(a.Registry, a.Conf.Feed.MetricsPrefix)
	if err != nil {
		return err
	}
	if err = conf.RegMiddleware(dhttp.AccessLog); err != nil {
		return err
	}
	if err = conf.RegMiddleware(metrics); err != nil {
		return err
	}
	controller := page.NewController(a.Handler, a.Store, a.Conf.Feed.SeedRoute)
	if err = controller.Register(conf); err != nil {
		return err
	}
	if err = conf.RegHandler("GET /metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})); err != nil {
		return err
	}
	if err = conf.RegHandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		dhttp.RenderText(w, "ok")
	}); err != nil {
		return err
	}
	a.HTTP = dhttp.NewService(conf)
	return nil
}

// Init 初始化并启动数据库等基础服务,创建feedback表
func (a *App) Init() error {
	if err := a.core.Init(); err != nil {
		return err
	}
	if err := a.core.Start(); err != nil {
		return err
	}
	if a.dbStore != nil {
		if err := a.dbStore.CreateTable(context.Background()); err != nil {
			return err
		}
	}
	return nil
}

// Start 启动Http服务
func (a *App) Start() error {
	if err := a.web.Init(); err != nil {
		return err
	}
	return a.web.Start()
}

// Persistent 是否使用数据库保存消息
func (a *App) Persistent() bool {
	return a.dbStore != nil
}

// Seed 写入默认消息,reset为true时先清空.内存存储在进程退出后丢失,返回ErrNotPersistent
func (a *App) Seed(ctx context.Context, reset bool) (int, error) {
	if !a.Persistent() {
		return 0, ErrNotPersistent
	}
	return feedback.Seed(ctx, a.Store, reset, feedback.DefaultMessages...)
}

// Stop 停止所有服务并关闭redis连接
func (a *App) Stop() error {
	err := a.web.Stop()
	if coreErr := a.core.Stop(); err == nil {
		err = coreErr
	}
	if a.redisClient != nil {
		if closeErr := a.redisClient.Close(); err == nil {
			err = closeErr
		}
	}
	c.SyncLog()
	return err
}
