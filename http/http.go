package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	c "github.com/d0ngw/mobydock/common"
	"golang.org/x/net/netutil"
)

// DefaultShutdownTimeout 停止服务时等待请求处理完成的时间
const DefaultShutdownTimeout = 10 * time.Second

type tcpKeepAliveListener struct {
	*net.TCPListener
}

// Accept 接受连接并开启keep alive
func (ln tcpKeepAliveListener) Accept() (net.Conn, error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	if err = tc.SetKeepAlive(true); err != nil {
		tc.Close()
		return nil, err
	}
	if err = tc.SetKeepAlivePeriod(3 * time.Minute); err != nil {
		tc.Close()
		return nil, err
	}
	return tc, nil
}

// Service Http服务
type Service struct {
	c.BaseService
	Conf            *Config
	ShutdownTimeout time.Duration
	listener        net.Listener
	server          *http.Server
	done            chan struct{}
	lock            sync.Mutex
}

// NewService create http Service
func NewService(conf *Config) *Service {
	return &Service{
		BaseService:     c.BaseService{SName: "http", Order: 100},
		Conf:            conf,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Init 初始化Http服务
func (p *Service) Init() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.Conf == nil {
		return fmt.Errorf("no http conf")
	}
	if err := p.Conf.Parse(); err != nil {
		return err
	}
	p.server = &http.Server{
		Addr:         p.Conf.Addr,
		ReadTimeout:  p.Conf.readTimeout(),
		WriteTimeout: p.Conf.writeTimeout(),
		Handler:      p.Conf.Handler(),
	}
	return nil
}

// Start 启动Http服务,开始端口监听和服务处理
func (p *Service) Start() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.server == nil {
		return fmt.Errorf("http service is not inited")
	}
	ln, err := net.Listen("tcp", p.Conf.Addr)
	if err != nil {
		return fmt.Errorf("listen at %s fail: %w", p.Conf.Addr, err)
	}
	c.Infof("Listen at %s", ln.Addr())

	var listener net.Listener = tcpKeepAliveListener{ln.(*net.TCPListener)}
	if p.Conf.MaxConns > 0 {
		listener = netutil.LimitListener(listener, p.Conf.MaxConns)
	}
	p.listener = listener
	p.done = make(chan struct{})

	go func(server *http.Server, done chan struct{}) {
		defer close(done)
		err := server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.Errorf("server.Serve return with %v", err)
		}
	}(p.server, p.done)
	return nil
}

// Addr 实际监听的地址
func (p *Service) Addr() string {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.listener == nil {
		return ""
	}
	return p.listener.Addr().String()
}

// Stop 停止Http服务,等待正在处理的请求完成
func (p *Service) Stop() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.server == nil || p.done == nil {
		return nil
	}
	timeout := p.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c.Infof("Waiting shutdown")
	err := p.server.Shutdown(ctx)
	<-p.done
	c.Infof("Finish shutdown")

	p.listener = nil
	p.done = nil
	return err
}
