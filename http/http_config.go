// Package http 提供基本的http服务
package http

import (
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	c "github.com/d0ngw/mobydock/common"
)

type handlerWithMiddleware struct {
	handler     http.Handler
	middlewares []Middleware
}

// Config Http配置
type Config struct {
	Addr         string `yaml:"addr"`          //Http监听地址
	ReadTimeout  int    `yaml:"read_timeout"`  //读超时,单位秒
	WriteTimeout int    `yaml:"write_timeout"` //写超时,单位秒
	MaxConns     int    `yaml:"max_conns"`     //最大的并发连接数,0表示不限制
	middlewares  []Middleware
	handles      map[string]*handlerWithMiddleware
	patterns     []string
	mux          sync.Mutex
}

// NewConfig 创建配置
func NewConfig(addr string) *Config {
	return &Config{Addr: addr}
}

// Parse implements Configurer
func (p *Config) Parse() error {
	if p.Addr == "" {
		p.Addr = ":http"
	}
	if p.ReadTimeout < 0 || p.WriteTimeout < 0 || p.MaxConns < 0 {
		return fmt.Errorf("invalid http conf,read_timeout:%d,write_timeout:%d,max_conns:%d", p.ReadTimeout, p.WriteTimeout, p.MaxConns)
	}
	return nil
}

func (p *Config) readTimeout() time.Duration {
	return time.Duration(p.ReadTimeout) * time.Second
}

func (p *Config) writeTimeout() time.Duration {
	return time.Duration(p.WriteTimeout) * time.Second
}

// RegController 注册controller中的所有处理方法,Route的Method为空时只接受GET和HEAD请求
func (p *Config) RegController(controller Controller, middlewares ...Middleware) error {
	if controller == nil {
		return fmt.Errorf("can't reg nil controller")
	}

	var path = controller.GetPath()
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	routes, err := controller.GetRoutes()
	if err != nil {
		return err
	}
	if len(routes) == 0 {
		c.Warnf("can't find handler in %T", controller)
		return nil
	}

	for _, route := range routes {
		method := route.Method
		if method == "" {
			method = http.MethodGet
		}
		pattern := method + " " + path + strings.TrimPrefix(route.Path, "/")
		if err := p.reg(pattern, route.Handler, middlewares); err != nil {
			return err
		}
		c.Infof("Register controller %T#%s,pattern:%s", controller, controller.GetName(), pattern)
	}
	return nil
}

func (p *Config) reg(pattern string, handler http.Handler, middlewares []Middleware) error {
	if handler == nil {
		return fmt.Errorf("can't bind nil handler to %s", pattern)
	}
	p.mux.Lock()
	defer p.mux.Unlock()
	if p.handles == nil {
		p.handles = map[string]*handlerWithMiddleware{}
	}
	if _, ok := p.handles[pattern]; ok {
		return fmt.Errorf("duplicate path:%s", pattern)
	}
	p.handles[pattern] = &handlerWithMiddleware{handler: handler, middlewares: middlewares}
	p.patterns = append(p.patterns, pattern)
	return nil
}

// RegHandleFunc 注册patternPath的处理函数handlerFunc
func (p *Config) RegHandleFunc(patternPath string, handlerFunc http.HandlerFunc, middlewares ...Middleware) error {
	if handlerFunc == nil {
		return fmt.Errorf("can't bind nil handler to %s", patternPath)
	}
	return p.reg(patternPath, handlerFunc, middlewares)
}

// RegHandler 注册patternPath的处理器
func (p *Config) RegHandler(patternPath string, handler http.Handler, middlewares ...Middleware) error {
	return p.reg(patternPath, handler, middlewares)
}

// RegStatic 将fsys注册到GET pattern下,不输出目录列表,maxAge大于0时设置Cache-Control
func (p *Config) RegStatic(pattern string, fsys fs.FS, maxAge time.Duration) error {
	if fsys == nil {
		return fmt.Errorf("can't bind nil fs to %s", pattern)
	}
	c.Infof("add static %s", pattern)
	return p.reg(http.MethodGet+" "+pattern, staticHandler(strings.TrimSuffix(pattern, "/"), fsys, maxAge), nil)
}

// RegMiddleware 注册全局的middleware,对所有的处理器生效
func (p *Config) RegMiddleware(middleware Middleware) error {
	if middleware == nil {
		return fmt.Errorf("invalid middleware")
	}
	p.mux.Lock()
	defer p.mux.Unlock()
	p.middlewares = append(p.middlewares, middleware)
	return nil
}

// Handler 构建包含所有注册处理器的http.Handler
func (p *Config) Handler() http.Handler {
	p.mux.Lock()
	defer p.mux.Unlock()

	serveMux := http.NewServeMux()
	for _, pattern := range p.patterns {
		serveMux.Handle(pattern, chain(p.handles[pattern], p.middlewares))
	}
	return serveMux
}

// chain 依次调用handler自身的middleware和全局middleware,全局middleware在最外层
func chain(handler *handlerWithMiddleware, global []Middleware) http.HandlerFunc {
	h := handler.handler.ServeHTTP
	middlewares := append(append([]Middleware{}, global...), handler.middlewares...)
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i].Handle(h)
	}
	return h
}
