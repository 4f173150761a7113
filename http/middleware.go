package http

import (
	"net/http"
	"strconv"
	"time"

	c "github.com/d0ngw/mobydock/common"
	"github.com/prometheus/client_golang/prometheus"
)

// Middleware 定义中间件接口
type Middleware interface {
	// Handle 处理请求,通过调用next继续后续的处理
	Handle(next http.HandlerFunc) http.HandlerFunc
}

// MiddlewareFunc 函数形式的Middleware
type MiddlewareFunc func(next http.HandlerFunc) http.HandlerFunc

// Handle implements Middleware.Handle
func (f MiddlewareFunc) Handle(next http.HandlerFunc) http.HandlerFunc {
	return f(next)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// accessLevel 5xx的请求记为warn
func accessLevel(status int) c.LogLevel {
	if status >= http.StatusInternalServerError {
		return c.Warn
	}
	return c.Info
}

// AccessLog 记录请求的访问日志
var AccessLog = MiddlewareFunc(func(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next(sw, r)
		c.Logf(accessLevel(sw.code()), "%s %s %d %s", r.Method, r.URL.RequestURI(), sw.code(), time.Since(start))
	}
})

// MetricsMiddleware 使用prometheus统计请求数和耗时,按注册的路由pattern分类
type MetricsMiddleware struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsMiddleware create MetricsMiddleware and register collectors to reg
func NewMetricsMiddleware(reg prometheus.Registerer, namespace string) (*MetricsMiddleware, error) {
	m := &MetricsMiddleware{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Number of http requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Http request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	for _, collector := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handle implements Middleware.Handle
func (m *MetricsMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next(sw, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(sw.code())).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
