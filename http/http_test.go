package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"testing/fstest"
	"time"

	c "github.com/d0ngw/mobydock/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getBody(t *testing.T, url string) (int, string) {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func tagMiddleware(tag string) Middleware {
	return MiddlewareFunc(func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Trace", tag)
			next(w, r)
		}
	})
}

func TestHttpServer(t *testing.T) {
	controller := &DemoController{BaseController: BaseController{Name: "demo", Path: "/demo"}}

	conf := NewConfig("127.0.0.1:0")
	require.NoError(t, conf.RegMiddleware(tagMiddleware("global")))
	require.NoError(t, conf.RegController(controller, tagMiddleware("controller")))
	require.NoError(t, conf.RegHandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		RenderText(w, "pong")
	}))
	assert.Error(t, conf.RegHandleFunc("/ping", nil))
	assert.Error(t, conf.RegController(controller))
	require.NoError(t, conf.RegStatic("/static/", fstest.MapFS{
		"app.css":         {Data: []byte("body{}")},
		"dir/a.txt":       {Data: []byte("a")},
		"docs/index.html": {Data: []byte("docs")},
	}, time.Minute))
	assert.Error(t, conf.RegStatic("/assets/", nil, 0))

	svc := NewService(conf)
	services := c.NewServices(svc)
	require.NoError(t, services.Init())
	require.NoError(t, services.Start())
	defer services.Stop()

	base := "http://" + svc.Addr()
	status, body := getBody(t, base+"/ping")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pong", body)

	resp, err := http.Get(base + "/demo/get_user")
	require.NoError(t, err)
	body2, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "GetUser:/demo:demo", string(body2))
	assert.Equal(t, []string{"global", "controller"}, resp.Header.Values("X-Trace"))

	resp, err = http.Post(base+"/demo/get_user", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.PostForm(base+"/demo/name", url.Values{"name": {"moby"}})
	require.NoError(t, err)
	body2, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "PostName:moby", string(body2))

	resp, err = http.Get(base + "/static/app.css")
	require.NoError(t, err)
	body2, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "body{}", string(body2))
	assert.Equal(t, "public, max-age=60", resp.Header.Get("Cache-Control"))

	status, body = getBody(t, base+"/static/docs/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "docs", body)

	status, _ = getBody(t, base+"/static/dir/")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = getBody(t, base+"/not_exist")
	assert.Equal(t, http.StatusNotFound, status)

	require.NoError(t, services.Stop())
	assert.Equal(t, c.TERMINATED, svc.State())
	_, err = http.Get(base + "/ping")
	assert.Error(t, err)
}

func TestServiceInitFail(t *testing.T) {
	assert.Error(t, (&Service{}).Init())
	assert.Error(t, (&Service{}).Start())
	assert.Error(t, NewService(&Config{Addr: ":0", MaxConns: -1}).Init())
}

func TestGetBoolParameter(t *testing.T) {
	cases := map[string]bool{
		"feed=1":     true,
		"feed=true":  true,
		"feed=yes":   true,
		"feed=moby":  true,
		"feed=":      false,
		"feed=0":     false,
		"feed=False": false,
		"feed=no":    false,
		"feed=off":   false,
		"":           false,
	}
	for query, expected := range cases {
		values, err := url.ParseQuery(query)
		require.NoError(t, err)
		assert.Equal(t, expected, GetBoolParameter(values, "feed"), query)
	}
}

func TestRenderJSON(t *testing.T) {
	w := httptest.NewRecorder()
	RenderJSON(w, http.StatusServiceUnavailable, &Resp{Success: false, Msg: "down"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":false,"data":null,"msg":"down"}`, w.Body.String())
}

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetricsMiddleware(reg, "test")
	require.NoError(t, err)
	_, err = NewMetricsMiddleware(reg, "test")
	assert.Error(t, err)

	conf := NewConfig(":0")
	require.NoError(t, conf.RegMiddleware(m))
	require.NoError(t, conf.RegMiddleware(AccessLog))
	require.NoError(t, conf.RegHandleFunc("GET /fail", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "fail", http.StatusInternalServerError)
	}))
	handler := conf.Handler()

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET /fail", "500")))
}

func TestAccessLevel(t *testing.T) {
	assert.Equal(t, c.Info, accessLevel(http.StatusOK))
	assert.Equal(t, c.Info, accessLevel(http.StatusNotFound))
	assert.Equal(t, c.Warn, accessLevel(http.StatusInternalServerError))
	assert.Equal(t, c.Warn, accessLevel(http.StatusServiceUnavailable))
}
