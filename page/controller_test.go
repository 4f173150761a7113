package page

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/d0ngw/mobydock/cache"
	"github.com/d0ngw/mobydock/cache/counter"
	"github.com/d0ngw/mobydock/cache/redistest"
	"github.com/d0ngw/mobydock/feedback"
	dhttp "github.com/d0ngw/mobydock/http"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResp struct {
	Success bool      `json:"success"`
	Data    *PageView `json:"data"`
	Msg     string    `json:"msg"`
}

func newServer(t *testing.T, handler *Handler, store feedback.Store, seedRoute bool) http.Handler {
	conf := dhttp.NewConfig(":0")
	require.NoError(t, NewController(handler, store, seedRoute).Register(conf))
	return conf.Handler()
}

func get(server http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decodeResp(t *testing.T, w *httptest.ResponseRecorder) *apiResp {
	resp := &apiResp{}
	require.NoError(t, jsoniter.Unmarshal(w.Body.Bytes(), resp))
	return resp
}

func TestIndex(t *testing.T) {
	store, err := feedback.NewMemoryStore(storeMessages...)
	require.NoError(t, err)
	handler, err := NewHandler(store, counter.NewMemoryCounter(), nil)
	require.NoError(t, err)
	server := newServer(t, handler, store, false)

	w := get(server, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<strong>0</strong>")
	assert.NotContains(t, w.Body.String(), `class="message"`)

	w = get(server, "/?feed=0")
	assert.Contains(t, w.Body.String(), "<strong>0</strong>")

	w = get(server, "/?feed=1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<strong>1</strong>")
	assert.Contains(t, w.Body.String(), `class="message"`)

	w = get(server, "/?feed=true")
	assert.Contains(t, w.Body.String(), "<strong>2</strong>")

	w = get(server, "/static/main.css")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ".container")

	w = get(server, "/static/")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(server, "/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIndexEmptyStore(t *testing.T) {
	store, err := feedback.NewMemoryStore()
	require.NoError(t, err)
	cnt := counter.NewMemoryCounter()
	handler, err := NewHandler(store, cnt, nil)
	require.NoError(t, err)
	server := newServer(t, handler, store, false)

	w := get(server, "/?feed=1")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "<strong>0</strong>")
	assert.Contains(t, w.Body.String(), `class="error"`)
	assert.False(t, cnt.Exists(FeedCountKey))

	w = get(server, "/api?feed=1")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeResp(t, w)
	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Contains(t, resp.Msg, feedback.ErrEmptyStore.Error())
}

func TestAPI(t *testing.T) {
	store, err := feedback.NewMemoryStore(storeMessages...)
	require.NoError(t, err)
	handler, err := NewHandler(store, counter.NewMemoryCounter(), nil)
	require.NoError(t, err)
	server := newServer(t, handler, store, false)

	w := get(server, "/api")
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResp(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, &PageView{}, resp.Data)

	for i := 1; i <= 3; i++ {
		resp = decodeResp(t, get(server, "/api?feed=yes"))
		assert.True(t, resp.Success)
		assert.Contains(t, storeMessages, resp.Data.Message)
		assert.EqualValues(t, i, resp.Data.FeedCount)
	}
}

func TestCacheDown(t *testing.T) {
	pool := redistest.NewPool()
	client := cache.NewRedisClient(map[string][]*cache.RedisServer{"counter": {cache.NewRedisServer("test", pool)}})
	cnt, err := counter.NewRedisCounter(client, cache.NewParamConf("counter", "", 0))
	require.NoError(t, err)
	store, err := feedback.NewMemoryStore(storeMessages...)
	require.NoError(t, err)
	handler, err := NewHandler(store, cnt, nil)
	require.NoError(t, err)
	server := newServer(t, handler, store, false)

	pool.SetDown(true)
	w := get(server, "/")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "<strong>")

	w = get(server, "/api?feed=1")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, decodeResp(t, w).Success)
}

func TestSeed(t *testing.T) {
	store, err := feedback.NewMemoryStore("old")
	require.NoError(t, err)
	handler, err := NewHandler(store, counter.NewMemoryCounter(), nil)
	require.NoError(t, err)

	w := get(newServer(t, handler, store, false), "/seed")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(newServer(t, handler, store, true), "/seed")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	all, err := store.All(t.Context())
	require.NoError(t, err)
	var messages []string
	for _, f := range all {
		messages = append(messages, f.Message)
	}
	assert.Equal(t, feedback.DefaultMessages, messages)
	assert.False(t, strings.Contains(strings.Join(messages, ","), "old"))
}

func TestSeedOnlyGet(t *testing.T) {
	store, err := feedback.NewMemoryStore("old")
	require.NoError(t, err)
	handler, err := NewHandler(store, counter.NewMemoryCounter(), nil)
	require.NoError(t, err)
	server := newServer(t, handler, store, true)

	for _, method := range []string{http.MethodPost, http.MethodDelete, http.MethodPut} {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, httptest.NewRequest(method, "/seed", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
	}
	count, err := store.Count(t.Context())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
