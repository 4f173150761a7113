package page

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/d0ngw/mobydock/cache/counter"
	c "github.com/d0ngw/mobydock/common"
	"github.com/d0ngw/mobydock/feedback"
	dhttp "github.com/d0ngw/mobydock/http"
)

var (
	//go:embed templates/*.html
	templateFS embed.FS
	//go:embed static
	staticFS embed.FS

	layout = template.Must(template.ParseFS(templateFS, "templates/*.html"))
)

const (
	layoutName   = "layout.html"
	staticMaxAge = time.Hour
)

type layoutData struct {
	*PageView
	Error string
}

// Controller 页面控制器,Index输出HTML,API输出JSON,Seed重置并初始化消息
type Controller struct {
	dhttp.BaseController
	handler   *Handler
	store     feedback.Store
	seedRoute bool
}

// NewController create Controller,seedRoute为false时/seed返回404
func NewController(handler *Handler, store feedback.Store, seedRoute bool) *Controller {
	return &Controller{
		BaseController: dhttp.BaseController{Name: "pages", Path: "/"},
		handler:        handler,
		store:          store,
		seedRoute:      seedRoute,
	}
}

// GetRoutes implements Controller
func (p *Controller) GetRoutes() ([]*dhttp.Route, error) {
	return dhttp.ReflectRoutes(p)
}

// Register 注册控制器、首页和静态文件
func (p *Controller) Register(conf *dhttp.Config, middlewares ...dhttp.Middleware) error {
	if err := conf.RegController(p, middlewares...); err != nil {
		return err
	}
	if err := conf.RegHandleFunc("GET /{$}", p.Index, middlewares...); err != nil {
		return err
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}
	return conf.RegStatic("/static/", static, staticMaxAge)
}

func errStatus(err error) int {
	if errors.Is(err, feedback.ErrEmptyStore) || errors.Is(err, counter.ErrCacheUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Index 渲染页面
func (p *Controller) Index(w http.ResponseWriter, r *http.Request) {
	view, err := p.handler.View(r.Context(), dhttp.GetBoolParameter(r.URL.Query(), "feed"))
	if err == nil {
		dhttp.RenderTemplate(w, http.StatusOK, layout, layoutName, &layoutData{PageView: view})
		return
	}

	c.Errorf("render index fail,err:%v", err)
	if !errors.Is(err, feedback.ErrEmptyStore) {
		http.Error(w, http.StatusText(errStatus(err)), errStatus(err))
		return
	}
	view, err = p.handler.View(r.Context(), false)
	if err != nil {
		view = &PageView{}
	}
	dhttp.RenderTemplate(w, http.StatusServiceUnavailable, layout, layoutName, &layoutData{
		PageView: view,
		Error:    "Moby Dock has nothing to say yet.",
	})
}

// API 以JSON格式返回页面数据
func (p *Controller) API(w http.ResponseWriter, r *http.Request) {
	view, err := p.handler.View(r.Context(), dhttp.GetBoolParameter(r.URL.Query(), "feed"))
	if err != nil {
		c.Errorf("api fail,err:%v", err)
		dhttp.RenderJSON(w, errStatus(err), &dhttp.Resp{Msg: err.Error()})
		return
	}
	dhttp.RenderJSON(w, http.StatusOK, &dhttp.Resp{Success: true, Data: view})
}

// Seed 清空消息并写入默认消息,完成后跳转到首页
func (p *Controller) Seed(w http.ResponseWriter, r *http.Request) {
	if !p.seedRoute {
		http.NotFound(w, r)
		return
	}
	if _, err := feedback.Seed(r.Context(), p.store, true, feedback.DefaultMessages...); err != nil {
		c.Errorf("seed fail,err:%v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
