package http

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"unicode"
)

// Route 控制器的一个处理方法,注册为"Method Path"
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Controller 一组注册在同一个路径前缀下的处理方法
type Controller interface {
	GetName() string
	// GetPath 路径前缀
	GetPath() string
	// GetRoutes 返回controller的所有处理方法,Path相对于GetPath
	GetRoutes() ([]*Route, error)
}

// BaseController 提供Controller的名称和路径前缀
type BaseController struct {
	Name string
	Path string
}

// GetName implements Controller.GetName
func (p *BaseController) GetName() string {
	return p.Name
}

// GetPath implements Controller.GetPath
func (p *BaseController) GetPath() string {
	return p.Path
}

var handlerFuncType = reflect.TypeOf(http.HandlerFunc(nil))

// postPrefix 以Post开头的处理方法只接受POST请求
const postPrefix = "Post"

// ReflectRoutes 将controller中签名为http.HandlerFunc的可导出方法转为Route,按方法名排序.
// 方法名转为下划线分隔的路径,例如Index -> GET index,GetUser -> GET get_user,PostFeed -> POST feed
func ReflectRoutes(controller Controller) ([]*Route, error) {
	val := reflect.ValueOf(controller)
	if !val.IsValid() || val.Kind() != reflect.Ptr || val.IsNil() {
		return nil, fmt.Errorf("controller must be a valid pointer")
	}

	var routes []*Route
	controllerType := val.Type()
	for i := 0; i < val.NumMethod(); i++ {
		methodVal := val.Method(i)
		if !methodVal.Type().ConvertibleTo(handlerFuncType) {
			continue
		}
		method, name := http.MethodGet, controllerType.Method(i).Name
		if rest := strings.TrimPrefix(name, postPrefix); rest != name && rest != "" && unicode.IsUpper([]rune(rest)[0]) {
			method, name = http.MethodPost, rest
		}
		routes = append(routes, &Route{
			Method:  method,
			Path:    ToUnderlineName(name),
			Handler: methodVal.Interface().(func(http.ResponseWriter, *http.Request)),
		})
	}
	return routes, nil
}

// ToUnderlineName 将驼峰命名改为小写的下划线命名
func ToUnderlineName(camelName string) string {
	nameRune := []rune(camelName)
	normalizeName := make([]rune, 0, len(nameRune))

	for ni, r := range nameRune {
		if ni != 0 && unicode.IsUpper(r) && unicode.IsLower(nameRune[ni-1]) {
			normalizeName = append(normalizeName, '_')
		}
		normalizeName = append(normalizeName, unicode.ToLower(r))
	}
	return string(normalizeName)
}
