package http

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"

	c "github.com/d0ngw/mobydock/common"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Resp JSON Http响应
type Resp struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Msg     string      `json:"msg"`
}

// GetParameter 取得由name指定的参数值
func GetParameter(r url.Values, name string) string {
	return strings.TrimSpace(r.Get(name))
}

// GetBoolParameter 参数存在且不为空,并且不是0、false、f、no、off时返回true
func GetBoolParameter(r url.Values, name string) bool {
	switch strings.ToLower(GetParameter(r, name)) {
	case "", "0", "false", "f", "no", "off":
		return false
	}
	return true
}

// RenderTemplate 使用tmpl中名为name的模板渲染,status为0时使用200
func RenderTemplate(w http.ResponseWriter, status int, tmpl *template.Template, name string, data interface{}) {
	var buf strings.Builder
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		c.Errorf("execute template %s err:%v", name, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status > 0 {
		w.WriteHeader(status)
	}
	w.Write([]byte(buf.String()))
}

// RenderJSON 渲染JSON,status为0时使用200
func RenderJSON(w http.ResponseWriter, status int, jsonData interface{}) {
	data, err := json.Marshal(jsonData)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if status > 0 {
		w.WriteHeader(status)
	}
	w.Write(data)
}

// RenderText 渲染Text
func RenderText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}
