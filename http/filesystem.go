package http

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"time"
)

// StaticFS 只输出文件的静态资源,目录请求返回403,目录下有index.html时输出index.html
type StaticFS struct {
	fs http.FileSystem
}

// NewStaticFS 包装fsys,例如嵌入的模板和样式文件
func NewStaticFS(fsys fs.FS) StaticFS {
	return StaticFS{fs: http.FS(fsys)}
}

// Open implements http.FileSystem
func (p StaticFS) Open(name string) (http.File, error) {
	f, err := p.fs.Open(name)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !stat.IsDir() {
		return f, nil
	}

	index, err := p.fs.Open(path.Join(name, "index.html"))
	if err == nil {
		index.Close()
		return f, nil
	}
	f.Close()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fs.ErrPermission
	}
	return nil, err
}

// staticHandler 输出fsys中的文件,maxAge大于0时设置Cache-Control
func staticHandler(prefix string, fsys fs.FS, maxAge time.Duration) http.Handler {
	files := http.StripPrefix(prefix, http.FileServer(NewStaticFS(fsys)))
	if maxAge <= 0 {
		return files
	}
	cacheControl := "public, max-age=" + strconv.Itoa(int(maxAge.Seconds()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", cacheControl)
		files.ServeHTTP(w, r)
	})
}
