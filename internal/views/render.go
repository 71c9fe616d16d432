package views

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/gin-gonic/gin/render"
	"k8s.io/klog/v2"
)

// Renderer 按名称渲染模板
type Renderer interface {
	render.HTMLRender
	Has(name string) bool
}

// TemplateSet 从文件系统加载的模板集合，模板名为相对根目录的路径
type TemplateSet struct {
	root *template.Template
}

// TemplateExtensions 参与解析的模板扩展名
var TemplateExtensions = []string{".html", ".tmpl"}

// NewTemplateSet 解析 fsys 下的全部模板
// 模板内可用 {{ include .pjax_template . }} 按变量名嵌入其它模板
func NewTemplateSet(fsys fs.FS, funcs template.FuncMap) (*TemplateSet, error) {
	ts := &TemplateSet{}
	base := template.FuncMap{
		"include": ts.include,
		"static":  func(name string) string { return "/static/" + strings.TrimPrefix(name, "/") },
	}
	for k, v := range funcs {
		base[k] = v
	}
	ts.root = template.New("").Funcs(base)

	count := 0
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isTemplate(p) {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		if _, err := ts.root.New(p).Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", p, err)
		}
		count++
		return nil
	})
	if err != nil {
		return nil, err
	}
	klog.V(6).Infof("views: loaded %d templates", count)
	return ts, nil
}

func isTemplate(p string) bool {
	ext := path.Ext(p)
	for _, e := range TemplateExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Has 判断模板是否存在
func (ts *TemplateSet) Has(name string) bool {
	return ts.root.Lookup(name) != nil
}

// Instance 实现 gin 的 render.HTMLRender
func (ts *TemplateSet) Instance(name string, data any) render.Render {
	return render.HTML{
		Template: ts.root,
		Name:     name,
		Data:     data,
	}
}

// Execute 渲染到字符串
func (ts *TemplateSet) Execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := ts.root.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (ts *TemplateSet) include(name string, data any) (template.HTML, error) {
	out, err := ts.Execute(name, data)
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil
}
