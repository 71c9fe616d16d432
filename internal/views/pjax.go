package views

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

// PJAXHeader PJAX 请求携带的请求头
const PJAXHeader = "X-PJAX"

const pjaxInfix = ".pjax"

// IsPJAX 请求头存在且非空即视为 PJAX 请求
func IsPJAX(r *http.Request) bool {
	return r.Header.Get(PJAXHeader) != ""
}

// PJAXify 在扩展名前插入 .pjax，如 repositories/list.html -> repositories/list.pjax.html
// 已经是局部模板名时原样返回
func PJAXify(name string) string {
	if name == "" {
		return ""
	}
	dir, file := path.Split(name)
	ext := path.Ext(file)
	root := strings.TrimSuffix(file, ext)
	if ext == pjaxInfix || strings.HasSuffix(root, pjaxInfix) {
		return name
	}
	return dir + root + pjaxInfix + ext
}

// PJAXResponse 根据 X-PJAX 请求头在完整模板与局部模板之间切换
type PJAXResponse struct {
	TemplateName string

	// TemplateNameFunc 非空时按请求决定模板名，优先于 TemplateName
	TemplateNameFunc func(c *gin.Context) string

	// DefaultTemplateNames 追加在 TemplateName 之后的候选模板
	DefaultTemplateNames []string

	Renderer Renderer
}

func (p *PJAXResponse) templateName(c *gin.Context) string {
	if p.TemplateNameFunc != nil {
		return p.TemplateNameFunc(c)
	}
	return p.TemplateName
}

// TemplateNames 返回候选模板名；PJAX 请求时全部替换为局部模板
func (p *PJAXResponse) TemplateNames(c *gin.Context) []string {
	var names []string
	if name := p.templateName(c); name != "" {
		names = append(names, name)
	}
	names = append(names, p.DefaultTemplateNames...)

	if IsPJAX(c.Request) {
		partials := make([]string, len(names))
		for i, name := range names {
			partials[i] = PJAXify(name)
		}
		return partials
	}
	return names
}

// ContextData 合并模板上下文并加入 pjax_template
func (p *PJAXResponse) ContextData(c *gin.Context, data gin.H) gin.H {
	ctx := gin.H{}
	for k, v := range data {
		ctx[k] = v
	}
	ctx["pjax_template"] = PJAXify(p.templateName(c))
	ctx["is_pjax"] = IsPJAX(c.Request)
	return ctx
}

// RenderToResponse 使用第一个存在的候选模板渲染
func (p *PJAXResponse) RenderToResponse(c *gin.Context, data gin.H) {
	p.RenderStatus(c, http.StatusOK, data)
}

// RenderStatus 同 RenderToResponse，可指定状态码
func (p *PJAXResponse) RenderStatus(c *gin.Context, code int, data gin.H) {
	names := p.TemplateNames(c)
	c.Header("Vary", PJAXHeader)

	for _, name := range names {
		if p.Renderer.Has(name) {
			klog.V(6).Infof("views: render %s (pjax=%v)", name, IsPJAX(c.Request))
			c.Render(code, p.Renderer.Instance(name, data))
			return
		}
	}

	klog.Errorf("views: no template found in %v", names)
	c.String(http.StatusInternalServerError, "template does not exist: %s", strings.Join(names, ", "))
}
