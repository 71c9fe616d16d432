package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hello-base/ohashi/internal/service"
	"github.com/hello-base/ohashi/internal/views"
)

// PageHandler 渲染 templates/pages 下的静态页面
type PageHandler struct {
	renderer views.Renderer
	view     *views.TemplateView
}

func NewPageHandler(renderer views.Renderer) *PageHandler {
	return &PageHandler{
		renderer: renderer,
		view: &views.TemplateView{PJAXResponse: views.PJAXResponse{
			Renderer:         renderer,
			TemplateNameFunc: pageTemplate,
		}},
	}
}

func pageTemplate(c *gin.Context) string {
	return "pages/" + c.Param("page") + ".html"
}

// Show 页面不存在时返回 404
func (h *PageHandler) Show(c *gin.Context) {
	if !h.renderer.Has(pageTemplate(c)) {
		c.String(http.StatusNotFound, "page not found")
		return
	}
	h.view.Handle(c)
}

// Home 首页
func (h *PageHandler) Home(c *gin.Context) {
	c.Params = append(c.Params, gin.Param{Key: "page", Value: "index"})
	h.Show(c)
}

func notFoundOnInvalidID(err error) error {
	if errors.Is(err, service.ErrInvalidID) {
		return views.ErrNotFound
	}
	return err
}
