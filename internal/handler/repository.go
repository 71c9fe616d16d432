package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hello-base/ohashi/internal/service"
	"github.com/hello-base/ohashi/internal/views"
)

// RepositoriesPerPage 仓库列表页每页数量
const RepositoriesPerPage = 20

type RepositoryHandler struct {
	service *service.RepositoryService

	listView   *views.ListView
	detailView *views.DetailView
}

func NewRepositoryHandler(service *service.RepositoryService, renderer views.Renderer) *RepositoryHandler {
	h := &RepositoryHandler{service: service}
	h.listView = &views.ListView{
		PJAXResponse: views.PJAXResponse{
			TemplateName: "repositories/list.html",
			Renderer:     renderer,
		},
		ContextObjectName: "repositories",
		PaginateBy:        RepositoriesPerPage,
		Count: func(c *gin.Context) (int64, error) {
			return service.Count()
		},
		List: func(c *gin.Context, offset, limit int) (any, error) {
			return service.List(offset, limit)
		},
	}
	h.detailView = &views.DetailView{
		PJAXResponse: views.PJAXResponse{
			TemplateName: "repositories/detail.html",
			Renderer:     renderer,
		},
		ContextObjectName: "repository",
		GetObject: func(c *gin.Context, pk string) (any, error) {
			repo, err := service.Get(pk)
			if err != nil {
				return nil, notFoundOnInvalidID(err)
			}
			return repo, nil
		},
	}
	return h
}

// ListPage 仓库列表页（支持 PJAX）
func (h *RepositoryHandler) ListPage(c *gin.Context) {
	h.listView.Handle(c)
}

// DetailPage 仓库详情页（支持 PJAX）
func (h *RepositoryHandler) DetailPage(c *gin.Context) {
	h.detailView.Handle(c)
}

func (h *RepositoryHandler) Create(c *gin.Context) {
	var req service.CreateRepoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	repo, err := h.service.Create(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, repo)
}

func (h *RepositoryHandler) List(c *gin.Context) {
	repos, err := h.service.List(0, -1)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, repos)
}

func (h *RepositoryHandler) Get(c *gin.Context) {
	repo, err := h.service.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, repo)
}

func (h *RepositoryHandler) SetReady(c *gin.Context) {
	repo, err := h.service.SetReady(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, repo)
}

func (h *RepositoryHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
