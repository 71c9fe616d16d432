package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hello-base/ohashi/internal/service"
)

type DocumentHandler struct {
	service *service.DocumentService
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(service *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Create 创建文档，所属仓库需处于 ready 状态
func (h *DocumentHandler) Create(c *gin.Context) {
	var req service.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// GetByRepository 获取仓库下文档列表
func (h *DocumentHandler) GetByRepository(c *gin.Context) {
	docs, err := h.service.GetByRepository(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, docs)
}

// Get 获取单个文档详情
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.service.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// Update 更新文档内容
func (h *DocumentHandler) Update(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.service.Update(c.Param("id"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// Export 导出仓库全部文档为 zip
func (h *DocumentHandler) Export(c *gin.Context) {
	data, filename, err := h.service.ExportAll(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/zip", data)
}
