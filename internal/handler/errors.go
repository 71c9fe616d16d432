package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/hello-base/ohashi/internal/model/fields"
	"github.com/hello-base/ohashi/internal/service"
)

// respondError 将业务错误映射为 JSON 响应
func respondError(c *gin.Context, err error) {
	var verr *fields.ValidationError
	var verrs fields.ValidationErrors

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  verr.Error(),
			"fields": map[string][]string{verr.Field: {verr.Message}},
		})
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": verrs.Error(), "fields": verrs.ByField()})
	case errors.Is(err, service.ErrInvalidID), errors.Is(err, service.ErrInvalidRepositoryURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRepositoryAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		klog.Errorf("请求处理失败: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
