package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/hello-base/ohashi/internal/storage"
)

var hashedAsset = regexp.MustCompile(`\.[0-9a-f]{12}(\.[^./]+)?$`)

// StaticHandler 从 CachedStaticStorage 提供静态资源，本地缓存优先
type StaticHandler struct {
	storage *storage.CachedStaticStorage
}

func NewStaticHandler(storage *storage.CachedStaticStorage) *StaticHandler {
	return &StaticHandler{storage: storage}
}

func (h *StaticHandler) Serve(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("filepath"), "/")
	if name == "" || strings.HasSuffix(name, "/") {
		c.Status(http.StatusNotFound)
		return
	}

	ctx := c.Request.Context()
	rc, err := h.storage.Open(ctx, name)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrSuspiciousOperation):
			c.Status(http.StatusBadRequest)
		case errors.Is(err, storage.ErrNotFound):
			c.Status(http.StatusNotFound)
		default:
			klog.Errorf("读取静态资源失败: %s: %v", name, err)
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		klog.Errorf("读取静态资源失败: %s: %v", name, err)
		c.Status(http.StatusInternalServerError)
		return
	}

	modified, err := h.storage.ModifiedTime(ctx, name)
	if err != nil {
		modified = time.Time{}
	}
	if hashedAsset.MatchString(name) {
		c.Header("Cache-Control", "public, max-age=31536000, immutable")
	}
	http.ServeContent(c.Writer, c.Request, name, modified, bytes.NewReader(data))
}

// URL 模板函数 static：返回带哈希的地址，无法计算时退回原始地址
func (h *StaticHandler) URL(name string) string {
	u, err := h.storage.URL(context.Background(), name)
	if err != nil {
		klog.V(6).Infof("static url fallback for %s: %v", name, err)
		return h.storage.Local().URL(name)
	}
	return u
}
