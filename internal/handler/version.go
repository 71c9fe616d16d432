package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hello-base/ohashi/internal/version"
)

type VersionHandler struct {
	info version.Info
}

func NewVersionHandler(info version.Info) *VersionHandler {
	return &VersionHandler{info: info}
}

func (h *VersionHandler) Get(c *gin.Context) {
	v, err := version.Get(h.info)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":   version.Title,
		"version": v,
		"license": version.License,
	})
}
