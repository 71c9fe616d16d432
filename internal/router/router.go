package router

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/hello-base/ohashi/config"
	"github.com/hello-base/ohashi/internal/handler"
)

func Setup(
	cfg *config.Config,
	repoHandler *handler.RepositoryHandler,
	docHandler *handler.DocumentHandler,
	pageHandler *handler.PageHandler,
	staticHandler *handler.StaticHandler,
	versionHandler *handler.VersionHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// 静态资源，使用最佳压缩级别；Range 请求不压缩
	static := r.Group("/static", gzip.Gzip(gzip.BestCompression, gzip.WithCustomShouldCompressFn(compressStatic)))
	{
		static.GET("/*filepath", staticHandler.Serve)
		static.HEAD("/*filepath", staticHandler.Serve)
	}

	// PJAX 页面
	r.GET("/", pageHandler.Home)
	r.GET("/pages/:page", pageHandler.Show)
	r.GET("/repositories", repoHandler.ListPage)
	r.GET("/repositories/:id", repoHandler.DetailPage)

	api := r.Group("/api")
	api.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	{
		api.GET("/version", versionHandler.Get)

		repos := api.Group("/repositories")
		{
			repos.POST("", repoHandler.Create)
			repos.GET("", repoHandler.List)
			repos.GET("/:id", repoHandler.Get)
			repos.DELETE("/:id", repoHandler.Delete)
			repos.POST("/:id/set-ready", repoHandler.SetReady)
			repos.GET("/:id/documents", docHandler.GetByRepository)
			repos.GET("/:id/documents/export", docHandler.Export)
		}

		docs := api.Group("/documents")
		{
			docs.POST("", docHandler.Create)
			docs.GET("/:id", docHandler.Get)
			docs.PUT("/:id", docHandler.Update)
			docs.DELETE("/:id", docHandler.Delete)
		}
	}

	return r
}

// compressStatic Range 请求返回原始字节，避免压缩后的 206 片段
func compressStatic(c *gin.Context) bool {
	return c.GetHeader("Range") == "" && strings.Contains(c.GetHeader("Accept-Encoding"), "gzip")
}
