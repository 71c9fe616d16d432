package main

import (
	"context"
	"fmt"
	"html/template"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/hello-base/ohashi/config"
	"github.com/hello-base/ohashi/internal/embed"
	"github.com/hello-base/ohashi/internal/eventbus"
	"github.com/hello-base/ohashi/internal/handler"
	"github.com/hello-base/ohashi/internal/pkg/database"
	"github.com/hello-base/ohashi/internal/repository"
	"github.com/hello-base/ohashi/internal/router"
	"github.com/hello-base/ohashi/internal/service"
	"github.com/hello-base/ohashi/internal/storage"
	"github.com/hello-base/ohashi/internal/subscriber"
	"github.com/hello-base/ohashi/internal/version"
	"github.com/hello-base/ohashi/internal/views"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	klog.Infof("%s %s 启动中...", version.Title, version.MustGet(version.Current))

	cfg := config.GetConfig()

	if err := os.MkdirAll(cfg.Static.CacheDir, 0755); err != nil {
		return fmt.Errorf("create static cache directory: %w", err)
	}

	// 初始化数据库
	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	// 初始化静态资源存储与事件
	staticBus := eventbus.NewStaticEventBus()
	st, err := storage.NewFromConfig(ctx, cfg, storage.WithEvents(staticBus))
	if err != nil {
		return fmt.Errorf("initialize static storage: %w", err)
	}
	subscriber.NewStaticEventSubscriber(st).Register(staticBus)

	// 初始化 Repository
	repoRepo := repository.NewRepoRepository(db)
	docRepo := repository.NewDocumentRepository(db)

	// 初始化 Service
	repoService := service.NewRepositoryService(repoRepo, docRepo)
	docService := service.NewDocumentService(db, docRepo, repoRepo)

	// 初始化模板
	staticHandler := handler.NewStaticHandler(st)
	templates, err := views.NewTemplateSet(embed.GetTemplatesFS(cfg.Templates.Dir), template.FuncMap{
		"static": staticHandler.URL,
	})
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	// 初始化 Handler
	repoHandler := handler.NewRepositoryHandler(repoService, templates)
	docHandler := handler.NewDocumentHandler(docService)
	pageHandler := handler.NewPageHandler(templates)
	versionHandler := handler.NewVersionHandler(version.Current)

	// 设置路由
	r := router.Setup(cfg, repoHandler, docHandler, pageHandler, staticHandler, versionHandler)

	klog.Infof("Server starting on port %s...", cfg.Server.Port)
	return r.Run(":" + cfg.Server.Port)
}
