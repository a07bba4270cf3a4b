package routers

import (
	"time"

	"github.com/haierkeys/menu-tree-service/internal/app"
	"github.com/haierkeys/menu-tree-service/internal/middleware"
	"github.com/haierkeys/menu-tree-service/internal/routers/api_router"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// NewRouter 创建 API 路由
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfo(app.Name, appContainer.Version().Version))
		if cfg.Tracer.Enabled {
			api.Use(middleware.TraceMiddleware(cfg.Tracer.Header)) // Trace ID 中间件
		}
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		if uni != nil {
			api.Use(middleware.LangWithTranslator(uni))
		}
		api.Use(middleware.AccessLog(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		menuHandler := api_router.NewMenuHandler(appContainer)
		linkHandler := api_router.NewLinkHandler(appContainer)
		rebuildHandler := api_router.NewRebuildHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)

		api.GET("/health", healthHandler.Check)
		api.GET("/version", healthHandler.Version)

		api.GET("/menus", menuHandler.List)
		api.POST("/menus", menuHandler.Create)
		api.GET("/menu", menuHandler.Get)
		api.PUT("/menu", menuHandler.Update)
		api.DELETE("/menu", menuHandler.Delete)
		api.GET("/menu/tree", menuHandler.Tree)
		api.GET("/menu/parent-options", menuHandler.ParentOptions)

		api.POST("/link", linkHandler.Create)
		api.GET("/link", linkHandler.Get)
		api.PUT("/link", linkHandler.Update)
		api.DELETE("/link", linkHandler.Delete)
		api.PUT("/link/move", linkHandler.Move)
		api.PUT("/link/enabled", linkHandler.Enabled)
		api.PUT("/link/revision", linkHandler.Revision)
		api.POST("/link/reset", linkHandler.Reset)
		api.GET("/links/count", linkHandler.Count)

		api.POST("/rebuild", rebuildHandler.Rebuild)
	}

	r.NoRoute(middleware.NoFound())

	return r
}
