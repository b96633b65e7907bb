package toolgate

import (
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/kiosk404/toolgate/internal/toolgate/handler/middleware"
	v1 "github.com/kiosk404/toolgate/internal/toolgate/handler/v1"
)

// routerDeps holds the dependencies needed for route registration.
type routerDeps struct {
	runtime     *Runtime
	enablePprof bool
	healthz     bool
	token       string
	allowLocal  bool
}

func initRouter(g *gin.Engine, deps *routerDeps) {
	installMiddleware(g, deps)
	installController(g, deps)
}

func installMiddleware(g *gin.Engine, deps *routerDeps) {
	g.Use(gin.Recovery())
	g.Use(middleware.RequestLogger())
	g.Use(middleware.BearerAuth(deps.token, deps.allowLocal))

	if deps.enablePprof {
		pprof.Register(g)
	}
}

func installController(g *gin.Engine, deps *routerDeps) {
	if deps.healthz {
		g.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	// Handlers.
	toolHandler := v1.NewToolHandler(deps.runtime.Resolver, deps.runtime.Framework.Registry(), deps.runtime.Executor)
	pluginHandler := v1.NewPluginHandler(deps.runtime.Framework)

	// --- /v1 route group ---
	apiV1 := g.Group("/v1")
	{
		// Tool definitions and invocation.
		apiV1.GET("/tools", toolHandler.List)
		apiV1.GET("/tools/:name", toolHandler.Get)
		apiV1.POST("/tools/:name/invoke", toolHandler.Invoke)
		apiV1.POST("/tools/:name/enable", toolHandler.Enable)
		apiV1.POST("/tools/:name/disable", toolHandler.Disable)
		apiV1.POST("/tool_calls", toolHandler.ToolCalls)

		// Plugin management.
		apiV1.GET("/plugins", pluginHandler.List)
		apiV1.DELETE("/plugins/:name", pluginHandler.Unload)
	}
}
