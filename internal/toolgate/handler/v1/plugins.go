package v1

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/kiosk404/toolgate/internal/pkg/core"
	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	"github.com/kiosk404/toolgate/pkg/errorx"
)

// PluginHandler exposes the loaded plugins.
type PluginHandler struct {
	framework *plugin.Framework
}

// NewPluginHandler creates a new PluginHandler.
func NewPluginHandler(framework *plugin.Framework) *PluginHandler {
	return &PluginHandler{framework: framework}
}

// List handles GET /v1/plugins.
func (h *PluginHandler) List(c *gin.Context) {
	registry := h.framework.Registry()

	names := registry.PluginNames()
	data := make([]PluginObject, 0, len(names))
	for _, name := range names {
		def, _ := registry.PluginDefinition(name)
		_, configured := registry.PluginConfig(name)
		tools := registry.ToolsByPlugin(name)
		if tools == nil {
			tools = []plugin.ComponentInfo{}
		}
		data = append(data, PluginObject{
			Definition: def,
			Configured: configured,
			Tools:      tools,
		})
	}

	core.WriteResponse(c, nil, PluginListResponse{
		Object: "list",
		Data:   data,
		Stats:  registry.Stats(),
	})
}

// Unload handles DELETE /v1/plugins/:name.
func (h *PluginHandler) Unload(c *gin.Context) {
	name := c.Param("name")
	if err := h.framework.UnloadPlugin(c.Request.Context(), name); err != nil {
		code := ErrPluginUnload
		if errors.Is(err, errno.ErrPluginNotFound) {
			code = ErrPluginNotFound
		}
		core.WriteResponse(c, errorx.WrapC(err, code, "unload plugin"), nil)
		return
	}
	core.WriteResponse(c, nil, gin.H{"name": name, "unloaded": true})
}
