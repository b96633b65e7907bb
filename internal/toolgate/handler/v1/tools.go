package v1

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/kiosk404/toolgate/internal/pkg/core"
	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/executor"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	"github.com/kiosk404/toolgate/internal/toolgate/service/toolapi"
	"github.com/kiosk404/toolgate/pkg/errorx"
	"github.com/kiosk404/toolgate/pkg/utils/json"
)

// ToolHandler serves the tool listing and invocation endpoints.
type ToolHandler struct {
	resolver *toolapi.Resolver
	registry *plugin.Registry
	executor *executor.Executor
}

// NewToolHandler creates a new ToolHandler.
func NewToolHandler(resolver *toolapi.Resolver, registry *plugin.Registry, exec *executor.Executor) *ToolHandler {
	return &ToolHandler{resolver: resolver, registry: registry, executor: exec}
}

// List handles GET /v1/tools.
//
// Query parameters:
//   - chat_id: hide tools disabled for this chat
//   - format=jsonschema: OpenAI-style function declarations
func (h *ToolHandler) List(c *gin.Context) {
	defs := h.executor.ToolDefinitions(c.Query("chat_id"))

	if c.Query("format") == "jsonschema" {
		data := make([]FunctionTool, 0, len(defs))
		for _, d := range defs {
			data = append(data, FunctionTool{
				Type: "function",
				Function: FunctionDefinition{
					Name:        d.Name,
					Description: d.Definition.Description,
					Parameters:  d.Definition.JSONSchema(),
				},
			})
		}
		core.WriteResponse(c, nil, ToolListResponse{Object: "list", Data: data})
		return
	}

	core.WriteResponse(c, nil, ToolListResponse{Object: "list", Data: defs})
}

// Get handles GET /v1/tools/:name.
func (h *ToolHandler) Get(c *gin.Context) {
	name := c.Param("name")
	info, ok := h.registry.ComponentInfo(name, plugin.KindTool)
	if !ok {
		core.WriteResponse(c, errorx.WithCode(ErrToolNotFound, "tool %q not found", name), nil)
		return
	}
	def, ok := h.resolver.GetToolDefinition(name)
	if !ok {
		core.WriteResponse(c, errorx.WithCode(ErrToolNotFound, "tool %q has no factory", name), nil)
		return
	}
	core.WriteResponse(c, nil, ToolDetail{Info: info, Definition: def})
}

// Invoke handles POST /v1/tools/:name/invoke.
func (h *ToolHandler) Invoke(c *gin.Context) {
	var req InvokeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind invoke request"), nil)
			return
		}
	}
	if req.Arguments == nil {
		req.Arguments = map[string]any{}
	}
	arguments, err := json.MarshalString(req.Arguments)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "encode arguments"), nil)
		return
	}

	name := c.Param("name")
	res, err := h.executor.ExecuteToolCall(c.Request.Context(), req.ChatID, executor.ToolCall{
		Name:      name,
		Arguments: arguments,
	})
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, toolErrorCode(err), "invoke %q", name), nil)
		return
	}
	if res == nil {
		core.WriteResponse(c, errorx.WithCode(ErrToolNotFound, "tool %q not found or disabled", name), nil)
		return
	}
	core.WriteResponse(c, nil, res)
}

// Enable handles POST /v1/tools/:name/enable. With ?chat_id the tool is
// re-enabled for that chat only.
func (h *ToolHandler) Enable(c *gin.Context) {
	h.toggle(c, true)
}

// Disable handles POST /v1/tools/:name/disable. With ?chat_id the tool is
// hidden from that chat only.
func (h *ToolHandler) Disable(c *gin.Context) {
	h.toggle(c, false)
}

func (h *ToolHandler) toggle(c *gin.Context, enable bool) {
	name := c.Param("name")
	chatID := c.Query("chat_id")

	if chatID != "" {
		if _, ok := h.registry.ComponentInfo(name, plugin.KindTool); !ok {
			core.WriteResponse(c, errorx.WithCode(ErrToolNotFound, "tool %q not found", name), nil)
			return
		}
		if enable {
			h.executor.DisabledTools().Enable(chatID, name)
		} else {
			h.executor.DisabledTools().Disable(chatID, name)
		}
		core.WriteResponse(c, nil, ToggleResponse{Name: name, ChatID: chatID, Enabled: enable})
		return
	}

	var err error
	if enable {
		err = h.registry.EnableComponent(name, plugin.KindTool)
	} else {
		err = h.registry.DisableComponent(name, plugin.KindTool)
	}
	if err != nil {
		code := ErrToolInvoke
		if errors.Is(err, errno.ErrComponentNotFound) {
			code = ErrToolNotFound
		}
		core.WriteResponse(c, errorx.WrapC(err, code, "toggle %q", name), nil)
		return
	}
	core.WriteResponse(c, nil, ToggleResponse{Name: name, Enabled: enable})
}

// ToolCalls handles POST /v1/tool_calls: a batch of model-issued calls.
// Failures are reported per call inside the results.
func (h *ToolHandler) ToolCalls(c *gin.Context) {
	var req ToolCallsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind tool calls"), nil)
		return
	}
	for i, call := range req.ToolCalls {
		if call.Name == "" {
			core.WriteResponse(c, errorx.WithCode(ErrValidation, "tool_calls[%d]: name is required", i), nil)
			return
		}
	}

	results, used := h.executor.ExecuteToolCalls(c.Request.Context(), req.ChatID, req.ToolCalls)
	if used == nil {
		used = []string{}
	}
	core.WriteResponse(c, nil, ToolCallsResponse{Results: results, UsedTools: used})
}
