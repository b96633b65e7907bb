// Package executor runs model-issued tool calls against the tool resolver.
package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	"github.com/kiosk404/toolgate/internal/toolgate/service/toolapi"
	"github.com/kiosk404/toolgate/pkg/logger"
	"github.com/kiosk404/toolgate/pkg/utils/json"
)

const (
	// ResultTypeToolResult marks a successful invocation.
	ResultTypeToolResult = "tool_result"
	// ResultTypeToolError marks a failed invocation.
	ResultTypeToolError = "tool_error"
)

// ToolCall is one function call issued by the model.
type ToolCall struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Arguments is the JSON object produced by the model.
	Arguments string `json:"arguments"`
}

// ToolResult is the outcome of one ToolCall.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Content    string `json:"content"`
	Error      string `json:"error,omitempty"`
}

// Resolver is the subset of the tool resolution API the executor needs.
type Resolver interface {
	GetToolInstance(name string) (tool.Tool, bool, error)
	GetToolDefinition(name string) (tool.Definition, bool)
	GetLLMAvailableToolDefinitions() []toolapi.NamedDefinition
}

// Executor resolves and invokes tool calls. Tool instances are built fresh
// for every call and never retained.
type Executor struct {
	resolver Resolver
	hooks    *plugin.Registry
	disabled *DisabledTools
}

// Option configures an Executor.
type Option func(*Executor)

// WithHooks fires before/after tool call hooks registered in the registry.
func WithHooks(registry *plugin.Registry) Option {
	return func(e *Executor) {
		e.hooks = registry
	}
}

// WithDisabledTools uses a shared per-chat disabled tool store.
func WithDisabledTools(d *DisabledTools) Option {
	return func(e *Executor) {
		e.disabled = d
	}
}

// New creates an Executor.
func New(resolver Resolver, opts ...Option) *Executor {
	e := &Executor{resolver: resolver}
	for _, opt := range opts {
		opt(e)
	}
	if e.disabled == nil {
		e.disabled = NewDisabledTools()
	}
	return e
}

// DisabledTools returns the per-chat disabled tool store.
func (e *Executor) DisabledTools() *DisabledTools {
	return e.disabled
}

// ToolDefinitions returns the definitions offered to the model in a chat.
// An empty chatID applies no per-chat filtering.
func (e *Executor) ToolDefinitions(chatID string) []toolapi.NamedDefinition {
	defs := e.resolver.GetLLMAvailableToolDefinitions()
	if chatID == "" {
		return defs
	}
	result := make([]toolapi.NamedDefinition, 0, len(defs))
	for _, d := range defs {
		if e.disabled.IsDisabled(chatID, d.Name) {
			continue
		}
		result = append(result, d)
	}
	return result
}

// ExecuteToolCall runs a single call. An unknown or chat-disabled tool
// yields (nil, nil). Construction and invocation failures are returned as errors.
func (e *Executor) ExecuteToolCall(ctx context.Context, chatID string, call ToolCall) (*ToolResult, error) {
	if chatID != "" && e.disabled.IsDisabled(chatID, call.Name) {
		logger.Warn("[Executor] tool %q is disabled in chat %q", call.Name, chatID)
		return nil, nil
	}

	instance, ok, err := e.resolver.GetToolInstance(call.Name)
	if err != nil {
		return nil, fmt.Errorf("build tool %q: %w", call.Name, err)
	}
	if !ok {
		logger.Warn("[Executor] unknown tool %q", call.Name)
		return nil, nil
	}

	args, err := decodeArguments(call.Arguments)
	if err != nil {
		return nil, err
	}
	if err := e.checkRequired(call.Name, args); err != nil {
		return nil, err
	}

	event := &plugin.ToolCallEvent{Name: call.Name, Args: args}
	e.fire(ctx, plugin.HookBeforeToolCall, event)

	res, err := instance.Invoke(ctx, args)
	event.Err = err
	e.fire(ctx, plugin.HookAfterToolCall, event)
	if err != nil {
		return nil, fmt.Errorf("invoke tool %q: %w", call.Name, err)
	}

	result := &ToolResult{
		ToolCallID: call.ID,
		Name:       call.Name,
		Type:       ResultTypeToolResult,
	}
	if res != nil {
		result.Content = res.Content
	}
	logger.Debug("[Executor] tool %q executed", call.Name)
	return result, nil
}

// ExecuteToolCalls runs calls sequentially. A failing call produces a
// tool_error result; unknown tools produce nothing. It returns the results
// and the names of the tools that ran successfully.
func (e *Executor) ExecuteToolCalls(ctx context.Context, chatID string, calls []ToolCall) ([]ToolResult, []string) {
	results := make([]ToolResult, 0, len(calls))
	var used []string

	for _, call := range calls {
		if call.ID == "" {
			call.ID = uuid.NewString()
		}
		if err := ctx.Err(); err != nil {
			results = append(results, errorResult(call, err))
			continue
		}

		res, err := e.ExecuteToolCall(ctx, chatID, call)
		if err != nil {
			logger.Error("[Executor] tool %q failed: %v", call.Name, err)
			results = append(results, errorResult(call, err))
			continue
		}
		if res == nil {
			continue
		}
		results = append(results, *res)
		used = append(used, call.Name)
	}
	return results, used
}

func (e *Executor) checkRequired(name string, args map[string]any) error {
	def, ok := e.resolver.GetToolDefinition(name)
	if !ok {
		return nil
	}
	return def.CheckRequired(args)
}

func (e *Executor) fire(ctx context.Context, event plugin.HookEvent, data *plugin.ToolCallEvent) {
	if e.hooks == nil {
		return
	}
	if err := plugin.FireHooks(ctx, e.hooks, event, data); err != nil {
		logger.Warn("[Executor] %s hook error: %v", event, err)
	}
}

func decodeArguments(raw string) (map[string]any, error) {
	args := make(map[string]any)
	if strings.TrimSpace(raw) == "" {
		return args, nil
	}
	if err := json.UnmarshalString(raw, &args); err != nil {
		return nil, fmt.Errorf("%w: %v", errno.ErrInvalidArguments, err)
	}
	return args, nil
}

func errorResult(call ToolCall, err error) ToolResult {
	return ToolResult{
		ToolCallID: call.ID,
		Name:       call.Name,
		Type:       ResultTypeToolError,
		Content:    fmt.Sprintf("tool %s failed: %v", call.Name, err),
		Error:      err.Error(),
	}
}
