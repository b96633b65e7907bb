package toolbox

import (
	"context"
	"sort"
	"sync"

	"github.com/bytedance/gg/goption"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	"github.com/kiosk404/toolgate/pkg/utils/json"
)

// UsageToolName is the name of the tool reporting call statistics.
const UsageToolName = "tool_usage"

// UsageDefinition is the contract of the tool_usage tool.
func UsageDefinition() tool.Definition {
	return tool.Definition{
		Name:        UsageToolName,
		Description: "Report how often each tool was called and how often it failed since startup.",
		Parameters: []tool.Param{
			{Name: "name", Type: tool.String, Description: "Only report this tool"},
		},
	}
}

// ToolUsage is the call statistic of one tool.
type ToolUsage struct {
	Name      string `json:"name"`
	Calls     int    `json:"calls"`
	Errors    int    `json:"errors"`
	LastError string `json:"last_error,omitempty"`
}

// usageTracker is fed by the tool call hooks.
type usageTracker struct {
	mu    sync.Mutex
	tools map[string]*ToolUsage
}

func newUsageTracker() *usageTracker {
	return &usageTracker{tools: make(map[string]*ToolUsage)}
}

func (u *usageTracker) entryLocked(name string) *ToolUsage {
	e, ok := u.tools[name]
	if !ok {
		e = &ToolUsage{Name: name}
		u.tools[name] = e
	}
	return e
}

func (u *usageTracker) beforeCall(ctx context.Context, data interface{}) error {
	ev, ok := data.(*plugin.ToolCallEvent)
	if !ok {
		return nil
	}
	u.mu.Lock()
	u.entryLocked(ev.Name).Calls++
	u.mu.Unlock()
	return nil
}

func (u *usageTracker) afterCall(ctx context.Context, data interface{}) error {
	ev, ok := data.(*plugin.ToolCallEvent)
	if !ok || ev.Err == nil {
		return nil
	}
	u.mu.Lock()
	e := u.entryLocked(ev.Name)
	e.Errors++
	e.LastError = ev.Err.Error()
	u.mu.Unlock()
	return nil
}

// snapshot returns copies sorted by tool name.
func (u *usageTracker) snapshot() []ToolUsage {
	u.mu.Lock()
	defer u.mu.Unlock()

	result := make([]ToolUsage, 0, len(u.tools))
	for _, e := range u.tools {
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (u *usageTracker) newUsageTool(goption.O[tool.Config]) (tool.Tool, error) {
	return tool.InvokeFunc(func(ctx context.Context, args map[string]any) (*tool.Result, error) {
		stats := u.snapshot()
		if name, ok := tool.StringArg(args, "name"); ok && name != "" {
			filtered := make([]ToolUsage, 0, 1)
			for _, s := range stats {
				if s.Name == name {
					filtered = append(filtered, s)
				}
			}
			stats = filtered
		}
		out, err := json.MarshalString(stats)
		if err != nil {
			return nil, err
		}
		return &tool.Result{Type: "json", Content: out}, nil
	}), nil
}
