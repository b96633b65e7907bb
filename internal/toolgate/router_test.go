package toolgate

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/gg/goption"
	"github.com/gin-gonic/gin"
	"github.com/kiosk404/toolgate/internal/toolgate/service/executor"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	"github.com/kiosk404/toolgate/internal/toolgate/service/toolapi"
	"github.com/kiosk404/toolgate/pkg/utils/json"
)

type greetPlugin struct{}

func (greetPlugin) Name() string { return "greeter" }

func (greetPlugin) Tools() []plugin.ToolSpec {
	greet := tool.NewFactory(tool.Definition{
		Name:        "greet",
		Description: "Greet someone",
		Parameters: []tool.Param{
			{Name: "who", Type: tool.String, Description: "Name to greet", Required: true},
		},
	}, func(cfg goption.O[tool.Config]) (tool.Tool, error) {
		greeting := tool.OrEmpty(cfg).String("greeting", "hello")
		return tool.InvokeFunc(func(ctx context.Context, args map[string]any) (*tool.Result, error) {
			who, err := tool.RequireString(args, "who")
			if err != nil {
				return nil, err
			}
			return tool.TextResult(greeting + " " + who), nil
		}), nil
	})
	secret := tool.NewFactory(tool.Definition{
		Name:        "secret",
		Description: "Not offered to the model",
	}, func(goption.O[tool.Config]) (tool.Tool, error) {
		return tool.InvokeFunc(func(ctx context.Context, args map[string]any) (*tool.Result, error) {
			return tool.TextResult("42"), nil
		}), nil
	})
	return []plugin.ToolSpec{
		{Factory: greet, AvailableForLLM: true},
		{Factory: secret},
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, *Runtime) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &plugin.Config{
		PluginConfigs: map[string]tool.Config{"greeter": {"greeting": "hi"}},
	}
	f := cfg.Complete().New()
	if err := f.RegisterFactory(plugin.Definition{ID: "greeter", Name: "Greeter"}, func(plugin.PluginArgs, plugin.Handle) (plugin.Plugin, error) {
		return greetPlugin{}, nil
	}, nil); err != nil {
		t.Fatal(err)
	}
	if err := f.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	resolver := toolapi.NewResolver(f.Registry())
	rt := &Runtime{
		Framework: f,
		Resolver:  resolver,
		Executor:  executor.New(resolver, executor.WithHooks(f.Registry())),
	}

	g := gin.New()
	initRouter(g, &routerDeps{runtime: rt, healthz: true})
	return g, rt
}

func do(t *testing.T, g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	g, _ := newTestRouter(t)
	if w := do(t, g, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestListTools(t *testing.T) {
	g, _ := newTestRouter(t)

	w := do(t, g, http.MethodGet, "/v1/tools", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var resp struct {
		Data []toolapi.NamedDefinition `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Name != "greet" {
		t.Errorf("data = %+v", resp.Data)
	}

	w = do(t, g, http.MethodGet, "/v1/tools?format=jsonschema", "")
	body := w.Body.String()
	if !strings.Contains(body, `"type":"function"`) || !strings.Contains(body, `"required":["who"]`) {
		t.Errorf("jsonschema body = %s", body)
	}
}

func TestGetTool(t *testing.T) {
	g, _ := newTestRouter(t)

	w := do(t, g, http.MethodGet, "/v1/tools/secret", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"llm_available":false`) {
		t.Errorf("secret: %d %s", w.Code, w.Body)
	}
	if w := do(t, g, http.MethodGet, "/v1/tools/nope", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown tool status = %d", w.Code)
	}
}

func TestInvokeTool(t *testing.T) {
	g, _ := newTestRouter(t)

	w := do(t, g, http.MethodPost, "/v1/tools/greet/invoke", `{"arguments":{"who":"bob"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var res executor.ToolResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Content != "hi bob" || res.Type != executor.ResultTypeToolResult {
		t.Errorf("result = %+v", res)
	}

	if w := do(t, g, http.MethodPost, "/v1/tools/greet/invoke", `{"arguments":{}}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing param status = %d", w.Code)
	}
	if w := do(t, g, http.MethodPost, "/v1/tools/ghost/invoke", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown tool status = %d", w.Code)
	}
}

func TestToggleTool(t *testing.T) {
	g, rt := newTestRouter(t)

	if w := do(t, g, http.MethodPost, "/v1/tools/greet/disable", ""); w.Code != http.StatusOK {
		t.Fatalf("disable status = %d", w.Code)
	}
	if n := len(rt.Resolver.GetLLMAvailableToolDefinitions()); n != 0 {
		t.Errorf("available after disable = %d", n)
	}
	if w := do(t, g, http.MethodPost, "/v1/tools/greet/enable", ""); w.Code != http.StatusOK {
		t.Fatalf("enable status = %d", w.Code)
	}
	if n := len(rt.Resolver.GetLLMAvailableToolDefinitions()); n != 1 {
		t.Errorf("available after enable = %d", n)
	}

	if w := do(t, g, http.MethodPost, "/v1/tools/greet/disable?chat_id=c1", ""); w.Code != http.StatusOK {
		t.Fatalf("chat disable status = %d", w.Code)
	}
	if n := len(rt.Executor.ToolDefinitions("c1")); n != 0 {
		t.Errorf("chat c1 definitions = %d", n)
	}
	if n := len(rt.Executor.ToolDefinitions("c2")); n != 1 {
		t.Errorf("chat c2 definitions = %d", n)
	}

	if w := do(t, g, http.MethodPost, "/v1/tools/ghost/disable", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown tool status = %d", w.Code)
	}
}

func TestToolCalls(t *testing.T) {
	g, _ := newTestRouter(t)

	body := `{"chat_id":"c1","tool_calls":[
		{"id":"a","name":"greet","arguments":"{\"who\":\"ann\"}"},
		{"id":"b","name":"greet","arguments":"{not json"},
		{"id":"c","name":"ghost","arguments":"{}"}
	]}`
	w := do(t, g, http.MethodPost, "/v1/tool_calls", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var resp struct {
		Results   []executor.ToolResult `json:"results"`
		UsedTools []string              `json:"used_tools"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("results = %+v", resp.Results)
	}
	if resp.Results[0].Content != "hi ann" || resp.Results[1].Type != executor.ResultTypeToolError {
		t.Errorf("results = %+v", resp.Results)
	}
	if len(resp.UsedTools) != 1 || resp.UsedTools[0] != "greet" {
		t.Errorf("used = %v", resp.UsedTools)
	}

	if w := do(t, g, http.MethodPost, "/v1/tool_calls", `{"chat_id":"x"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing tool_calls status = %d", w.Code)
	}

	w = do(t, g, http.MethodPost, "/v1/tool_calls", `{"tool_calls":[{"id":"a","arguments":"{}"}]}`)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), `"code":110002`) {
		t.Errorf("nameless call status = %d, body = %s", w.Code, w.Body)
	}
}

func TestPluginsEndpoints(t *testing.T) {
	g, rt := newTestRouter(t)

	w := do(t, g, http.MethodGet, "/v1/plugins", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"id":"greeter"`) || !strings.Contains(body, `"configured":true`) {
		t.Errorf("body = %s", body)
	}

	if w := do(t, g, http.MethodDelete, "/v1/plugins/greeter", ""); w.Code != http.StatusOK {
		t.Fatalf("unload status = %d, body = %s", w.Code, w.Body)
	}
	if _, ok, _ := rt.Resolver.GetToolInstance("greet"); ok {
		t.Error("greet should no longer resolve")
	}
	if w := do(t, g, http.MethodDelete, "/v1/plugins/greeter", ""); w.Code != http.StatusNotFound {
		t.Errorf("second unload status = %d", w.Code)
	}
}
