package notes

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	"github.com/kiosk404/toolgate/internal/toolgate/service/toolapi"
)

func newNotesFramework(t *testing.T, cfg tool.Config) (*plugin.Framework, *toolapi.Resolver) {
	t.Helper()
	f := (&plugin.Config{PluginConfigs: map[string]tool.Config{PluginName: cfg}}).Complete().New()
	args := plugin.PluginArgs{"config": cfg}
	if err := f.RegisterFactory(PluginDefinition(), Factory, args); err != nil {
		t.Fatalf("RegisterFactory: %v", err)
	}
	if err := f.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return f, toolapi.NewResolver(f.Registry())
}

func invoke(t *testing.T, r *toolapi.Resolver, name string, args map[string]any) (*tool.Result, error) {
	t.Helper()
	inst, ok, err := r.GetToolInstance(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		t.Fatalf("tool %q not registered", name)
	}
	return inst.Invoke(context.Background(), args)
}

func TestNotesNotStarted(t *testing.T) {
	_, r := newNotesFramework(t, tool.Config{"db_path": filepath.Join(t.TempDir(), "notes.db")})
	if _, _, err := r.GetToolInstance("note_write"); !errors.Is(err, errno.ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
}

func TestNotesLifecycle(t *testing.T) {
	cfg := tool.Config{
		"db_path":        filepath.Join(t.TempDir(), "notes.db"),
		"max_note_bytes": 16,
	}
	f, r := newNotesFramework(t, cfg)
	ctx := context.Background()
	if err := f.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer f.Stop(ctx)

	var names []string
	for _, d := range r.GetLLMAvailableToolDefinitions() {
		names = append(names, d.Name)
	}
	if strings.Join(names, ",") != "note_write,note_read,note_list" {
		t.Errorf("LLM tools = %v", names)
	}

	if _, err := invoke(t, r, "note_write", map[string]any{"title": "todo", "content": "buy milk", "tags": []any{"home"}}); err != nil {
		t.Fatalf("note_write: %v", err)
	}
	if _, err := invoke(t, r, "note_write", map[string]any{"title": "long", "content": strings.Repeat("x", 32)}); !errors.Is(err, errno.ErrInvalidArguments) {
		t.Errorf("oversized note err = %v", err)
	}

	res, err := invoke(t, r, "note_read", map[string]any{"title": "todo"})
	if err != nil || !strings.Contains(res.Content, "buy milk") || !strings.Contains(res.Content, "home") {
		t.Fatalf("note_read = %+v, %v", res, err)
	}

	res, err = invoke(t, r, "note_list", map[string]any{})
	if err != nil || res.Content != "todo" {
		t.Errorf("note_list = %+v, %v", res, err)
	}

	if _, err := invoke(t, r, "note_delete", map[string]any{"title": "todo"}); err != nil {
		t.Fatalf("note_delete: %v", err)
	}
	res, _ = invoke(t, r, "note_list", map[string]any{})
	if res.Content != "no notes" {
		t.Errorf("note_list after delete = %q", res.Content)
	}
}

func TestFactoryRejectsBadConfig(t *testing.T) {
	if _, err := Factory(plugin.PluginArgs{"config": "nope"}, nil); err == nil {
		t.Error("expected error for wrong config type")
	}
	p, err := Factory(plugin.PluginArgs{}, nil)
	if err != nil || p.(*notesPlugin).dbPath != defaultDBPath {
		t.Errorf("Factory() = %v, %v", p, err)
	}
}
