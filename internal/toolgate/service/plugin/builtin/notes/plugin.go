package notes

import (
	"context"
	"fmt"
	"sync"

	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin/builtin/notes/store"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	"github.com/kiosk404/toolgate/pkg/logger"
)

const (
	// PluginName is the unique identifier for this plugin.
	PluginName = "notes"

	// Kind groups this plugin under the "memory" slot.
	Kind = "memory"

	defaultDBPath       = "data/notes.db"
	defaultMaxNoteBytes = 64 * 1024
	defaultListLimit    = 50
)

// PluginDefinition returns the static metadata for this plugin.
func PluginDefinition() plugin.Definition {
	return plugin.Definition{
		ID:          PluginName,
		Name:        "Notes",
		Kind:        Kind,
		Description: "Persistent notes the agent can write, read and list (BoltDB)",
	}
}

// notesPlugin is the runtime instance of the notes plugin.
type notesPlugin struct {
	dbPath string

	mu    sync.RWMutex
	db    *store.DB
	notes *store.NoteStore
}

// Factory is the PluginFactory for notes. args["config"] may carry a
// tool.Config with db_path.
func Factory(args plugin.PluginArgs, handle plugin.Handle) (plugin.Plugin, error) {
	cfg := tool.Config{}
	if raw, ok := args["config"]; ok && raw != nil {
		c, ok := raw.(tool.Config)
		if !ok {
			return nil, fmt.Errorf("notes: 'config' must be tool.Config, got %T", raw)
		}
		cfg = c
	}
	return &notesPlugin{dbPath: cfg.String("db_path", defaultDBPath)}, nil
}

// Name implements plugin.Plugin.
func (p *notesPlugin) Name() string {
	return PluginName
}

// Init implements plugin.InitPlugin.
func (p *notesPlugin) Init(api plugin.PluginAPI) error {
	specs := []plugin.ToolSpec{
		{Factory: tool.NewFactory(writeDefinition(), p.newWriteTool), AvailableForLLM: true},
		{Factory: tool.NewFactory(readDefinition(), p.newReadTool), AvailableForLLM: true},
		{Factory: tool.NewFactory(listDefinition(), p.newListTool), AvailableForLLM: true},
		{Factory: tool.NewFactory(deleteDefinition(), p.newDeleteTool)},
	}
	for _, spec := range specs {
		if err := api.RegisterTool(spec); err != nil {
			return err
		}
	}
	return nil
}

// Start implements plugin.LifecyclePlugin. Opens the note database.
func (p *notesPlugin) Start(ctx context.Context) error {
	db, err := store.Open(p.dbPath)
	if err != nil {
		return fmt.Errorf("notes: %w", err)
	}

	p.mu.Lock()
	p.db = db
	p.notes = store.NewNoteStore(db)
	p.mu.Unlock()

	logger.Info("[Notes] note store opened at %s", p.dbPath)
	return nil
}

// Stop implements plugin.LifecyclePlugin.
func (p *notesPlugin) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db == nil {
		return nil
	}
	logger.Info("[Notes] closing note store")
	err := p.db.Close()
	p.db = nil
	p.notes = nil
	return err
}

func (p *notesPlugin) store() (*store.NoteStore, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.notes == nil {
		return nil, fmt.Errorf("notes: %w", errno.ErrNotStarted)
	}
	return p.notes, nil
}
