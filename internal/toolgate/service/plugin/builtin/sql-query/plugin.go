package sqlquery

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/bytedance/gg/goption"
	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	"github.com/kiosk404/toolgate/pkg/logger"
	_ "github.com/mattn/go-sqlite3" // Register SQLite3 driver
)

const (
	// PluginName is the unique identifier for this plugin.
	PluginName = "sql-query"

	defaultMaxRows = 100
)

// PluginDefinition returns the static metadata for this plugin.
func PluginDefinition() plugin.Definition {
	return plugin.Definition{
		ID:          PluginName,
		Name:        "SQL Query",
		Kind:        "general",
		Description: "Read-only SQL queries over a SQLite database",
	}
}

// sqlQueryPlugin keeps one read-only connection pool per database path.
type sqlQueryPlugin struct {
	mu  sync.Mutex
	dbs map[string]*sql.DB
}

// Factory is the PluginFactory for sql-query.
func Factory(args plugin.PluginArgs, handle plugin.Handle) (plugin.Plugin, error) {
	return &sqlQueryPlugin{dbs: make(map[string]*sql.DB)}, nil
}

// Name implements plugin.Plugin.
func (p *sqlQueryPlugin) Name() string {
	return PluginName
}

// Tools implements plugin.ToolProvider.
func (p *sqlQueryPlugin) Tools() []plugin.ToolSpec {
	return []plugin.ToolSpec{
		{Factory: tool.NewFactory(QueryDefinition(), p.newQueryTool), AvailableForLLM: true},
	}
}

// Start implements plugin.LifecyclePlugin.
func (p *sqlQueryPlugin) Start(ctx context.Context) error {
	return nil
}

// Stop implements plugin.LifecyclePlugin. Closes every opened database.
func (p *sqlQueryPlugin) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for path, db := range p.dbs {
		if err := db.Close(); err != nil {
			logger.Warn("[SQLQuery] failed to close %s: %v", path, err)
		}
	}
	p.dbs = make(map[string]*sql.DB)
	return nil
}

func (p *sqlQueryPlugin) open(path string) (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if db, ok := p.dbs[path]; ok {
		return db, nil
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&_query_only=true")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	p.dbs[path] = db
	logger.Info("[SQLQuery] opened %s read-only", path)
	return db, nil
}

func (p *sqlQueryPlugin) newQueryTool(cfg goption.O[tool.Config]) (tool.Tool, error) {
	c, ok := cfg.Get()
	if !ok {
		return nil, fmt.Errorf("sql_query: %w", errno.ErrPluginNotConfigured)
	}
	path := c.String("db_path", "")
	if path == "" {
		return nil, fmt.Errorf("sql_query: %w: db_path is required", errno.ErrPluginNotConfigured)
	}
	db, err := p.open(path)
	if err != nil {
		return nil, err
	}
	return &queryTool{db: db, maxRows: c.PositiveInt("max_rows", defaultMaxRows)}, nil
}
