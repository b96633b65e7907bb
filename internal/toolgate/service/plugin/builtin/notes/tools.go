package notes

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/gg/goption"
	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin/builtin/notes/store"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
)

func writeDefinition() tool.Definition {
	return tool.Definition{
		Name:        "note_write",
		Description: "Save a note under a title. An existing note with the same title is replaced.",
		Parameters: []tool.Param{
			{Name: "title", Type: tool.String, Description: "Unique note title", Required: true},
			{Name: "content", Type: tool.String, Description: "Note text", Required: true},
			{Name: "tags", Type: tool.Array, Description: "Optional tags", Items: tool.String},
		},
	}
}

func readDefinition() tool.Definition {
	return tool.Definition{
		Name:        "note_read",
		Description: "Read a note by title.",
		Parameters: []tool.Param{
			{Name: "title", Type: tool.String, Description: "Note title", Required: true},
		},
	}
}

func listDefinition() tool.Definition {
	return tool.Definition{
		Name:        "note_list",
		Description: "List note titles, optionally filtered by a title prefix.",
		Parameters: []tool.Param{
			{Name: "prefix", Type: tool.String, Description: "Title prefix filter"},
			{Name: "limit", Type: tool.Integer, Description: "Maximum number of notes (default 50)"},
		},
	}
}

func deleteDefinition() tool.Definition {
	return tool.Definition{
		Name:        "note_delete",
		Description: "Delete a note by title.",
		Parameters: []tool.Param{
			{Name: "title", Type: tool.String, Description: "Note title", Required: true},
		},
	}
}

func (p *notesPlugin) newWriteTool(cfg goption.O[tool.Config]) (tool.Tool, error) {
	s, err := p.store()
	if err != nil {
		return nil, err
	}
	maxBytes := tool.OrEmpty(cfg).Int("max_note_bytes", defaultMaxNoteBytes)

	return tool.InvokeFunc(func(ctx context.Context, args map[string]any) (*tool.Result, error) {
		title, err := tool.RequireString(args, "title")
		if err != nil {
			return nil, err
		}
		content, err := tool.RequireString(args, "content")
		if err != nil {
			return nil, err
		}
		if len(content) > maxBytes {
			return nil, fmt.Errorf("%w: note exceeds %d bytes", errno.ErrInvalidArguments, maxBytes)
		}

		note := &store.Note{Title: title, Content: content, Tags: tool.StringList(args["tags"])}
		if err := s.Put(ctx, note); err != nil {
			return nil, err
		}
		return tool.TextResult(fmt.Sprintf("note %q saved", title)), nil
	}), nil
}

func (p *notesPlugin) newReadTool(cfg goption.O[tool.Config]) (tool.Tool, error) {
	s, err := p.store()
	if err != nil {
		return nil, err
	}
	return tool.InvokeFunc(func(ctx context.Context, args map[string]any) (*tool.Result, error) {
		title, err := tool.RequireString(args, "title")
		if err != nil {
			return nil, err
		}
		note, err := s.Get(ctx, title)
		if err != nil {
			return nil, err
		}
		return tool.JSONResult(note)
	}), nil
}

func (p *notesPlugin) newListTool(cfg goption.O[tool.Config]) (tool.Tool, error) {
	s, err := p.store()
	if err != nil {
		return nil, err
	}
	return tool.InvokeFunc(func(ctx context.Context, args map[string]any) (*tool.Result, error) {
		prefix, _ := tool.StringArg(args, "prefix")
		limit := tool.IntArg(args, "limit", defaultListLimit)

		notes, err := s.List(ctx, prefix, limit)
		if err != nil {
			return nil, err
		}
		if len(notes) == 0 {
			return tool.TextResult("no notes"), nil
		}
		titles := make([]string, 0, len(notes))
		for _, n := range notes {
			titles = append(titles, n.Title)
		}
		return tool.TextResult(strings.Join(titles, "\n")), nil
	}), nil
}

func (p *notesPlugin) newDeleteTool(cfg goption.O[tool.Config]) (tool.Tool, error) {
	s, err := p.store()
	if err != nil {
		return nil, err
	}
	return tool.InvokeFunc(func(ctx context.Context, args map[string]any) (*tool.Result, error) {
		title, err := tool.RequireString(args, "title")
		if err != nil {
			return nil, err
		}
		if err := s.Delete(ctx, title); err != nil {
			return nil, err
		}
		return tool.TextResult(fmt.Sprintf("note %q deleted", title)), nil
	}), nil
}
