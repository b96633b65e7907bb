package tool

import (
	"context"

	"github.com/bytedance/gg/goption"
	"github.com/kiosk404/toolgate/pkg/utils/json"
)

// Tool is a ready-to-invoke capability bound to one plugin configuration
// snapshot. Instances are owned by whoever resolved them.
type Tool interface {
	// Invoke runs the tool with arguments shaped by its Definition.
	Invoke(ctx context.Context, args map[string]any) (*Result, error)
}

// InvokeFunc adapts a plain function to a Tool.
type InvokeFunc func(ctx context.Context, args map[string]any) (*Result, error)

// Invoke implements Tool.
func (f InvokeFunc) Invoke(ctx context.Context, args map[string]any) (*Result, error) {
	return f(ctx, args)
}

// Result is what a tool hands back to the caller.
type Result struct {
	// Type classifies the content (e.g. "text", "json").
	Type string `json:"type"`
	// ID is an optional identifier chosen by the tool.
	ID string `json:"id,omitempty"`
	// Content is the payload returned to the model.
	Content string `json:"content"`
}

// TextResult wraps plain text content.
func TextResult(content string) *Result {
	return &Result{Type: "text", Content: content}
}

// JSONResult encodes v as the result content.
func JSONResult(v any) (*Result, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &Result{Type: "json", Content: string(data)}, nil
}

// Factory is the registered, instantiable form of a tool. Its Definition is
// static: it must not depend on any instance or configuration.
type Factory interface {
	// Definition returns the calling contract exposed to the model.
	Definition() Definition
	// New constructs a fresh instance bound to cfg. cfg is absent when the
	// owning plugin has no configuration.
	New(cfg goption.O[Config]) (Tool, error)
}

// ConstructorFunc builds a tool instance from an optional plugin configuration.
type ConstructorFunc func(cfg goption.O[Config]) (Tool, error)

type factory struct {
	def  Definition
	ctor ConstructorFunc
}

var _ Factory = (*factory)(nil)

// NewFactory pairs a static definition with its constructor.
func NewFactory(def Definition, ctor ConstructorFunc) Factory {
	return &factory{def: def, ctor: ctor}
}

func (f *factory) Definition() Definition {
	return f.def
}

func (f *factory) New(cfg goption.O[Config]) (Tool, error) {
	return f.ctor(cfg)
}
