package tool

import (
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
)

func searchDefinition() Definition {
	return Definition{
		Name:        "web_search",
		Description: "Search the web",
		Parameters: []Param{
			{Name: "query", Type: String, Description: "search text", Required: true},
			{Name: "limit", Type: Integer, Description: "max results"},
			{Name: "lang", Type: String, Description: "language", Enum: []string{"en", "zh"}},
			{Name: "sites", Type: Array, Description: "restrict to sites"},
		},
	}
}

func TestDefinitionValidate(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		wantErr error
	}{
		{name: "ok", def: searchDefinition()},
		{name: "no params is fine", def: Definition{Name: "clock", Description: "current time"}},
		{name: "empty name", def: Definition{Description: "x"}, wantErr: errno.ErrInvalidDefinition},
		{name: "dotted name", def: Definition{Name: "a.b", Description: "x"}, wantErr: errno.ErrInvalidName},
		{name: "no description", def: Definition{Name: "a"}, wantErr: errno.ErrInvalidDefinition},
		{
			name: "duplicate param",
			def: Definition{Name: "a", Description: "x", Parameters: []Param{
				{Name: "q", Type: String}, {Name: "q", Type: String},
			}},
			wantErr: errno.ErrInvalidDefinition,
		},
		{
			name:    "unknown type",
			def:     Definition{Name: "a", Description: "x", Parameters: []Param{{Name: "q", Type: "float"}}},
			wantErr: errno.ErrInvalidDefinition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckRequired(t *testing.T) {
	def := searchDefinition()
	if err := def.CheckRequired(map[string]any{"query": "go"}); err != nil {
		t.Fatalf("CheckRequired: %v", err)
	}
	err := def.CheckRequired(map[string]any{"limit": 3})
	if !errors.Is(err, errno.ErrMissingParam) {
		t.Fatalf("CheckRequired = %v, want ErrMissingParam", err)
	}
}

func TestToolInfo(t *testing.T) {
	info := searchDefinition().ToolInfo()
	if info.Name != "web_search" || info.Desc != "Search the web" {
		t.Fatalf("unexpected tool info: %+v", info)
	}
	if info.ParamsOneOf == nil {
		t.Fatal("expected parameters")
	}
	if toSchemaDataType(Integer) != schema.Integer || toSchemaDataType("bogus") != schema.String {
		t.Error("unexpected data type mapping")
	}
}

func TestJSONSchema(t *testing.T) {
	s := searchDefinition().JSONSchema()
	if s.Type != "object" {
		t.Fatalf("type = %q, want object", s.Type)
	}
	if len(s.Properties) != 4 {
		t.Fatalf("properties = %d, want 4", len(s.Properties))
	}
	if len(s.Required) != 1 || s.Required[0] != "query" {
		t.Errorf("required = %v, want [query]", s.Required)
	}
	if got := s.Properties["lang"].Enum; len(got) != 2 || got[0] != "en" {
		t.Errorf("enum = %v", got)
	}
	if items := s.Properties["sites"].Items; items == nil || items.Type != "string" {
		t.Errorf("array items = %+v, want string", items)
	}
}
