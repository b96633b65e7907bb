package tool

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
)

// ParamType is the data type of a tool parameter.
type ParamType string

const (
	String  ParamType = "string"
	Integer ParamType = "integer"
	Number  ParamType = "number"
	Boolean ParamType = "boolean"
	Object  ParamType = "object"
	Array   ParamType = "array"
)

// Valid reports whether t is a known parameter type.
func (t ParamType) Valid() bool {
	switch t {
	case String, Integer, Number, Boolean, Object, Array:
		return true
	}
	return false
}

// Param describes one argument of a tool.
type Param struct {
	// Name is the argument key in the call payload. (e.g. "query")
	Name string `json:"name"`
	// Type is the argument's data type.
	Type ParamType `json:"type"`
	// Description tells the model what the argument means.
	Description string `json:"description"`
	// Required marks the argument as mandatory.
	Required bool `json:"required"`
	// Enum restricts the value to a fixed set, if non-empty.
	Enum []string `json:"enum,omitempty"`
	// Items is the element type when Type is Array. Defaults to String.
	Items ParamType `json:"items,omitempty"`
}

// Definition is the static calling contract of a tool.
type Definition struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  []Param `json:"parameters"`
}

// Validate checks that the definition can be exposed to a model.
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: tool name is empty", errno.ErrInvalidDefinition)
	}
	if strings.Contains(d.Name, ".") {
		return fmt.Errorf("%w: tool name %q contains '.'", errno.ErrInvalidName, d.Name)
	}
	if d.Description == "" {
		return fmt.Errorf("%w: tool %q has no description", errno.ErrInvalidDefinition, d.Name)
	}

	seen := make(map[string]struct{}, len(d.Parameters))
	for _, p := range d.Parameters {
		if p.Name == "" {
			return fmt.Errorf("%w: tool %q has a parameter without name", errno.ErrInvalidDefinition, d.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: tool %q declares parameter %q twice", errno.ErrInvalidDefinition, d.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
		if !p.Type.Valid() {
			return fmt.Errorf("%w: tool %q parameter %q has unknown type %q", errno.ErrInvalidDefinition, d.Name, p.Name, p.Type)
		}
		if p.Items != "" && !p.Items.Valid() {
			return fmt.Errorf("%w: tool %q parameter %q has unknown item type %q", errno.ErrInvalidDefinition, d.Name, p.Name, p.Items)
		}
	}
	return nil
}

// RequiredParams returns the names of all mandatory parameters.
func (d Definition) RequiredParams() []string {
	var names []string
	for _, p := range d.Parameters {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// CheckRequired returns an error naming the first required parameter that
// is absent from args.
func (d Definition) CheckRequired(args map[string]any) error {
	for _, name := range d.RequiredParams() {
		if _, ok := args[name]; !ok {
			return fmt.Errorf("%w: tool %q requires %q", errno.ErrMissingParam, d.Name, name)
		}
	}
	return nil
}

// ToolInfo converts the definition into an Eino function-calling schema.
func (d Definition) ToolInfo() *schema.ToolInfo {
	params := make(map[string]*schema.ParameterInfo, len(d.Parameters))
	for _, p := range d.Parameters {
		info := &schema.ParameterInfo{
			Type:     toSchemaDataType(p.Type),
			Desc:     p.Description,
			Required: p.Required,
			Enum:     p.Enum,
		}
		if p.Type == Array {
			info.ElemInfo = &schema.ParameterInfo{Type: toSchemaDataType(itemsOrString(p.Items))}
		}
		params[p.Name] = info
	}

	return &schema.ToolInfo{
		Name:        d.Name,
		Desc:        d.Description,
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}
}

// JSONSchema renders the parameters as a JSON Schema object, the shape
// OpenAI-style function declarations expect under "parameters".
func (d Definition) JSONSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(d.Parameters)),
		Required:   []string{},
	}
	for _, p := range d.Parameters {
		prop := &jsonschema.Schema{
			Type:        string(p.Type),
			Description: p.Description,
		}
		if len(p.Enum) > 0 {
			prop.Enum = make([]any, 0, len(p.Enum))
			for _, v := range p.Enum {
				prop.Enum = append(prop.Enum, v)
			}
		}
		if p.Type == Array {
			prop.Items = &jsonschema.Schema{Type: string(itemsOrString(p.Items))}
		}
		s.Properties[p.Name] = prop
		if p.Required {
			s.Required = append(s.Required, p.Name)
		}
	}
	return s
}

func itemsOrString(t ParamType) ParamType {
	if t == "" {
		return String
	}
	return t
}

// toSchemaDataType converts a ParamType to the corresponding Eino schema.DataType.
func toSchemaDataType(t ParamType) schema.DataType {
	switch t {
	case String:
		return schema.String
	case Integer:
		return schema.Integer
	case Number:
		return schema.Number
	case Boolean:
		return schema.Boolean
	case Object:
		return schema.Object
	case Array:
		return schema.Array
	default:
		return schema.String
	}
}
