package errno

import (
	"errors"
)

var (
	ErrInvalidName         = errors.New("invalid component name")
	ErrInvalidDefinition   = errors.New("invalid tool definition")
	ErrComponentConflict   = errors.New("component already registered")
	ErrComponentNotFound   = errors.New("component not found")
	ErrPluginExists        = errors.New("plugin already registered")
	ErrPluginNotFound      = errors.New("plugin not found")
	ErrToolNotFound        = errors.New("tool not found")
	ErrMissingParam        = errors.New("missing required parameter")
	ErrInvalidArguments    = errors.New("invalid tool arguments")
	ErrRecursiveCall       = errors.New("recursive tool call")
	ErrPluginNotConfigured = errors.New("plugin is not configured")
	ErrNotStarted          = errors.New("plugin is not started")
)
