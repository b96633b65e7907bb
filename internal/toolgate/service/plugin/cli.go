package plugin

import (
	"github.com/spf13/cobra"
)

// CLIRegistrar is implemented by plugins that add CLI subcommands.
type CLIRegistrar interface {
	// Name identifies the registrar in the command namespace.
	Name() string
	// RegisterCommands adds subcommands to the given parent command.
	RegisterCommands(parent *cobra.Command)
}

// CLIProvider is an optional plugin interface for plugins that provide CLI commands.
type CLIProvider interface {
	Plugin

	// CLIRegistrars returns the CLIRegistrars provided by this plugin.
	CLIRegistrars() []CLIRegistrar
}
