package plugins

import (
	"context"
	"fmt"
	"strconv"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/kiosk404/toolgate/internal/toolgate/cmd/util"
	"github.com/spf13/cobra"
)

var listExample = heredoc.Doc(`
		# List the loaded plugins
		toolgate plugins list

		# Load only two plugins
		toolgate plugins list --plugins.allow=web-search,toolbox`)

// NewCmdPlugins returns the 'plugins' command group.
func NewCmdPlugins(f util.Factory, ioStreams util.IOStreams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Inspect loaded plugins",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	cmd.AddCommand(NewCmdList(f, ioStreams))
	return cmd
}

// ListOptions is an options struct to support 'plugins list' sub command.
type ListOptions struct {
	factory util.Factory
	util.IOStreams
}

// NewCmdList returns the 'plugins list' sub command.
func NewCmdList(f util.Factory, ioStreams util.IOStreams) *cobra.Command {
	o := &ListOptions{factory: f, IOStreams: ioStreams}

	return &cobra.Command{
		Use:                   "list",
		DisableFlagsInUseLine: true,
		Aliases:               []string{"ls"},
		Short:                 "List loaded plugins and their tools",
		Example:               listExample,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Run(cmd.Context()))
		},
	}
}

// Run executes the list sub command.
func (o *ListOptions) Run(ctx context.Context) error {
	rt, err := o.factory.Runtime(ctx)
	if err != nil {
		return err
	}
	defer o.factory.Close(ctx)

	registry := rt.Framework.Registry()
	table := uitable.New()
	table.AddRow(color.New(color.Bold).Sprint("ID"), "KIND", "CONFIGURED", "TOOLS", "DESCRIPTION")
	for _, name := range registry.PluginNames() {
		def, _ := registry.PluginDefinition(name)
		configured := color.YellowString("no")
		if _, ok := registry.PluginConfig(name); ok {
			configured = color.GreenString("yes")
		}
		tools := strconv.Itoa(len(registry.ToolsByPlugin(name)))
		table.AddRow(def.ID, def.Kind, configured, tools, def.Description)
	}
	fmt.Fprintln(o.Out, table)

	stats := registry.Stats()
	fmt.Fprintf(o.Out, "\n%d plugins, %d components (%d enabled), %d tools offered to the model\n",
		stats.Plugins, stats.Components, stats.EnabledComponents, stats.LLMAvailableTools)
	return nil
}
