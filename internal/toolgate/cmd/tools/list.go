package tools

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/kiosk404/toolgate/internal/toolgate/cmd/util"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	"github.com/spf13/cobra"
)

var listExample = heredoc.Doc(`
		# List the tools offered to the model
		toolgate tools list

		# Include tools that only direct callers may use
		toolgate tools list --all`)

// ListOptions is an options struct to support 'tools list' sub command.
type ListOptions struct {
	All bool

	factory util.Factory
	util.IOStreams
}

// NewCmdList returns the 'tools list' sub command.
func NewCmdList(f util.Factory, ioStreams util.IOStreams) *cobra.Command {
	o := &ListOptions{factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:                   "list",
		DisableFlagsInUseLine: true,
		Aliases:               []string{"ls"},
		Short:                 "List registered tools",
		Example:               listExample,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Run(cmd.Context()))
		},
	}
	cmd.Flags().BoolVar(&o.All, "all", o.All, "Also list tools that are not available to the model.")
	return cmd
}

// Run executes the list sub command.
func (o *ListOptions) Run(ctx context.Context) error {
	rt, err := o.factory.Runtime(ctx)
	if err != nil {
		return err
	}
	defer o.factory.Close(ctx)

	registry := rt.Framework.Registry()
	infos := registry.Components(plugin.KindTool)

	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true
	table.AddRow(color.New(color.Bold).Sprint("NAME"), "PLUGIN", "LLM", "DESCRIPTION")

	shown := 0
	for _, info := range infos {
		available := info.LLMAvailable && info.Enabled
		if !o.All && !available {
			continue
		}
		llm := color.GreenString("yes")
		if !available {
			llm = color.YellowString("no")
		}
		table.AddRow(info.Name, info.PluginName, llm, info.Description)
		shown++
	}

	if shown == 0 {
		fmt.Fprintln(o.Out, "No tools registered.")
		return nil
	}
	fmt.Fprintln(o.Out, table)
	return nil
}
