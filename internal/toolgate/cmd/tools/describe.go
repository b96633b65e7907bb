package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/glamour"
	"github.com/kiosk404/toolgate/internal/toolgate/cmd/util"
	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	"github.com/spf13/cobra"
)

var describeExample = heredoc.Doc(`
		# Show the calling contract of web_search
		toolgate tools describe web_search

		# Print raw markdown instead of rendering it
		toolgate tools describe web_search --raw`)

// DescribeOptions is an options struct to support 'tools describe' sub command.
type DescribeOptions struct {
	Raw   bool
	Width int

	factory util.Factory
	util.IOStreams
}

// NewCmdDescribe returns the 'tools describe' sub command.
func NewCmdDescribe(f util.Factory, ioStreams util.IOStreams) *cobra.Command {
	o := &DescribeOptions{factory: f, IOStreams: ioStreams, Width: 100}

	cmd := &cobra.Command{
		Use:                   "describe NAME",
		DisableFlagsInUseLine: true,
		Short:                 "Show the definition of a tool",
		Example:               describeExample,
		Args:                  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Run(cmd.Context(), args[0]))
		},
	}
	cmd.Flags().BoolVar(&o.Raw, "raw", o.Raw, "Print markdown without rendering.")
	cmd.Flags().IntVar(&o.Width, "width", o.Width, "Word wrap width of the rendered output.")
	return cmd
}

// Run executes the describe sub command.
func (o *DescribeOptions) Run(ctx context.Context, name string) error {
	rt, err := o.factory.Runtime(ctx)
	if err != nil {
		return err
	}
	defer o.factory.Close(ctx)

	info, ok := rt.Framework.Registry().ComponentInfo(name, plugin.KindTool)
	if !ok {
		return fmt.Errorf("%w: %s", errno.ErrToolNotFound, name)
	}
	def, ok := rt.Resolver.GetToolDefinition(name)
	if !ok {
		return fmt.Errorf("%w: %s", errno.ErrToolNotFound, name)
	}

	md := RenderMarkdown(info, def)
	if o.Raw {
		fmt.Fprint(o.Out, md)
		return nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(o.Width),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	fmt.Fprint(o.Out, out)
	return nil
}

// RenderMarkdown formats a tool definition as a markdown document.
func RenderMarkdown(info plugin.ComponentInfo, def tool.Definition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", def.Name)
	fmt.Fprintf(&b, "%s\n\n", def.Description)
	fmt.Fprintf(&b, "- **Plugin:** %s\n", info.PluginName)
	fmt.Fprintf(&b, "- **Available to model:** %t\n", info.LLMAvailable && info.Enabled)
	b.WriteString("\n## Parameters\n\n")

	if len(def.Parameters) == 0 {
		b.WriteString("_none_\n")
		return b.String()
	}

	b.WriteString("| Name | Type | Required | Description |\n")
	b.WriteString("|------|------|----------|-------------|\n")
	for _, p := range def.Parameters {
		typ := string(p.Type)
		if p.Type == tool.Array && p.Items != "" {
			typ = fmt.Sprintf("array<%s>", p.Items)
		}
		desc := p.Description
		if len(p.Enum) > 0 {
			desc = strings.TrimSpace(desc + " One of: " + strings.Join(p.Enum, ", ") + ".")
		}
		required := "no"
		if p.Required {
			required = "yes"
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", p.Name, typ, required, desc)
	}
	return b.String()
}
