package cmd

import (
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/kiosk404/toolgate/internal/toolgate/cmd/ext"
	"github.com/kiosk404/toolgate/internal/toolgate/cmd/plugins"
	"github.com/kiosk404/toolgate/internal/toolgate/cmd/serve"
	"github.com/kiosk404/toolgate/internal/toolgate/cmd/tools"
	"github.com/kiosk404/toolgate/internal/toolgate/cmd/util"
	"github.com/kiosk404/toolgate/internal/toolgate/options"
	"github.com/spf13/cobra"
)

// FlagConfig is the name of the configuration file flag.
const FlagConfig = "config"

// NewDefaultToolgateCommand creates the `toolgate` command with default arguments.
func NewDefaultToolgateCommand() *cobra.Command {
	return NewToolgateCommand(os.Stdin, os.Stdout, os.Stderr)
}

// NewToolgateCommand creates the `toolgate` command and its nested children.
func NewToolgateCommand(in io.Reader, out, err io.Writer) *cobra.Command {
	var configFile string

	// Parent command to which all subcommands are added.
	cmds := &cobra.Command{
		Use:   "toolgate",
		Short: "toolgate resolves and serves plugin-contributed tools",
		Long: Banner() + heredoc.Doc(`
			toolgate loads tool plugins, resolves tool names to configured
			instances and exposes their calling contracts to LLM agents.

			Configuration is read from --config (YAML or JSON), TOOLGATE_*
			environment variables and the flags below.`),
		Run:          runHelp,
		SilenceUsage: true,
	}

	flags := cmds.PersistentFlags()
	flags.StringVarP(&configFile, FlagConfig, "c", "", "Read configuration from the specified file.")
	options.NewOptions().AddFlags(flags)

	cmds.SetIn(in)
	cmds.SetOut(out)
	cmds.SetErr(err)

	ioStreams := util.IOStreams{In: in, Out: out, ErrOut: err}
	f := util.NewFactory(&configFile, flags)

	cmds.AddGroup(
		&cobra.Group{ID: "basic", Title: "Basic Commands:"},
		&cobra.Group{ID: "plugin", Title: "Plugin Commands:"},
	)
	for _, c := range []*cobra.Command{
		serve.NewCmdServe(f, ioStreams),
		tools.NewCmdTools(f, ioStreams),
	} {
		c.GroupID = "basic"
		cmds.AddCommand(c)
	}
	for _, c := range []*cobra.Command{
		plugins.NewCmdPlugins(f, ioStreams),
		ext.NewCmdExt(f, ioStreams),
	} {
		c.GroupID = "plugin"
		cmds.AddCommand(c)
	}

	return cmds
}

func runHelp(cmd *cobra.Command, args []string) {
	_ = cmd.Help()
}
