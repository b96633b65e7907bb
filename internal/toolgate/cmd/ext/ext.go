package ext

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/kiosk404/toolgate/internal/toolgate/cmd/util"
	"github.com/spf13/cobra"
)

// NewCmdExt returns the 'ext' command. Its subcommands are contributed by
// the loaded plugins, so the plugin runtime is built before dispatching.
func NewCmdExt(f util.Factory, ioStreams util.IOStreams) *cobra.Command {
	return &cobra.Command{
		Use:   "ext COMMAND [args...]",
		Short: "Run a command contributed by a plugin",
		Long: heredoc.Doc(`
			Run a command registered by a plugin, for example:

			    toolgate ext info
			    toolgate ext mcp-servers
			    toolgate ext mcp-servers reconnect NAME`),
		DisableFlagParsing: true,
		Run: func(cmd *cobra.Command, args []string) {
			rt, err := f.Runtime(cmd.Context())
			util.CheckErr(err)
			defer f.Close(cmd.Context())

			root := &cobra.Command{
				Use:           "toolgate ext",
				SilenceUsage:  true,
				SilenceErrors: true,
			}
			root.SetIn(ioStreams.In)
			root.SetOut(ioStreams.Out)
			root.SetErr(ioStreams.ErrOut)
			rt.Framework.Registry().RegisterCLICommands(root)

			root.SetArgs(args)
			util.CheckErr(root.ExecuteContext(cmd.Context()))
		},
	}
}
