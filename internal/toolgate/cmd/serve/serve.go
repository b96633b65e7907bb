package serve

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/kiosk404/toolgate/internal/toolgate"
	"github.com/kiosk404/toolgate/internal/toolgate/cmd/util"
	"github.com/spf13/cobra"
)

var serveExample = heredoc.Doc(`
		# Serve with the default configuration
		toolgate serve

		# Serve on all interfaces with profiling enabled
		toolgate serve --server.bind-address=0.0.0.0 --server.pprof`)

// NewCmdServe returns the 'serve' sub command.
func NewCmdServe(f util.Factory, ioStreams util.IOStreams) *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "serve",
		DisableFlagsInUseLine: true,
		Short:                 "Serve the tool HTTP API",
		Long: heredoc.Doc(`
			Load the configured plugins and serve their tools over HTTP.

			The configuration file is watched; edits of plugins.entries[*].config
			take effect on the next tool resolution without a restart.`),
		Example: serveExample,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := f.Config()
			util.CheckErr(err)
			util.CheckErr(toolgate.Run(cfg))
		},
	}
	return cmd
}
