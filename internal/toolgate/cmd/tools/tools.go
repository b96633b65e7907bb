package tools

import (
	"github.com/kiosk404/toolgate/internal/toolgate/cmd/util"
	"github.com/spf13/cobra"
)

// NewCmdTools returns the 'tools' command group.
func NewCmdTools(f util.Factory, ioStreams util.IOStreams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect and call plugin tools",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	cmd.AddCommand(NewCmdList(f, ioStreams))
	cmd.AddCommand(NewCmdDescribe(f, ioStreams))
	cmd.AddCommand(NewCmdCall(f, ioStreams))
	return cmd
}
