package tools

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/kiosk404/toolgate/internal/toolgate/cmd/util"
	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/executor"
	"github.com/spf13/cobra"
)

var callExample = heredoc.Doc(`
		# Search the web
		toolgate tools call web_search --args '{"query":"golang generics"}'

		# Call a tool without arguments
		toolgate tools call host_stats`)

// CallOptions is an options struct to support 'tools call' sub command.
type CallOptions struct {
	Args   string
	ChatID string

	factory util.Factory
	util.IOStreams
}

// NewCmdCall returns the 'tools call' sub command.
func NewCmdCall(f util.Factory, ioStreams util.IOStreams) *cobra.Command {
	o := &CallOptions{factory: f, IOStreams: ioStreams, Args: "{}"}

	cmd := &cobra.Command{
		Use:                   "call NAME [--args JSON]",
		DisableFlagsInUseLine: true,
		Short:                 "Resolve a tool and invoke it once",
		Example:               callExample,
		Args:                  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Run(cmd.Context(), args[0]))
		},
	}
	cmd.Flags().StringVar(&o.Args, "args", o.Args, "Tool arguments as a JSON object.")
	cmd.Flags().StringVar(&o.ChatID, "chat-id", o.ChatID, "Apply the disabled tools of this chat.")
	return cmd
}

// Run executes the call sub command.
func (o *CallOptions) Run(ctx context.Context, name string) error {
	rt, err := o.factory.Runtime(ctx)
	if err != nil {
		return err
	}
	defer o.factory.Close(ctx)

	res, err := rt.Executor.ExecuteToolCall(ctx, o.ChatID, executor.ToolCall{Name: name, Arguments: o.Args})
	if err != nil {
		return err
	}
	if res == nil {
		return fmt.Errorf("%w: %s", errno.ErrToolNotFound, name)
	}
	fmt.Fprintln(o.Out, res.Content)
	return nil
}
