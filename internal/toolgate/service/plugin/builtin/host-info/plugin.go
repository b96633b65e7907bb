package hostinfo

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/bytedance/gg/goption"
	"github.com/kiosk404/toolgate/internal/toolgate/service/plugin"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	hoststat "github.com/likexian/host-stat-go"
	"github.com/spf13/cobra"
)

// PluginName is the unique identifier for this plugin.
const PluginName = "host-info"

// PluginDefinition returns the static metadata for this plugin.
func PluginDefinition() plugin.Definition {
	return plugin.Definition{
		ID:          PluginName,
		Name:        "Host Info",
		Kind:        "general",
		Description: "Host statistics of the machine running toolgate",
	}
}

// HostStats is the payload returned by host_stats.
type HostStats struct {
	HostName  string `json:"host_name"`
	OSRelease string `json:"os_release"`
	CPUCore   uint64 `json:"cpu_core"`
	MemTotal  string `json:"mem_total"`
	MemFree   string `json:"mem_free"`
	GoOS      string `json:"go_os"`
	GoArch    string `json:"go_arch"`
}

// Collect reads the current host statistics.
func Collect() (*HostStats, error) {
	var stats HostStats

	hostInfo, err := hoststat.GetHostInfo()
	if err != nil {
		return nil, fmt.Errorf("get host info failed: %w", err)
	}
	stats.HostName = hostInfo.HostName
	stats.OSRelease = hostInfo.Release + " " + hostInfo.OSBit

	memStat, err := hoststat.GetMemStat()
	if err != nil {
		return nil, fmt.Errorf("get mem stat failed: %w", err)
	}
	stats.MemTotal = strconv.FormatUint(memStat.MemTotal, 10) + "M"
	stats.MemFree = strconv.FormatUint(memStat.MemFree, 10) + "M"

	cpuStat, err := hoststat.GetCPUInfo()
	if err != nil {
		return nil, fmt.Errorf("get cpu stat failed: %w", err)
	}
	stats.CPUCore = cpuStat.CoreCount
	stats.GoOS = runtime.GOOS
	stats.GoArch = runtime.GOARCH
	return &stats, nil
}

// StatsDefinition is the contract of the host_stats tool.
func StatsDefinition() tool.Definition {
	return tool.Definition{
		Name:        "host_stats",
		Description: "Report host name, OS release, CPU cores and memory of the server.",
	}
}

func newStatsTool(goption.O[tool.Config]) (tool.Tool, error) {
	return tool.InvokeFunc(func(ctx context.Context, args map[string]any) (*tool.Result, error) {
		stats, err := Collect()
		if err != nil {
			return nil, err
		}
		return tool.JSONResult(stats)
	}), nil
}

type hostInfoPlugin struct{}

// Factory is the PluginFactory for host-info.
func Factory(args plugin.PluginArgs, handle plugin.Handle) (plugin.Plugin, error) {
	return &hostInfoPlugin{}, nil
}

// Name implements plugin.Plugin.
func (p *hostInfoPlugin) Name() string {
	return PluginName
}

// Tools implements plugin.ToolProvider.
func (p *hostInfoPlugin) Tools() []plugin.ToolSpec {
	return []plugin.ToolSpec{
		{Factory: tool.NewFactory(StatsDefinition(), newStatsTool), AvailableForLLM: true},
	}
}

// CLIRegistrars implements plugin.CLIProvider.
func (p *hostInfoPlugin) CLIRegistrars() []plugin.CLIRegistrar {
	return []plugin.CLIRegistrar{infoCommand{}}
}

type infoCommand struct{}

func (infoCommand) Name() string { return "info" }

func (infoCommand) RegisterCommands(parent *cobra.Command) {
	parent.AddCommand(&cobra.Command{
		Use:                   "info",
		DisableFlagsInUseLine: true,
		Short:                 "Print the host information",
		Long:                  "Print the host information.",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := Collect()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%12s %v\n", "HostName:", stats.HostName)
			fmt.Fprintf(out, "%12s %v\n", "OSRelease:", stats.OSRelease)
			fmt.Fprintf(out, "%12s %v\n", "CPUCore:", stats.CPUCore)
			fmt.Fprintf(out, "%12s %v\n", "MemTotal:", stats.MemTotal)
			fmt.Fprintf(out, "%12s %v\n", "MemFree:", stats.MemFree)
			return nil
		},
	})
}
