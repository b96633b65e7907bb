package options

import (
	"fmt"
	"net"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

// ServerRunOptions contains the options while running the HTTP server.
type ServerRunOptions struct {
	BindAddress string `json:"bind-address" mapstructure:"bind-address"`
	BindPort    int    `json:"bind-port"    mapstructure:"bind-port"`
	// Mode is the gin mode: debug, test or release.
	Mode        string `json:"mode"         mapstructure:"mode"`
	EnablePprof bool   `json:"pprof"        mapstructure:"pprof"`
	Healthz     bool   `json:"healthz"      mapstructure:"healthz"`

	// Token enables bearer authentication of the API when set.
	Token      string `json:"token"       mapstructure:"token"`
	// AllowLocal skips authentication for loopback clients.
	AllowLocal bool   `json:"allow-local" mapstructure:"allow-local"`
}

// NewServerRunOptions creates a new ServerRunOptions object with default parameters.
func NewServerRunOptions() *ServerRunOptions {
	return &ServerRunOptions{
		BindAddress: "127.0.0.1",
		BindPort:    11790,
		Mode:        gin.ReleaseMode,
		EnablePprof: false,
		Healthz:     true,
		AllowLocal:  true,
	}
}

// Address returns host:port.
func (o *ServerRunOptions) Address() string {
	return net.JoinHostPort(o.BindAddress, strconv.Itoa(o.BindPort))
}

// Validate checks validation of ServerRunOptions.
func (o *ServerRunOptions) Validate() []error {
	var errs []error

	if o.BindPort < 0 || o.BindPort > 65535 {
		errs = append(errs, fmt.Errorf("--server.bind-port %v must be between 0 and 65535", o.BindPort))
	}
	switch o.Mode {
	case gin.DebugMode, gin.TestMode, gin.ReleaseMode:
	default:
		errs = append(errs, fmt.Errorf("--server.mode %q must be one of debug, test, release", o.Mode))
	}

	return errs
}

// AddFlags adds flags for a specific APIServer to the specified FlagSet.
func (o *ServerRunOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.BindAddress, "server.bind-address", o.BindAddress, "The IP address on which to serve the HTTP API.")
	fs.IntVar(&o.BindPort, "server.bind-port", o.BindPort, "The port on which to serve the HTTP API.")
	fs.StringVar(&o.Mode, "server.mode", o.Mode, "Start the server in a specified server mode. Supported server mode: debug, test, release.")
	fs.BoolVar(&o.EnablePprof, "server.pprof", o.EnablePprof, "Mount /debug/pprof handlers.")
	fs.BoolVar(&o.Healthz, "server.healthz", o.Healthz, "Add self readiness check and install /healthz router.")
	fs.StringVar(&o.Token, "server.token", o.Token, "Require this bearer token on API requests. Empty disables authentication.")
	fs.BoolVar(&o.AllowLocal, "server.allow-local", o.AllowLocal, "Skip authentication for loopback clients.")
}
