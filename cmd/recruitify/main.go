package main

import (
	"context"
	"time"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/recruitify/cmd/recruitify/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Login  commands.LoginCmd  `cmd:"" help:"Log in with a bearer token"`
		Logout commands.LogoutCmd `cmd:"" help:"Log out"`
		Whoami commands.WhoamiCmd `cmd:"" help:"Show the logged in user"`
		Status commands.StatusCmd `cmd:"" help:"Show the current organization and recruitment cycle"`
		Org    commands.OrgCmd    `cmd:"" help:"Manage organizations"`
		Cycle  commands.CycleCmd  `cmd:"" help:"Manage recruitment cycles of the current organization"`
		Shell  commands.ShellCmd  `cmd:"" help:"Start an interactive session"`

		Debug      bool          `help:"Enable debug mode." env:"RECRUITIFY_DEBUG"`
		Server     string        `help:"API server URL" default:"https://localhost:3000" env:"RECRUITIFY_SERVER"`
		StateDir   string        `help:"Directory for local state (default ~/.recruitify)" type:"path" env:"RECRUITIFY_STATE_DIR"`
		Timeout    time.Duration `help:"Request timeout" default:"30s" env:"RECRUITIFY_TIMEOUT"`
		MaxRetries int           `help:"Retries for transient request failures, 0 disables" default:"2" env:"RECRUITIFY_MAX_RETRIES"`
		Tracing    bool          `help:"Export traces and metrics over OTLP" env:"RECRUITIFY_TRACING"`
		Version    kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.Configuration(commands.YAMLConfig, commands.DefaultConfigPath),
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{
		Debug:      cli.Debug,
		Version:    version,
		Server:     cli.Server,
		StateDir:   cli.StateDir,
		Timeout:    cli.Timeout,
		MaxRetries: cli.MaxRetries,
		Tracing:    cli.Tracing,
	})
	cmd.FatalIfErrorf(err)
}
