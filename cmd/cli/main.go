package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/tmaekawa/nippo/cmd/cli/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Login    commands.LoginCmd    `cmd:"" help:"Log in and save the session token"`
		Logout   commands.LogoutCmd   `cmd:"" help:"Discard the session token"`
		Whoami   commands.WhoamiCmd   `cmd:"" help:"Show the logged in user"`
		Register commands.RegisterCmd `cmd:"" help:"Create a new account"`
		Reports  commands.ReportsCmd  `cmd:"" help:"Work with daily reports"`
		Debug    bool                 `help:"Enable debug mode."`
		Version  kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
