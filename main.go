package main

import (
	"fmt"
	"os"

	"orgadmin/internal/commands"
	"orgadmin/internal/config"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool             `help:"Enable debug logging." env:"ORGADMIN_DEBUG"`
		Version kong.VersionFlag `help:"Print version and exit."`

		Serve   commands.ServeCmd   `cmd:"" default:"1" help:"Start the HTTP API server"`
		Migrate commands.MigrateCmd `cmd:"" help:"Apply pending database migrations"`
		Seed    commands.SeedCmd    `cmd:"" help:"Load an organization structure from a YAML file"`
		User    commands.UserCmd    `cmd:"" help:"Manage admin users"`
		APIKey  commands.APIKeyCmd  `cmd:"" name:"apikey" help:"Manage API keys"`
	}
)

func main() {
	if err := config.LoadEnv(afero.NewOsFs(), "."); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cmd := kong.Parse(&cli,
		kong.Name("orgadmin"),
		kong.Description("Organization structure admin service."),
		kong.Vars{"version": version},
	)
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
