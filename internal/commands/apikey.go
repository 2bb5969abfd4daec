package commands

import (
	"context"
	"fmt"
	"time"

	"orgadmin/internal/auth"
	"orgadmin/internal/logger"
	"orgadmin/internal/store/sqlstore"

	"github.com/fatih/color"
)

type APIKeyCmd struct {
	Create APIKeyCreateCmd `cmd:"" help:"Create an API key for an external program"`
}

type APIKeyCreateCmd struct {
	DB          DatabaseFlags `embed:"" prefix:"db-"`
	Name        string        `help:"name of the program using the key" required:""`
	Permissions string        `help:"granted permission" default:"read" enum:"read,write"`
	ExpiresIn   time.Duration `help:"lifetime of the key; zero never expires" default:"0s"`
}

func (c *APIKeyCreateCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := log.WithContext(context.Background())

	exec, err := c.DB.open(ctx)
	if err != nil {
		return err
	}
	defer exec.Close()

	var expires *time.Time
	if c.ExpiresIn > 0 {
		t := time.Now().Add(c.ExpiresIn)
		expires = &t
	}

	k, plain, err := auth.IssueAPIKey(ctx, sqlstore.New(exec).APIKeys, c.Name, c.Permissions, expires, "cli")
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}

	color.New(color.FgGreen, color.Bold).Printf("✓ API key %s created (%s)\n", k.Name, k.Permissions)
	fmt.Println()
	color.New(color.FgCyan, color.Bold).Println(plain)
	fmt.Println()
	color.New(color.FgYellow).Println("Store this key now. It cannot be shown again.")
	return nil
}
