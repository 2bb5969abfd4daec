package commands

import (
	"context"
	"fmt"

	"orgadmin/internal/auth"
	"orgadmin/internal/logger"
	"orgadmin/internal/models"
	"orgadmin/internal/store/sqlstore"

	"github.com/fatih/color"
)

type UserCmd struct {
	Create UserCreateCmd `cmd:"" help:"Create an admin user"`
}

type UserCreateCmd struct {
	DB       DatabaseFlags `embed:"" prefix:"db-"`
	Username string        `help:"login name" required:""`
	Password string        `help:"password" required:"" env:"ORGADMIN_USER_PASSWORD"`
	FullName string        `help:"display name" default:""`
	Role     string        `help:"role" default:"viewer" enum:"admin,editor,viewer"`
}

func (c *UserCreateCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := log.WithContext(context.Background())

	exec, err := c.DB.open(ctx)
	if err != nil {
		return err
	}
	defer exec.Close()

	hash, err := auth.HashPassword(c.Password)
	if err != nil {
		return err
	}

	u := models.User{Username: c.Username, PasswordHash: hash, Role: models.Role(c.Role), IsActive: true}
	if c.FullName != "" {
		u.FullName = &c.FullName
	}
	created, err := sqlstore.New(exec).Users.Create(ctx, u)
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", c.Username, err)
	}

	color.New(color.FgGreen, color.Bold).Printf("✓ user %s created ", created.Username)
	fmt.Printf("(id %d, role %s)\n", created.ID, created.Role)
	return nil
}
