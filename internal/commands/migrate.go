package commands

import (
	"context"

	"orgadmin/internal/database"
	"orgadmin/internal/logger"
)

type MigrateCmd struct {
	DB DatabaseFlags `embed:"" prefix:"db-"`
}

func (c *MigrateCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := log.WithContext(context.Background())

	exec, err := c.DB.open(ctx)
	if err != nil {
		return err
	}
	defer exec.Close()

	if err := database.RunMigrations(ctx, exec); err != nil {
		return err
	}
	log.Info().Str("mode", c.DB.Mode).Msg("Database migrations completed")
	return nil
}
