package commands

import (
	"context"

	"orgadmin/internal/database"
	"orgadmin/internal/logger"
	"orgadmin/internal/seed"
	"orgadmin/internal/store/sqlstore"

	"github.com/spf13/afero"
)

type SeedCmd struct {
	DB      DatabaseFlags `embed:"" prefix:"db-"`
	File    string        `help:"YAML file describing companies, branches, divisions and departments" required:"" type:"path"`
	Migrate bool          `help:"run migrations before seeding" default:"true" negatable:""`
}

func (c *SeedCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := log.WithContext(context.Background())

	doc, err := seed.Load(afero.NewOsFs(), c.File)
	if err != nil {
		return err
	}

	exec, err := c.DB.open(ctx)
	if err != nil {
		return err
	}
	defer exec.Close()

	if c.Migrate {
		if err := database.RunMigrations(ctx, exec); err != nil {
			return err
		}
	}

	res, err := seed.Apply(ctx, sqlstore.New(exec), doc, "seed")
	if err != nil {
		return err
	}
	log.Info().Int("created", res.Created).Int("skipped", res.Skipped).Str("file", c.File).Msg("Seed completed")
	return nil
}
