// Package config loads process environment files before flags are parsed so
// that kong's env tags see their values.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

// LoadEnv loads .env and then .env.local, which takes precedence. Variables
// already set in the process environment win over .env but not over
// .env.local. Missing files are ignored.
func LoadEnv(fs afero.Fs, dir string) error {
	base := dir + "/.env"
	if _, err := fs.Stat(base); err == nil {
		env, err := readEnv(fs, base)
		if err != nil {
			return err
		}
		if err := apply(env, false); err != nil {
			return err
		}
	}

	local := dir + "/.env.local"
	if _, err := fs.Stat(local); err == nil {
		env, err := readEnv(fs, local)
		if err != nil {
			return err
		}
		if err := apply(env, true); err != nil {
			return err
		}
	}
	return nil
}

func readEnv(fs afero.Fs, path string) (map[string]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	env, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return env, nil
}

func apply(env map[string]string, override bool) error {
	for k, v := range env {
		if _, set := os.LookupEnv(k); set && !override {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}
	return nil
}
