// Package clisettings holds the settings shared across onepass subcommands:
// where the site config lives, and a lazily-loaded handle to it.
package clisettings

import (
	"fmt"

	"github.com/creachadair/command"
	"github.com/creachadair/onepass/config"
)

// Settings is installed as env.Config by the root command.
type Settings struct {
	ConfigPath string
}

// of extracts the Settings installed on env.
func of(env *command.Env) *Settings {
	return env.Config.(*Settings)
}

// Path returns the resolved config file path for env, computing the
// conventional default if none was given on the command line.
func Path(env *command.Env) (string, error) {
	set := of(env)
	if set.ConfigPath != "" {
		return set.ConfigPath, nil
	}
	return config.DefaultPath()
}

// Load loads (creating if necessary) the config file associated with env.
func Load(env *command.Env) (*config.Config, string, error) {
	path, err := Path(env)
	if err != nil {
		return nil, "", fmt.Errorf("resolve config path: %w", err)
	}
	cfg, err := config.LoadOrInit(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, path, nil
}
