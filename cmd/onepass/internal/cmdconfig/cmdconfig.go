// Package cmdconfig implements the "onepass config" subcommands.
package cmdconfig

import (
	"errors"
	"fmt"
	"log"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/fsnotify/fsnotify"
	yaml "gopkg.in/yaml.v3"

	"github.com/creachadair/onepass/config"
	"github.com/creachadair/onepass/siteurl"

	"github.com/creachadair/onepass/cmd/onepass/internal/clisettings"
	"github.com/creachadair/onepass/internal/edit"
)

// Command implements "onepass config add|show|watch|edit".
var Command = &command.C{
	Name: "config",
	Help: "Commands to manage the site list.",

	Commands: []*command.C{
		{
			Name:     "add",
			Usage:    "<site>",
			Help:     "Add or update a site entry.",
			SetFlags: command.Flags(flax.MustBind, &addFlags),
			Run:      command.Adapt(runAdd),
		},
		{
			Name:  "show",
			Usage: "[query]",
			Help:  "Print the resolved configuration, or one site's entry.",
			Run:   command.Adapt(runShow),
		},
		{
			Name: "watch",
			Help: "Watch the config file and report changes until interrupted.",
			Run:  command.Adapt(runWatch),
		},
		{
			Name: "edit",
			Help: "Open the site list in $EDITOR and save the result on confirmation.",
			Run:  command.Adapt(runEdit),
		},
	},
}

var addFlags struct {
	Schema    string `flag:"schema,Schema to use for this site"`
	Username  string `flag:"username,Username distinguishing this site's account"`
	Increment int    `flag:"increment,Increment to add to this site's derivation"`
}

func runAdd(env *command.Env, site string) error {
	cfg, path, err := clisettings.Load(env)
	if err != nil {
		return err
	}
	key, err := siteurl.Normalize(site)
	if err != nil {
		return fmt.Errorf("normalize %q: %w", site, err)
	}
	cfg.Sites[key] = config.SiteConfig{
		Schema:    addFlags.Schema,
		Username:  addFlags.Username,
		Increment: addFlags.Increment,
	}
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	fmt.Fprintf(env, "Saved %s to %s\n", key, path)
	return nil
}

func runShow(env *command.Env, args ...string) error {
	if len(args) > 1 {
		return env.Usagef("at most one query may be given")
	}
	cfg, _, err := clisettings.Load(env)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(env)
	defer enc.Close()
	if len(args) == 0 {
		return enc.Encode(cfg.Sites)
	}
	key, site, ok, err := cfg.Lookup(args[0])
	if err != nil {
		return fmt.Errorf("resolve %q: %w", args[0], err)
	}
	if !ok {
		return fmt.Errorf("no configured site matches %q", args[0])
	}
	return enc.Encode(map[string]config.SiteConfig{key: site})
}

// runWatch reloads the config file on every write and reports what changed
// in the site count, until the process is interrupted. It demonstrates live
// reload for a long-running session; "onepass gen" itself always loads
// fresh, so this is purely informational.
func runWatch(env *command.Env) error {
	path, err := clisettings.Path(env)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	if err := w.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	cfg, err := config.NewLoader().Load(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	fmt.Fprintf(env, "Watching %s (%d sites)\n", path, len(cfg.Sites))

	for {
		select {
		case evt, ok := <-w.Events:
			if !ok {
				return nil
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			next, err := config.NewLoader().Load(path)
			if err != nil {
				log.Printf("WARNING: reload %s: %v (keeping previous config)", path, err)
				continue
			}
			fmt.Fprintf(env, "Reloaded %s: %d sites (was %d)\n", path, len(next.Sites), len(cfg.Sites))
			cfg = next
		case e, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("WARNING: watch error on %s: %v", path, e)
		case <-env.Context().Done():
			return nil
		}
	}
}

// runEdit opens the whole site config as YAML in $EDITOR, and saves it back
// only if the user confirms the diff.
func runEdit(env *command.Env) error {
	cfg, path, err := clisettings.Load(env)
	if err != nil {
		return err
	}
	edited, err := edit.Value(env.Context(), cfg)
	switch {
	case errors.Is(err, edit.ErrNoChange):
		fmt.Fprintln(env, "No change.")
		return nil
	case errors.Is(err, edit.ErrUserReject):
		fmt.Fprintln(env, "Edits discarded.")
		return nil
	case err != nil:
		return fmt.Errorf("edit %s: %w", path, err)
	}
	if err := config.Save(path, edited); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	fmt.Fprintf(env, "Saved %s\n", path)
	return nil
}
