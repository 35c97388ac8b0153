// Package cmdgen implements the "onepass gen" subcommand.
package cmdgen

import (
	"fmt"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/creachadair/getpass"

	"github.com/creachadair/onepass/clipboard"
	"github.com/creachadair/onepass/config"
	"github.com/creachadair/onepass/derive"
	"github.com/creachadair/onepass/schema"
	"github.com/creachadair/onepass/siteurl"
	"github.com/creachadair/onepass/wordhash"

	"github.com/creachadair/onepass/cmd/onepass/internal/clisettings"
)

var flags struct {
	Schema    string `flag:"schema,Schema to use (overrides the configured one)"`
	Username  string `flag:"username,Username to use (overrides the configured one)"`
	Increment int    `flag:"increment,Increment to use (overrides the configured one)"`
	Copy      bool   `flag:"copy,Copy the password to the clipboard instead of printing it"`
}

// Command implements "onepass gen <query>".
var Command = &command.C{
	Name:     "gen",
	Usage:    "<query>",
	Help:     "Derive and emit the password for a site.",
	SetFlags: command.Flags(flax.MustBind, &flags),
	Run:      command.Adapt(runGen),
}

func runGen(env *command.Env, query string) error {
	rec, err := resolveRecord(env, query)
	if err != nil {
		return err
	}

	seed, err := getpass.Prompt("Seed password: ")
	if err != nil {
		return fmt.Errorf("read seed password: %w", err)
	}
	seedBytes := []byte(seed)

	ctx := schema.NewContext()
	node, err := schema.Parse(rec.Schema)
	if err != nil {
		return fmt.Errorf("parse schema %q: %w", rec.Schema, err)
	}
	canonical, err := schema.Repr(ctx, node)
	if err != nil {
		return fmt.Errorf("canonicalize schema: %w", err)
	}
	rec.Schema = canonical

	secret := derive.Secret(seedBytes, rec)
	fmt.Fprintf(env, "Confirmation phrase: %s\n", wordhash.Phrase(secret[:]))

	password, err := derive.Password(seedBytes, rec, ctx, node)
	if err != nil {
		return fmt.Errorf("derive password: %w", err)
	}

	if flags.Copy {
		if err := clipboard.WritePassword([]byte(password)); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintln(env, "<copied to clipboard>")
		return nil
	}
	fmt.Fprintln(env, password)
	return nil
}

// resolveRecord builds a derivation record for query, preferring a matching
// config entry but allowing every field to be overridden by flags. If query
// matches no configured site, the record uses the normalized query as its
// URL and config.DefaultSchema unless --schema is given.
func resolveRecord(env *command.Env, query string) (derive.Record, error) {
	cfg, _, err := clisettings.Load(env)
	if err != nil {
		return derive.Record{}, err
	}

	url, site, found, err := cfg.Lookup(query)
	if err != nil {
		return derive.Record{}, fmt.Errorf("resolve %q: %w", query, err)
	}

	var rec derive.Record
	if found {
		rec = derive.Record{
			URL:       url,
			Username:  site.Username,
			Schema:    cfg.SiteSchema(site),
			Increment: site.Increment,
		}
	} else {
		normalized, err := siteurl.Normalize(query)
		if err != nil {
			return derive.Record{}, fmt.Errorf("normalize %q: %w", query, err)
		}
		rec = derive.Record{URL: normalized, Schema: config.DefaultSchema}
	}

	if flags.Schema != "" {
		rec.Schema = flags.Schema
	}
	if flags.Username != "" {
		rec.Username = flags.Username
	}
	if flags.Increment != 0 {
		rec.Increment = flags.Increment
	}
	return rec, nil
}
