// Package cmdschema implements the "onepass schema" subcommands, which
// inspect a schema string without needing a config file.
package cmdschema

import (
	"fmt"

	"github.com/creachadair/command"

	"github.com/creachadair/onepass/internal/bignat"
	"github.com/creachadair/onepass/schema"
)

// Command implements "onepass schema size|repr|validate <schema>".
var Command = &command.C{
	Name: "schema",
	Help: "Commands to inspect a password schema.",

	Commands: []*command.C{
		{
			Name:  "size",
			Usage: "<schema>",
			Help:  "Print the number of distinct passwords a schema can produce.",
			Run:   command.Adapt(runSize),
		},
		{
			Name:  "repr",
			Usage: "<schema>",
			Help:  "Print a schema's canonical representation.",
			Run:   command.Adapt(runRepr),
		},
		{
			Name:  "validate",
			Usage: "<schema>",
			Help:  "Report whether a schema string parses.",
			Run:   command.Adapt(runValidate),
		},
	},
}

func runSize(env *command.Env, raw string) error {
	ctx := schema.NewContext()
	node, err := schema.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	size := node.Size(ctx)
	fmt.Fprintf(env, "%s\n", bignat.Dec(size))
	return nil
}

func runRepr(env *command.Env, raw string) error {
	ctx := schema.NewContext()
	node, err := schema.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	repr, err := schema.Repr(ctx, node)
	if err != nil {
		return fmt.Errorf("repr: %w", err)
	}
	fmt.Fprintln(env, repr)
	return nil
}

func runValidate(env *command.Env, raw string) error {
	if _, err := schema.Parse(raw); err != nil {
		return fmt.Errorf("invalid: %w", err)
	}
	fmt.Fprintln(env, "valid")
	return nil
}
