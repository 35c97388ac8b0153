// Package cmddict implements the "onepass dict" subcommand.
package cmddict

import (
	"fmt"
	"os"

	"github.com/creachadair/command"

	"github.com/creachadair/onepass/dict"
)

// Command implements "onepass dict hash [file]".
var Command = &command.C{
	Name: "dict",
	Help: "Commands to inspect word dictionaries.",

	Commands: []*command.C{
		{
			Name:  "hash",
			Usage: "[file]",
			Help:  "Print a dictionary's content hash (the built-in wordlist if no file is given).",
			Run:   command.Adapt(runHash),
		},
	},
}

func runHash(env *command.Env, args ...string) error {
	if len(args) > 1 {
		return env.Usagef("at most one wordlist file may be given")
	}
	d := dict.Default()
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read wordlist: %w", err)
		}
		d = dict.BuildLines(string(data))
	}
	fmt.Fprintf(env, "%s\t%d words\n", d.HashHex(), d.Len())
	return nil
}
