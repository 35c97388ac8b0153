// Program onepass is a deterministic password manager: it derives a
// site-specific password from a memorized seed password and a per-site
// schema, storing no secret state on disk.
package main

import (
	"os"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"

	"github.com/creachadair/onepass/cmd/onepass/internal/clisettings"
	"github.com/creachadair/onepass/cmd/onepass/internal/cmdconfig"
	"github.com/creachadair/onepass/cmd/onepass/internal/cmddict"
	"github.com/creachadair/onepass/cmd/onepass/internal/cmdgen"
	"github.com/creachadair/onepass/cmd/onepass/internal/cmdschema"
)

func main() {
	var flags struct {
		ConfigPath string `flag:"config,Path to the site config file (default: XDG config dir)"`
	}

	root := &command.C{
		Name: command.ProgramName(),
		Help: `onepass derives site-specific passwords from a single seed password.

No password is ever stored: the seed lives only in your memory, and each
site's password is recomputed on demand from the seed and a small, visible
record (the site's URL, an optional username, a password schema, and an
increment). Losing the config file never loses a password — it only loses
the convenience of not having to remember the schema.`,

		SetFlags: command.Flags(flax.MustBind, &flags),

		Init: func(env *command.Env) error {
			env.Config = &clisettings.Settings{ConfigPath: flags.ConfigPath}
			return nil
		},

		Commands: []*command.C{
			cmdgen.Command,
			cmdschema.Command,
			cmddict.Command,
			cmdconfig.Command,
			command.HelpCommand(nil),
			command.VersionCommand(),
		},
	}
	command.RunOrFail(root.NewEnv(nil).MergeFlags(true), os.Args[1:])
}
