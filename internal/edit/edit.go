// Package edit opens a YAML-rendered value in the user's editor and
// confirms the result before accepting it, for CLI subcommands that let a
// user hand-edit a structured value (such as the whole site config) rather
// than pass every field as a flag.
package edit

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/creachadair/mds/mdiff"
	"github.com/creachadair/mds/mstr"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// ErrNoChange is reported by Value if the edited file matched the original.
var ErrNoChange = errors.New("edit: input was not changed")

// ErrUserReject is reported by Value if the user declined to keep the edit.
var ErrUserReject = errors.New("edit: the user rejected the edits")

// Value renders value as YAML, opens it in $EDITOR (default vi), diffs the
// result against the original, and — if the user confirms at a raw-mode
// terminal prompt — unmarshals the edited text back into a T and returns
// it. If the file is unchanged, Value returns (value, ErrNoChange).
func Value[T any](ctx context.Context, value T) (T, error) {
	var out T

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return out, fmt.Errorf("edit: marshal: %w", err)
	}

	dir, err := os.MkdirTemp("", "onepass-edit*")
	if err != nil {
		return out, fmt.Errorf("edit: %w", err)
	}
	defer os.RemoveAll(dir)

	epath := filepath.Join(dir, "value.yaml")
	if err := os.WriteFile(epath, buf.Bytes(), 0600); err != nil {
		return out, fmt.Errorf("edit: %w", err)
	}

	name := cmp.Or(os.Getenv("EDITOR"), "vi")
	cmd := exec.CommandContext(ctx, name, "value.yaml")
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return out, fmt.Errorf("edit: editor failed: %w", err)
	}

	edited, err := os.ReadFile(epath)
	if err != nil {
		return out, fmt.Errorf("edit: read editor output: %w", err)
	}
	diff := mdiff.New(mstr.Lines(buf.String()), mstr.Lines(string(edited)))
	if len(diff.Chunks) == 0 {
		return value, ErrNoChange
	}

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return out, fmt.Errorf("edit: %w", err)
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)
	vt := term.NewTerminal(os.Stdin, "")

	diff.AddContext(3).Unify().Format(vt, mdiff.Unified, nil)

	for {
		fmt.Fprint(vt, "Keep changes? (y/n) ")
		ln, err := vt.ReadLine()
		if err != nil {
			return out, fmt.Errorf("edit: %w", err)
		}
		switch strings.ToLower(ln) {
		case "y", "yes":
			if err := yaml.Unmarshal(edited, &out); err != nil {
				return out, fmt.Errorf("edit: unmarshal edited value: %w", err)
			}
			return out, nil
		case "n", "no":
			return value, ErrUserReject
		default:
			fmt.Fprintln(vt, "please enter y(es) or n(o)")
		}
	}
}
