// Package clipboard copies a derived password to the system clipboard
// without ever passing it through a Go string, so the one extra immutable
// copy a string conversion would pin in memory is never made.
package clipboard

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
)

// WritePassword attempts to copy password to the system clipboard. The
// caller retains ownership of password and is responsible for scrubbing it,
// matching the convention derive.Secret and derive.Password use.
func WritePassword(password []byte) error {
	// We can't call xsel if there isn't a DISPLAY set, since it won't work.
	if os.Getenv("DISPLAY") == "" {
		return errors.New("unable to copy to clipboard (no DISPLAY)")
	}
	cmd := exec.Command("xsel", "--clipboard")
	cmd.Stdin = bytes.NewReader(password)
	return cmd.Run()
}
