package output

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ColorDisabled decides whether output written to f should be plain:
// when asked explicitly, when NO_COLOR is set, or when f is not a terminal.
func ColorDisabled(noColorFlag bool, f *os.File) bool {
	if noColorFlag {
		return true
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	return !IsTerminal(f)
}
