package config

import (
	"fmt"
	"os"
	"strings"
)

// Exitf prints a one-line failure to stderr, without the log prefix, and
// exits with status 1. Probe modes use it so container health checks see a
// plain reason.
func Exitf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
	os.Exit(1)
}
