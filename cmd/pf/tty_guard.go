package main

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// init runs before lipgloss and termenv probe the terminal. When output is
// piped, or pf only prints its version or help, the probe's OSC/DSR queries
// would end up in the captured output, so CI=1 is set to turn them off.
func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !shouldSuppressTTYQueries(os.Args, term.IsTerminal(int(os.Stdout.Fd())), os.Getenv("PF_TEST_MODE") != "") {
		return
	}
	_ = os.Setenv("CI", "1")
}

func shouldSuppressTTYQueries(args []string, stdoutTTY, envTest bool) bool {
	if envTest || !stdoutTTY {
		return true
	}
	if len(args) < 2 {
		return false
	}
	sub := ""
	for _, arg := range args[1:] {
		switch {
		case arg == "--version" || arg == "--help" || arg == "-h":
			return true
		case sub == "" && !strings.HasPrefix(arg, "-"):
			sub = arg
		}
	}
	return sub == "version" || sub == "help"
}
