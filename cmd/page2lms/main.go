package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-page2lms/internal/fileutil"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches the command and returns the process exit code.
// With no command, or when the first argument is a URL or a flag, it exports.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		return runExportCmd(nil, env)
	}

	cmd := args[1]
	switch cmd {
	case "export":
		return runExportCmd(args[2:], env)
	case "doctor":
		return runDoctorCmd(args[2:], env)
	case "completion":
		return runCompletionCmd(args[2:], env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "page2lms %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(args[2:], env)
	}

	if fileutil.IsURL(cmd) || strings.HasPrefix(cmd, "-") {
		return runExportCmd(args[1:], env)
	}

	fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", cmd)
	printUsage(env.Stderr)
	return ExitUsage
}
