package main

import (
	"fmt"
	"io"

	"github.com/alnah/go-page2lms/internal/config"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: page2lms [command] [flags] [url...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export the main content of a web page as HTML with its CSS inlined.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  export     Export one or more pages (default command)")
	fmt.Fprintln(w, "  doctor     Check the browser and environment setup")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'page2lms help <command>' for details on a specific command.")
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: page2lms export [url...] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Load each page in headless Chrome, inline its stylesheets into the")
	fmt.Fprintln(w, "elements and save the main content as an HTML fragment.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  url      Page to export (http, https or file)")
	fmt.Fprintf(w, "           Default: source.url from config, or %s\n", config.DefaultSourceURL)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintf(w, "  -o, --output <path>       Output file (default: %s),\n", config.DefaultOutputFile)
	fmt.Fprintln(w, "                            or directory when several URLs are given")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel exports (0 = auto)")
	fmt.Fprintf(w, "  -t, --timeout <dur>       Per-page timeout (default: %s)\n", config.DefaultTimeout)
	fmt.Fprintln(w, "      --report <path>       Write a YAML report of fetched stylesheets")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Extraction:")
	fmt.Fprintf(w, "      --selector <css>      Main content selector (default: %s)\n", config.DefaultMainSelector)
	fmt.Fprintln(w, "                            Falls back to the page body when nothing matches")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Inlining:")
	fmt.Fprintln(w, "      --no-media-queries    Drop @media rules instead of keeping them")
	fmt.Fprintln(w, "      --no-style-tags       Ignore <style> blocks when inlining")
	fmt.Fprintln(w, "      --no-pseudo-elements  Keep ::before/::after as rules")
	fmt.Fprintln(w, "      --extra-css <path>    CSS file applied after the page's styles")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show stage traces and timing")
	fmt.Fprintln(w, "      --log-format <s>      Log format: text, json")
	fmt.Fprintln(w, "      --log-file <path>     Also write logs to a rotating file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  PAGE2LMS_URL, PAGE2LMS_CONFIG, PAGE2LMS_OUTPUT, PAGE2LMS_OUTPUT_DIR,")
	fmt.Fprintln(w, "  PAGE2LMS_TIMEOUT, PAGE2LMS_WORKERS, PAGE2LMS_SELECTOR, PAGE2LMS_EXTRA_CSS,")
	fmt.Fprintln(w, "  PAGE2LMS_LOG_LEVEL, PAGE2LMS_LOG_FORMAT, PAGE2LMS_LOG_FILE")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN, ROD_NO_SANDBOX    Browser binary and sandbox")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  page2lms")
	fmt.Fprintln(w, "  page2lms https://example.com/lectures/intro/ -o intro.html")
	fmt.Fprintln(w, "  page2lms export -o out/ --report report.yaml URL1 URL2 URL3")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: page2lms doctor [url] [--json] [-c <config>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, the source page, the sandbox and the output directory")
	fmt.Fprintln(w, "before exporting. The page is picked like export picks it: the url")
	fmt.Fprintln(w, "argument, PAGE2LMS_URL, source.url from the config, then the default.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>  Config file name or path")
	fmt.Fprintln(w, "      --json           Print results as JSON")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 0 when ready (warnings allowed), 1 when a check fails.")
}

// runHelp prints help for the named command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "export":
		printExportUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: page2lms version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		printUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
