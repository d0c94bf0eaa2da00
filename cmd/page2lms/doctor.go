package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-page2lms/internal/config"
	"github.com/alnah/go-page2lms/internal/fileutil"
	"github.com/alnah/go-page2lms/internal/hints"
)

// lookupTimeout bounds the DNS check of the source host.
const lookupTimeout = 5 * time.Second

// Doctor sections, printed in this order.
const (
	sectionBrowser     = "Browser"
	sectionSource      = "Source"
	sectionEnvironment = "Environment"
	sectionOutput      = "Output"
)

var doctorSections = []string{sectionBrowser, sectionSource, sectionEnvironment, sectionOutput}

// checkStatus is the outcome of one check.
type checkStatus string

const (
	checkOK    checkStatus = "ok"
	checkWarn  checkStatus = "warn"
	checkError checkStatus = "error"
)

// check is one line of the doctor report.
type check struct {
	Section string      `json:"section"`
	Name    string      `json:"name"`
	Status  checkStatus `json:"status"`
	Detail  string      `json:"detail,omitempty"`
}

// doctorResult is what doctor prints, as text or JSON.
type doctorResult struct {
	Status string     `json:"status"` // "ready", "warnings", "errors"
	Source sourceInfo `json:"source"`
	Chrome chromeInfo `json:"chrome"`
	Env    envInfo    `json:"environment"`
	Checks []check    `json:"checks"`
}

// sourceInfo describes the page an export without arguments would load.
type sourceInfo struct {
	URL       string   `json:"url"`
	From      string   `json:"from"` // argument, env, config or default
	Host      string   `json:"host,omitempty"`
	Reachable bool     `json:"reachable"`
	Addresses []string `json:"addresses,omitempty"`
}

type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// doctorRun carries the inputs of one doctor invocation.
type doctorRun struct {
	cfg        *config.Config
	sourceURL  string
	sourceFrom string
	lookupHost func(ctx context.Context, host string) ([]string, error)
	result     *doctorResult
}

func (d *doctorRun) add(section, name string, status checkStatus, detail string) {
	d.result.Checks = append(d.result.Checks, check{Section: section, Name: name, Status: status, Detail: detail})
}

// doctorFlags holds the flags of the doctor command.
type doctorFlags struct {
	json   bool
	config string
}

// newDoctorFlagSet registers the doctor flags on a quiet FlagSet.
func newDoctorFlagSet(f *doctorFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.BoolVar(&f.json, "json", false, "print results as JSON")
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	return fs
}

// runDoctorCmd checks that this machine can export the configured page.
// Exit codes: 0 = ready (warnings allowed), 1 = a check failed, 2 = bad usage.
func runDoctorCmd(args []string, env *Environment) int {
	var f doctorFlags
	fs := newDoctorFlagSet(&f)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printDoctorUsage(env.Stdout)
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n\n", err)
		printDoctorUsage(env.Stderr)
		return ExitUsage
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(env.Stderr, "error: doctor takes at most one URL")
		return ExitUsage
	}

	d := newDoctorRun(f.config, fs.Args(), env)
	ctx, stop := notifyContext(context.Background())
	defer stop()
	d.run(ctx)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(d.result)
	} else {
		printDoctorResult(env.Stdout, d.result)
	}

	if d.result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// newDoctorRun picks the page to check with the same priority as export:
// argument, PAGE2LMS_URL, source.url from the config file, built-in page.
func newDoctorRun(configName string, args []string, env *Environment) *doctorRun {
	d := &doctorRun{
		cfg:        config.DefaultConfig(),
		lookupHost: env.LookupHost,
		result: &doctorResult{
			Env: envInfo{
				OS:         runtime.GOOS,
				Arch:       runtime.GOARCH,
				NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
				BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
			},
		},
	}
	if d.lookupHost == nil {
		d.lookupHost = net.DefaultResolver.LookupHost
	}

	if configName == "" {
		configName = os.Getenv("PAGE2LMS_CONFIG")
	}
	if configName != "" {
		cfg, err := config.LoadConfig(configName)
		if err != nil {
			d.add(sectionSource, "config", checkError, err.Error())
		} else {
			d.cfg = cfg
			d.add(sectionSource, "config", checkOK, "loaded "+configName)
		}
	}

	switch {
	case len(args) == 1:
		d.sourceURL, d.sourceFrom = args[0], "argument"
	case os.Getenv("PAGE2LMS_URL") != "":
		d.sourceURL, d.sourceFrom = os.Getenv("PAGE2LMS_URL"), "env"
	case d.cfg.Source.URL != "" && d.cfg.Source.URL != config.DefaultSourceURL:
		d.sourceURL, d.sourceFrom = d.cfg.Source.URL, "config"
	default:
		d.sourceURL, d.sourceFrom = config.DefaultSourceURL, "default"
	}
	return d
}

func (d *doctorRun) run(ctx context.Context) {
	d.checkBrowser()
	d.checkSource(ctx)
	d.checkEnvironment()
	d.checkOutput()

	d.result.Status = "ready"
	for _, c := range d.result.Checks {
		switch c.Status {
		case checkError:
			d.result.Status = "errors"
			return
		case checkWarn:
			d.result.Status = "warnings"
		}
	}
}

// checkBrowser finds the Chrome binary the exporter would launch.
func (d *doctorRun) checkBrowser() {
	bin := d.cfg.Browser.Bin
	if bin == "" {
		bin = d.result.Env.BrowserBin
	}
	if bin == "" {
		var found bool
		if bin, found = launcher.LookPath(); !found {
			d.add(sectionBrowser, "chrome", checkError,
				"Chrome/Chromium not found; install it or set ROD_BROWSER_BIN (rod can also download one on first export)")
			return
		}
	}
	if _, err := os.Stat(bin); err != nil {
		d.add(sectionBrowser, "chrome", checkError, "not found at "+bin)
		return
	}

	d.result.Chrome.Found = true
	d.result.Chrome.Path = bin
	d.add(sectionBrowser, "chrome", checkOK, bin)

	out, err := exec.Command(bin, "--version").Output() // #nosec G204 -- binary from config, ROD_BROWSER_BIN or LookPath
	if err != nil {
		d.add(sectionBrowser, "version", checkWarn, fmt.Sprintf("could not run %s --version: %v", bin, err))
	} else {
		d.result.Chrome.Version = strings.TrimSpace(string(out))
		d.add(sectionBrowser, "version", checkOK, d.result.Chrome.Version)
	}

	d.result.Chrome.Sandbox = d.result.Env.NoSandbox == "" && !d.cfg.Browser.NoSandbox
	if d.result.Chrome.Sandbox {
		d.add(sectionBrowser, "sandbox", checkOK, "enabled")
	} else {
		d.add(sectionBrowser, "sandbox", checkOK, "disabled")
	}
}

// checkSource verifies that the page can be reached: its host resolves for
// http(s) pages, its file exists for file pages. Both failures end an export
// with a browser error.
func (d *doctorRun) checkSource(ctx context.Context) {
	src := &d.result.Source
	src.URL, src.From = d.sourceURL, d.sourceFrom

	u, err := url.Parse(d.sourceURL)
	if err != nil || !fileutil.IsURL(d.sourceURL) {
		d.add(sectionSource, "url", checkError,
			fmt.Sprintf("%q is not an http, https or file URL", d.sourceURL))
		return
	}
	d.add(sectionSource, "url", checkOK, fmt.Sprintf("%s (from %s)", d.sourceURL, d.sourceFrom))

	if u.Scheme == "file" {
		if _, err := os.Stat(filepath.FromSlash(u.Path)); err != nil {
			d.add(sectionSource, "file", checkError, fmt.Sprintf("cannot read %s: %v", u.Path, err))
			return
		}
		src.Reachable = true
		d.add(sectionSource, "file", checkOK, u.Path)
		return
	}

	src.Host = u.Hostname()
	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	addrs, err := d.lookupHost(lookupCtx, src.Host)
	if err != nil {
		d.add(sectionSource, "dns", checkError,
			fmt.Sprintf("cannot resolve %s: %v (check DNS, proxy or VPN)", src.Host, err))
		return
	}
	src.Reachable = true
	src.Addresses = addrs
	d.add(sectionSource, "dns", checkOK, fmt.Sprintf("%s resolves to %s", src.Host, strings.Join(addrs, ", ")))
}

// checkEnvironment reports container and CI detection, and the settings the
// sandbox needs there.
func (d *doctorRun) checkEnvironment() {
	env := &d.result.Env
	d.add(sectionEnvironment, "platform", checkOK, env.OS+"/"+env.Arch)

	env.Container, env.ContainerHint = isContainer()
	if env.Container {
		d.add(sectionEnvironment, "container", checkOK, "detected ("+env.ContainerHint+")")
	}
	for _, name := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(name) != "" {
			env.CI = true
			d.add(sectionEnvironment, "ci", checkOK, "detected ("+name+")")
			break
		}
	}

	if (env.Container || env.CI) && env.NoSandbox == "" && env.BrowserBin == "" && !d.cfg.Browser.NoSandbox {
		d.add(sectionEnvironment, "sandbox", checkWarn,
			"container or CI detected but ROD_NO_SANDBOX is not set; set ROD_NO_SANDBOX=1")
	}

	for _, name := range unknownEnvVars() {
		d.add(sectionEnvironment, "env", checkWarn, "unknown environment variable "+name+" (typo?)")
	}
}

// isContainer reports whether we run in a container, and which signal said so.
func isContainer() (bool, string) {
	if os.Getenv("PAGE2LMS_CONTAINER") == "1" {
		return true, "PAGE2LMS_CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkOutput verifies the directories an export writes to.
func (d *doctorRun) checkOutput() {
	// Chrome keeps its profile under the temp directory
	tmp := os.TempDir()
	if err := fileutil.CheckWritableDir(tmp); err != nil {
		d.add(sectionOutput, "temp", checkError, tmp+" is not writable")
	} else {
		d.add(sectionOutput, "temp", checkOK, tmp)
	}

	dir := filepath.Dir(d.cfg.Output.File)
	if v := os.Getenv("PAGE2LMS_OUTPUT"); v != "" {
		dir = filepath.Dir(v)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	if err := fileutil.CheckWritableDir(dir); err != nil {
		d.add(sectionOutput, "output", checkWarn, dir+" is not writable (use -o to write elsewhere)")
	} else {
		d.add(sectionOutput, "output", checkOK, dir)
	}
}

// printDoctorResult writes the checks grouped by section.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "page2lms doctor")

	for _, section := range doctorSections {
		printed := false
		for _, c := range r.Checks {
			if c.Section != section {
				continue
			}
			if !printed {
				fmt.Fprintf(w, "\n%s\n", section)
				printed = true
			}
			fmt.Fprintf(w, "  %-7s %-10s %s\n", statusLabel(c.Status), c.Name, c.Detail)
		}
	}
	fmt.Fprintln(w)

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to export")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	default:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func statusLabel(s checkStatus) string {
	switch s {
	case checkWarn:
		return "[WARN]"
	case checkError:
		return "[ERROR]"
	default:
		return "[OK]"
	}
}
