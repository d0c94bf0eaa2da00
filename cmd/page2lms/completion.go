package main

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// shells lists the supported shells in the order the usage shows them.
var shells = []Shell{ShellBash, ShellZsh, ShellFish, ShellPowerShell}

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = fmt.Errorf("unsupported shell")

// flagType is the kind of value a flag completes to.
type flagType int

const (
	flagString flagType = iota // free text, no completion
	flagBool
	flagInt
	flagEnum // fixed values
	flagFile // file matching a glob
	flagDir
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string
	Short    string
	Type     flagType
	Desc     string
	Values   []string // flagEnum
	FileGlob string   // flagFile, comma separated
}

// takesValue reports whether the flag consumes the next word.
func (f flagDef) takesValue() bool {
	return f.Type != flagBool
}

// commandDef describes a command for completion.
type commandDef struct {
	Name      string
	Desc      string
	Flags     []flagDef
	TakesURLs bool
	Args      []string // fixed positional values
}

// completionMeta holds the completion hints a FlagSet cannot express.
// Names, shorthands and descriptions come from the FlagSet itself.
type completionMeta struct {
	Values   []string
	FileGlob string
	IsDir    bool
}

var flagCompletionMeta = map[string]completionMeta{
	"log-format": {Values: []string{"text", "json"}},

	"config":    {FileGlob: "*.yaml,*.yml"},
	"report":    {FileGlob: "*.yaml,*.yml"},
	"extra-css": {FileGlob: "*.css"},
	"log-file":  {FileGlob: "*.log"},
	"output":    {FileGlob: "*.html"},
}

// extractFlagsFromFlagSet lists the flags of fs, enriched with
// flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{Long: f.Name, Short: f.Shorthand, Desc: f.Usage}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
func getCommands() []commandDef {
	return []commandDef{
		{
			Name:      "export",
			Desc:      "Export one or more pages (default command)",
			Flags:     extractFlagsFromFlagSet(newExportFlagSet(&exportFlags{})),
			TakesURLs: true,
		},
		{
			Name:      "doctor",
			Desc:      "Check the browser and environment setup",
			Flags:     extractFlagsFromFlagSet(newDoctorFlagSet(&doctorFlags{})),
			TakesURLs: true,
		},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command", Args: commandNames()},
		{Name: "completion", Desc: "Generate shell completion script", Args: shellNames()},
	}
}

func commandNames() []string {
	return []string{"export", "doctor", "version", "help", "completion"}
}

func shellNames() []string {
	names := make([]string, len(shells))
	for i, s := range shells {
		names[i] = string(s)
	}
	return names
}

// globExtensions turns "*.yaml,*.yml" into ["yaml", "yml"].
func globExtensions(glob string) []string {
	var exts []string
	for _, g := range strings.Split(glob, ",") {
		if ext := strings.TrimPrefix(strings.TrimSpace(g), "*."); ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var script string
	switch shell {
	case ShellBash:
		script = generateBash(getCommands())
	case ShellZsh:
		script = generateZsh(getCommands())
	case ShellFish:
		script = generateFish(getCommands())
	case ShellPowerShell:
		script = generatePowerShell(getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
	_, err := io.WriteString(w, script)
	return err
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(cmds []commandDef) string {
	var b strings.Builder

	b.WriteString("# bash completion for page2lms\n\n")
	b.WriteString("_page2lms_files() {\n")
	b.WriteString("    local IFS=$'\\n'\n")
	b.WriteString("    COMPREPLY=($(compgen -f -X \"!*.@($1)\" -- \"$cur\") $(compgen -d -- \"$cur\"))\n")
	b.WriteString("    compopt -o filenames 2>/dev/null\n")
	b.WriteString("}\n\n")

	b.WriteString("_page2lms_completions() {\n")
	b.WriteString("    local cur prev cmd i\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"\"\n")
	b.WriteString("    shopt -s extglob\n\n")
	fmt.Fprintf(&b, "    for ((i = 1; i < COMP_CWORD; i++)); do\n")
	fmt.Fprintf(&b, "        case \"${COMP_WORDS[i]}\" in\n")
	fmt.Fprintf(&b, "            %s) cmd=\"${COMP_WORDS[i]}\"; break ;;\n", strings.Join(commandNames(), "|"))
	b.WriteString("        esac\n")
	b.WriteString("    done\n\n")

	// Values of the previous flag, across every command.
	b.WriteString("    case \"$prev\" in\n")
	seen := map[string]bool{}
	for _, c := range cmds {
		for _, f := range c.Flags {
			if !f.takesValue() || seen[f.Long] {
				continue
			}
			seen[f.Long] = true
			fmt.Fprintf(&b, "        %s)\n", bashFlagPattern(f))
			switch f.Type {
			case flagEnum:
				fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", strings.Join(f.Values, " "))
			case flagFile:
				fmt.Fprintf(&b, "            _page2lms_files \"%s\"\n", strings.Join(globExtensions(f.FileGlob), "|"))
			case flagDir:
				b.WriteString("            COMPREPLY=($(compgen -d -- \"$cur\"))\n")
			}
			b.WriteString("            return ;;\n")
		}
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range cmds {
		pattern := c.Name
		if c.Name == "export" {
			// Export is also the default when no command is given.
			pattern = `export|""`
		}
		fmt.Fprintf(&b, "        %s)\n", pattern)
		if len(c.Flags) > 0 {
			b.WriteString("            if [[ \"$cur\" == -* ]]; then\n")
			fmt.Fprintf(&b, "                COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", bashFlagWords(c.Flags))
			b.WriteString("                return\n")
			b.WriteString("            fi\n")
		}
		switch {
		case c.Name == "export":
			b.WriteString("            if [[ -z \"$cmd\" ]]; then\n")
			fmt.Fprintf(&b, "                COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", strings.Join(commandNames(), " "))
			b.WriteString("            fi\n")
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n", strings.Join(c.Args, " "))
		}
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -o default -F _page2lms_completions page2lms\n")

	return b.String()
}

func bashFlagPattern(f flagDef) string {
	if f.Short != "" {
		return "--" + f.Long + "|-" + f.Short
	}
	return "--" + f.Long
}

func bashFlagWords(flags []flagDef) string {
	words := make([]string, 0, len(flags)*2)
	for _, f := range flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return strings.Join(words, " ")
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

func generateZsh(cmds []commandDef) string {
	var b strings.Builder

	b.WriteString("#compdef page2lms\n\n")
	b.WriteString("_page2lms() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshQuote(c.Desc))
	}
	b.WriteString("    )\n\n")

	for _, c := range cmds {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "    local -a %s_flags\n", c.Name)
		fmt.Fprintf(&b, "    %s_flags=(\n", c.Name)
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "        %s\n", zshFlagSpec(f))
		}
		b.WriteString("    )\n\n")
	}

	b.WriteString("    if (( CURRENT == 2 )) && [[ $words[2] != -* ]]; then\n")
	b.WriteString("        _describe -t commands 'page2lms command' commands\n")
	b.WriteString("        _urls\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    local cmd=$words[2]\n")
	b.WriteString("    case $cmd in\n")
	fmt.Fprintf(&b, "        %s)\n", strings.Join(commandNames(), "|"))
	b.WriteString("            shift words\n")
	b.WriteString("            (( CURRENT-- ))\n")
	b.WriteString("            ;;\n")
	b.WriteString("        *)\n")
	b.WriteString("            cmd=export\n")
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n\n")

	b.WriteString("    case $cmd in\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		switch {
		case len(c.Flags) > 0 && c.TakesURLs:
			fmt.Fprintf(&b, "            _arguments -s $%s_flags '*:url:_urls'\n", c.Name)
		case len(c.Flags) > 0:
			fmt.Fprintf(&b, "            _arguments -s $%s_flags\n", c.Name)
		case c.Name == "help":
			b.WriteString("            _describe -t commands 'page2lms command' commands\n")
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "            _values '%s' %s\n", c.Name, strings.Join(c.Args, " "))
		}
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("if [[ \"$funcstack[1]\" == \"_page2lms\" ]]; then\n")
	b.WriteString("    _page2lms \"$@\"\n")
	b.WriteString("else\n")
	b.WriteString("    compdef _page2lms page2lms\n")
	b.WriteString("fi\n")

	return b.String()
}

func zshFlagSpec(f flagDef) string {
	desc := "[" + zshQuote(f.Desc) + "]"

	var action string
	switch f.Type {
	case flagBool:
	case flagEnum:
		action = ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		exts := globExtensions(f.FileGlob)
		glob := "*." + exts[0]
		if len(exts) > 1 {
			glob = "*.(" + strings.Join(exts, "|") + ")"
		}
		action = ":" + f.Long + `:_files -g "` + glob + `"`
	case flagDir:
		action = ":" + f.Long + ":_files -/"
	default:
		action = ":" + f.Long + ": "
	}

	if f.Short == "" {
		return "'--" + f.Long + desc + action + "'"
	}
	return "'(-" + f.Short + " --" + f.Long + ")'{-" + f.Short + ",--" + f.Long + "}'" + desc + action + "'"
}

// zshQuote escapes text for a single-quoted _arguments spec.
func zshQuote(s string) string {
	return strings.NewReplacer(`'`, `'\''`, "[", `\[`, "]", `\]`, ":", `\:`).Replace(s)
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

func generateFish(cmds []commandDef) string {
	var b strings.Builder
	names := strings.Join(commandNames(), " ")

	b.WriteString("# fish completion for page2lms\n\n")
	b.WriteString("function __fish_page2lms_needs_command\n")
	b.WriteString("    for w in (commandline -opc)[2..-1]\n")
	fmt.Fprintf(&b, "        if contains -- $w %s\n", names)
	b.WriteString("            return 1\n")
	b.WriteString("        end\n")
	b.WriteString("    end\n")
	b.WriteString("    return 0\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_page2lms_using_command\n")
	b.WriteString("    for w in (commandline -opc)[2..-1]\n")
	fmt.Fprintf(&b, "        if contains -- $w %s\n", names)
	b.WriteString("            test \"$w\" = \"$argv[1]\"\n")
	b.WriteString("            return\n")
	b.WriteString("        end\n")
	b.WriteString("    end\n")
	b.WriteString("    return 1\n")
	b.WriteString("end\n\n")

	b.WriteString("complete -c page2lms -f\n\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c page2lms -n __fish_page2lms_needs_command -a %s -d '%s'\n", c.Name, fishQuote(c.Desc))
	}

	for _, c := range cmds {
		cond := "'__fish_page2lms_using_command " + c.Name + "'"
		if c.Name == "export" {
			cond = "'__fish_page2lms_needs_command; or __fish_page2lms_using_command export'"
		}
		if len(c.Flags) > 0 || len(c.Args) > 0 {
			b.WriteString("\n")
		}
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c page2lms -n %s", cond)
			if f.Short != "" {
				fmt.Fprintf(&b, " -s %s", f.Short)
			}
			fmt.Fprintf(&b, " -l %s -d '%s'%s\n", f.Long, fishQuote(f.Desc), fishAction(f))
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "complete -c page2lms -n %s -a '%s'\n", cond, strings.Join(c.Args, " "))
		}
	}

	return b.String()
}

func fishAction(f flagDef) string {
	switch f.Type {
	case flagBool:
		return ""
	case flagEnum:
		return " -x -a '" + strings.Join(f.Values, " ") + "'"
	case flagFile:
		suffixes := globExtensions(f.FileGlob)
		for i, ext := range suffixes {
			suffixes[i] = "." + ext
		}
		return " -r -a '(__fish_complete_suffix " + strings.Join(suffixes, " ") + ")'"
	case flagDir:
		return " -x -a '(__fish_complete_directories)'"
	default:
		return " -x"
	}
}

func fishQuote(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

func generatePowerShell(cmds []commandDef) string {
	var b strings.Builder

	b.WriteString("# PowerShell completion for page2lms\n\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName page2lms -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")

	b.WriteString("    $commands = [ordered]@{\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s' = '%s'\n", c.Name, psQuote(c.Desc))
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $flags = @{\n")
	for _, c := range cmds {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "        '%s' = @(\n", c.Name)
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "            ,@('--%s', '%s')\n", f.Long, psQuote(f.Desc))
			if f.Short != "" {
				fmt.Fprintf(&b, "            ,@('-%s', '%s')\n", f.Short, psQuote(f.Desc))
			}
		}
		b.WriteString("        )\n")
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $values = @{\n")
	seen := map[string]bool{}
	for _, c := range cmds {
		for _, f := range c.Flags {
			if f.Type != flagEnum || seen[f.Long] {
				continue
			}
			seen[f.Long] = true
			fmt.Fprintf(&b, "        '--%s' = @('%s')\n", f.Long, strings.Join(f.Values, "', '"))
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "        '%s' = @('%s')\n", c.Name, strings.Join(c.Args, "', '"))
		}
	}
	b.WriteString("    }\n\n")

	b.WriteString(`    $words = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })
    if ($wordToComplete -ne '' -and $words.Count -gt 1) {
        $words = $words[0..($words.Count - 2)]
    }

    $cmd = ''
    foreach ($w in ($words | Select-Object -Skip 1)) {
        if ($commands.Contains($w)) {
            $cmd = $w
            break
        }
    }
    $prev = if ($words.Count -gt 1) { $words[-1] } else { '' }

    $results = @()
    if ($values.ContainsKey($prev)) {
        $results = @($values[$prev] | ForEach-Object { ,@($_, $_) })
    } elseif ($cmd -ne '' -and $values.ContainsKey($cmd)) {
        $results = @($values[$cmd] | ForEach-Object { ,@($_, $_) })
    } elseif ($wordToComplete -like '-*') {
        $key = if ($cmd -eq '') { 'export' } else { $cmd }
        if ($flags.ContainsKey($key)) {
            $results = $flags[$key]
        }
    } elseif ($cmd -eq '') {
        $results = @($commands.Keys | ForEach-Object { ,@($_, $commands[$_]) })
    }

    $results | Where-Object { $_[0] -like "$wordToComplete*" } | ForEach-Object {
        $type = if ($_[0] -like '-*') { 'ParameterName' } else { 'ParameterValue' }
        [System.Management.Automation.CompletionResult]::new($_[0], $_[0], $type, $_[1])
    }
}
`)

	return b.String()
}

func psQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// ---------------------------------------------------------------------------
// Command
// ---------------------------------------------------------------------------

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// runCompletionCmd maps runCompletion onto an exit code.
func runCompletionCmd(args []string, env *Environment) int {
	if err := runCompletion(args, env); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n\n", err)
		printCompletionUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: page2lms completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash (~/.bashrc):")
	fmt.Fprintln(w, "    eval \"$(page2lms completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh (~/.zshrc, before compinit):")
	fmt.Fprintln(w, "    eval \"$(page2lms completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    page2lms completion fish > ~/.config/fish/completions/page2lms.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell ($PROFILE):")
	fmt.Fprintln(w, "    page2lms completion powershell | Out-String | Invoke-Expression")
}
