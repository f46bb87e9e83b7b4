package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into directories, pipeline, batch, display, and utility.
// Flag values are held in a CLI and copied onto a Config by Apply only when
// the user actually passed them, so the settings file keeps its say for
// everything left on the command line's defaults.

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CLI is the parsed command line: positional input paths, the settings file
// to load, and the flag overrides to apply after settings are read.
type CLI struct {
	Paths        []string
	SettingsPath string

	values flagValues
	set    map[string]bool
}

// flagValues mirrors the flag-settable Config fields. Short aliases share
// storage with their long form.
type flagValues struct {
	output      string
	temp        string
	tools       string
	proxy       bool
	poster      bool
	workers     int
	policy      FailurePolicy
	recursive   bool
	metrics     string
	logFile     string
	verbose     bool
	forceColor  bool
	noColor     bool
	check       bool
	showVersion bool
	showHelp    bool
}

// ParseFlags parses args (without the program name). On --help or --version
// it prints and exits. On error it returns non-nil (e.g. unknown flag, bad
// value, or no input paths outside --check).
func ParseFlags(args []string, version string) (*CLI, error) {
	fs := flag.NewFlagSet("rawflow", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cli := &CLI{set: make(map[string]bool)}
	v := &cli.values
	v.policy = PolicySkip

	defineDirectoryFlags(fs, cli)
	definePipelineFlags(fs, v)
	defineBatchFlags(fs, v)
	defineDisplayFlags(fs, v)
	defineUtilityFlags(fs, v)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { cli.set[canonicalFlag(f.Name)] = true })

	if v.showHelp {
		printUsage(os.Stderr, version)
		os.Exit(0)
	}
	if v.showVersion {
		fmt.Fprintln(os.Stdout, "rawflow v"+version)
		os.Exit(0)
	}

	cli.Paths = fs.Args()
	if len(cli.Paths) == 0 && !v.check {
		return nil, fmt.Errorf("need at least one %s file", ContainerExt)
	}
	return cli, nil
}

// Apply copies every flag the user passed onto cfg.
func (c *CLI) Apply(cfg *Config) {
	v := &c.values
	if c.set["output"] {
		cfg.OutputDirectory = v.output
	}
	if c.set["temp"] {
		cfg.TemporaryWorkingDirectory = v.temp
	}
	if c.set["tools"] {
		cfg.ToolDirectory = v.tools
	}
	if c.set["proxy"] {
		cfg.GenerateProxyVideo = v.proxy
	}
	if c.set["poster"] {
		cfg.GeneratePosterFrame = v.poster
	}
	if c.set["workers"] {
		cfg.ConversionWorkers = v.workers
	}
	if c.set["policy"] {
		cfg.FailurePolicy = v.policy
	}
	if c.set["recursive"] {
		cfg.Recursive = v.recursive
	}
	if c.set["metrics"] {
		cfg.MetricsTextfile = v.metrics
	}
	if c.set["log"] {
		cfg.LogFile = v.logFile
	}
	if c.set["verbose"] {
		cfg.Verbose = v.verbose
	}
	if v.noColor {
		cfg.ColorMode = ColorNever
	} else if v.forceColor {
		cfg.ColorMode = ColorAlways
	}
	if v.check {
		cfg.CheckOnly = true
	}
}

// canonicalFlag maps short aliases to their long names for the set map.
func canonicalFlag(name string) string {
	switch name {
	case "o":
		return "output"
	case "t":
		return "temp"
	case "r":
		return "recursive"
	case "l":
		return "log"
	case "v":
		return "verbose"
	case "w":
		return "workers"
	default:
		return name
	}
}

// defineDirectoryFlags registers --settings, -o/--output, -t/--temp, --tools.
func defineDirectoryFlags(fs *flag.FlagSet, c *CLI) {
	v := &c.values
	fs.StringVar(&c.SettingsPath, "settings", "", "Settings file (default: rawflow.env next to the executable)")
	fs.StringVar(&v.output, "output", "", "Output directory")
	fs.StringVar(&v.output, "o", "", "Same as --output")
	fs.StringVar(&v.temp, "temp", "", "Temporary working directory")
	fs.StringVar(&v.temp, "t", "", "Same as --temp")
	fs.StringVar(&v.tools, "tools", "", "Directory holding mlv_dump, dcraw and ffmpeg")
}

// definePipelineFlags registers --proxy, --poster, -w/--workers.
func definePipelineFlags(fs *flag.FlagSet, v *flagValues) {
	fs.BoolVar(&v.proxy, "proxy", false, "Generate a proxy video")
	fs.BoolVar(&v.poster, "poster", false, "Generate a poster frame with the proxy")
	fs.Var(&workersValue{&v.workers}, "workers", "Parallel dcraw conversions per file")
	fs.Var(&workersValue{&v.workers}, "w", "Same as --workers")
}

// defineBatchFlags registers --policy, -r/--recursive, --metrics.
func defineBatchFlags(fs *flag.FlagSet, v *flagValues) {
	fs.Var(&policyValue{&v.policy}, "policy", "On failure: skip | abort")
	fs.BoolVar(&v.recursive, "recursive", false, "Expand directories into their .mlv files")
	fs.BoolVar(&v.recursive, "r", false, "Same as --recursive")
	fs.StringVar(&v.metrics, "metrics", "", "Write Prometheus metrics to this textfile")
}

// defineDisplayFlags registers --color, --no-color, verbose, --log.
func defineDisplayFlags(fs *flag.FlagSet, v *flagValues) {
	fs.BoolVar(&v.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&v.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&v.verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&v.verbose, "v", false, "Same as --verbose")
	fs.StringVar(&v.logFile, "log", "", "Append logs to file")
	fs.StringVar(&v.logFile, "l", "", "Same as --log")
}

// defineUtilityFlags registers --check, --version and --help.
func defineUtilityFlags(fs *flag.FlagSet, v *flagValues) {
	fs.BoolVar(&v.check, "check", false, "Check bundled tools and exit")
	fs.BoolVar(&v.check, "c", false, "Same as --check")
	fs.BoolVar(&v.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&v.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&v.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&v.showHelp, "h", false, "Same as --help")
}

// printUsage writes the help text. Column-aligned for readability.
func printUsage(w io.Writer, version string) {
	const col1 = 28
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "RawFlow v" + version + " - MLV to DNG batch extractor"},
		{"", ""},
		{"  rawflow [OPTIONS] <file.mlv>...", ""},
		{"", ""},
		{"Directories", ""},
		{"  --settings <path>", "Settings file (default: rawflow.env beside rawflow)"},
		{"  -o, --output <dir>", "Output directory (default: next to each input)"},
		{"  -t, --temp <dir>", "Shared scratch directory (emptied per file)"},
		{"  --tools <dir>", "Bundled tool directory (default: beside rawflow)"},
		{"", ""},
		{"Pipeline", ""},
		{"  --proxy", "Generate a 480px H.264 proxy video"},
		{"  --poster", "Also write a JPEG poster frame"},
		{"  -w, --workers <n>", "Parallel dcraw conversions (default: 1)"},
		{"", ""},
		{"Batch", ""},
		{"  --policy <skip|abort>", "Failure handling (default: skip)"},
		{"  -r, --recursive", "Expand directory arguments"},
		{"  --metrics <path>", "Write Prometheus textfile metrics"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"  -l, --log <path>", "Append logs to file"},
		{"", ""},
		{"Utility", ""},
		{"  -c, --check", "Check bundled tools (mlv_dump, dcraw, ffmpeg)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		switch {
		case l.flags == "" && l.desc == "":
			fmt.Fprintln(w)
		case l.desc == "":
			fmt.Fprintln(w, l.flags)
		case l.flags == "":
			fmt.Fprintln(w, l.desc)
		default:
			padding := col1 - len(l.flags)
			if padding < 1 {
				padding = 1
			}
			fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
		}
	}
}

// flag.Value adapters so enum and range-checked fields work with flag.Var.

type policyValue struct{ p *FailurePolicy }

func (p *policyValue) String() string {
	if p.p == nil {
		return ""
	}
	return string(*p.p)
}

func (p *policyValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "skip":
		*p.p = PolicySkip
	case "abort":
		*p.p = PolicyAbort
	default:
		return fmt.Errorf("invalid policy %q (use 'skip' or 'abort')", s)
	}
	return nil
}

type workersValue struct{ p *int }

func (w *workersValue) String() string {
	if w.p == nil {
		return "0"
	}
	return strconv.Itoa(*w.p)
}

func (w *workersValue) Set(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("workers must be a whole number >= 1 (got %q)", s)
	}
	*w.p = n
	return nil
}
