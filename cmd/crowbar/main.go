package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	crowbarlog "crowbar/internal/log"
	"crowbar/internal/repl"
	"crowbar/internal/runtime"
	"crowbar/internal/util"
)

const historyFile = ".crowbar_history"

var (
	// Version is set at build time with -ldflags.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configPath string
	debugAST   bool
	check      bool
	evalStr    string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configPath, "config", "", "Load interpreter settings from a YAML or TOML file")
	// parser config
	flag.BoolVar(&debugAST, "debug-ast", false, "Render the AST as a JSON file")
	flag.BoolVar(&check, "check", false, "Compile the given files without running them")
	flag.StringVar(&evalStr, "e", "", "Run the given program text and exit")
	// log config
	flag.StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, none")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if version {
		printVersion()
		return 0
	}
	if help {
		printHelp()
		return 0
	}

	config, err := loadConfiguration()
	if err != nil {
		fmt.Fprintf(os.Stderr, "crowbar: %v\n", err)
		return 1
	}

	logger, closeLog := crowbarlog.Setup(config.LogLevel, config.LogFile)
	defer closeLog()
	slog.SetDefault(logger)

	rt := runtime.NewRuntime(config)

	switch {
	case check:
		if flag.NArg() == 0 {
			fmt.Fprintln(os.Stderr, "crowbar: -check needs at least one file")
			return 1
		}
		return report(rt.Check(flag.Args()))
	case evalStr != "":
		return report(rt.RunSource("-e", evalStr))
	case flag.NArg() > 0:
		return report(rt.RunFile(flag.Arg(0)))
	default:
		return runREPL(rt)
	}
}

// loadConfiguration layers the command line over the config file over the
// defaults.
func loadConfiguration() (util.Configuration, error) {
	config := util.DefaultConfiguration()
	if configPath != "" {
		var err error
		if config, err = util.LoadConfiguration(configPath); err != nil {
			return config, err
		}
	}

	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit
	if logLevel != "" {
		config.LogLevel = logLevel
	}
	if logFile != "" {
		config.LogFile = logFile
	}
	if debugAST {
		config.DebugJSONAST = true
	}
	return config, nil
}

// report prints every error in err with its source context and returns the
// exit status.
func report(err error) int {
	if err == nil {
		return 0
	}

	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "crowbar: %v\n", e)
		var se *runtime.SourceError
		if errors.As(e, &se) {
			fmt.Fprint(os.Stderr, se.Context())
		}
	}
	return 1
}

func runREPL(rt *runtime.Runtime) int {
	fmt.Printf("crowbar %s. Ctrl-D to exit.\n", Version)

	in := rt.NewInterpreter()
	defer in.Dispose()

	var historyPath string
	if home, err := os.UserHomeDir(); err == nil {
		historyPath = filepath.Join(home, historyFile)
	}
	repl.Start(repl.NewSession(in, os.Stdout), historyPath)
	return 0
}

func printVersion() {
	fmt.Printf("crowbar version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: crowbar [options] [filename]

Options:
  -config <path>     Load interpreter settings (heap, stack, logging) from YAML or TOML.
  -check             Compile the given files without running them.
  -e <program>       Run the given program text and exit.
  -debug-ast         Render the AST as a JSON file next to the source.
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: trace, debug, info, warn, error, none. Default is 'none'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
This is the Crowbar scripting language. Without a filename an interactive
session is started; functions and globals persist between inputs.

Examples:
  crowbar prog.crb                 Run the provided Crowbar file
  crowbar -check a.crb b.crb       Report compile errors in several files
  crowbar -e 'print(1 + 2.5);'     Run a one-line program
  crowbar -log-level=debug         Start with debug logging enabled

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}
