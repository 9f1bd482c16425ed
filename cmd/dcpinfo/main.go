// dcpinfo describes and validates frame containers written by yuvfile.
//
// Usage:
//
//	dcpinfo [-q|--quiet] [-s|--strict] <filename> [<filename> ...]
//
// Options:
//
//	-q, --quiet   Only output errors. Exit code indicates pass/fail.
//	-s, --strict  Treat trailing data as an error and flag non-canonical strides.
//	-h, --help    Show this help message.
//	--version     Show version information.
//
// Exit codes:
//
//	0: All files valid
//	1: One or more files invalid
//	2: Error (file not found, etc.)
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const version = "1.0.0"

const (
	exitValid   = 0
	exitInvalid = 1
	exitError   = 2
)

const usage = `Usage: dcpinfo [options] <filename> [<filename> ...]

Describe and validate frame containers.

Options:
  -q, --quiet    Only output errors. Exit code indicates pass/fail.
  -s, --strict   Treat trailing data as an error and flag non-canonical strides.
  -h, --help     Show this help message.
  --version      Show version information.

Exit codes:
  0: All files valid
  1: One or more files invalid
  2: Error (file not found, permission denied, etc.)

Examples:
  dcpinfo frame.dcpf                  Describe a single file
  dcpinfo -q *.dcpf                   Validate all containers silently
`

// errHelp asks for the usage text and a clean exit.
var errHelp = errors.New("help requested")

type config struct {
	quiet   bool
	strict  bool
	version bool
	files   []string
}

// parseArgs reads options and file names. Everything after "--" is a file
// name.
func parseArgs(args []string) (*config, error) {
	cfg := &config{}
	for i, arg := range args {
		switch arg {
		case "-q", "--quiet":
			cfg.quiet = true
		case "-s", "--strict":
			cfg.strict = true
		case "-h", "--help":
			return nil, errHelp
		case "--version":
			cfg.version = true
		case "--":
			cfg.files = append(cfg.files, args[i+1:]...)
			return cfg, nil
		default:
			if strings.HasPrefix(arg, "-") && arg != "-" {
				return nil, fmt.Errorf("unknown option: %s", arg)
			}
			cfg.files = append(cfg.files, arg)
		}
	}
	if !cfg.version && len(cfg.files) == 0 {
		return nil, errors.New("no input files specified")
	}
	return cfg, nil
}

// run checks every file and returns the exit code.
func run(cfg *config, stdout, stderr io.Writer) int {
	if cfg.version {
		fmt.Fprintf(stdout, "dcpinfo version %s\n", version)
		return exitValid
	}

	valid := 0
	failed := false
	for _, name := range cfg.files {
		result, err := validateFile(name, cfg.strict)
		if err != nil {
			if !cfg.quiet {
				fmt.Fprintf(stderr, "%s: error: %v\n", name, err)
			}
			failed = true
			continue
		}
		if result.IsValid() {
			valid++
		}

		switch {
		case !cfg.quiet:
			printResult(stdout, result)
		case result.HasErrors():
			for _, issue := range result.Issues {
				if issue.Severity == "error" {
					fmt.Fprintf(stderr, "%s: %s\n", name, issue.Message)
				}
			}
		}
	}

	if len(cfg.files) > 1 && !cfg.quiet {
		fmt.Fprintf(stdout, "\nSummary: %d of %d files valid\n", valid, len(cfg.files))
	}
	switch {
	case failed:
		return exitError
	case valid < len(cfg.files):
		return exitInvalid
	}
	return exitValid
}

func main() {
	cfg, err := parseArgs(os.Args[1:])
	switch {
	case errors.Is(err, errHelp):
		fmt.Print(usage)
		os.Exit(exitValid)
	case err != nil:
		fmt.Fprintf(os.Stderr, "dcpinfo: %v\n\n%s", err, usage)
		os.Exit(exitError)
	}
	os.Exit(run(cfg, os.Stdout, os.Stderr))
}
