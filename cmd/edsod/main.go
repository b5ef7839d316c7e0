// Command edsod reads, checks and converts CANopen EDS and DCF files.
//
// Usage:
//
//	edsod <command> [flags] <file>
//
// Commands:
//
//	show      Display the object dictionary of a file
//	convert   Re-export a file as EDS or DCF
//	lint      Import files and report diagnostics
//	log       View a CBOR diagnostics capture
//	compile   Store compiled dictionaries in the cache
//	browse    Interactive object dictionary shell
//
// Defaults for node ID, naming, output format, log level, cache directory
// and diagnostics capture are read from $EDSOD_CONFIG or
// <user config dir>/edsod/config.yaml.
package main

import (
	"fmt"
	"os"

	"github.com/canopen-tools/edsod/cmd/edsod/commands"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitCommandError)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var exitCode int
	switch cmd {
	case "show":
		exitCode = commands.RunShow(args, os.Stdout, os.Stderr)
	case "convert":
		exitCode = commands.RunConvert(args, os.Stdout, os.Stderr)
	case "lint":
		exitCode = commands.RunLint(args, os.Stdout, os.Stderr)
	case "log":
		exitCode = commands.RunLog(args, os.Stdout, os.Stderr)
	case "compile":
		exitCode = commands.RunCompile(args, os.Stdout, os.Stderr)
	case "browse":
		exitCode = commands.RunBrowse(args, os.Stdout, os.Stderr)
	case "help", "-h", "--help":
		printUsage()
		exitCode = exitSuccess
	case "version", "-v", "--version":
		fmt.Println("edsod version 0.1.0")
		exitCode = exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		exitCode = exitCommandError
	}

	os.Exit(exitCode)
}

func printUsage() {
	fmt.Println(`edsod - CANopen EDS/DCF tool

Usage:
  edsod <command> [options] [files...]

Commands:
  show      Display the object dictionary of a file
  convert   Re-export a file as EDS or DCF
  lint      Import files and report diagnostics
  log       View a CBOR diagnostics capture
  compile   Store compiled dictionaries in the cache
  browse    Interactive object dictionary shell

Options:
  -h, --help     Show this help message
  -v, --version  Show version information

Examples:
  edsod show -format json device.eds
  edsod convert -doc dcf -node-id 5 -o node5.dcf device.eds
  edsod lint -strict -log lint.cbor *.eds
  edsod log -level warning lint.cbor
  edsod browse -node-id 5 device.eds

For command-specific help, run:
  edsod <command> -help`)
}
