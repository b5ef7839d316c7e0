package commands

import (
	"flag"
	"fmt"
	"io"

	"github.com/canopen-tools/edsod/pkg/eds"
)

// ConvertOptions configures the convert command.
type ConvertOptions struct {
	commonFlags
	Doc    string // eds, dcf
	Output string
	File   string
}

// RunConvert runs the convert command.
func RunConvert(args []string, stdout, stderr io.Writer) int {
	opts, err := parseConvertArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if opts.File == "" {
		fmt.Fprintln(stderr, "Error: no file specified")
		printConvertUsage(stderr)
		return exitCommandError
	}

	doc, err := eds.ParseDocType(opts.Doc)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	sess, err := opts.open(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer sess.close()

	dict, err := sess.importFile(opts.File, opts.NodeID)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if opts.Output == "" {
		if err := eds.Export(stdout, dict, doc); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		return exitSuccess
	}

	if err := eds.ExportFile(opts.Output, dict, doc); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	fmt.Fprintf(stdout, "Converted %s -> %s (%s)\n", opts.File, opts.Output, doc)
	return exitSuccess
}

func parseConvertArgs(args []string) (ConvertOptions, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	opts := ConvertOptions{}

	opts.register(fs)
	fs.StringVar(&opts.Doc, "doc", "eds", "Output document type (eds, dcf)")
	fs.StringVar(&opts.Output, "o", "", "Output file (default: stdout)")

	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	remaining := fs.Args()
	if len(remaining) > 0 {
		opts.File = remaining[0]
	}

	return opts, nil
}

func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: edsod convert [options] <file>

Options:
  -doc       Output document type (eds, dcf) [default: eds]
  -o         Output file [default: stdout]
  -node-id   Node ID used for $NODEID values
  -config    Config file
  -v         Print import diagnostics

Examples:
  edsod convert -doc dcf -node-id 5 -o node5.dcf device.eds
  edsod convert device.dcf > device.eds`)
}
