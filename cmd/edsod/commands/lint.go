package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/canopen-tools/edsod/pkg/log"
)

// LintOptions configures the lint command.
type LintOptions struct {
	commonFlags
	JSON    bool
	Strict  bool
	Level   string
	LogFile string
	Files   []string
}

// LintIssue represents a single diagnostic.
type LintIssue struct {
	Severity string `json:"severity"`
	Category string `json:"category"`
	Section  string `json:"section,omitempty"`
	Key      string `json:"key,omitempty"`
	Line     int    `json:"line,omitempty"`
	Message  string `json:"message"`
}

// LintOutput represents the lint results for a file.
type LintOutput struct {
	File     string      `json:"file"`
	Issues   []LintIssue `json:"issues"`
	Warnings int         `json:"warnings"`
	Failed   bool        `json:"failed"`
	Clean    bool        `json:"clean"`
}

// RunLint runs the lint command.
func RunLint(args []string, stdout, stderr io.Writer) int {
	opts, err := parseLintArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if len(opts.Files) == 0 {
		fmt.Fprintln(stderr, "Error: no files specified")
		printLintUsage(stderr)
		return exitCommandError
	}

	var extra []log.Logger
	if opts.LogFile != "" {
		fl, err := log.NewFileLogger(opts.LogFile)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		defer fl.Close()
		extra = append(extra, fl)
	}

	rec := log.NewRecorder()
	sess, err := opts.open(stderr, append(extra, rec)...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer sess.close()

	minLevel := sess.cfg.Level()
	if opts.Level != "" {
		minLevel, err = log.ParseLevel(opts.Level)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
	}

	results := make([]LintOutput, 0, len(opts.Files))
	failed := false

	for _, file := range opts.Files {
		rec.Reset()
		_, importErr := sess.importFile(file, opts.NodeID)
		output := lintResult(file, rec.Events(), minLevel, importErr)
		results = append(results, output)

		if output.Failed || (opts.Strict && output.Warnings > 0) {
			failed = true
		}

		if !opts.JSON {
			printLintResult(stdout, output)
		}
	}

	if opts.JSON {
		out, _ := json.MarshalIndent(results, "", "  ")
		fmt.Fprintln(stdout, string(out))
	}

	if failed {
		return exitValidation
	}
	return exitSuccess
}

func lintResult(file string, events []log.Event, minLevel log.Level, importErr error) LintOutput {
	output := LintOutput{File: file, Failed: importErr != nil}

	for _, e := range events {
		if e.Level == log.LevelWarning {
			output.Warnings++
		}
		if e.Category == log.CategorySummary || e.Level < minLevel {
			continue
		}
		output.Issues = append(output.Issues, LintIssue{
			Severity: strings.ToLower(e.Level.String()),
			Category: e.Category.String(),
			Section:  e.Section,
			Key:      e.Key,
			Line:     e.Line,
			Message:  e.Message,
		})
	}

	// An import aborted before any event was recorded, e.g. a missing file.
	if importErr != nil && len(events) == 0 {
		output.Issues = append(output.Issues, LintIssue{
			Severity: "error",
			Category: log.CategoryStructure.String(),
			Message:  importErr.Error(),
		})
	}

	output.Clean = !output.Failed && output.Warnings == 0
	return output
}

func printLintResult(w io.Writer, output LintOutput) {
	if output.Clean && len(output.Issues) == 0 {
		fmt.Fprintf(w, "%s: clean\n", output.File)
		return
	}

	var parts []string
	if output.Failed {
		parts = append(parts, "import failed")
	}
	if output.Warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", output.Warnings))
	}
	if len(parts) == 0 {
		parts = append(parts, "ok")
	}
	fmt.Fprintf(w, "%s: %s\n", output.File, strings.Join(parts, ", "))

	for _, issue := range output.Issues {
		prefix := strings.ToUpper(issue.Severity)
		loc := issue.Section
		if loc != "" {
			loc = "[" + loc + "]" + issue.Key
		}
		if issue.Line > 0 {
			loc = strings.TrimSpace(fmt.Sprintf("%s line %d", loc, issue.Line))
		}
		if loc != "" {
			fmt.Fprintf(w, "  %s %s: %s\n", prefix, loc, issue.Message)
		} else {
			fmt.Fprintf(w, "  %s %s\n", prefix, issue.Message)
		}
	}
}

func parseLintArgs(args []string) (LintOptions, error) {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	opts := LintOptions{}

	opts.register(fs)
	fs.BoolVar(&opts.JSON, "json", false, "Output results as JSON")
	fs.BoolVar(&opts.Strict, "strict", false, "Fail on warnings")
	fs.StringVar(&opts.Level, "level", "", "Lowest level to print (debug, info, warning, error)")
	fs.StringVar(&opts.LogFile, "log", "", "Append diagnostics to a CBOR capture file")

	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.Files = fs.Args()
	return opts, nil
}

func printLintUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: edsod lint [options] <files...>

Options:
  -json      Output results as JSON
  -strict    Exit with status 2 when any warning is reported
  -level     Lowest level to print [default: from config, warning]
  -log       Append diagnostics to a CBOR capture file
  -node-id   Node ID used for $NODEID values

Examples:
  edsod lint device.eds
  edsod lint -strict -log lint.cbor *.eds`)
}
