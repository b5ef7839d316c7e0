package commands

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"

	"github.com/canopen-tools/edsod/pkg/log"
)

// LogOptions configures the log command.
type LogOptions struct {
	Level    string
	Category string
	Section  string
	Source   string
	ImportID string
	JSON     bool
	Stats    bool
	File     string
}

// LogStats summarizes a capture file.
type LogStats struct {
	Events  int            `json:"events"`
	Imports int            `json:"imports"`
	Levels  map[string]int `json:"levels"`
	Sources []string       `json:"sources,omitempty"`
}

// RunLog runs the log command: it prints the events of a CBOR diagnostics
// capture written by lint -log or the diagnostics config setting.
func RunLog(args []string, stdout, stderr io.Writer) int {
	opts, err := parseLogArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if opts.File == "" {
		fmt.Fprintln(stderr, "Error: no file specified")
		printLogUsage(stderr)
		return exitCommandError
	}

	filter, err := opts.filter()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	reader, err := log.NewFilteredReader(opts.File, filter)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer reader.Close()

	var events []log.Event
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintf(stderr, "Error reading event: %v\n", err)
			return exitCommandError
		}
		events = append(events, event)
	}

	switch {
	case opts.Stats:
		stats := computeLogStats(events)
		if opts.JSON {
			data, _ := json.MarshalIndent(stats, "", "  ")
			fmt.Fprintln(stdout, string(data))
		} else {
			printLogStats(stdout, stats)
		}
	case opts.JSON:
		enc := json.NewEncoder(stdout)
		for _, e := range events {
			enc.Encode(e)
		}
	default:
		for _, e := range events {
			formatLogEvent(stdout, e)
		}
	}

	return exitSuccess
}

func (o LogOptions) filter() (log.Filter, error) {
	f := log.Filter{
		ImportID: o.ImportID,
		Section:  o.Section,
		Source:   o.Source,
	}
	if o.Level != "" {
		l, err := log.ParseLevel(o.Level)
		if err != nil {
			return f, err
		}
		f.MinLevel = &l
	}
	if o.Category != "" {
		c, err := log.ParseCategory(o.Category)
		if err != nil {
			return f, err
		}
		f.Category = &c
	}
	return f, nil
}

// formatLogEvent writes a human-readable line for the event.
func formatLogEvent(w io.Writer, e log.Event) {
	ts := e.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z")
	fmt.Fprintf(w, "%s [%s] %-7s %-10s", ts, shortenID(e.ImportID), e.Level, e.Category)
	if loc := e.Location(); loc != "" {
		fmt.Fprintf(w, " %s:", loc)
	}
	fmt.Fprintf(w, " %s\n", e.Message)

	if s := e.Summary; s != nil {
		fmt.Fprintf(w, "  Entries: %d  Variables: %d  Warnings: %d  Duration: %s\n",
			s.Entries, s.Variables, s.Warnings, s.Duration)
	}
}

// shortenID returns the first 8 characters of an import ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func computeLogStats(events []log.Event) LogStats {
	stats := LogStats{
		Events: len(events),
		Levels: make(map[string]int),
	}
	imports := make(map[string]bool)
	sources := make(map[string]bool)
	for _, e := range events {
		stats.Levels[e.Level.String()]++
		imports[e.ImportID] = true
		if e.Source != "" {
			sources[e.Source] = true
		}
	}
	stats.Imports = len(imports)
	for s := range sources {
		stats.Sources = append(stats.Sources, s)
	}
	sort.Strings(stats.Sources)
	return stats
}

func printLogStats(w io.Writer, stats LogStats) {
	fmt.Fprintf(w, "Events:  %d\n", stats.Events)
	fmt.Fprintf(w, "Imports: %d\n", stats.Imports)
	for _, l := range []log.Level{log.LevelDebug, log.LevelInfo, log.LevelWarning, log.LevelError} {
		if n := stats.Levels[l.String()]; n > 0 {
			fmt.Fprintf(w, "  %-7s %d\n", l, n)
		}
	}
	for _, s := range stats.Sources {
		fmt.Fprintf(w, "Source:  %s\n", s)
	}
}

func parseLogArgs(args []string) (LogOptions, error) {
	fs := flag.NewFlagSet("log", flag.ContinueOnError)
	opts := LogOptions{}

	fs.StringVar(&opts.Level, "level", "", "Lowest level to show")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (vocabulary, value, structure, summary)")
	fs.StringVar(&opts.Section, "section", "", "Filter by section header")
	fs.StringVar(&opts.Source, "source", "", "Filter by source file")
	fs.StringVar(&opts.ImportID, "import", "", "Filter by import ID")
	fs.BoolVar(&opts.JSON, "json", false, "Output JSON lines")
	fs.BoolVar(&opts.Stats, "stats", false, "Show statistics instead of events")

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

func printLogUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: edsod log [options] <file.cbor>

Options:
  -level      Lowest level to show (debug, info, warning, error)
  -category   Filter by category
  -section    Filter by section header, e.g. 1018sub1
  -source     Filter by source file
  -import     Filter by import ID
  -json       Output JSON lines
  -stats      Show statistics

Examples:
  edsod log -level warning lint.cbor
  edsod log -stats lint.cbor`)
}
