package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/canopen-tools/edsod/pkg/eds"
	"github.com/canopen-tools/edsod/pkg/inspect"
	"github.com/canopen-tools/edsod/pkg/od"
)

// BrowseOptions configures the browse command.
type BrowseOptions struct {
	commonFlags
	Script string
	File   string
}

// Browser is the interactive dictionary shell.
type Browser struct {
	dict      *od.ObjectDictionary
	inspector *inspect.Inspector
	formatter *inspect.Formatter
	out       io.Writer
	file      string
}

// NewBrowser creates a shell over dict writing to out.
func NewBrowser(dict *od.ObjectDictionary, file string, out io.Writer) *Browser {
	return &Browser{
		dict:      dict,
		inspector: inspect.NewInspector(dict),
		formatter: inspect.NewFormatter(),
		out:       out,
		file:      file,
	}
}

// RunBrowse runs the browse command.
func RunBrowse(args []string, stdout, stderr io.Writer) int {
	opts, err := parseBrowseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if opts.File == "" {
		fmt.Fprintln(stderr, "Error: no file specified")
		printBrowseUsage(stderr)
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

	if opts.Script != "" {
		b := NewBrowser(dict, opts.File, stdout)
		for _, line := range strings.Split(opts.Script, ";") {
			if !b.Execute(line) {
				break
			}
		}
		return exitSuccess
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "edsod> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          stdout,
		Stderr:          stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to create readline: %v\n", err)
		return exitCommandError
	}
	defer rl.Close()

	b := NewBrowser(dict, opts.File, rl.Stdout())
	b.printHelp()
	for {
		line, err := rl.Readline()
		if err != nil {
			// EOF or interrupt
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(rl.Stdout(), "Exiting...")
			return exitSuccess
		}
		if !b.Execute(line) {
			return exitSuccess
		}
	}
}

// Execute runs one shell command. It returns false when the shell should
// exit.
func (b *Browser) Execute(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "help", "?":
		b.printHelp()

	case "ls", "list":
		b.cmdList(rest)

	case "get", "read":
		b.cmdGet(rest)

	case "set", "write":
		b.cmdSet(rest)

	case "clear":
		b.cmdClear(rest)

	case "info":
		b.cmdInfo()

	case "save":
		b.cmdSave(rest)

	case "quit", "exit", "q":
		fmt.Fprintln(b.out, "Exiting...")
		return false

	default:
		fmt.Fprintf(b.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (b *Browser) printHelp() {
	fmt.Fprintln(b.out, `
Object Dictionary Commands:
  ls [path]            - List all entries, or one entry
  get <path>           - Show the value of a variable
  set <path> <value>   - Set the configured value (file literal syntax)
  clear <path>         - Remove the configured value
  info                 - Show device and file information
  save <file> [doc]    - Export as eds or dcf (default: dcf)
  help                 - Show this help
  quit                 - Exit

  Path Format:
    index[/sub] - e.g., 0x1018/1, 1018sub1 or "Identity object/Vendor-ID"`)
}

// cmdList handles the ls command.
func (b *Browser) cmdList(arg string) {
	if arg == "" {
		tree := b.inspector.InspectDictionary()
		fmt.Fprint(b.out, b.inspector.FormatDictionaryTree(tree, b.formatter))
		return
	}

	path, err := inspect.ParsePath(arg)
	if err != nil {
		fmt.Fprintf(b.out, "Invalid path: %v\n", err)
		return
	}
	entry, err := b.inspector.Resolve(path)
	if err != nil {
		fmt.Fprintf(b.out, "Error: %v\n", err)
		return
	}
	info, err := b.inspector.InspectEntry(entry.Index())
	if err != nil {
		fmt.Fprintf(b.out, "Error: %v\n", err)
		return
	}
	fmt.Fprint(b.out, b.inspector.FormatEntry(info, b.formatter))
}

// cmdGet handles the get command.
func (b *Browser) cmdGet(arg string) {
	if arg == "" {
		fmt.Fprintln(b.out, "Usage: get <path>")
		fmt.Fprintln(b.out, "  Example: get 0x1017")
		return
	}

	path, err := inspect.ParsePath(arg)
	if err != nil {
		fmt.Fprintf(b.out, "Invalid path: %v\n", err)
		return
	}

	value, v, err := b.inspector.ReadValue(path)
	if err != nil {
		fmt.Fprintf(b.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(b.out, "%s = %s\n", v.Name(), b.formatter.FormatValue(value, v.DataType()))
}

// cmdSet handles the set command. The path ends at the first space, so
// names with spaces must be given by index.
func (b *Browser) cmdSet(arg string) {
	pathStr, valueStr, ok := strings.Cut(arg, " ")
	if !ok || strings.TrimSpace(valueStr) == "" {
		fmt.Fprintln(b.out, "Usage: set <path> <value>")
		fmt.Fprintln(b.out, "  Example: set 0x1017 1000")
		return
	}

	path, err := inspect.ParsePath(pathStr)
	if err != nil {
		fmt.Fprintf(b.out, "Invalid path: %v\n", err)
		return
	}

	valueStr = strings.Trim(strings.TrimSpace(valueStr), "\"'")
	if err := b.inspector.WriteValueText(path, valueStr); err != nil {
		fmt.Fprintf(b.out, "Write failed: %v\n", err)
		return
	}
	fmt.Fprintln(b.out, "OK")
}

// cmdClear handles the clear command.
func (b *Browser) cmdClear(arg string) {
	path, err := inspect.ParsePath(arg)
	if err != nil {
		fmt.Fprintf(b.out, "Invalid path: %v\n", err)
		return
	}
	if err := b.inspector.ClearValue(path); err != nil {
		fmt.Fprintf(b.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(b.out, "OK")
}

// cmdInfo handles the info command.
func (b *Browser) cmdInfo() {
	d := b.dict.DeviceInfo
	fmt.Fprintf(b.out, "File:     %s\n", b.file)
	if b.dict.FileInfo.FileName != "" {
		fmt.Fprintf(b.out, "FileName: %s (version %s.%s)\n",
			b.dict.FileInfo.FileName, b.dict.FileInfo.FileVersion, b.dict.FileInfo.FileRevision)
	}
	fmt.Fprintf(b.out, "Vendor:   %s (0x%08X)\n", d.VendorName, d.VendorNumber)
	fmt.Fprintf(b.out, "Product:  %s (0x%08X)\n", d.ProductName, d.ProductNumber)
	fmt.Fprintf(b.out, "Revision: 0x%08X\n", d.RevisionNumber)
	if len(d.BaudRates) > 0 {
		rates := make([]string, len(d.BaudRates))
		for i, r := range d.BaudRates {
			rates[i] = fmt.Sprint(r)
		}
		fmt.Fprintf(b.out, "Baud:     %s kbit/s\n", strings.Join(rates, ", "))
	}
	if b.dict.NodeID != 0 {
		fmt.Fprintf(b.out, "Node:     %d\n", b.dict.NodeID)
	}
	fmt.Fprintf(b.out, "Entries:  %d\n", b.dict.Len())
}

// cmdSave handles the save command.
func (b *Browser) cmdSave(arg string) {
	fields := strings.Fields(arg)
	if len(fields) == 0 || len(fields) > 2 {
		fmt.Fprintln(b.out, "Usage: save <file> [eds|dcf]")
		return
	}
	doc := eds.DocDCF
	if len(fields) == 2 {
		d, err := eds.ParseDocType(fields[1])
		if err != nil {
			fmt.Fprintf(b.out, "Error: %v\n", err)
			return
		}
		doc = d
	}
	if err := eds.ExportFile(fields[0], b.dict, doc); err != nil {
		fmt.Fprintf(b.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(b.out, "Saved %s (%s)\n", fields[0], doc)
}

func parseBrowseArgs(args []string) (BrowseOptions, error) {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	opts := BrowseOptions{}

	opts.register(fs)
	fs.StringVar(&opts.Script, "c", "", "Run ';'-separated commands instead of the interactive shell")

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

func printBrowseUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: edsod browse [options] <file>

Options:
  -c         Run ';'-separated commands and exit
  -node-id   Node ID used for $NODEID values
  -config    Config file

Examples:
  edsod browse -node-id 5 device.eds
  edsod browse -c "set 0x1017 1000; save node.dcf" device.eds`)
}
