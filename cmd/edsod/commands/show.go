package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/canopen-tools/edsod/pkg/datatype"
	"github.com/canopen-tools/edsod/pkg/inspect"
	"github.com/canopen-tools/edsod/pkg/od"
)

// ShowOptions configures the show command.
type ShowOptions struct {
	commonFlags
	Format   string // text, json, yaml
	Index    string // filter by entry path
	Metadata bool
	File     string
}

// ShowOutput represents a dictionary for display.
type ShowOutput struct {
	File    string        `json:"file,omitempty" yaml:"file,omitempty"`
	NodeID  uint8         `json:"nodeId,omitempty" yaml:"nodeId,omitempty"`
	Device  od.DeviceInfo `json:"device" yaml:"device"`
	Entries []EntryOutput `json:"entries" yaml:"entries"`
}

// EntryOutput represents a single top-level entry.
type EntryOutput struct {
	Index      string           `json:"index" yaml:"index"`
	Name       string           `json:"name" yaml:"name"`
	ObjectType string           `json:"objectType" yaml:"objectType"`
	Variables  []VariableOutput `json:"variables" yaml:"variables"`
}

// VariableOutput represents a Variable. Values use the file literal format.
type VariableOutput struct {
	SubIndex uint8  `json:"subIndex" yaml:"subIndex"`
	Name     string `json:"name" yaml:"name"`
	DataType string `json:"dataType" yaml:"dataType"`
	Access   string `json:"access" yaml:"access"`
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty"`
	Relative bool   `json:"relative,omitempty" yaml:"relative,omitempty"`
	Min      string `json:"min,omitempty" yaml:"min,omitempty"`
	Max      string `json:"max,omitempty" yaml:"max,omitempty"`
}

// RunShow runs the show command.
func RunShow(args []string, stdout, stderr io.Writer) int {
	opts, err := parseShowArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if opts.File == "" {
		fmt.Fprintln(stderr, "Error: no file specified")
		printShowUsage(stderr)
		return exitCommandError
	}

	sess, err := opts.open(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer sess.close()

	if opts.Format == "" {
		opts.Format = sess.cfg.Format
	}

	dict, err := sess.importFile(opts.File, opts.NodeID)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	insp := inspect.NewInspector(dict)
	tree := insp.InspectDictionary()

	if opts.Index != "" {
		path, err := inspect.ParsePath(opts.Index)
		if err != nil {
			fmt.Fprintf(stderr, "Error: invalid index: %v\n", err)
			return exitCommandError
		}
		entry, err := insp.Resolve(&inspect.Path{Index: path.Index, IndexName: path.IndexName, Raw: path.Raw})
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		info, _ := insp.InspectEntry(entry.Index())
		tree.Entries = []inspect.EntryInfo{*info}
	}

	switch opts.Format {
	case "json":
		data, _ := json.MarshalIndent(buildShowOutput(opts.File, tree), "", "  ")
		fmt.Fprintln(stdout, string(data))
	case "yaml":
		data, _ := yaml.Marshal(buildShowOutput(opts.File, tree))
		fmt.Fprint(stdout, string(data))
	case "text":
		f := inspect.NewFormatter()
		f.ShowMetadata = opts.Metadata
		fmt.Fprint(stdout, insp.FormatDictionaryTree(tree, f))
		fmt.Fprintf(stdout, "\nTotal: %d entries\n", len(tree.Entries))
	default:
		fmt.Fprintf(stderr, "Error: unknown format %q\n", opts.Format)
		return exitCommandError
	}

	return exitSuccess
}

func buildShowOutput(file string, tree *inspect.DictionaryTree) ShowOutput {
	output := ShowOutput{
		File:   file,
		NodeID: tree.NodeID,
		Device: od.DeviceInfo{
			VendorName:    tree.VendorName,
			VendorNumber:  tree.VendorNumber,
			ProductName:   tree.ProductName,
			ProductNumber: tree.ProductNumber,
		},
	}

	for _, e := range tree.Entries {
		eo := EntryOutput{
			Index:      fmt.Sprintf("0x%04X", e.Index),
			Name:       e.Name,
			ObjectType: e.ObjectType.String(),
		}
		for _, v := range e.Variables {
			eo.Variables = append(eo.Variables, VariableOutput{
				SubIndex: v.SubIndex,
				Name:     v.Name,
				DataType: v.DataType.String(),
				Access:   string(v.Access),
				Default:  datatype.Format(v.DataType, v.Default),
				Value:    datatype.Format(v.DataType, v.Value),
				Relative: v.Relative,
				Min:      datatype.Format(v.DataType, v.Min),
				Max:      datatype.Format(v.DataType, v.Max),
			})
		}
		output.Entries = append(output.Entries, eo)
	}
	return output
}

func parseShowArgs(args []string) (ShowOptions, error) {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	opts := ShowOptions{}

	opts.register(fs)
	fs.StringVar(&opts.Format, "format", "", "Output format (text, json, yaml)")
	fs.StringVar(&opts.Format, "f", "", "Output format (shorthand)")
	fs.StringVar(&opts.Index, "index", "", "Show a single entry (index or name)")
	fs.BoolVar(&opts.Metadata, "metadata", true, "Show data type, access and range in text output")

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

func printShowUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: edsod show [options] <file>

Options:
  -f, -format   Output format (text, json, yaml) [default: from config, text]
  -index        Show a single entry, by index (0x1018) or name
  -metadata     Show data type, access and range [default: true]
  -node-id      Node ID used for $NODEID values
  -config       Config file
  -v            Print import diagnostics

Examples:
  edsod show device.eds
  edsod show -format json -node-id 5 device.eds
  edsod show -index 0x1018 device.eds`)
}
