package commands

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/canopen-tools/edsod/pkg/odcache"
)

// CompileOptions configures the compile command.
type CompileOptions struct {
	commonFlags
	CacheDir string
	YAML     string
	List     bool
	Files    []string
}

// RunCompile runs the compile command: each file is imported once and its
// dictionary stored as a snapshot in the cache directory.
func RunCompile(args []string, stdout, stderr io.Writer) int {
	opts, err := parseCompileArgs(args)
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

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		cacheDir = sess.cfg.CacheDir
	}
	store := odcache.NewStore(cacheDir)

	if opts.List {
		return listCache(store, stdout, stderr)
	}

	if len(opts.Files) == 0 {
		fmt.Fprintln(stderr, "Error: no files specified")
		printCompileUsage(stderr)
		return exitCommandError
	}
	if opts.YAML != "" && len(opts.Files) != 1 {
		fmt.Fprintln(stderr, "Error: -yaml needs exactly one file")
		return exitCommandError
	}

	imp := sess.importer(opts.NodeID)
	exitCode := exitSuccess
	for _, file := range opts.Files {
		dict, hit, err := store.Compile(imp, file, sess.cfg.Naming)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", file, err)
			exitCode = exitValidation
			continue
		}

		status := "compiled"
		if hit {
			status = "cached"
		}
		fmt.Fprintf(stdout, "%s: %s (%d entries)\n", file, status, dict.Len())

		if opts.YAML != "" {
			snap := odcache.Take(dict)
			snap.Source = file
			if err := writeYAMLFile(opts.YAML, snap); err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return exitCommandError
			}
		}
	}

	return exitCode
}

func writeYAMLFile(path string, snap *odcache.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := odcache.WriteYAML(f, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func listCache(store *odcache.Store, stdout, stderr io.Writer) int {
	keys, err := store.Keys()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	for _, key := range keys {
		snap, err := store.Load(key)
		if err != nil {
			fmt.Fprintf(stdout, "%s  (unreadable: %v)\n", key[:16], err)
			continue
		}
		fmt.Fprintf(stdout, "%s  %s  node %d  %d entries  %s\n",
			key[:16], snap.CompiledAt.Format("2006-01-02 15:04"), snap.NodeID, len(snap.Entries), snap.Source)
	}
	fmt.Fprintf(stdout, "\nTotal: %d snapshots in %s\n", len(keys), store.Dir())
	return exitSuccess
}

func parseCompileArgs(args []string) (CompileOptions, error) {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	opts := CompileOptions{}

	opts.register(fs)
	fs.StringVar(&opts.CacheDir, "cache", "", "Cache directory (default: from config)")
	fs.StringVar(&opts.YAML, "yaml", "", "Also write the snapshot as YAML to this file")
	fs.BoolVar(&opts.List, "list", false, "List cached snapshots")

	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.Files = fs.Args()
	return opts, nil
}

func printCompileUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: edsod compile [options] <files...>

Options:
  -cache     Cache directory [default: from config]
  -yaml      Also write the snapshot as YAML (single file only)
  -list      List cached snapshots
  -node-id   Node ID used for $NODEID values

Examples:
  edsod compile -node-id 5 device.eds
  edsod compile -list`)
}
