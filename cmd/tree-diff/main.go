package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pstuifzand/doctree/internal/app"
	"github.com/pstuifzand/doctree/internal/config"
	"github.com/pstuifzand/doctree/internal/diff"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output (show kind and visibility of new nodes)")
	summary := flag.Bool("s", false, "Summary only (no node-level details)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tree-diff [options] <base.script> <change.script>

Runs the base script against a new document, then the change script against
the same document, and shows what the change script did to the tree.

Options:
  -v   Verbose output
  -s   Summary only (counts without node-level details)

Examples:
  # What does the edit script do to the car?
  tree-diff car.script edit.script

Output shows:
  - New nodes attached under the root
  - Deleted nodes that are no longer under the root
  - Modified nodes (name, parent, position, visibility)
`)
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	result, err := diffScripts(cfg, args[0], args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if result.Empty() {
		fmt.Println("No changes")
		return
	}
	if *summary {
		fmt.Printf("%d modified, %d added, %d deleted\n",
			len(result.ModifiedNodes), len(result.NewNodes), len(result.DeletedNodes))
		return
	}
	fmt.Print(diff.Render(diff.BuildDiffLines(result, *verbose)))
}

// diffScripts runs base and then change on one document and reports what
// change did
func diffScripts(cfg *config.Config, base, change string) (*diff.DiffResult, error) {
	a := app.NewApp(cfg, io.Discard, os.Stderr, log.New(io.Discard, "", 0))
	defer a.Close()

	if err := runScript(a, base); err != nil {
		return nil, fmt.Errorf("base script: %w", err)
	}
	a.Snapshot()
	if err := runScript(a, change); err != nil {
		return nil, fmt.Errorf("change script: %w", err)
	}
	return a.Changes(), nil
}

func runScript(a *app.App, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return a.Run(f)
}
