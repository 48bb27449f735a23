package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cayleygraph/kgl/eval"
	"github.com/cayleygraph/kgl/internal/config"
	"github.com/cayleygraph/kgl/ingest"
	"github.com/cayleygraph/kgl/label"
	"github.com/cayleygraph/kgl/lang"
	"github.com/cayleygraph/kgl/store"
)

// exitCode is a runE error that also carries the process exit code
// spec.md §6 assigns it: 1 for a parse error, 2 for an I/O/config error.
type exitCode struct {
	err  error
	code int
}

func (e *exitCode) Error() string { return e.err.Error() }
func (e *exitCode) Unwrap() error { return e.err }

func parseError(err error) error { return &exitCode{err: err, code: 1} }
func ioError(err error) error    { return &exitCode{err: err, code: 2} }

// ExitCodeOf inspects err for an *exitCode wrapper, defaulting to 1 for
// any other non-nil error.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if ec, ok := err.(*exitCode); ok {
		return ec.code
	}
	return 1
}

// loadGraph opens the graph path (CSV, TSV by extension, or JSON) into a
// fresh in-memory store.
func loadGraph(path string) (*store.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError(err)
	}
	defer f.Close()

	s := store.New(store.Config{EnableSubstringIndex: true})
	switch filepath.Ext(path) {
	case ".json":
		if _, err := ingest.LoadJSON(f, s, store.DefaultNamespace); err != nil {
			return nil, ioError(err)
		}
	case ".tsv":
		if _, err := ingest.LoadCSV(f, '\t', s, store.DefaultNamespace); err != nil {
			return nil, ioError(err)
		}
	default:
		if _, err := ingest.LoadCSV(f, ',', s, store.DefaultNamespace); err != nil {
			return nil, ioError(err)
		}
	}
	return s, nil
}

// NewQueryCmd returns the `kgl query <words...>` subcommand. It is also
// wired as the root command's fallback RunE so a bare `kgl <words...>`
// behaves identically, matching original_source/kgl/cli.py.
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <words...>",
		Short: "Query the current knowledge graph.",
		RunE:  runQuery,
	}
	return cmd
}

// RunBareQuery is the bare `kgl <words...>` entry point, sharing logic
// with the `kgl query` subcommand.
func RunBareQuery(cmd *cobra.Command, args []string) error {
	return runQuery(cmd, args)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return ioError(fmt.Errorf("no query given"))
	}

	cur, err := config.GetCurrent()
	if err != nil {
		return ioError(err)
	}
	if cur.Graph == "" {
		fmt.Println("No knowledge graph loaded. Use `kgl use <path>` to load a knowledge graph.")
		return ioError(fmt.Errorf("no knowledge graph loaded"))
	}

	s, err := loadGraph(cur.Graph)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	if !strings.HasPrefix(strings.TrimSpace(query), "{") {
		query = "{ " + query + " }"
	}

	if _, err := lang.Parse(query); err != nil {
		return parseError(err)
	}

	e := eval.New(s)
	res, _, err := e.Evaluate(context.Background(), query)
	if err != nil {
		return parseError(err)
	}

	printResult(res)
	return nil
}

func printResult(res eval.Result) {
	switch res.Kind {
	case eval.KindInt:
		fmt.Println(color.GreenString("%d", res.Int))
	case eval.KindBool:
		fmt.Println(color.GreenString("%v", res.Bool))
	case eval.KindMostConnected:
		fmt.Print(color.BlueString("%s", res.Most.Label))
		fmt.Println(color.GreenString(": %d", res.Most.Degree))
	case eval.KindEmpty:
		fmt.Println(color.YellowString("no results"))
	case eval.KindPipeline:
		for _, block := range res.Blocks {
			printBlock(block)
		}
	}
}

func printBlock(b eval.BlockValue) {
	switch {
	case b.Dict != nil:
		for predicate, values := range b.Dict {
			color.New(color.FgBlue).Print(predicate)
			fmt.Print(": ")
			fmt.Println(color.GreenString("%s", joinLabels(values)))
		}
	case b.Expanded != nil:
		for _, entry := range b.Expanded {
			color.New(color.FgBlue).Print(entry.Label)
			fmt.Print(": ")
			fmt.Println(color.GreenString("%s", joinNeighbors(entry.Neighbors)))
		}
	case b.Path != nil:
		parts := make([]string, len(b.Path))
		for i, step := range b.Path {
			parts[i] = string(step.Label)
		}
		fmt.Println(color.GreenString(strings.Join(parts, " -> ")))
	default:
		fmt.Println(color.GreenString("%s", joinLabels(b.Set)))
	}
}

func joinLabels(labels []label.Label) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = string(l)
	}
	return strings.Join(parts, ", ")
}

func joinNeighbors(n store.NeighborMap) string {
	var parts []string
	for _, values := range n {
		parts = append(parts, joinLabels(values))
	}
	return strings.Join(parts, ", ")
}
