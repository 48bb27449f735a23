package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/cayleygraph/kgl/eval"
	"github.com/cayleygraph/kgl/internal/config"
)

const (
	replPrompt  = "kgl> "
	replHistory = ".kgl_history"
)

// NewReplCmd returns the `kgl repl` subcommand: an interactive line editor
// over the current graph using liner, grounded on the teacher's own REPL
// command wiring.
func NewReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Drop into an interactive KGL shell.",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			e := eval.New(s)
			return runRepl(e)
		},
	}
}

func runRepl(e *eval.Evaluator) error {
	term := liner.NewLiner()
	defer term.Close()
	term.SetCtrlCAborts(true)

	if f, err := os.Open(replHistory); err == nil {
		term.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(replHistory); err == nil {
			term.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		line, err := term.Prompt(replPrompt)
		if err != nil {
			if err == io.EOF || err == liner.ErrPromptAborted {
				fmt.Println()
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		term.AppendHistory(line)

		if line == "exit" || line == "quit" {
			return nil
		}

		query := line
		if !strings.HasPrefix(query, "{") {
			query = "{ " + query + " }"
		}
		res, elapsed, err := e.Evaluate(context.Background(), query)
		if err != nil {
			fmt.Println(color.RedString("Error: %v", err))
			continue
		}
		printResult(res)
		fmt.Printf("Elapsed time: %v\n", elapsed)
	}
}
