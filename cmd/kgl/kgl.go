// Command kgl is the command-line interface to the KGL knowledge-graph
// query engine: load a graph with `kgl use`, query it with `kgl <words...>`,
// drop into a REPL, or serve it over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cayleygraph/kgl/cmd/kgl/command"
	"github.com/cayleygraph/kgl/internal/config"
	_ "github.com/cayleygraph/kgl/klog/glog"
)

func main() {
	config.Init()

	root := &cobra.Command{
		Use:           "kgl",
		Short:         "Query a knowledge graph with KGL.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return command.RunBareQuery(cmd, args)
		},
	}

	root.AddCommand(
		command.NewUseCmd(),
		command.NewQueryCmd(),
		command.NewReplCmd(),
		command.NewHTTPCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(command.ExitCodeOf(err))
	}
}
