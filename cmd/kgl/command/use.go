package command

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cayleygraph/kgl/internal/config"
)

// NewUseCmd returns the `kgl use <path>` subcommand, which persists the
// given graph file path to $HOME/.cache/kgl/current.json so a bare
// `kgl <query>` invocation knows which graph to load.
func NewUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <path>",
		Short: "Set the default knowledge graph file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := config.SetCurrent(config.Current{Graph: path}); err != nil {
				return fmt.Errorf("could not persist current graph: %w", err)
			}
			fmt.Println("Set the current knowledge graph to use to " + color.GreenString(path) + ".")
			return nil
		},
	}
}
