// Package links implements the command-line interface for inspecting
// stored links.
package links

import (
	"github.com/spf13/cobra"
)

// Command returns the links parent command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Inspect stored links",
		Long:  `Inspect the links tracked by the metadata-refresh scheduler.`,
	}

	cmd.AddCommand(newListCommand())

	return cmd
}
