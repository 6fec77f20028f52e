package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var collectionsCmd = &cobra.Command{
	Use:         "collections",
	Short:       "List collections in the index",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{needsIndex: "true"},
	RunE:        runCollections,
}

func init() {
	rootCmd.AddCommand(collectionsCmd)
}

func runCollections(cmd *cobra.Command, _ []string) error {
	if inspectService == nil {
		return errServiceNotConfigured("inspect")
	}

	collections, err := inspectService.Collections(cmd.Context())
	if err != nil {
		return fmt.Errorf("list collections failed: %w", err)
	}
	if len(collections) == 0 {
		cmd.Println("No collections yet. Run 'brain init <directory>' first.")
		return nil
	}

	for _, c := range collections {
		dim := "-"
		if c.Dimension > 0 {
			dim = fmt.Sprintf("%d dims", c.Dimension)
		}
		cmd.Printf("  %s  %d chunks  %s\n", style.Label.Render(c.Name), c.ChunkCount, style.Muted.Render(dim))
	}
	return nil
}
