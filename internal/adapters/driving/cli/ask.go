package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/secondbrain-labs/brain/internal/core/domain"
)

var (
	askShowSources bool
	askTopK        int
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Answer a question from the indexed documents",
	Long: `Embeds the question, retrieves the closest chunks from the collection and
asks the language model to answer from them. The model's reply is printed
as-is. An empty collection still reaches the model, with empty context.`,
	Args:        cobra.MatchAll(cobra.MinimumNArgs(1), nonBlankQuery),
	Annotations: map[string]string{needsIndex: "true"},
	RunE:        runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "chunks of context to retrieve (default from config, 5)")
	askCmd.Flags().BoolVarP(&askShowSources, "show-sources", "s", false, "list the retrieved chunks after the answer")
	rootCmd.AddCommand(askCmd)
}

// nonBlankQuery rejects a whitespace-only query before the index is opened.
func nonBlankQuery(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(strings.Join(args, " ")) == "" {
		return fmt.Errorf("%s failed: %w", cmd.Name(), domain.ErrEmptyQuery)
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errServiceNotConfigured("query")
	}

	question := strings.Join(args, " ")
	answer, err := queryService.Ask(cmd.Context(), question, askTopK)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Text)

	if askShowSources {
		cmd.Println()
		cmd.Println(style.Title.Render("Sources:"))
		printResults(cmd, answer.Sources)
	}
	return nil
}

// printResults lists ranked chunks with their source file and distance.
func printResults(cmd *cobra.Command, results []domain.QueryResult) {
	if len(results) == 0 {
		cmd.Println("  (none)")
		return
	}
	for i, r := range results {
		source := r.Source()
		if source == "" {
			source = r.ID
		}
		cmd.Printf("  [%d] %s %s\n", i+1, style.Label.Render(source),
			style.Muted.Render(fmt.Sprintf("(distance %.4f)", r.Distance)))
		cmd.Printf("      %s\n", snippet(r.Text, 160))
	}
}

// snippet flattens whitespace and truncates text to limit runes.
func snippet(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
