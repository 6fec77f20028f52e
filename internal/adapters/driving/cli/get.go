package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/secondbrain-labs/brain/internal/core/domain"
)

// previewValues is how many embedding components get prints.
const previewValues = 5

var getJSON bool

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Dump every stored chunk",
	Long: `Prints the id, text, metadata and a truncated embedding of every chunk in
the collection, in insertion order. Intended for debugging the index.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{needsIndex: "true"},
	RunE:        runGet,
}

func init() {
	getCmd.Flags().BoolVar(&getJSON, "json", false, "output chunks as JSON")
	rootCmd.AddCommand(getCmd)
}

// chunkView is the printed form of one stored chunk.
type chunkView struct {
	ID        string         `json:"id"`
	Document  string         `json:"document"`
	Metadata  map[string]any `json:"metadata"`
	Embedding []float32      `json:"embedding"`
	Dimension int            `json:"dimension"`
}

func runGet(cmd *cobra.Command, _ []string) error {
	if inspectService == nil {
		return errServiceNotConfigured("inspect")
	}

	dump, err := inspectService.Dump(cmd.Context())
	if err != nil {
		return fmt.Errorf("get failed: %w", err)
	}

	views := chunkViews(dump)
	if getJSON {
		data, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal chunks: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(views) == 0 {
		cmd.Println("No chunks stored.")
		return nil
	}

	width := terminalWidth()
	for i, v := range views {
		cmd.Println(style.Title.Render(fmt.Sprintf("[%d] %s", i+1, v.ID)))
		cmd.Printf("  %s %s\n", style.Label.Render("document:"), snippet(v.Document, width-12))
		cmd.Printf("  %s %s\n", style.Label.Render("metadata:"), formatMetadata(v.Metadata))
		cmd.Printf("  %s %s\n", style.Label.Render("embedding:"), formatEmbedding(v.Embedding, v.Dimension))
	}
	cmd.Println()
	cmd.Printf("%d chunks\n", len(views))
	return nil
}

func chunkViews(dump *domain.CollectionDump) []chunkView {
	views := make([]chunkView, dump.Len())
	for i := range views {
		emb := dump.Embeddings[i]
		n := min(len(emb), previewValues)
		views[i] = chunkView{
			ID:        dump.IDs[i],
			Document:  dump.Texts[i],
			Metadata:  dump.Metadatas[i],
			Embedding: emb[:n],
			Dimension: len(emb),
		}
	}
	return views
}

func formatEmbedding(preview []float32, dimension int) string {
	parts := make([]string, len(preview))
	for i, v := range preview {
		parts[i] = fmt.Sprintf("%.4f", v)
	}
	s := "[" + strings.Join(parts, ", ")
	if dimension > len(preview) {
		s += ", ..."
	}
	return s + fmt.Sprintf("] (%d dims)", dimension)
}

func formatMetadata(m map[string]any) string {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Sprint(m)
	}
	return string(data)
}

// terminalWidth returns the stdout width, or 100 when not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 40 {
			return w
		}
	}
	return 100
}
