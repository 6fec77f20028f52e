package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/secondbrain-labs/brain/internal/core/domain"
)

var initCmd = &cobra.Command{
	Use:   "init <directory>",
	Short: "Index the documents in a directory",
	Long: `Extracts text from every .txt, .pdf and .docx file directly inside the
directory, splits it into sentence-aligned chunks, embeds each chunk and
stores it in the collection. Subdirectories are not descended into.

A file that cannot be read or embedded is reported and skipped; the rest
of the directory is still indexed. Running init twice on the same
directory stores every chunk twice.`,
	Args:        cobra.MatchAll(cobra.ExactArgs(1), existingDirectory),
	Annotations: map[string]string{needsIndex: "true"},
	RunE:        runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// existingDirectory rejects a missing directory before the index is opened.
// Other stat errors are left for the ingest service to report.
func existingDirectory(_ *cobra.Command, args []string) error {
	info, err := os.Stat(args[0])
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("init failed: %w: %s", domain.ErrDirectoryNotFound, args[0])
	case err == nil && !info.IsDir():
		return fmt.Errorf("init failed: %w: %s is not a directory", domain.ErrDirectoryNotFound, args[0])
	}
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errServiceNotConfigured("ingest")
	}

	report, err := ingestService.Ingest(cmd.Context(), args[0])
	if report != nil && report.FilesSeen > 0 {
		printIngestReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}
	if report.FilesSeen == 0 {
		cmd.Printf("No files found in %s\n", args[0])
	}
	return nil
}

func printIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	for _, f := range report.Failures {
		line := fmt.Sprintf("  %s: %v", f.File, f.Err)
		if f.ChunksAdded > 0 {
			line += fmt.Sprintf(" (%d chunks kept)", f.ChunksAdded)
		}
		cmd.Println(style.Warning.Render(line))
	}

	summary := fmt.Sprintf("Indexed %d of %d files into %q: %d chunks",
		report.FilesIndexed, report.FilesSeen, report.Collection, report.ChunksAdded)
	if report.FilesSkipped > 0 {
		summary += fmt.Sprintf(", %d unsupported skipped", report.FilesSkipped)
	}
	if report.HasFailures() {
		summary += fmt.Sprintf(", %d failed", len(report.Failures))
	}
	cmd.Println(style.Success.Render(summary))
}
