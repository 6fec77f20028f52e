// Package cli implements the brain command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/secondbrain-labs/brain/internal/adapters/driving/cli/styles"
	"github.com/secondbrain-labs/brain/internal/app"
	"github.com/secondbrain-labs/brain/internal/core/domain"
	"github.com/secondbrain-labs/brain/internal/core/ports/driving"
	"github.com/secondbrain-labs/brain/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services used by the commands. Set by SetServices, or built from the
// config file on first use.
var (
	ingestService   driving.IngestService
	queryService    driving.QueryService
	inspectService  driving.InspectService
	settingsService driving.SettingsService
)

// Persistent flags.
var (
	configDir  string
	dbPath     string
	collection string
	chunkSize  int
	ollamaHost string
	verbose    bool
)

var (
	// newApp builds the application for commands that touch the index.
	newApp = app.New

	// newSettingsService opens the config file for commands that only
	// read or write settings.
	newSettingsService = func(dir string) (driving.SettingsService, error) {
		return app.NewSettingsService(dir)
	}

	current *app.App
	style   = styles.DefaultStyles()
)

// needsIndex marks commands that open the store and AI providers.
const needsIndex = "needs-index"

var rootCmd = &cobra.Command{
	Use:   "brain",
	Short: "Ask questions about your own documents",
	Long: `brain indexes a directory of .txt, .pdf and .docx files into a local
vector index and answers questions from it with a language model.

  brain init ./notes
  brain ask "what did we decide about the launch date?"`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config", "", "config directory (default ~/.brain)")
	flags.StringVar(&dbPath, "db-path", domain.DefaultDBPath, "directory holding the index database (\":memory:\" for a throwaway index)")
	flags.StringVar(&collection, "collection", domain.DefaultCollection, "collection to index into and query")
	flags.IntVar(&chunkSize, "chunk-size", domain.DefaultChunkSize, "maximum chunk length in characters")
	flags.StringVar(&ollamaHost, "ollama-host", domain.DefaultOllamaHost, "Ollama base URL")
	flags.BoolVarP(&verbose, "verbose", "v", false, "print each pipeline step to stderr")
}

// SetServices injects services, bypassing construction from the config file.
func SetServices(ingest driving.IngestService, query driving.QueryService,
	inspect driving.InspectService, settings driving.SettingsService) {
	ingestService = ingest
	queryService = query
	inspectService = inspect
	settingsService = settings
}

// Execute runs the command line and returns the process exit code.
// Command output goes to stdout; errors and logs go to stderr.
func Execute(ctx context.Context, ver string, stdout, stderr io.Writer) int {
	version = ver
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	logger.SetOutput(stderr)
	err := rootCmd.ExecuteContext(ctx)
	if cerr := closeApp(); cerr != nil {
		logger.Warn("closing: %v", cerr)
	}
	if err != nil {
		fmt.Fprintln(stderr, style.Error.Render("Error:"), err)
		return 1
	}
	return 0
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[needsIndex] == "" {
		if settingsService != nil {
			return nil
		}
		svc, err := newSettingsService(configDir)
		if err != nil {
			return err
		}
		settingsService = svc
		return nil
	}

	// Arguments were validated by the command's Args before this hook, so
	// bad input never opens the store.
	if ingestService != nil && queryService != nil && inspectService != nil {
		return nil
	}

	opts, err := options(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	current = a
	SetServices(a.Ingest, a.Query, a.Inspect, a.SettingsService)
	return nil
}

// options returns the flags the user set explicitly, so unset flags do
// not mask values from the config file.
func options(cmd *cobra.Command) (app.Options, error) {
	flags := cmd.Root().PersistentFlags()
	opts := app.Options{ConfigDir: configDir}
	if flags.Changed("chunk-size") && chunkSize <= 0 {
		return opts, fmt.Errorf("%w: --chunk-size must be positive", domain.ErrInvalidInput)
	}
	if flags.Changed("db-path") {
		opts.DBPath = dbPath
	}
	if flags.Changed("collection") {
		opts.Collection = collection
	}
	if flags.Changed("chunk-size") {
		opts.ChunkSize = chunkSize
	}
	if flags.Changed("ollama-host") {
		opts.OllamaHost = ollamaHost
	}
	return opts, nil
}

func closeApp() error {
	if current == nil {
		return nil
	}
	err := current.Close()
	current = nil
	return err
}

// errServiceNotConfigured reports a command run without its service.
func errServiceNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}
