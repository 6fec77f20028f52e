package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secondbrain-labs/brain/internal/app"
	"github.com/secondbrain-labs/brain/internal/core/domain"
	"github.com/secondbrain-labs/brain/internal/logger"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "brain", rootCmd.Use)
}

func TestRootCmd_PersistentFlagDefaults(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"db-path", domain.DefaultDBPath},
		{"collection", domain.DefaultCollection},
		{"chunk-size", "1000"},
		{"ollama-host", domain.DefaultOllamaHost},
		{"verbose", "false"},
		{"config", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := rootCmd.PersistentFlags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.expected, flag.DefValue)
		})
	}
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{"init", "ask", "get", "search", "collections", "config", "mcp", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestOptions_OnlyChangedFlags(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	require.NoError(t, rootCmd.PersistentFlags().Parse([]string{"--collection", "papers", "--ollama-host", "http://gpu:11434"}))

	opts, err := options(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, "papers", opts.Collection)
	assert.Equal(t, "http://gpu:11434", opts.OllamaHost)
	assert.Empty(t, opts.DBPath)
	assert.Zero(t, opts.ChunkSize)
}

func TestOptions_RejectsNonPositiveChunkSize(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	require.NoError(t, rootCmd.PersistentFlags().Parse([]string{"--chunk-size", "0"}))

	_, err := options(rootCmd)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSetup_BuildsAppWithFlags(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	SetServices(nil, nil, nil, nil)

	var got app.Options
	newApp = func(opts app.Options) (*app.App, error) {
		got = opts
		return nil, errors.New("no backend")
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"--db-path", ":memory:", "--chunk-size", "300", "ask", "hi"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.EqualError(t, err, "no backend")
	assert.Equal(t, ":memory:", got.DBPath)
	assert.Equal(t, 300, got.ChunkSize)
	assert.Empty(t, got.Collection)
}

func TestSetup_SettingsCommandsSkipApp(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "keys"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	// newApp fails in tests, so success means it was not called.
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "store.collection")
}

func TestSetup_EnablesVerbose(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer logger.SetVerbose(false)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"--verbose", "version"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	assert.True(t, logger.IsVerbose())
}

func TestExecute_PrintsErrorAndExitCode(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	testQuery.err = domain.ErrLLMUnavailable

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetArgs([]string{"ask", "what?"})
	defer func() {
		rootCmd.SetArgs(nil)
		logger.SetOutput(os.Stderr)
	}()

	code := Execute(context.Background(), "test", stdout, stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error:")
	assert.Contains(t, stderr.String(), "LLM service unavailable")
	assert.Empty(t, stdout.String())
}

func TestExecute_Success(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetArgs(nil)
		logger.SetOutput(os.Stderr)
	}()

	code := Execute(context.Background(), "1.2.3", stdout, stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "brain version 1.2.3")
	assert.Empty(t, stderr.String())
}

func TestExecute_InvalidArgsOpenNothing(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o600))

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"init missing directory", []string{"init", filepath.Join(tmp, "nope")}, domain.ErrDirectoryNotFound},
		{"init on a file", []string{"init", file}, domain.ErrDirectoryNotFound},
		{"ask blank query", []string{"ask", "  ", "\t"}, domain.ErrEmptyQuery},
		{"search blank query", []string{"search", " "}, domain.ErrEmptyQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestServices()
			defer cleanup()
			SetServices(nil, nil, nil, nil)

			built := false
			newApp = func(opts app.Options) (*app.App, error) {
				built = true
				return app.New(opts)
			}

			dir := t.TempDir()
			dbDir := filepath.Join(dir, "db")
			cfgDir := filepath.Join(dir, "config")
			stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
			rootCmd.SetArgs(append([]string{"--config", cfgDir, "--db-path", dbDir}, tt.args...))
			defer func() {
				rootCmd.SetArgs(nil)
				logger.SetOutput(os.Stderr)
			}()

			code := Execute(context.Background(), "test", stdout, stderr)

			assert.Equal(t, 1, code)
			assert.Contains(t, stderr.String(), tt.wantErr.Error())
			assert.False(t, built)
			assert.NoDirExists(t, dbDir)
			assert.NoDirExists(t, cfgDir)
		})
	}
}
