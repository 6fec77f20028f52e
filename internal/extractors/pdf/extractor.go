// Package pdf extracts text from PDF files using the pdftotext tool
// from poppler.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/secondbrain-labs/brain/internal/core/domain"
	"github.com/secondbrain-labs/brain/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const toolName = "pdftotext"

// ErrPDFToolNotFound is returned when pdftotext is not on PATH.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, ErrPDFToolNotFound
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// Extractor converts PDFs to text page by page.
type Extractor struct {
	runner CommandRunner
}

// New creates a PDF extractor that shells out to pdftotext.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates a PDF extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract returns the text of every page in page order.
// Page breaks become newlines.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	name := filepath.Base(path)

	out, err := e.runner.Run(ctx, toolName, "-enc", "UTF-8", "-q", path, "-")
	if err != nil {
		if errors.Is(err, ErrPDFToolNotFound) {
			return "", fmt.Errorf("%w: %s: %w (%s)", domain.ErrExtraction, name, err, InstallInstructions())
		}
		return "", fmt.Errorf("%w: %s: pdftotext failed: %w", domain.ErrExtraction, name, err)
	}

	return joinPages(string(out)), nil
}

// joinPages replaces the form feeds pdftotext emits between pages.
func joinPages(text string) string {
	text = strings.TrimSuffix(text, "\f")
	return strings.ReplaceAll(text, "\f", "\n")
}

// CheckAvailable returns ErrPDFToolNotFound if pdftotext is not installed.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions describes how to install pdftotext.
func InstallInstructions() string {
	return "install pdftotext from poppler: brew install poppler (macOS) or apt install poppler-utils (Debian/Ubuntu)"
}
