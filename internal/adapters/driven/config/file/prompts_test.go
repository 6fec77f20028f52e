package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secondbrain-labs/brain/internal/core/domain"
	"github.com/secondbrain-labs/brain/internal/core/ports/driven"
)

func newTestPromptStore(t *testing.T) (*PromptStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	return store, dir
}

func writePrompt(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".txt"), []byte(content), 0600))
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewPromptStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DirName, "prompts"), store.Dir())

	// No I/O happens until the first Load.
	_, err = os.Stat(store.Dir())
	assert.True(t, os.IsNotExist(err))
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	store, dir := newTestPromptStore(t)

	_, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	for _, f := range []string{"answer.txt", "system.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected %s to exist", f)
	}
}

func TestPromptStore_DefaultAnswerTemplate(t *testing.T) {
	store, _ := newTestPromptStore(t)

	tmpl, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(tmpl, "%s"))

	prompt := fmt.Sprintf(tmpl, "Paris is the capital of France.", "What is the capital of France?")
	assert.Contains(t, prompt, "Context:\nParis is the capital of France.")
	assert.True(t, strings.HasSuffix(prompt, "Question: What is the capital of France?"))
	assert.Less(t, strings.Index(prompt, "Context:"), strings.Index(prompt, "Question:"))
}

func TestPromptStore_Load_UserOverride(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, driven.PromptAnswer, "\n  CTX=%s Q=%s  \n")

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, "CTX=%s Q=%s", prompt)

	// Init does not overwrite an existing file.
	data, err := os.ReadFile(filepath.Join(dir, "answer.txt"))
	require.NoError(t, err)
	assert.Equal(t, "\n  CTX=%s Q=%s  \n", string(data))
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	store, dir := newTestPromptStore(t)

	_, _ = store.Load(driven.PromptSystem)
	require.NoError(t, os.Remove(filepath.Join(dir, "system.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptSystem)
	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptSystem], prompt)
}

func TestPromptStore_Load_InitFailureUsesDefaults(t *testing.T) {
	store, err := NewPromptStore("/dev/null/prompts")
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptAnswer], prompt)

	_, err = store.Load("unknown")
	assert.Error(t, err)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, _ := newTestPromptStore(t)

	_, err := store.Load("nonexistent_prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "nonexistent_prompt")
}

func TestPromptStore_Load_EmptyFiles(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, driven.PromptSystem, "  \n")
	writePrompt(t, dir, driven.PromptAnswer, "\n")

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	// An empty system prompt means no system message.
	system, err := store.Load(driven.PromptSystem)
	require.NoError(t, err)
	assert.Empty(t, system)

	// An empty answer template cannot be used, so the default applies.
	answer, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptAnswer], answer)
}

func TestPromptStore_ReadmeDescribesPlaceholders(t *testing.T) {
	store, dir := newTestPromptStore(t)
	_, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "exactly two %s")
	assert.Contains(t, string(data), "system.txt")
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	store, dir := newTestPromptStore(t)

	first, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	writePrompt(t, dir, driven.PromptAnswer, "edited %s %s")

	cached, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, "edited %s %s", fresh)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, _ := newTestPromptStore(t)

	const goroutines = 50
	results := make([]string, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptAnswer)
			assert.NoError(t, err)
			results[i] = prompt
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}
