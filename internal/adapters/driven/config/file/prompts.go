package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/secondbrain-labs/brain/internal/core/domain"
	"github.com/secondbrain-labs/brain/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves the answer and system prompts from <dir>/<name>.txt.
// The first Load writes the built-in defaults into dir so users have a
// file to edit; a missing or unreadable file falls back to the default.
// An empty system.txt disables the system message. An empty answer.txt
// is treated as missing, since no answer can be built from it.
type PromptStore struct {
	dir string

	setup    sync.Once
	setupErr error

	mu    sync.Mutex
	cache map[string]string
}

// defaultPrompts are the built-in templates, also written out on first use.
var defaultPrompts = map[string]string{
	driven.PromptAnswer: `Answer the question using only the context below.
If the context does not contain the answer, say that you do not know.

Context:
%s

Question: %s`,

	driven.PromptSystem: `You are a helpful assistant answering questions about the user's own documents. Be concise and do not invent facts that are not in the provided context.`,
}

const promptsReadme = `# Prompts

Templates used by ` + "`brain ask`" + `. Edits take effect on the next command.

- answer.txt: the user message. The first %s is replaced by the retrieved
  chunks (one per line, closest first), the second by the question. It must
  contain exactly two %s; any other % is sent as written.
- system.txt: sent as the system message. Leave it empty to send none.

Delete a file to restore its default.
`

// NewPromptStore creates a store rooted at dir, or ~/.brain/prompts when
// dir is empty. Nothing is written until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, DirName, "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Load returns the named prompt. Unknown names return domain.ErrNotFound.
func (s *PromptStore) Load(name string) (string, error) {
	def, known := defaultPrompts[name]
	if !known {
		return "", fmt.Errorf("%w: prompt %q", domain.ErrNotFound, name)
	}

	s.setup.Do(s.writeDefaults)
	if s.setupErr != nil {
		return def, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prompt, ok := s.cache[name]; ok {
		return prompt, nil
	}

	prompt, err := s.read(name)
	if err != nil {
		prompt = def
	}
	if prompt == "" && name != driven.PromptSystem {
		prompt = def
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached prompts so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// writeDefaults creates the directory and any default file that does not
// exist yet. Existing files are never overwritten.
func (s *PromptStore) writeDefaults() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.setupErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	files := map[string]string{"README.md": promptsReadme}
	for name, content := range defaultPrompts {
		files[name+".txt"] = content + "\n"
	}
	for file, content := range files {
		if err := writeIfMissing(filepath.Join(s.dir, file), content); err != nil {
			s.setupErr = fmt.Errorf("create %s: %w", file, err)
			return
		}
	}
}

func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
