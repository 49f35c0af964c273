package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/ragd/internal/core/domain"
	"github.com/custodia-labs/ragd/internal/core/ports/driven"
	"github.com/custodia-labs/ragd/internal/core/services"
	"github.com/custodia-labs/ragd/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// promptTemplate is a built-in prompt and the placeholders an edited copy must keep.
type promptTemplate struct {
	content      string
	placeholders []string
}

var builtinPrompts = map[string]promptTemplate{
	driven.PromptGroundedAnswer: {
		content:      services.DefaultGroundedAnswerPrompt,
		placeholders: []string{services.PlaceholderContext, services.PlaceholderQuestion},
	},
}

const promptReadme = `# ragd prompts

grounded_answer.txt is the prompt sent with every question. {{context}} is
replaced by the retrieved passages (separated by blank lines) and {{question}}
by the question. Both placeholders must stay in the file; an edit without them
is ignored and the built-in prompt is used instead.

Delete a file to restore the built-in version on the next start.
`

// PromptStore serves prompt templates from <dir>/<name>.txt.
//
// The directory is seeded with the built-in prompts on the first Load, not in
// the constructor. A missing, unreadable or invalid file falls back to the
// built-in prompt of the same name.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore creates a store rooted at dir. An empty dir means ~/.ragd/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".ragd", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the template called name. Only names with a built-in prompt exist.
func (s *PromptStore) Load(name string) (string, error) {
	builtin, ok := builtinPrompts[name]
	if !ok {
		return "", fmt.Errorf("%w: prompt %q", domain.ErrNotFound, name)
	}

	s.seedOnce.Do(s.seed)
	if s.seedErr != nil {
		return builtin.content, nil
	}

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	prompt, err := s.read(name, builtin)
	if err != nil {
		logger.Warn("prompt %s: %v; using the built-in prompt", name, err)
		prompt = builtin.content
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached templates so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

func (s *PromptStore) read(name string, builtin promptTemplate) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	prompt := strings.TrimSpace(string(data))
	for _, p := range builtin.placeholders {
		if !strings.Contains(prompt, p) {
			return "", fmt.Errorf("%w: missing placeholder %s", domain.ErrInvalidInput, p)
		}
	}
	return prompt, nil
}

// seed creates the directory, the built-in prompt files and the README,
// leaving existing files untouched.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		logger.Debug("%v", s.seedErr)
		return
	}

	files := map[string]string{"README.md": promptReadme}
	for name, p := range builtinPrompts {
		files[name+".txt"] = p.content + "\n"
	}
	for file, content := range files {
		path := filepath.Join(s.dir, file)
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			s.seedErr = fmt.Errorf("write %s: %w", file, err)
			logger.Debug("%v", s.seedErr)
			return
		}
	}
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}
