package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/ragd/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragd/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// DefaultConfigFile is read when --config is not given.
const DefaultConfigFile = "ragd.toml"

// ConfigStore serves the keys of a TOML file, with tables flattened to
// dot-separated keys ([vector_store] host becomes "vector_store.host").
// A missing file is an empty configuration.
type ConfigStore struct {
	*memory.ConfigStore
	path string
}

// NewConfigStore reads the TOML file at path, or ./ragd.toml when path is empty.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		path = DefaultConfigFile
	}
	values, err := readTOML(path)
	if err != nil {
		return nil, err
	}
	return &ConfigStore{ConfigStore: memory.NewConfigStore(values), path: path}, nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.path
}

func readTOML(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	flat := make(map[string]any)
	flatten(flat, "", doc)
	return flat, nil
}

// flatten copies the leaves of table into dst under dot-joined keys.
func flatten(dst map[string]any, prefix string, table map[string]any) {
	for key, value := range table {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flatten(dst, key, nested)
			continue
		}
		dst[key] = value
	}
}
