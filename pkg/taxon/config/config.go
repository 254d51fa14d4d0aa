// Package config loads the dataset manifest describing one taxonomy
// snapshot: where each tabular export lives and how the pipeline is tuned.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/taxon/pkg/taxon/entity"
	"github.com/cognicore/taxon/pkg/taxon/internalerr"
)

// Store backend names accepted by the manifest.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Manifest describes one loadable snapshot.
type Manifest struct {
	Language string            `yaml:"language"`
	Datasets map[string]string `yaml:"datasets"` // dataset name → csv path
	Chunk    ChunkConfig       `yaml:"chunk"`
	Store    string            `yaml:"store"` // memory (default) or sqlite

	SearchCacheSize int `yaml:"search_cache_size"`
}

// ChunkConfig tunes the chunked executor.
type ChunkConfig struct {
	Size     int `yaml:"size"`
	BudgetMS int `yaml:"budget_ms"`
}

// Budget converts the configured per-chunk budget to a duration; zero means
// "use the default".
func (c ChunkConfig) Budget() time.Duration {
	return time.Duration(c.BudgetMS) * time.Millisecond
}

// Load reads and validates a manifest from a YAML file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks dataset names and the store backend.
func (m *Manifest) Validate() error {
	if len(m.Datasets) == 0 {
		return fmt.Errorf("%w: manifest lists no datasets", internalerr.ErrInvalidConfig)
	}
	for name, path := range m.Datasets {
		if !entity.Dataset(name).Valid() {
			return fmt.Errorf("%w: unknown dataset %q", internalerr.ErrInvalidConfig, name)
		}
		if path == "" {
			return fmt.Errorf("%w: dataset %q has no path", internalerr.ErrInvalidConfig, name)
		}
	}
	switch m.Store {
	case "", StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("%w: unknown store %q", internalerr.ErrInvalidConfig, m.Store)
	}
	return nil
}

// DatasetPaths resolves the manifest's dataset paths against a base
// directory. Absolute paths are kept as-is.
func (m *Manifest) DatasetPaths(baseDir string) map[entity.Dataset]string {
	out := make(map[entity.Dataset]string, len(m.Datasets))
	for name, path := range m.Datasets {
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		out[entity.Dataset(name)] = path
	}
	return out
}
