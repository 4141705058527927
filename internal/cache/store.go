package cache

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Key identifies one transform execution. All three components feed the
// digest, so changing the input, the platform version, or the metadata
// archive each invalidates prior outputs.
type Key struct {
	InputHash    string `json:"input_hash"`
	Version      string `json:"version"`
	MetadataHash string `json:"metadata_hash"`
}

// Digest returns the content address for the key
func (k Key) Digest() string {
	return HashStrings(k.InputHash, k.Version, k.MetadataHash)
}

// entry is the marker persisted alongside a computed output directory
type entry struct {
	Key       Key       `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	entryMarker = "entry.json"
	outputsDir  = "outputs"
)

// Store is a disk-backed transform cache. Outputs are published atomically:
// the transform computes into a temp directory which is renamed into place
// only on success, so a crashed invocation never leaves a half-built entry.
type Store struct {
	dir    string
	mu     sync.Mutex
	recent *lru.Cache[string, string]
	logger *zap.Logger
}

// NewStore opens (creating if needed) a cache rooted at dir
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	recent, err := lru.New[string, string](256)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache index: %w", err)
	}

	return &Store{dir: dir, recent: recent, logger: logger}, nil
}

// GetOrCompute returns the output directory for key, running compute exactly
// once per key in this process. compute receives a fresh directory to
// populate; its outputs are published under the cache only when it succeeds.
func (s *Store) GetOrCompute(key Key, compute func(outputDir string) error) (string, error) {
	digest := key.Digest()

	if dir, ok := s.recent.Get(digest); ok {
		return dir, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entryDir := filepath.Join(s.dir, digest)
	outputs := filepath.Join(entryDir, outputsDir)

	if _, err := os.Stat(filepath.Join(entryDir, entryMarker)); err == nil {
		s.logger.Debug("transform cache hit", zap.String("digest", digest))
		s.recent.Add(digest, outputs)
		return outputs, nil
	}

	s.logger.Debug("transform cache miss", zap.String("digest", digest))

	tmpDir, err := os.MkdirTemp(s.dir, "compute-*")
	if err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	tmpOutputs := filepath.Join(tmpDir, outputsDir)
	if err := os.MkdirAll(tmpOutputs, 0755); err != nil {
		os.RemoveAll(tmpDir)
		return "", fmt.Errorf("failed to create staging outputs: %w", err)
	}

	if err := compute(tmpOutputs); err != nil {
		os.RemoveAll(tmpDir)
		return "", err
	}

	if err := writeMarker(tmpDir, key); err != nil {
		os.RemoveAll(tmpDir)
		return "", err
	}

	if err := os.Rename(tmpDir, entryDir); err != nil {
		os.RemoveAll(tmpDir)
		return "", fmt.Errorf("failed to publish cache entry: %w", err)
	}

	s.recent.Add(digest, outputs)
	return outputs, nil
}

func writeMarker(dir string, key Key) error {
	data, err := json.MarshalIndent(entry{Key: key, CreatedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, entryMarker), data, 0644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Stats summarizes the on-disk cache
type Stats struct {
	Entries   int
	TotalSize int64
}

// Stats walks the cache directory and reports entry count and total size
func (s *Store) Stats() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats Stats
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Name() == entryMarker {
			stats.Entries++
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		stats.TotalSize += info.Size()
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("failed to walk cache directory: %w", err)
	}
	return stats, nil
}

// Clear removes every cache entry
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent.Purge()

	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to clear cache directory: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to recreate cache directory: %w", err)
	}
	return nil
}
