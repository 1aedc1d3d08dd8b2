package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/matzehuels/tephi/pkg/chart"
	"github.com/matzehuels/tephi/pkg/errors"
)

// FileStore is a file-based chart store for the CLI.
// Charts are stored as JSON files in a data directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
	clock   clockwork.Clock
}

// NewFileStore creates a new file-based store.
// If baseDir is empty, defaults to ~/.config/tephi/charts/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "tephi", "charts")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}
	return &FileStore{baseDir: baseDir, clock: clockwork.NewRealClock()}, nil
}

// Dir returns the directory holding the chart files.
func (s *FileStore) Dir() string { return s.baseDir }

func (s *FileStore) chartPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Save(ctx context.Context, c *chart.Chart) (string, error) {
	if err := prepare(c, s.clock); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := chart.WriteFile(c, s.chartPath(c.ID)); err != nil {
		return "", fmt.Errorf("write chart file: %w", err)
	}
	return c.ID, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*chart.Chart, error) {
	if err := errors.ValidateChartID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := chart.ReadFile(s.chartPath(id))
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return nil, notFound(id)
	}
	return c, err
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateChartID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.chartPath(id))
	if os.IsNotExist(err) {
		return notFound(id)
	}
	return err
}

// List reads every chart file in the directory. Files that fail to decode
// are skipped.
func (s *FileStore) List(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read chart dir: %w", err)
	}
	out := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := chart.ReadFile(filepath.Join(s.baseDir, f.Name()))
		if err != nil {
			continue
		}
		out = append(out, entryOf(c))
	}
	sortEntries(out)
	if n := listLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *FileStore) Close(context.Context) error { return nil }
