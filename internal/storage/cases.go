package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/detective-engine/pkg/casefile"
	"github.com/jwebster45206/detective-engine/pkg/storage"
)

var caseExtensions = []string{".json", ".yaml", ".yml"}

func (r *RedisStorage) casesDir() string {
	return filepath.Join(r.dataDir, "cases")
}

// Case operations (filesystem-backed)

// ListCases maps case IDs to titles. Files that fail to decode or validate
// are skipped with a warning.
func (r *RedisStorage) ListCases(ctx context.Context) (map[string]string, error) {
	cases := make(map[string]string)

	err := filepath.WalkDir(r.casesDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == r.casesDir() {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || !casefile.IsCaseFile(path) {
			return nil
		}

		c, err := r.readCase(path)
		if err != nil {
			r.logger.Warn("Skipping case file", "path", path, "error", err)
			return nil
		}
		cases[c.ID] = c.Title
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to walk cases directory", "error", err)
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}

	return cases, nil
}

// GetCase loads and validates the case stored as <id>.json, <id>.yaml or <id>.yml.
func (r *RedisStorage) GetCase(ctx context.Context, caseID string) (*casefile.Case, error) {
	if caseID == "" || strings.ContainsAny(caseID, `/\`) || strings.Contains(caseID, "..") {
		return nil, fmt.Errorf("case %q: %w", caseID, storage.ErrNotFound)
	}

	for _, ext := range caseExtensions {
		path := filepath.Join(r.casesDir(), caseID+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		r.logger.Debug("Loading case", "case_id", caseID, "path", path)
		return r.readCase(path)
	}

	return nil, fmt.Errorf("case %q: %w", caseID, storage.ErrNotFound)
}

func (r *RedisStorage) readCase(path string) (*casefile.Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}
	c, err := casefile.Decode(filepath.Base(path), data)
	if err != nil {
		return nil, err
	}
	if err := casefile.Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}
