package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/OCharnyshevich/worldclimate/internal/config"
	"github.com/OCharnyshevich/worldclimate/pkg/world/foundation"
	"github.com/OCharnyshevich/worldclimate/pkg/world/pipeline"
)

// Storage handles file-based persistence for config, foundations, and run
// reports.
type Storage struct {
	dir string
	log *slog.Logger
}

// New creates a new Storage rooted at dir, creating subdirectories as needed.
func New(dir string, log *slog.Logger) (*Storage, error) {
	dirs := []string{
		dir,
		filepath.Join(dir, "foundations"),
		filepath.Join(dir, "reports"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", d, err)
		}
	}
	return &Storage{dir: dir, log: log}, nil
}

// FoundationDir is where fetched and saved foundation files live.
func (s *Storage) FoundationDir() string { return filepath.Join(s.dir, "foundations") }

// LoadConfig reads config.json into cfg. If the file does not exist, cfg is unchanged.
func (s *Storage) LoadConfig(cfg *config.Config) error {
	path := filepath.Join(s.dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	s.log.Info("loaded config from file", "path", path)
	return nil
}

// SaveConfig writes cfg to config.json atomically.
func (s *Storage) SaveConfig(cfg *config.Config) error {
	path := filepath.Join(s.dir, "config.json")
	return s.atomicWriteJSON(path, cfg)
}

// LoadFoundation reads a foundation file. Relative paths are resolved
// against the foundations directory.
func (s *Storage) LoadFoundation(path string) (foundation.Foundation, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.FoundationDir(), path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return foundation.Foundation{}, fmt.Errorf("read foundation: %w", err)
	}

	var ff foundation.File
	if err := json.Unmarshal(data, &ff); err != nil {
		return foundation.Foundation{}, fmt.Errorf("parse foundation %s: %w", path, err)
	}
	f, err := ff.Foundation()
	if err != nil {
		return foundation.Foundation{}, fmt.Errorf("load foundation %s: %w", path, err)
	}
	s.log.Info("loaded foundation", "path", path, "size", f.Dims().String())
	return f, nil
}

// SaveFoundation writes f to foundations/<name>.json atomically.
func (s *Storage) SaveFoundation(name string, f foundation.Foundation) error {
	path := filepath.Join(s.FoundationDir(), name+".json")
	return s.atomicWriteJSON(path, foundation.ToFile(f))
}

// SaveReport writes the summary of one run to reports/seed-<seed>.json.
func (s *Storage) SaveReport(res *pipeline.Result) error {
	path := filepath.Join(s.dir, "reports", fmt.Sprintf("seed-%d.json", res.Seed))
	if err := s.atomicWriteJSON(path, ReportFromResult(res)); err != nil {
		return fmt.Errorf("save report for seed %d: %w", res.Seed, err)
	}
	s.log.Debug("saved report", "path", path)
	return nil
}

// LoadReport reads the report of a previous run, or nil if there is none.
func (s *Storage) LoadReport(seed int64) (*Report, error) {
	path := filepath.Join(s.dir, "reports", fmt.Sprintf("seed-%d.json", seed))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read report %d: %w", seed, err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report %d: %w", seed, err)
	}
	return &r, nil
}

// atomicWriteJSON marshals v to JSON and writes it atomically using a temp file + rename.
func (s *Storage) atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
