package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"pfda_functional/domain/entities"
	"pfda_functional/domain/interfaces"
)

type reportStore struct {
	path string
	mu   sync.Mutex
}

// NewReportStore - creates a JSON file backed store of check results
func NewReportStore(path string) (interfaces.ReportStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &reportStore{path: path}, nil
}

// Append - adds a result to the stored history
func (s *reportStore) Append(result entities.CheckResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load()
	if err != nil {
		return err
	}
	history = append(history, result)

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode reports: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Load - loads stored results
func (s *reportStore) Load() ([]entities.CheckResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *reportStore) load() ([]entities.CheckResult, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []entities.CheckResult{}, nil
		}
		return nil, fmt.Errorf("failed to read reports: %w", err)
	}

	var history []entities.CheckResult
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to decode reports %s: %w", s.path, err)
	}
	return history, nil
}
