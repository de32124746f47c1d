// Package file holds the small JSON files the pipeline keeps between runs.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type watermarkPayload struct {
	LastRun time.Time `json:"last_run"`
}

// WatermarkStore persists the timestamp boundary separating processed from
// unprocessed orders. The watermark only ever moves forward.
type WatermarkStore struct {
	path string
}

func NewWatermarkStore(path string) *WatermarkStore {
	return &WatermarkStore{path: path}
}

// Last returns the stored watermark, or the zero time when none was persisted
// yet. A corrupt file is treated as absent.
func (s *WatermarkStore) Last() (time.Time, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("read watermark: %w", err)
	}

	var p watermarkPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return time.Time{}, nil
	}
	return p.LastRun, nil
}

// Advance persists a new watermark. Callers only invoke this after a run
// completed, so the stored value never moves backward in practice.
func (s *WatermarkStore) Advance(t time.Time) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create watermark dir: %w", err)
		}
	}

	data, err := json.Marshal(watermarkPayload{LastRun: t})
	if err != nil {
		return fmt.Errorf("marshal watermark: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write watermark: %w", err)
	}
	return nil
}
