// Package historystore persists per-product observation history between runs.
//
// Two backends implement the same contract: a single JSON document on disk
// (the default) and an embedded sqlite database. A store path belongs to one
// process at a time; neither backend takes cross-process locks.
package historystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"shelfwatch/lib/product"
)

// Store loads and saves the whole id -> observations mapping. Save replaces
// the previous contents; Load never applies a document partially.
type Store interface {
	Load(ctx context.Context) (map[string][]product.Observation, error)
	Save(ctx context.Context, history map[string][]product.Observation) error
}

// FileStore keeps history as one JSON document at a fixed path.
type FileStore struct {
	path string
}

func NewFileStore(path string) FileStore {
	return FileStore{path: path}
}

// Load reads the document. A missing file yields an empty history; a file
// that no longer parses is logged and treated as empty so a damaged document
// can never prevent startup.
func (s FileStore) Load(ctx context.Context) (map[string][]product.Observation, error) {
	buf, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string][]product.Observation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	history := map[string][]product.Observation{}
	err = json.Unmarshal(buf, &history)
	if err != nil {
		slog.WarnContext(ctx, "discarding corrupt history file", "path", s.path, "err", err)
		return map[string][]product.Observation{}, nil
	}
	return history, nil
}

// Save writes the document to a sibling temp file and renames it over the
// target, so a crash mid-write leaves the previous document intact.
func (s FileStore) Save(ctx context.Context, history map[string][]product.Observation) error {
	buf, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(s.path), 0777)
	if err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	tmp := s.path + ".tmp"
	err = os.WriteFile(tmp, buf, 0666)
	if err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	err = os.Rename(tmp, s.path)
	if err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
