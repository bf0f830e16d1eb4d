package indexer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"slotScope/internal/storage"
)

// Checkpointer persists the last fully applied block.
type Checkpointer interface {
	Load(ctx context.Context) (uint64, bool, error)
	Save(ctx context.Context, lastProcessed uint64) error
}

// Checkpoint is the on-disk checkpoint document.
type Checkpoint struct {
	LastProcessedBlock uint64 `json:"last_processed_block"`
	UpdatedAt          string `json:"updated_at"`
}

// FileCheckpoint persists checkpoints to a JSON file.
type FileCheckpoint struct {
	path string
}

func NewFileCheckpoint(path string) *FileCheckpoint {
	return &FileCheckpoint{path: path}
}

func (c *FileCheckpoint) Load(_ context.Context) (uint64, bool, error) {
	stat, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "stat checkpoint")
	}
	if stat.IsDir() {
		return 0, false, errors.Newf("checkpoint path %s is a directory", c.path)
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return 0, false, errors.Wrap(err, "read checkpoint")
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return 0, false, errors.Wrap(err, "parse checkpoint")
	}
	return cp.LastProcessedBlock, true, nil
}

func (c *FileCheckpoint) Save(_ context.Context, lastProcessed uint64) error {
	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create checkpoint dir")
		}
	}

	data, err := json.Marshal(Checkpoint{
		LastProcessedBlock: lastProcessed,
		UpdatedAt:          time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return errors.Wrap(err, "marshal checkpoint")
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return errors.Wrap(err, "write checkpoint tmp")
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return errors.Wrap(err, "rename checkpoint")
	}
	return nil
}

// StateCheckpoint keeps the checkpoint next to the projected entities, so a
// Postgres-backed view and its progress commit to the same database.
type StateCheckpoint struct {
	store storage.Store
	name  string
}

func NewStateCheckpoint(store storage.Store, name string) *StateCheckpoint {
	return &StateCheckpoint{store: store, name: name}
}

func (c *StateCheckpoint) Load(ctx context.Context) (uint64, bool, error) {
	block, ok, err := c.store.LoadState(ctx, c.name)
	if err != nil {
		return 0, false, errors.Wrapf(err, "load state %s", c.name)
	}
	return block, ok, nil
}

func (c *StateCheckpoint) Save(ctx context.Context, lastProcessed uint64) error {
	return errors.Wrapf(c.store.SaveState(ctx, c.name, lastProcessed), "save state %s", c.name)
}
