package draftstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/odyssey-erp/proposal-wizard/internal/proposal"
)

const (
	// StorageKey is the fixed key holding the wizard snapshot.
	StorageKey      = "proposal-wizard-storage"
	snapshotVersion = 1
)

// Snapshot is the persisted subset of wizard state.
type Snapshot struct {
	CurrentProposal *proposal.Proposal `json:"currentProposal"`
	DraftID         string             `json:"draftId,omitempty"`
	LastSavedAt     *time.Time         `json:"lastSavedAt,omitempty"`
	IsDirty         bool               `json:"isDirty"`
	SyncQueue       []string           `json:"syncQueue"`
}

type envelope struct {
	State   Snapshot `json:"state"`
	Version int      `json:"version"`
}

// Encode serialises the snapshot in its storage envelope.
func Encode(snap Snapshot) ([]byte, error) {
	return json.Marshal(envelope{State: snap, Version: snapshotVersion})
}

// Decode parses a stored envelope. Unknown versions are rejected.
func Decode(data []byte) (Snapshot, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Snapshot{}, fmt.Errorf("draftstore: decode snapshot: %w", err)
	}
	if env.Version != snapshotVersion {
		return Snapshot{}, fmt.Errorf("draftstore: unsupported snapshot version %d", env.Version)
	}
	return env.State, nil
}

// Adapter mirrors wizard snapshots to Storage. Failures are logged and swallowed;
// in-memory state stays authoritative.
type Adapter struct {
	storage Storage
	key     string
	logger  *slog.Logger
}

func NewAdapter(storage Storage, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{storage: storage, key: StorageKey, logger: logger}
}

// Save writes snap, best effort.
func (a *Adapter) Save(ctx context.Context, snap Snapshot) {
	if a == nil || a.storage == nil {
		return
	}
	data, err := Encode(snap)
	if err != nil {
		a.logger.Warn("encode draft snapshot", slog.Any("error", err))
		return
	}
	if err := a.storage.Set(ctx, a.key, data); err != nil {
		a.logger.Warn("persist draft snapshot", slog.Any("error", err))
	}
}

// Load returns the last snapshot. Absent or unreadable data yields ok=false.
func (a *Adapter) Load(ctx context.Context) (Snapshot, bool) {
	if a == nil || a.storage == nil {
		return Snapshot{}, false
	}
	data, err := a.storage.Get(ctx, a.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.logger.Warn("read draft snapshot", slog.Any("error", err))
		}
		return Snapshot{}, false
	}
	snap, err := Decode(data)
	if err != nil {
		a.logger.Warn("discarding corrupt draft snapshot", slog.Any("error", err))
		return Snapshot{}, false
	}
	return snap, true
}

// Clear removes the stored snapshot.
func (a *Adapter) Clear(ctx context.Context) {
	if a == nil || a.storage == nil {
		return
	}
	if err := a.storage.Delete(ctx, a.key); err != nil {
		a.logger.Warn("clear draft snapshot", slog.Any("error", err))
	}
}
