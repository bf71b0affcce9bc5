package draftstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/odyssey-erp/proposal-wizard/internal/proposal"
)

const libraryPrefix = "proposal:"

// ErrProposalNotFound is returned for unknown proposal ids.
var ErrProposalNotFound = errors.New("proposal not found")

type storedProposal struct {
	Proposal *proposal.Proposal `json:"proposal"`
	SavedAt  time.Time          `json:"savedAt"`
}

// Library keeps saved proposals, one record per id, next to the wizard snapshot.
type Library struct {
	storage Storage
	now     func() time.Time
}

func NewLibrary(storage Storage) *Library {
	return &Library{storage: storage, now: func() time.Time { return time.Now().UTC() }}
}

func libraryKey(id string) string {
	return libraryPrefix + id
}

func (l *Library) Get(ctx context.Context, id string) (*proposal.Proposal, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty id", ErrProposalNotFound)
	}
	data, err := l.storage.Get(ctx, libraryKey(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProposalNotFound, id)
		}
		return nil, fmt.Errorf("library get: %w", err)
	}
	var stored storedProposal
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("library decode %s: %w", id, err)
	}
	if stored.Proposal == nil {
		return nil, fmt.Errorf("%w: %s", ErrProposalNotFound, id)
	}
	return stored.Proposal, nil
}

func (l *Library) Put(ctx context.Context, p *proposal.Proposal) error {
	if p == nil || p.Metadata.ID == "" {
		return errors.New("library put: proposal id required")
	}
	data, err := json.Marshal(storedProposal{Proposal: p, SavedAt: l.now()})
	if err != nil {
		return fmt.Errorf("library encode: %w", err)
	}
	if err := l.storage.Set(ctx, libraryKey(p.Metadata.ID), data); err != nil {
		return fmt.Errorf("library put: %w", err)
	}
	return nil
}

func (l *Library) Delete(ctx context.Context, id string) error {
	if err := l.storage.Delete(ctx, libraryKey(id)); err != nil {
		return fmt.Errorf("library delete: %w", err)
	}
	return nil
}

// List returns summaries of every saved proposal, newest first.
func (l *Library) List(ctx context.Context) ([]proposal.ListItem, error) {
	keys, err := l.storage.Keys(ctx, libraryPrefix)
	if err != nil {
		return nil, fmt.Errorf("library list: %w", err)
	}
	items := make([]proposal.ListItem, 0, len(keys))
	for _, key := range keys {
		p, err := l.Get(ctx, strings.TrimPrefix(key, libraryPrefix))
		if err != nil {
			continue
		}
		items = append(items, p.Summary())
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// MarkSynced flags a stored proposal as uploaded.
func (l *Library) MarkSynced(ctx context.Context, id string, at time.Time) error {
	p, err := l.Get(ctx, id)
	if err != nil {
		return err
	}
	p.Metadata.IsSynced = true
	p.Metadata.LastSyncedAt = &at
	return l.Put(ctx, p)
}
