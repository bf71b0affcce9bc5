package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/odyssey-erp/proposal-wizard/internal/proposal"
)

// LoadProposal replaces the draft with the stored proposal id and restarts
// navigation. On failure the previous draft is kept.
func (s *Store) LoadProposal(ctx context.Context, id string) error {
	if s.repo == nil {
		return ErrNoRepository
	}
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	p, err := s.repo.Get(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.errMsg = fmt.Sprintf("Failed to load proposal: %v", err)
		s.logger.Warn("load proposal failed", slog.String("proposal_id", id), slog.Any("error", err))
		return fmt.Errorf("load proposal %s: %w", id, err)
	}
	p = p.Clone()
	p.Commercials.ApplyTotals()
	saved := p.Metadata.UpdatedAt
	s.resetNavigationLocked()
	s.current = p
	s.draftID = id
	s.lastSavedAt = &saved
	s.dirty = false
	s.version++
	s.persistLocked()
	return nil
}

// SaveProposal writes the draft through the repository. Only one save may be
// in flight; a second call gets ErrSaveInProgress.
func (s *Store) SaveProposal(ctx context.Context) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return ErrNoDraft
	}
	if s.saving {
		s.mu.Unlock()
		return ErrSaveInProgress
	}
	now := s.now()
	s.saving = true
	s.current.Metadata.UpdatedAt = now
	s.current.Commercials.ApplyTotals()
	snapshot := s.current.Clone()
	version := s.version
	s.mu.Unlock()

	var err error
	if s.repo != nil {
		err = s.repo.Put(ctx, snapshot)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if err != nil {
		s.errMsg = fmt.Sprintf("Failed to save proposal: %v", err)
		s.logger.Warn("save proposal failed", slog.String("proposal_id", snapshot.Metadata.ID), slog.Any("error", err))
		s.persistLocked()
		return fmt.Errorf("save proposal: %w", err)
	}
	s.lastSavedAt = &now
	s.errMsg = ""
	// Edits made while the write was in flight are not part of it.
	if s.version == version {
		s.dirty = false
	}
	if !snapshot.Metadata.IsSynced {
		s.enqueueSyncLocked(snapshot.Metadata.ID)
	}
	s.persistLocked()
	s.logger.Debug("proposal saved", slog.String("proposal_id", snapshot.Metadata.ID))
	return nil
}

// SubmitProposal moves the draft to submitted and saves it.
func (s *Store) SubmitProposal(ctx context.Context) error {
	return s.transitionAndSave(ctx, proposal.StatusSubmitted)
}

func (s *Store) Approve(ctx context.Context) error {
	return s.transitionAndSave(ctx, proposal.StatusApproved)
}

func (s *Store) Reject(ctx context.Context) error {
	return s.transitionAndSave(ctx, proposal.StatusRejected)
}

// transitionAndSave applies the status change and persists it. A failed save
// restores the previous status.
func (s *Store) transitionAndSave(ctx context.Context, next proposal.Status) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return ErrNoDraft
	}
	id := s.current.Metadata.ID
	prev := s.current.Metadata.Status
	if err := s.current.Transition(next); err != nil {
		s.errMsg = err.Error()
		s.mu.Unlock()
		return err
	}
	if prev != next {
		s.current.Metadata.IsSynced = false
		s.dirty = true
		s.version++
	}
	s.mu.Unlock()

	if err := s.SaveProposal(ctx); err != nil {
		s.mu.Lock()
		if s.current != nil && s.current.Metadata.ID == id {
			s.current.Metadata.Status = prev
			s.persistLocked()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// DeleteProposal removes id from the repository. Deleting the open draft
// leaves the session without a current proposal.
func (s *Store) DeleteProposal(ctx context.Context, id string) error {
	if s.repo == nil {
		return ErrNoRepository
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.SetError(fmt.Sprintf("Failed to delete proposal: %v", err))
		return fmt.Errorf("delete proposal %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dequeueSyncLocked(id)
	if s.current != nil && s.current.Metadata.ID == id {
		s.current = nil
		s.draftID = ""
		s.lastSavedAt = nil
		s.dirty = false
		s.resetNavigationLocked()
		s.version++
	}
	s.persistLocked()
	return nil
}

// DuplicateProposal opens an unsaved copy of sourceID under fresh metadata and
// returns the new proposal id.
func (s *Store) DuplicateProposal(ctx context.Context, sourceID string) (string, error) {
	if s.repo == nil {
		return "", ErrNoRepository
	}
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	src, err := s.repo.Get(ctx, sourceID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.errMsg = fmt.Sprintf("Failed to duplicate proposal: %v", err)
		return "", fmt.Errorf("duplicate proposal %s: %w", sourceID, err)
	}
	dup := src.Clone()
	dup.Metadata = s.freshProposal().Metadata
	dup.Commercials.ApplyTotals()
	s.resetNavigationLocked()
	s.current = dup
	s.draftID = s.newID()
	s.lastSavedAt = nil
	s.dirty = true
	s.version++
	s.persistLocked()
	return dup.Metadata.ID, nil
}

// Export renders the current draft as a PDF. The draft is never modified.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	if s.exporter == nil {
		return nil, ErrNoExporter
	}
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, ErrNoDraft
	}
	doc := proposal.Flatten(s.current.Clone())
	s.mu.Unlock()

	pdf, err := s.exporter.Generate(ctx, doc)
	if err != nil {
		s.SetError(fmt.Sprintf("PDF generation failed: %v. Your draft data is intact.", err))
		s.logger.Error("export proposal failed", slog.String("offer_number", doc.OfferNumber), slog.Any("error", err))
		return nil, fmt.Errorf("export proposal: %w", err)
	}
	return pdf, nil
}

// MarkSynced records a successful upload of id: it leaves the sync queue, and
// the open draft is flagged when it is the same proposal.
func (s *Store) MarkSynced(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dequeueSyncLocked(id)
	if s.current != nil && s.current.Metadata.ID == id {
		s.current.Metadata.IsSynced = true
		s.current.Metadata.LastSyncedAt = &at
	}
	s.persistLocked()
}

// PendingSync returns the ids awaiting upload in enqueue order.
func (s *Store) PendingSync() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.syncQueue...)
}

// DequeueSync drops id from the sync queue without flagging the draft. Callers
// use it once the upload has been handed to the background worker.
func (s *Store) DequeueSync(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dequeueSyncLocked(id)
	s.persistLocked()
}
