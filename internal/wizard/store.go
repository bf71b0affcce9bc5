// Package wizard holds the proposal draft being edited in a session and the
// step-gated workflow around it.
package wizard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/proposal-wizard/internal/draftstore"
	"github.com/odyssey-erp/proposal-wizard/internal/proposal"
)

var (
	// ErrNoDraft is returned by operations that need a current proposal.
	ErrNoDraft = errors.New("wizard: no current proposal")
	// ErrSaveInProgress rejects a save issued while another is in flight.
	ErrSaveInProgress = errors.New("wizard: save already in progress")
	// ErrNoRepository is returned when load/delete run without a repository.
	ErrNoRepository = errors.New("wizard: proposal repository not configured")
	// ErrNoExporter is returned when Export runs without a renderer.
	ErrNoExporter = errors.New("wizard: exporter not configured")
)

const persistTimeout = 2 * time.Second

// Persister mirrors the persisted subset of the session to durable storage.
type Persister interface {
	Save(ctx context.Context, snap draftstore.Snapshot)
	Load(ctx context.Context) (draftstore.Snapshot, bool)
}

// Repository stores whole proposals by id.
type Repository interface {
	Get(ctx context.Context, id string) (*proposal.Proposal, error)
	Put(ctx context.Context, p *proposal.Proposal) error
	Delete(ctx context.Context, id string) error
}

// Exporter turns the flat document into a PDF.
type Exporter interface {
	Generate(ctx context.Context, doc proposal.RenderDocument) ([]byte, error)
}

// State is a read-only copy of the session.
type State struct {
	CurrentStep    Step
	CompletedSteps []Step
	Current        *proposal.Proposal
	DraftID        string
	LastSavedAt    *time.Time
	IsDirty        bool
	IsLoading      bool
	IsSaving       bool
	Error          string
	SyncQueue      []string
}

// Store is the single writer for a session's draft. It is safe for concurrent use;
// collaborator calls run without holding the lock.
type Store struct {
	mu sync.Mutex

	step      Step
	completed map[Step]struct{}

	current     *proposal.Proposal
	draftID     string
	lastSavedAt *time.Time
	dirty       bool
	loading     bool
	saving      bool
	errMsg      string
	syncQueue   []string
	// version increments on every draft mutation so async saves can tell
	// whether the draft changed while they were in flight.
	version uint64

	persister Persister
	repo      Repository
	exporter  Exporter
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	createdBy string
	deviceID  string
}

type Option func(*Store)

func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

func WithRepository(r Repository) Option {
	return func(s *Store) { s.repo = r }
}

func WithExporter(e Exporter) Option {
	return func(s *Store) { s.exporter = e }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithDevice sets the author and device stamped on new proposals.
func WithDevice(createdBy, deviceID string) Option {
	return func(s *Store) {
		s.createdBy = createdBy
		s.deviceID = deviceID
	}
}

// New returns a session holding a fresh draft. Nothing is persisted until the
// first change.
func New(opts ...Option) *Store {
	s := &Store{
		step:      StepClientDetails,
		completed: make(map[Step]struct{}),
		logger:    slog.Default(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current = s.freshProposal()
	return s
}

// Open builds a session and rehydrates it from the persister.
func Open(ctx context.Context, opts ...Option) *Store {
	s := New(opts...)
	s.Restore(ctx)
	return s
}

func (s *Store) freshProposal() *proposal.Proposal {
	return proposal.New(proposal.NewOptions{
		ID:        s.newID(),
		Now:       s.now(),
		CreatedBy: s.createdBy,
		DeviceID:  s.deviceID,
	})
}

// State returns a deep copy of the session.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		CurrentStep:    s.step,
		CompletedSteps: s.completedStepsLocked(),
		Current:        s.current.Clone(),
		DraftID:        s.draftID,
		IsDirty:        s.dirty,
		IsLoading:      s.loading,
		IsSaving:       s.saving,
		Error:          s.errMsg,
		SyncQueue:      append([]string(nil), s.syncQueue...),
	}
	if s.lastSavedAt != nil {
		ts := *s.lastSavedAt
		st.LastSavedAt = &ts
	}
	return st
}

// Current returns a copy of the draft, or nil.
func (s *Store) Current() *proposal.Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Snapshot returns the persisted subset of the session.
func (s *Store) Snapshot() draftstore.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() draftstore.Snapshot {
	snap := draftstore.Snapshot{
		CurrentProposal: s.current.Clone(),
		DraftID:         s.draftID,
		IsDirty:         s.dirty,
		SyncQueue:       append([]string(nil), s.syncQueue...),
	}
	if s.lastSavedAt != nil {
		ts := *s.lastSavedAt
		snap.LastSavedAt = &ts
	}
	return snap
}

func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	s.persister.Save(ctx, s.snapshotLocked())
}

// Restore replaces the session with the persisted snapshot. A missing or
// unreadable snapshot leaves a fresh draft in place.
func (s *Store) Restore(ctx context.Context) {
	if s.persister == nil {
		return
	}
	snap, ok := s.persister.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = StepClientDetails
	s.completed = make(map[Step]struct{})
	s.errMsg = ""
	if !ok || snap.CurrentProposal == nil {
		s.current = s.freshProposal()
		s.draftID = ""
		s.lastSavedAt = nil
		s.dirty = false
		if ok {
			s.syncQueue = append([]string(nil), snap.SyncQueue...)
		}
		return
	}
	s.current = snap.CurrentProposal.Clone()
	s.current.Commercials.ApplyTotals()
	s.draftID = snap.DraftID
	s.lastSavedAt = snap.LastSavedAt
	s.dirty = snap.IsDirty
	s.syncQueue = append([]string(nil), snap.SyncQueue...)
	s.logger.Debug("draft restored", slog.String("proposal_id", s.current.Metadata.ID))
}

// mutate applies fn to the current draft. fn reports whether it changed anything;
// unchanged drafts are neither marked dirty nor persisted. A change makes the
// remote copy stale, so the synced flag is cleared and the next save re-queues.
func (s *Store) mutate(fn func(p *proposal.Proposal) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return false
	}
	if !fn(s.current) {
		return false
	}
	s.current.Metadata.IsSynced = false
	s.dirty = true
	s.version++
	s.persistLocked()
	return true
}

// SetError records a user-facing error message.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
}

func (s *Store) ClearError() {
	s.SetError("")
}

// MarkClean clears the dirty flag without saving.
func (s *Store) MarkClean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
	s.persistLocked()
}

// CreateNewProposal discards the current draft and starts a new one.
func (s *Store) CreateNewProposal() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.resetNavigationLocked()
	s.current = s.freshProposal()
	s.draftID = s.newID()
	s.lastSavedAt = &now
	s.dirty = false
	s.errMsg = ""
	s.version++
	s.persistLocked()
	return s.current.Metadata.ID
}

// ResetWizard returns the session to its initial state with a fresh draft.
// The sync queue survives.
func (s *Store) ResetWizard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetNavigationLocked()
	s.current = s.freshProposal()
	s.draftID = ""
	s.lastSavedAt = nil
	s.dirty = false
	s.errMsg = ""
	s.version++
	s.persistLocked()
}

func (s *Store) enqueueSyncLocked(id string) {
	for _, queued := range s.syncQueue {
		if queued == id {
			return
		}
	}
	s.syncQueue = append(s.syncQueue, id)
}

func (s *Store) dequeueSyncLocked(id string) {
	out := s.syncQueue[:0]
	for _, queued := range s.syncQueue {
		if queued != id {
			out = append(out, queued)
		}
	}
	s.syncQueue = out
}
