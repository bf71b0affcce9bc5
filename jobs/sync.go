package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/proposal-wizard/internal/draftstore"
	jobmetrics "github.com/odyssey-erp/proposal-wizard/internal/jobs"
	"github.com/odyssey-erp/proposal-wizard/internal/proposal"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ErrRejected marks an upload the remote side refused permanently.
var ErrRejected = errors.New("proposal sync: rejected by remote")

// ProposalLibrary is the subset of draftstore.Library used by the sync job.
type ProposalLibrary interface {
	Get(ctx context.Context, id string) (*proposal.Proposal, error)
	MarkSynced(ctx context.Context, id string, at time.Time) error
}

// Uploader ships a proposal to the remote system of record.
type Uploader interface {
	Upload(ctx context.Context, p *proposal.Proposal) error
}

// SyncJob drains proposal:sync tasks.
type SyncJob struct {
	Library  ProposalLibrary
	Uploader Uploader
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewSyncJob wires dependencies for the sync handler. A nil uploader logs
// proposals instead of sending them anywhere.
func NewSyncJob(library ProposalLibrary, uploader Uploader, logger *slog.Logger, metrics *jobmetrics.Metrics) *SyncJob {
	return &SyncJob{
		Library:  library,
		Uploader: uploader,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes proposal sync tasks.
func (j *SyncJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Library == nil {
		return errors.New("proposal sync: handler not configured")
	}
	tracker := j.metrics().Track(TaskProposalSync)
	defer func() {
		err = tracker.End(err)
	}()

	var payload ProposalSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || strings.TrimSpace(payload.ProposalID) == "" {
		tracker.Skip()
		return asynq.SkipRetry
	}
	logger := j.logger().With(slog.String("proposal_id", payload.ProposalID))

	p, err := j.Library.Get(ctx, payload.ProposalID)
	if err != nil {
		if errors.Is(err, draftstore.ErrProposalNotFound) {
			tracker.Skip()
			logger.Warn("proposal missing from library, dropping task")
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		logger.Error("load proposal", slog.Any("error", err))
		return err
	}
	if upToDate(p) {
		logger.Info("proposal already synced")
		return nil
	}

	if err := j.uploader().Upload(ctx, p); err != nil {
		if errors.Is(err, ErrRejected) {
			tracker.Skip()
			logger.Error("proposal rejected by remote", slog.Any("error", err))
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		logger.Warn("upload proposal", slog.Any("error", err))
		return err
	}

	if err := j.Library.MarkSynced(ctx, payload.ProposalID, j.now()); err != nil {
		logger.Error("mark proposal synced", slog.Any("error", err))
		return err
	}
	logger.Info("proposal synced", slog.String("proposal_number", p.Metadata.ProposalNumber))
	return nil
}

// upToDate reports whether p has not changed since its last upload.
func upToDate(p *proposal.Proposal) bool {
	m := p.Metadata
	return m.IsSynced && m.LastSyncedAt != nil && !m.UpdatedAt.After(*m.LastSyncedAt)
}

func (j *SyncJob) uploader() Uploader {
	if j.Uploader != nil {
		return j.Uploader
	}
	return LogUploader{Logger: j.logger()}
}

func (j *SyncJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskProposalSync))
	}
	return slog.Default().With(slog.String("job", TaskProposalSync))
}

func (j *SyncJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *SyncJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

// HTTPUploader posts proposals as JSON to a remote endpoint.
type HTTPUploader struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPUploader builds an uploader for endpoint.
func NewHTTPUploader(endpoint string, httpClient *http.Client) *HTTPUploader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTTPUploader{endpoint: endpoint, httpClient: httpClient}
}

// Upload sends p. Client errors other than 408 and 429 wrap ErrRejected.
func (u *HTTPUploader) Upload(ctx context.Context, p *proposal.Proposal) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode proposal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Proposal-ID", p.Metadata.ID)
	req.Header.Set("X-Device-ID", p.Metadata.DeviceID)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload proposal %s: %w", p.Metadata.ID, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	switch code := resp.StatusCode; {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= 500:
		return fmt.Errorf("upload proposal %s: remote status %d", p.Metadata.ID, code)
	default:
		return fmt.Errorf("%w: status %d", ErrRejected, code)
	}
}

// LogUploader records proposals in the log instead of uploading them.
type LogUploader struct {
	Logger *slog.Logger
}

func (u LogUploader) Upload(_ context.Context, p *proposal.Proposal) error {
	logger := u.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("sync endpoint not configured, proposal logged only",
		slog.String("proposal_id", p.Metadata.ID),
		slog.String("proposal_number", p.Metadata.ProposalNumber),
		slog.String("client", p.ClientDetails.ClientName),
		slog.Float64("grand_total", p.Commercials.GrandTotal),
	)
	return nil
}
