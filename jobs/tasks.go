package jobs

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskProposalSync uploads a saved proposal to the remote system of record.
	TaskProposalSync = "proposal:sync"

	syncMaxRetry = 8
	syncTimeout  = 2 * time.Minute
)

// ProposalSyncPayload identifies the proposal to upload.
type ProposalSyncPayload struct {
	ProposalID string `json:"proposalId"`
}

// NewProposalSyncTask builds a sync task. The task id is derived from the
// proposal id so a proposal is only queued once at a time.
func NewProposalSyncTask(proposalID string) (*asynq.Task, error) {
	proposalID = strings.TrimSpace(proposalID)
	if proposalID == "" {
		return nil, errors.New("proposal sync: proposal id required")
	}
	body, err := json.Marshal(ProposalSyncPayload{ProposalID: proposalID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProposalSync, body,
		asynq.Queue(QueueDefault),
		asynq.TaskID(TaskProposalSync+":"+proposalID),
		asynq.MaxRetry(syncMaxRetry),
		asynq.Timeout(syncTimeout),
	), nil
}
