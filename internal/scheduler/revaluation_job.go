package scheduler

import (
	"context"
	"time"
)

// Revaluer runs one revaluation
type Revaluer interface {
	Revalue(ctx context.Context, reason string) error
}

// RevaluationJob triggers a scheduled revaluation bounded by a deadline
type RevaluationJob struct {
	revaluer Revaluer
	timeout  time.Duration
}

// NewRevaluationJob creates the job; a zero timeout means no deadline
func NewRevaluationJob(revaluer Revaluer, timeout time.Duration) *RevaluationJob {
	return &RevaluationJob{revaluer: revaluer, timeout: timeout}
}

// Name returns the job name
func (j *RevaluationJob) Name() string { return "revaluation" }

// Run performs the revaluation
func (j *RevaluationJob) Run() error {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}
	return j.revaluer.Revalue(ctx, "schedule")
}
