package report

import (
	"context"
	"fmt"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/observability"
)

type JobStatus uint

const (
	JobStatusPending = JobStatus(iota)
	JobStatusDone
	JobStatusFailed
	JobStatusCanceled
)

func (s JobStatus) String() string {
	switch s {
	case JobStatusPending:
		return "pending"
	case JobStatusDone:
		return "done"
	case JobStatusFailed:
		return "failed"
	case JobStatusCanceled:
		return "canceled"
	}
	return fmt.Sprintf("unknown_job_status_%d", uint(s))
}

// Job is a running analysis. Its result is discarded if it is canceled.
type Job struct {
	cancel context.CancelFunc
	done   chan struct{}

	locker sync.Mutex
	status JobStatus
	report *Report
	err    error
}

// Start runs analyzer in the background. A nil analyzer yields a job that
// already failed with ErrAnalysisUnavailable.
func Start(
	ctx context.Context,
	analyzer Analyzer,
	req Request,
) *Job {
	ctx, cancel := context.WithCancel(ctx)
	j := &Job{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if analyzer == nil {
		j.finish(nil, fmt.Errorf("%w: no analyzer configured", ErrAnalysisUnavailable))
		return j
	}

	observability.Go(ctx, func() {
		logger.Debugf(ctx, "starting an analysis with %T of %d characters of %s", analyzer, len(req.Audio), req.MIMEType)
		report, err := analyzer.Analyze(ctx, req)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrAnalysisUnavailable, err)
		}
		logger.Debugf(ctx, "the analysis with %T finished: %v", analyzer, err)
		j.finish(report, err)
	})
	return j
}

func (j *Job) finish(report *Report, err error) {
	j.locker.Lock()
	defer j.locker.Unlock()
	if j.status != JobStatusPending {
		return
	}
	if err != nil {
		j.status = JobStatusFailed
		j.err = err
	} else {
		j.status = JobStatusDone
		j.report = report
	}
	j.cancel()
	close(j.done)
}

// Cancel discards the pending result; it is a no-op on a finished job.
func (j *Job) Cancel() {
	j.locker.Lock()
	defer j.locker.Unlock()
	if j.status != JobStatusPending {
		return
	}
	j.status = JobStatusCanceled
	j.err = fmt.Errorf("%w: the analysis was canceled", ErrAnalysisUnavailable)
	j.cancel()
	close(j.done)
}

func (j *Job) Status() JobStatus {
	j.locker.Lock()
	defer j.locker.Unlock()
	return j.status
}

// Done is closed once the job finished or was canceled.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes or ctx is done.
func (j *Job) Wait(ctx context.Context) (*Report, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-j.done:
	}
	j.locker.Lock()
	defer j.locker.Unlock()
	return j.report, j.err
}
