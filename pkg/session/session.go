// Package session owns everything loaded for one comparison: the decoded
// tracks, their analysis, the transports and the pending report.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/avcompare/pkg/audio"
	"github.com/xaionaro-go/avcompare/pkg/decode"
	"github.com/xaionaro-go/avcompare/pkg/metrics"
	"github.com/xaionaro-go/avcompare/pkg/playback"
	"github.com/xaionaro-go/avcompare/pkg/report"
	"github.com/xaionaro-go/avcompare/pkg/syncer"
	"github.com/xaionaro-go/avcompare/pkg/syncer/implementations/gccphat"
	"github.com/xaionaro-go/avcompare/pkg/transport"
	"github.com/xaionaro-go/observability"
)

var ErrNoAnalysis = errors.New("no analysis was started")

const DefaultAnalysisSampleRate = audio.SampleRate(16000)

type Config struct {
	SampleCount        int
	AnalysisSampleRate audio.SampleRate
	OffsetWindow       float64
	MaxOffset          float64

	Decoder  decode.Decoder
	Syncer   syncer.Syncer
	Analyzer report.Analyzer
	Metrics  *metrics.Metrics
	Playback playback.Config
}

type Session struct {
	ID     uuid.UUID
	Config Config

	ctx        context.Context
	controller *playback.Controller

	locker     sync.Mutex
	generation uint64
	status     Status
	analysis   *Analysis
	err        error
	cancel     context.CancelFunc
	done       chan struct{}
	reportJob  *report.Job
}

func New(
	ctx context.Context,
	cfg Config,
) (*Session, error) {
	if cfg.SampleCount <= 0 {
		return nil, fmt.Errorf("the sample count must be positive, got %d", cfg.SampleCount)
	}
	if cfg.AnalysisSampleRate == 0 {
		cfg.AnalysisSampleRate = DefaultAnalysisSampleRate
	}
	if cfg.Decoder == nil {
		cfg.Decoder = decode.Auto{}
	}
	if cfg.Syncer == nil {
		s, err := gccphat.NewSyncer(cfg.AnalysisSampleRate, cfg.OffsetWindow)
		if err != nil {
			return nil, fmt.Errorf("unable to initialize the offset estimator: %w", err)
		}
		cfg.Syncer = s
	}
	if cfg.Playback.Metrics == nil {
		cfg.Playback.Metrics = cfg.Metrics
	}

	id := uuid.New()
	ctx = belt.WithField(ctx, "session", id.String())
	s := &Session{
		ID:     id,
		Config: cfg,
		ctx:    ctx,
	}
	s.controller = playback.NewController(ctx, cfg.Playback)
	logger.Debugf(ctx, "session %s created", id)
	return s, nil
}

func (s *Session) Controller() *playback.Controller {
	return s.controller
}

func (s *Session) Status() Status {
	s.locker.Lock()
	defer s.locker.Unlock()
	return s.status
}

// Attach installs h as the transport under id. A replaced transport is
// closed.
func (s *Session) Attach(
	ctx context.Context,
	id transport.ID,
	h transport.Handle,
) error {
	ctx = belt.WithField(ctx, "session", s.ID.String())
	prev := s.controller.Detach(ctx, id)
	s.controller.Attach(ctx, id, h)
	if prev == nil || prev == h {
		return nil
	}
	if err := release(prev); err != nil {
		return fmt.Errorf("unable to release the previous %v transport: %w", id, err)
	}
	return nil
}

// Detach removes and releases the transport under id.
func (s *Session) Detach(
	ctx context.Context,
	id transport.ID,
) error {
	ctx = belt.WithField(ctx, "session", s.ID.String())
	h := s.controller.Detach(ctx, id)
	if h == nil {
		return nil
	}
	if err := release(h); err != nil {
		return fmt.Errorf("unable to release the %v transport: %w", id, err)
	}
	return nil
}

func release(h transport.Handle) error {
	if closer, ok := h.(io.Closer); ok {
		return closer.Close()
	}
	if err := h.Pause(); err != nil && !errors.Is(err, transport.ErrTransportUnready) {
		return err
	}
	return nil
}

// Analyze decodes and analyzes the sources in the background, replacing
// any previous analysis. Use Analysis to wait for the result.
func (s *Session) Analyze(
	ctx context.Context,
	src Sources,
) {
	ctx = belt.WithField(ctx, "session", s.ID.String())
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.locker.Lock()
	s.cancelAnalysisLocked()
	s.generation++
	generation := s.generation
	s.status = StatusRunning
	s.analysis = nil
	s.err = nil
	s.cancel = cancel
	s.done = done
	s.locker.Unlock()

	observability.Go(ctx, func() {
		defer close(done)
		defer cancel()
		startedAt := time.Now()
		analysis, err := s.analyze(ctx, src)
		s.Config.Metrics.ObserveAnalysis(time.Since(startedAt).Seconds(), err)

		s.locker.Lock()
		defer s.locker.Unlock()
		if generation != s.generation {
			logger.Debugf(ctx, "the analysis #%d is outdated, dropping its result", generation)
			return
		}
		if err != nil {
			logger.Warnf(ctx, "the analysis failed: %v", err)
			s.status = StatusFailed
			s.analysis = analysis
			s.err = err
			return
		}
		s.status = StatusReady
		s.analysis = analysis
	})
}

// Analysis waits for the latest analysis started by Analyze. On a decode
// failure both the error and the partially decoded Analysis are returned.
func (s *Session) Analysis(ctx context.Context) (*Analysis, error) {
	s.locker.Lock()
	done := s.done
	s.locker.Unlock()
	if done == nil {
		return nil, ErrNoAnalysis
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
	}

	s.locker.Lock()
	defer s.locker.Unlock()
	if s.done != done {
		return nil, fmt.Errorf("the analysis was superseded")
	}
	if s.status == StatusIdle {
		return nil, ErrNoAnalysis
	}
	return s.analysis, s.err
}

// RequestReport starts an analysis report of the isolated track, or of
// the original one when there is no isolated track. A pending report is
// canceled.
func (s *Session) RequestReport(
	ctx context.Context,
	prompt string,
) (*report.Job, error) {
	ctx = belt.WithField(ctx, "session", s.ID.String())
	s.locker.Lock()
	defer s.locker.Unlock()

	if s.status != StatusReady || s.analysis == nil {
		return nil, fmt.Errorf("%w: the tracks are not analyzed (status: %v)", report.ErrAnalysisUnavailable, s.status)
	}
	pcm := s.analysis.Isolated
	if pcm.Len() == 0 {
		pcm = s.analysis.Original
	}
	if pcm.Len() == 0 {
		return nil, fmt.Errorf("%w: there is no audio to analyze", report.ErrAnalysisUnavailable)
	}

	if s.reportJob != nil {
		s.reportJob.Cancel()
	}
	s.reportJob = report.Start(ctx, s.Config.Analyzer, report.NewRequest(pcm, prompt))
	return s.reportJob, nil
}

// Reset cancels the background work, releases the transports and drops
// the analysis. The session may be reused afterwards.
func (s *Session) Reset(ctx context.Context) error {
	ctx = belt.WithField(ctx, "session", s.ID.String())
	s.locker.Lock()
	s.cancelAnalysisLocked()
	s.generation++
	s.status = StatusIdle
	s.analysis = nil
	s.err = nil
	s.done = nil
	if s.reportJob != nil {
		s.reportJob.Cancel()
		s.reportJob = nil
	}
	s.locker.Unlock()

	var mErr *multierror.Error
	for _, id := range transport.IDs() {
		if err := s.Detach(ctx, id); err != nil {
			mErr = multierror.Append(mErr, err)
		}
	}
	logger.Debugf(ctx, "session reset: %v", mErr.ErrorOrNil())
	return mErr.ErrorOrNil()
}

// Close resets the session and stops its scheduler loop.
func (s *Session) Close(ctx context.Context) error {
	var mErr *multierror.Error
	if err := s.Reset(ctx); err != nil {
		mErr = multierror.Append(mErr, err)
	}
	if err := s.controller.Close(); err != nil {
		mErr = multierror.Append(mErr, fmt.Errorf("unable to close the playback controller: %w", err))
	}
	if s.Config.Analyzer != nil {
		if err := s.Config.Analyzer.Close(); err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to close the analyzer: %w", err))
		}
	}
	return mErr.ErrorOrNil()
}

func (s *Session) cancelAnalysisLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
