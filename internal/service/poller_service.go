// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/notewell/notetaker-service/internal/domain"
	"github.com/notewell/notetaker-service/internal/domain/models"
	"github.com/notewell/notetaker-service/internal/logging"
)

// DefaultPollInterval is the tick interval of the polling orchestrator.
const DefaultPollInterval = 30 * time.Second

// Reconciliation outcomes for one meeting within a tick.
const (
	OutcomeCompleted  = "completed"
	OutcomeProcessing = "processing"
	OutcomeErrored    = "errored"
	OutcomeSkipped    = "skipped"
)

// MeetingTickResult is the per-meeting entry of a tick summary. Failures
// during one meeting's reconciliation land here instead of failing the tick.
type MeetingTickResult struct {
	MeetingUID string `json:"meeting_uid"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
}

// TickSummary aggregates one reconciliation pass.
type TickSummary struct {
	StartedAt  time.Time           `json:"started_at"`
	Duration   time.Duration       `json:"duration"`
	Completed  int                 `json:"completed"`
	Processing int                 `json:"processing"`
	Errored    int                 `json:"errored"`
	Skipped    int                 `json:"skipped"`
	Results    []MeetingTickResult `json:"results"`
}

// PollerStatus is the orchestrator's observable state.
type PollerStatus struct {
	Running     bool          `json:"running"`
	Interval    time.Duration `json:"interval"`
	LastTick    *TickSummary  `json:"last_tick,omitempty"`
	TicksSoFar  uint64        `json:"ticks_so_far"`
	NextTickDue time.Time     `json:"next_tick_due,omitempty"`
}

// PollerService is the polling orchestrator: a single long-lived loop
// that reconciles every pollable meeting against the recording provider.
// ForceTick runs a pass outside the timer and is deliberately not
// serialized against it; every write it races on is guarded by the KV
// insert-if-absent constraint, so concurrent passes stay idempotent.
type PollerService struct {
	MeetingRepository      domain.MeetingRepository
	RecordingJobRepository domain.RecordingJobRepository
	Recorder               domain.RecorderClient
	ReadinessService       *ReadinessService
	TranscriptService      *TranscriptService

	interval time.Duration

	mu       sync.Mutex
	running  bool
	stop     chan struct{}
	lastTick *TickSummary
	ticks    uint64
	nextDue  time.Time
}

// NewPollerService creates a new PollerService. A non-positive interval
// selects the default.
func NewPollerService(
	meetingRepository domain.MeetingRepository,
	recordingJobRepository domain.RecordingJobRepository,
	recorder domain.RecorderClient,
	readinessService *ReadinessService,
	transcriptService *TranscriptService,
	interval time.Duration,
) *PollerService {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollerService{
		MeetingRepository:      meetingRepository,
		RecordingJobRepository: recordingJobRepository,
		Recorder:               recorder,
		ReadinessService:       readinessService,
		TranscriptService:      transcriptService,
		interval:               interval,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *PollerService) ServiceReady() bool {
	return s.MeetingRepository != nil &&
		s.RecordingJobRepository != nil &&
		s.Recorder != nil &&
		s.ReadinessService != nil &&
		s.TranscriptService != nil
}

// Start begins the periodic loop: one immediate pass, then one per
// interval. Calling Start on a running poller is a no-op.
func (s *PollerService) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	stop := s.stop
	s.mu.Unlock()

	slog.InfoContext(ctx, "starting poller", "interval", s.interval)

	go s.run(ctx, stop)
}

func (s *PollerService) run(ctx context.Context, stop chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runTick(ctx)

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runTick(ctx)
		}
	}
}

// Stop halts scheduling of further ticks. An in-flight tick is not
// cancelled. Calling Stop on a stopped poller is a no-op.
func (s *PollerService) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stop)
	slog.InfoContext(ctx, "stopped poller")
}

// ForceTick runs one reconciliation pass synchronously, independent of
// the timer loop.
func (s *PollerService) ForceTick(ctx context.Context) (*TickSummary, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	return s.tick(ctx)
}

// Status reports the orchestrator's current state.
func (s *PollerService) Status() PollerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := PollerStatus{
		Running:    s.running,
		Interval:   s.interval,
		LastTick:   s.lastTick,
		TicksSoFar: s.ticks,
	}
	if s.running {
		status.NextTickDue = s.nextDue
	}
	return status
}

func (s *PollerService) runTick(ctx context.Context) {
	if _, err := s.tick(ctx); err != nil {
		slog.ErrorContext(ctx, "poller tick failed", logging.ErrKey, err)
	}
}

// tick reconciles every pollable meeting. Only the candidate query can
// fail the tick; per-meeting failures become result entries.
func (s *PollerService) tick(ctx context.Context) (*TickSummary, error) {
	started := time.Now().UTC()

	meetings, err := s.MeetingRepository.ListPollable(ctx)
	if err != nil {
		return nil, err
	}

	summary := &TickSummary{
		StartedAt: started,
		Results:   make([]MeetingTickResult, 0, len(meetings)),
	}

	// Sequential on purpose: the provider API is rate limited, so request
	// volume is bounded by one in-flight call per tick.
	for _, meeting := range meetings {
		result := s.reconcileOne(ctx, meeting)
		summary.Results = append(summary.Results, result)
		switch result.Outcome {
		case OutcomeCompleted:
			summary.Completed++
		case OutcomeErrored:
			summary.Errored++
		case OutcomeSkipped:
			summary.Skipped++
		default:
			summary.Processing++
		}
	}

	summary.Duration = time.Since(started)

	s.mu.Lock()
	s.lastTick = summary
	s.ticks++
	s.nextDue = time.Now().UTC().Add(s.interval)
	s.mu.Unlock()

	slog.InfoContext(ctx, "poller tick finished",
		"meetings", len(meetings),
		"completed", summary.Completed,
		"processing", summary.Processing,
		"errored", summary.Errored,
		"skipped", summary.Skipped,
		"duration", summary.Duration)

	return summary, nil
}

func (s *PollerService) reconcileOne(ctx context.Context, meeting *models.Meeting) MeetingTickResult {
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meeting.UID))

	outcome, err := s.reconcileMeeting(ctx, meeting)
	if err != nil {
		slog.WarnContext(ctx, "meeting reconciliation failed", logging.ErrKey, err)
		return MeetingTickResult{MeetingUID: meeting.UID, Outcome: OutcomeErrored, Error: err.Error()}
	}
	return MeetingTickResult{MeetingUID: meeting.UID, Outcome: outcome}
}

// reconcileMeeting runs the readiness oracle for one meeting and applies
// the resulting state changes: meeting status transitions, job status
// mirroring and the exactly-once transcript persist.
func (s *PollerService) reconcileMeeting(ctx context.Context, meeting *models.Meeting) (string, error) {
	if !meeting.IsPollable() {
		return OutcomeSkipped, nil
	}

	hasTranscript, err := s.TranscriptService.Exists(ctx, meeting.UID)
	if err != nil {
		return "", err
	}
	if hasTranscript {
		return OutcomeSkipped, nil
	}

	bot, err := s.Recorder.GetBot(ctx, meeting.JobUID)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeTimeout {
			// Not ready yet; retry on the next tick.
			return OutcomeProcessing, nil
		}
		return "", err
	}

	s.mirrorJobStatus(ctx, meeting.JobUID, bot.EffectiveStatus())

	readiness, err := s.ReadinessService.Evaluate(ctx, bot)
	if err != nil {
		return "", err
	}

	if readiness.Failed {
		if err := s.transitionMeeting(ctx, meeting.UID, models.MeetingStatusError); err != nil {
			return "", err
		}
		return OutcomeErrored, nil
	}

	if !readiness.Ready {
		return OutcomeProcessing, nil
	}

	if err := s.transitionMeeting(ctx, meeting.UID, models.MeetingStatusCompleted); err != nil {
		return "", err
	}

	if !readiness.HasTranscript {
		// Terminal without a transcript yet; completed meetings stay
		// pollable so a later tick can still pick it up.
		return OutcomeCompleted, nil
	}

	raw := readiness.RawPayload
	if raw == nil {
		raw, err = s.ReadinessService.fetchTranscript(ctx, bot)
		if err != nil {
			switch domain.GetErrorType(err) {
			case domain.ErrorTypeTimeout, domain.ErrorTypeNotFound:
				return OutcomeCompleted, nil
			}
			return "", err
		}
	}

	if _, _, err := s.TranscriptService.PersistFromRaw(ctx, meeting, raw); err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeValidation {
			// Empty payload; the provider has not finished post-processing.
			return OutcomeCompleted, nil
		}
		return "", err
	}

	return OutcomeCompleted, nil
}

// mirrorJobStatus copies the provider's effective status onto the local
// job row. Best-effort: a failed mirror never fails reconciliation.
func (s *PollerService) mirrorJobStatus(ctx context.Context, jobUID, status string) {
	job, revision, err := s.RecordingJobRepository.GetWithRevision(ctx, jobUID)
	if err != nil {
		slog.WarnContext(ctx, "failed to load job for status mirror",
			logging.ErrKey, err, "job_uid", jobUID)
		return
	}
	if job.Status == status || status == "" {
		return
	}

	job.Status = status
	job.UpdatedAt = time.Now().UTC()
	if err := s.RecordingJobRepository.Update(ctx, job, revision); err != nil {
		slog.WarnContext(ctx, "failed to mirror job status",
			logging.ErrKey, err, "job_uid", jobUID, "status", status)
	}
}

// transitionMeeting re-reads the meeting and applies a forward status
// transition. The re-read keeps the revision current so concurrent
// passes conflict instead of clobbering each other.
func (s *PollerService) transitionMeeting(ctx context.Context, meetingUID string, next models.MeetingStatus) error {
	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return err
	}

	if !meeting.TransitionStatus(next) {
		return nil
	}

	if err := s.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeConflict {
			// A concurrent pass already moved the meeting forward.
			slog.DebugContext(ctx, "meeting transition lost revision race",
				"meeting_uid", meetingUID, "status", next)
			return nil
		}
		return err
	}
	return nil
}

// CheckMeeting reconciles a single meeting on demand, outside any tick.
// Unlike tick reconciliation, errors propagate to the caller.
func (s *PollerService) CheckMeeting(ctx context.Context, meetingUID string) (*MeetingTickResult, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if meetingUID == "" {
		return nil, domain.NewValidationError("meeting uid is required")
	}

	meeting, err := s.MeetingRepository.Get(ctx, meetingUID)
	if err != nil {
		return nil, err
	}

	outcome, err := s.reconcileMeeting(ctx, meeting)
	if err != nil {
		return nil, err
	}
	return &MeetingTickResult{MeetingUID: meetingUID, Outcome: outcome}, nil
}
