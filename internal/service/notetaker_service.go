// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/notewell/notetaker-service/internal/domain"
	"github.com/notewell/notetaker-service/internal/domain/models"
	"github.com/notewell/notetaker-service/internal/logging"
	"github.com/notewell/notetaker-service/pkg/constants"
	"github.com/notewell/notetaker-service/pkg/utils"
)

// NotetakerService manages the lifecycle of notetaker bots: scheduling a
// bot on a meeting, deduplicating against bots already covering the same
// call, and removing local tracking. EnsureBot is the only code path
// that creates recording jobs.
type NotetakerService struct {
	MeetingRepository      domain.MeetingRepository
	RecordingJobRepository domain.RecordingJobRepository
	Recorder               domain.RecorderClient
	PlatformRegistry       domain.PlatformRegistry
	ScheduleService        *ScheduleService
	Config                 ServiceConfig
}

// NewNotetakerService creates a new NotetakerService.
func NewNotetakerService(
	meetingRepository domain.MeetingRepository,
	recordingJobRepository domain.RecordingJobRepository,
	recorder domain.RecorderClient,
	platformRegistry domain.PlatformRegistry,
	scheduleService *ScheduleService,
	config ServiceConfig,
) *NotetakerService {
	return &NotetakerService{
		MeetingRepository:      meetingRepository,
		RecordingJobRepository: recordingJobRepository,
		Recorder:               recorder,
		PlatformRegistry:       platformRegistry,
		ScheduleService:        scheduleService,
		Config:                 config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *NotetakerService) ServiceReady() bool {
	return s.MeetingRepository != nil &&
		s.RecordingJobRepository != nil &&
		s.Recorder != nil &&
		s.PlatformRegistry != nil &&
		s.ScheduleService != nil
}

func (s *NotetakerService) botName(meeting *models.Meeting) string {
	prefix := utils.CoalesceString(s.Config.BotNamePrefix, "Notewell Bot")
	return fmt.Sprintf("%s - %s", prefix, meeting.Title)
}

func (s *NotetakerService) joinLead(requested int) int {
	if requested <= 0 {
		if s.Config.JoinLeadMinutes > 0 {
			return s.Config.JoinLeadMinutes
		}
		return constants.DefaultJoinLeadMinutes
	}
	if requested > constants.MaxJoinLeadMinutes {
		return constants.MaxJoinLeadMinutes
	}
	return requested
}

// EnsureBot guarantees that a usable recording job covers the meeting,
// creating a provider bot only when no live one already covers the
// meeting's (owner, cleaned URL) pair. It returns the job and whether an
// existing job was reused.
func (s *NotetakerService) EnsureBot(ctx context.Context, meetingUID string, joinLeadMinutes int) (*models.RecordingJob, bool, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, false, domain.ErrServiceUnavailable
	}
	if meetingUID == "" {
		return nil, false, domain.NewValidationError("meeting uid is required")
	}

	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return nil, false, err
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meeting.UID))

	cleanedURL, err := s.cleanedMeetingURL(meeting)
	if err != nil {
		return nil, false, err
	}

	if meeting.HasJob() {
		return nil, false, domain.NewConflictError(
			fmt.Sprintf("meeting already tracked by job %s", meeting.JobUID))
	}

	job, reused, err := s.resolveOrCreateJob(ctx, meeting, cleanedURL, joinLeadMinutes)
	if err != nil {
		return nil, false, err
	}

	meeting.JobUID = job.UID
	meeting.TransitionStatus(models.MeetingStatusInProgress)
	if err := s.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		return nil, false, err
	}

	slog.InfoContext(ctx, "notetaker ensured on meeting",
		"job_uid", job.UID, "reused", reused)
	return job, reused, nil
}

// cleanedMeetingURL validates the meeting's platform against the
// allow-list and returns its canonical URL. Meetings synced before a
// platform was supported may carry no cleaned URL yet, so cleaning is
// redone here rather than trusting the stored value blindly.
func (s *NotetakerService) cleanedMeetingURL(meeting *models.Meeting) (string, error) {
	provider, err := s.PlatformRegistry.DetectProvider(meeting.MeetingURL)
	if err != nil {
		return "", err
	}

	cleanedURL, err := provider.CleanURL(meeting.MeetingURL)
	if err != nil {
		return "", domain.NewValidationError("meeting URL could not be canonicalized", err)
	}
	return cleanedURL, nil
}

// resolveOrCreateJob reuses the job holding the meeting's dedup key when
// its bot is still live, and creates a fresh bot otherwise.
func (s *NotetakerService) resolveOrCreateJob(ctx context.Context, meeting *models.Meeting, cleanedURL string, joinLeadMinutes int) (*models.RecordingJob, bool, error) {
	existing, err := s.RecordingJobRepository.GetByDedupKey(ctx, meeting.OwnerUID, cleanedURL)
	if err != nil && domain.GetErrorType(err) != domain.ErrorTypeNotFound {
		return nil, false, err
	}

	if existing != nil {
		bot, err := s.Recorder.GetBot(ctx, existing.UID)
		if err == nil {
			existing.Status = bot.EffectiveStatus()
			slog.DebugContext(ctx, "reusing live recording job",
				"job_uid", existing.UID, "status", existing.Status)
			return existing, true, nil
		}

		if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
			return nil, false, err
		}

		// The provider no longer knows the bot. Free the dedup key so a
		// replacement can be created.
		slog.InfoContext(ctx, "releasing dead recording job", "job_uid", existing.UID)
		if err := s.RecordingJobRepository.Release(ctx, existing); err != nil {
			return nil, false, err
		}
	}

	job, err := s.createJob(ctx, meeting, cleanedURL, joinLeadMinutes)
	if err != nil {
		return nil, false, err
	}
	return job, false, nil
}

func (s *NotetakerService) createJob(ctx context.Context, meeting *models.Meeting, cleanedURL string, joinLeadMinutes int) (*models.RecordingJob, error) {
	joinAt, err := s.ScheduleService.JoinAt(ctx, meeting, time.Now().UTC(), s.joinLead(joinLeadMinutes))
	if err != nil {
		return nil, err
	}

	request := &models.CreateBotRequest{
		MeetingURL: meeting.MeetingURL,
		BotName:    s.botName(meeting),
		JoinAt:     utils.TimePtr(joinAt),
	}

	bot, err := s.Recorder.CreateBot(ctx, request)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &models.RecordingJob{
		UID:        bot.ID,
		OwnerUID:   meeting.OwnerUID,
		CleanedURL: cleanedURL,
		MeetingUID: meeting.UID,
		Status:     bot.EffectiveStatus(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.RecordingJobRepository.Create(ctx, job); err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeConflict {
			// Lost a race with a concurrent ensure for the same pair. The
			// winner's row is authoritative; the bot just created becomes
			// an orphan on the provider side.
			slog.WarnContext(ctx, "lost dedup race, adopting winning job",
				"orphan_bot_id", bot.ID)
			return s.RecordingJobRepository.GetByDedupKey(ctx, meeting.OwnerUID, cleanedURL)
		}
		return nil, err
	}

	slog.DebugContext(ctx, "created recording job",
		"job_uid", job.UID, "join_at", joinAt)
	return job, nil
}

// RemoveTracking clears local notetaker tracking from a meeting: the job
// row and its dedup index entry are removed and the meeting is rewound
// to scheduled. The remote bot is never deleted.
func (s *NotetakerService) RemoveTracking(ctx context.Context, meetingUID string) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}
	if meetingUID == "" {
		return domain.NewValidationError("meeting uid is required")
	}

	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return err
	}

	if !meeting.HasJob() {
		return nil
	}

	job, err := s.RecordingJobRepository.Get(ctx, meeting.JobUID)
	if err == nil {
		if err := s.RecordingJobRepository.Release(ctx, job); err != nil {
			return err
		}
	} else if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
		return err
	}

	jobUID := meeting.JobUID
	meeting.ResetTracking()
	if err := s.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		return err
	}

	slog.InfoContext(ctx, "removed notetaker tracking",
		"meeting_uid", meetingUID, "job_uid", jobUID)
	return nil
}
