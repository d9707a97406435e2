// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/notewell/notetaker-service/internal/domain"
	"github.com/notewell/notetaker-service/internal/domain/models"
	"github.com/notewell/notetaker-service/internal/logging"
	"github.com/notewell/notetaker-service/internal/utils"
)

// MeetingService owns the local meeting mirror: upserts and deletions
// flowing in from the calendar-sync service.
type MeetingService struct {
	MeetingRepository      domain.MeetingRepository
	RecordingJobRepository domain.RecordingJobRepository
	MessageBuilder         domain.MessageBuilder
	PlatformRegistry       domain.PlatformRegistry
	Config                 ServiceConfig
}

// NewMeetingService creates a new MeetingService.
func NewMeetingService(
	meetingRepository domain.MeetingRepository,
	recordingJobRepository domain.RecordingJobRepository,
	messageBuilder domain.MessageBuilder,
	platformRegistry domain.PlatformRegistry,
	config ServiceConfig,
) *MeetingService {
	return &MeetingService{
		MeetingRepository:      meetingRepository,
		RecordingJobRepository: recordingJobRepository,
		MessageBuilder:         messageBuilder,
		PlatformRegistry:       platformRegistry,
		Config:                 config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *MeetingService) ServiceReady() bool {
	return s.MeetingRepository != nil &&
		s.RecordingJobRepository != nil &&
		s.MessageBuilder != nil &&
		s.PlatformRegistry != nil
}

// resolveMeetingURL picks the joinable meeting URL for a synced meeting:
// the explicit URL when present, otherwise the first supported URL found
// in the calendar event description.
func (s *MeetingService) resolveMeetingURL(ctx context.Context, msg *models.MeetingSyncedMessage) (string, domain.PlatformProvider, error) {
	candidates := []string{}
	if msg.MeetingURL != "" {
		candidates = append(candidates, msg.MeetingURL)
	}
	candidates = append(candidates, utils.ExtractURLs(msg.Description)...)

	for _, candidate := range candidates {
		provider, err := s.PlatformRegistry.DetectProvider(candidate)
		if err != nil {
			continue
		}
		return candidate, provider, nil
	}

	slog.WarnContext(ctx, "no supported meeting URL found",
		"meeting_uid", msg.UID, "candidates", len(candidates))
	return "", nil, domain.NewValidationError("meeting has no supported platform URL")
}

// SyncMeeting upserts a meeting from a calendar-sync event. Bot linkage
// and lifecycle status are never overwritten by a sync; the calendar
// only owns the descriptive fields.
func (s *MeetingService) SyncMeeting(ctx context.Context, msg *models.MeetingSyncedMessage) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if msg == nil || msg.UID == "" {
		return nil, domain.NewValidationError("meeting uid is required")
	}

	meetingURL, provider, err := s.resolveMeetingURL(ctx, msg)
	if err != nil {
		return nil, err
	}

	cleanedURL, err := provider.CleanURL(meetingURL)
	if err != nil {
		return nil, domain.NewValidationError("meeting URL could not be canonicalized", err)
	}

	existing, revision, err := s.MeetingRepository.GetWithRevision(ctx, msg.UID)
	if err != nil && domain.GetErrorType(err) != domain.ErrorTypeNotFound {
		return nil, err
	}

	if existing == nil {
		meeting := &models.Meeting{
			UID:            msg.UID,
			OwnerUID:       msg.OwnerUID,
			Title:          msg.Title,
			MeetingURL:     meetingURL,
			CleanedURL:     cleanedURL,
			Platform:       provider.Name(),
			StartTime:      msg.StartTime,
			RecurrenceRule: msg.RecurrenceRule,
			Timezone:       msg.Timezone,
			Status:         models.MeetingStatusScheduled,
			CreatedAt:      time.Now().UTC(),
			UpdatedAt:      time.Now().UTC(),
		}

		if err := s.MeetingRepository.Create(ctx, meeting); err != nil {
			return nil, err
		}

		if err := s.MessageBuilder.SendIndexMeeting(ctx, models.ActionCreated, *meeting); err != nil {
			slog.ErrorContext(ctx, "error sending meeting index message", logging.ErrKey, err)
		}

		slog.DebugContext(ctx, "created meeting from calendar sync",
			"meeting_uid", meeting.UID, "platform", meeting.Platform)
		return meeting, nil
	}

	existing.OwnerUID = msg.OwnerUID
	existing.Title = msg.Title
	existing.MeetingURL = meetingURL
	existing.CleanedURL = cleanedURL
	existing.Platform = provider.Name()
	existing.StartTime = msg.StartTime
	existing.RecurrenceRule = msg.RecurrenceRule
	existing.Timezone = msg.Timezone
	existing.UpdatedAt = time.Now().UTC()

	if err := s.MeetingRepository.Update(ctx, existing, revision); err != nil {
		return nil, err
	}

	if err := s.MessageBuilder.SendIndexMeeting(ctx, models.ActionUpdated, *existing); err != nil {
		slog.ErrorContext(ctx, "error sending meeting index message", logging.ErrKey, err)
	}

	return existing, nil
}

// GetMeeting fetches one meeting.
func (s *MeetingService) GetMeeting(ctx context.Context, meetingUID string) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	return s.MeetingRepository.Get(ctx, meetingUID)
}

// DeleteMeeting removes a meeting mirror. Any linked recording job row
// is released locally; the remote bot is never deleted.
func (s *MeetingService) DeleteMeeting(ctx context.Context, meetingUID string) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return err
	}

	if meeting.HasJob() {
		job, err := s.RecordingJobRepository.Get(ctx, meeting.JobUID)
		if err == nil {
			if err := s.RecordingJobRepository.Release(ctx, job); err != nil {
				slog.WarnContext(ctx, "failed to release recording job for deleted meeting",
					logging.ErrKey, err, "job_uid", job.UID)
			}
		} else if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
			return err
		}
	}

	if err := s.MeetingRepository.Delete(ctx, meetingUID, revision); err != nil {
		return err
	}

	if err := s.MessageBuilder.SendDeleteIndexMeeting(ctx, meetingUID); err != nil {
		slog.ErrorContext(ctx, "error sending meeting index delete message", logging.ErrKey, err)
	}

	slog.DebugContext(ctx, "deleted meeting", "meeting_uid", meetingUID)
	return nil
}
