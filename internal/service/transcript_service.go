// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/notewell/notetaker-service/internal/domain"
	"github.com/notewell/notetaker-service/internal/domain/models"
	"github.com/notewell/notetaker-service/internal/logging"
)

// TranscriptService persists transcripts exactly once and serves reads.
// Persistence is append-only: a transcript row is never updated, and a
// concurrent duplicate insert is treated as success by the other writer.
type TranscriptService struct {
	TranscriptRepository domain.TranscriptRepository
	RawArchive           domain.RawTranscriptArchive
	MessageBuilder       domain.MessageBuilder
}

// NewTranscriptService creates a new TranscriptService.
func NewTranscriptService(
	transcriptRepository domain.TranscriptRepository,
	rawArchive domain.RawTranscriptArchive,
	messageBuilder domain.MessageBuilder,
) *TranscriptService {
	return &TranscriptService{
		TranscriptRepository: transcriptRepository,
		RawArchive:           rawArchive,
		MessageBuilder:       messageBuilder,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *TranscriptService) ServiceReady() bool {
	return s.TranscriptRepository != nil &&
		s.RawArchive != nil &&
		s.MessageBuilder != nil
}

// PersistFromRaw normalizes a raw provider payload and stores the
// transcript for the meeting, returning the stored transcript and
// whether this call was the one that persisted it. Losing the insert
// race is not an error: the winner's row is returned instead.
//
// The raw payload is archived first so a decoding bug can be fixed and
// the transcript renormalized later.
func (s *TranscriptService) PersistFromRaw(ctx context.Context, meeting *models.Meeting, raw json.RawMessage) (*models.Transcript, bool, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, false, domain.ErrServiceUnavailable
	}
	if meeting == nil || meeting.UID == "" {
		return nil, false, domain.NewValidationError("meeting is required")
	}

	if err := s.RawArchive.Put(ctx, meeting.UID, raw); err != nil {
		slog.WarnContext(ctx, "failed to archive raw transcript payload",
			logging.ErrKey, err, "meeting_uid", meeting.UID)
	}

	normalized := models.DecodeRawTranscript(raw).Normalize()
	if normalized.Text == "" {
		return nil, false, domain.NewValidationError("raw payload produced an empty transcript")
	}

	transcript := &models.Transcript{
		MeetingUID:      meeting.UID,
		JobUID:          meeting.JobUID,
		Text:            normalized.Text,
		Speakers:        normalized.Speakers,
		Words:           normalized.Words,
		DurationMinutes: models.DurationMinutesFromWords(normalized.Words),
		ProcessedAt:     time.Now().UTC(),
	}

	if err := s.TranscriptRepository.CreateOnce(ctx, transcript); err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeConflict {
			slog.DebugContext(ctx, "transcript already persisted by a concurrent pass",
				"meeting_uid", meeting.UID)
			existing, getErr := s.TranscriptRepository.GetByMeeting(ctx, meeting.UID)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	s.announceTranscript(ctx, transcript)

	slog.InfoContext(ctx, "persisted transcript",
		"meeting_uid", transcript.MeetingUID,
		"job_uid", transcript.JobUID,
		"duration_minutes", transcript.DurationMinutes,
		"speakers", len(transcript.Speakers))
	return transcript, true, nil
}

// announceTranscript publishes the post-persist messages. Both sends are
// best-effort: the transcript row is already durable and consumers can
// recover via reads.
func (s *TranscriptService) announceTranscript(ctx context.Context, transcript *models.Transcript) {
	if err := s.MessageBuilder.SendIndexTranscript(ctx, models.ActionCreated, *transcript); err != nil {
		slog.ErrorContext(ctx, "error sending transcript index message",
			logging.ErrKey, err, "meeting_uid", transcript.MeetingUID)
	}

	ready := models.TranscriptReadyMessage{
		MeetingUID:      transcript.MeetingUID,
		JobUID:          transcript.JobUID,
		DurationMinutes: transcript.DurationMinutes,
		SpeakerCount:    len(transcript.Speakers),
	}
	if err := s.MessageBuilder.SendTranscriptReady(ctx, ready); err != nil {
		slog.ErrorContext(ctx, "error sending transcript ready message",
			logging.ErrKey, err, "meeting_uid", transcript.MeetingUID)
	}
}

// Exists reports whether the meeting already has a transcript.
func (s *TranscriptService) Exists(ctx context.Context, meetingUID string) (bool, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return false, domain.ErrServiceUnavailable
	}
	return s.TranscriptRepository.Exists(ctx, meetingUID)
}

// GetByMeeting fetches the transcript stored for a meeting.
func (s *TranscriptService) GetByMeeting(ctx context.Context, meetingUID string) (*models.Transcript, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	if meetingUID == "" {
		return nil, domain.NewValidationError("meeting uid is required")
	}
	return s.TranscriptRepository.GetByMeeting(ctx, meetingUID)
}
