// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/notewell/notetaker-service/internal/domain"
	"github.com/notewell/notetaker-service/internal/domain/models"
	"github.com/notewell/notetaker-service/internal/logging"
	"github.com/notewell/notetaker-service/internal/service"
)

// NotetakerHandler handles all NATS messages addressed to the notetaker
// service: meeting ingestion from the calendar-sync service and the
// request/reply control surface.
type NotetakerHandler struct {
	meetingService    *service.MeetingService
	notetakerService  *service.NotetakerService
	transcriptService *service.TranscriptService
	pollerService     *service.PollerService
}

func NewNotetakerHandler(
	meetingService *service.MeetingService,
	notetakerService *service.NotetakerService,
	transcriptService *service.TranscriptService,
	pollerService *service.PollerService,
) *NotetakerHandler {
	return &NotetakerHandler{
		meetingService:    meetingService,
		notetakerService:  notetakerService,
		transcriptService: transcriptService,
		pollerService:     pollerService,
	}
}

func (s *NotetakerHandler) HandlerReady() bool {
	return s.meetingService.ServiceReady() &&
		s.notetakerService.ServiceReady() &&
		s.transcriptService.ServiceReady() &&
		s.pollerService.ServiceReady()
}

// HandleMessage implements domain.MessageHandler interface
func (s *NotetakerHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	var response []byte
	var err error

	handlers := map[string]func(ctx context.Context, msg domain.Message) ([]byte, error){
		models.MeetingSyncedSubject:   s.HandleMeetingSynced,
		models.MeetingRemovedSubject:  s.HandleMeetingRemoved,
		models.EnsureNotetakerSubject: s.HandleEnsureNotetaker,
		models.RemoveNotetakerSubject: s.HandleRemoveNotetaker,
		models.GetTranscriptSubject:   s.HandleGetTranscript,
		models.CheckMeetingSubject:    s.HandleCheckMeeting,
		models.ForcePollSubject:       s.HandleForcePoll,
		models.PollerStatusSubject:    s.HandlePollerStatus,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		if msg.HasReply() {
			err = msg.Respond(nil)
			if err != nil {
				slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
			}
		}
		return
	}

	response, err = handler(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "error handling message",
			logging.ErrKey, err,
		)
		if msg.HasReply() {
			err = msg.Respond(nil)
			if err != nil {
				slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
			}
		}
		return
	}

	if msg.HasReply() {
		err = msg.Respond(response)
		if err != nil {
			slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
			return
		}
		slog.DebugContext(ctx, "responded to NATS message", "response", response)
	} else {
		slog.DebugContext(ctx, "handled NATS message (no reply expected)")
	}
}

// HandleMeetingSynced is the message handler for the meeting-synced subject.
func (s *NotetakerHandler) HandleMeetingSynced(ctx context.Context, msg domain.Message) ([]byte, error) {
	var payload models.MeetingSyncedMessage
	if err := json.Unmarshal(msg.Data(), &payload); err != nil {
		slog.ErrorContext(ctx, "error unmarshaling meeting synced message", logging.ErrKey, err)
		return nil, domain.NewValidationError("invalid meeting synced payload", err)
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", payload.UID))

	meeting, err := s.meetingService.SyncMeeting(ctx, &payload)
	if err != nil {
		return nil, err
	}

	return []byte(meeting.UID), nil
}

// HandleMeetingRemoved is the message handler for the meeting-removed subject.
func (s *NotetakerHandler) HandleMeetingRemoved(ctx context.Context, msg domain.Message) ([]byte, error) {
	var payload models.MeetingRemovedMessage
	if err := json.Unmarshal(msg.Data(), &payload); err != nil {
		// The calendar-sync service also publishes the bare UID.
		payload.UID = string(msg.Data())
	}
	if payload.UID == "" {
		return nil, domain.NewValidationError("meeting uid is required")
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", payload.UID))

	if err := s.meetingService.DeleteMeeting(ctx, payload.UID); err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			slog.DebugContext(ctx, "meeting already removed")
			return nil, nil
		}
		return nil, err
	}

	return nil, nil
}

// HandleEnsureNotetaker is the message handler for the ensure-notetaker
// request subject.
func (s *NotetakerHandler) HandleEnsureNotetaker(ctx context.Context, msg domain.Message) ([]byte, error) {
	var request models.EnsureNotetakerRequest
	if err := json.Unmarshal(msg.Data(), &request); err != nil {
		slog.ErrorContext(ctx, "error unmarshaling ensure notetaker request", logging.ErrKey, err)
		return nil, domain.NewValidationError("invalid ensure notetaker payload", err)
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", request.MeetingUID))

	job, reused, err := s.notetakerService.EnsureBot(ctx, request.MeetingUID, request.JoinLeadMinutes)
	if err != nil {
		return nil, err
	}

	return json.Marshal(models.EnsureNotetakerResponse{
		JobUID: job.UID,
		Reused: reused,
	})
}

// HandleRemoveNotetaker is the message handler for the remove-notetaker subject.
func (s *NotetakerHandler) HandleRemoveNotetaker(ctx context.Context, msg domain.Message) ([]byte, error) {
	meetingUID := string(msg.Data())
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	if err := s.notetakerService.RemoveTracking(ctx, meetingUID); err != nil {
		return nil, err
	}
	return nil, nil
}

// HandleGetTranscript is the message handler for the get-transcript subject.
func (s *NotetakerHandler) HandleGetTranscript(ctx context.Context, msg domain.Message) ([]byte, error) {
	meetingUID := string(msg.Data())
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	transcript, err := s.transcriptService.GetByMeeting(ctx, meetingUID)
	if err != nil {
		return nil, err
	}

	return json.Marshal(transcript)
}

// HandleCheckMeeting is the message handler for the check-meeting subject.
// It reconciles one meeting on demand, outside the poller's timer.
func (s *NotetakerHandler) HandleCheckMeeting(ctx context.Context, msg domain.Message) ([]byte, error) {
	meetingUID := string(msg.Data())
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	result, err := s.pollerService.CheckMeeting(ctx, meetingUID)
	if err != nil {
		return nil, err
	}

	return json.Marshal(result)
}

// HandleForcePoll is the message handler for the force-poll subject.
func (s *NotetakerHandler) HandleForcePoll(ctx context.Context, msg domain.Message) ([]byte, error) {
	summary, err := s.pollerService.ForceTick(ctx)
	if err != nil {
		return nil, err
	}

	return json.Marshal(summary)
}

// HandlePollerStatus is the message handler for the poller-status subject.
func (s *NotetakerHandler) HandlePollerStatus(ctx context.Context, msg domain.Message) ([]byte, error) {
	return json.Marshal(s.pollerService.Status())
}
