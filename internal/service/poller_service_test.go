// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/notewell/notetaker-service/internal/domain"
	"github.com/notewell/notetaker-service/internal/domain/mocks"
	"github.com/notewell/notetaker-service/internal/domain/models"
)

type pollerServiceMocks struct {
	meetingRepo    *mocks.MockMeetingRepository
	jobRepo        *mocks.MockRecordingJobRepository
	recorder       *mocks.MockRecorderClient
	transcriptRepo *mocks.MockTranscriptRepository
	rawArchive     *mocks.MockRawTranscriptArchive
	messageBuilder *mocks.MockMessageBuilder
}

func newPollerService() (*PollerService, *pollerServiceMocks) {
	m := &pollerServiceMocks{
		meetingRepo:    &mocks.MockMeetingRepository{},
		jobRepo:        &mocks.MockRecordingJobRepository{},
		recorder:       &mocks.MockRecorderClient{},
		transcriptRepo: &mocks.MockTranscriptRepository{},
		rawArchive:     &mocks.MockRawTranscriptArchive{},
		messageBuilder: &mocks.MockMessageBuilder{},
	}

	svc := NewPollerService(
		m.meetingRepo,
		m.jobRepo,
		m.recorder,
		NewReadinessService(m.recorder),
		NewTranscriptService(m.transcriptRepo, m.rawArchive, m.messageBuilder),
		time.Hour,
	)
	return svc, m
}

func pollableMeeting() *models.Meeting {
	return &models.Meeting{
		UID:      "meeting-1",
		OwnerUID: "owner-1",
		JobUID:   "bot-77",
		Status:   models.MeetingStatusInProgress,
	}
}

func pollableJob() *models.RecordingJob {
	return &models.RecordingJob{
		UID:        "bot-77",
		OwnerUID:   "owner-1",
		MeetingUID: "meeting-1",
		Status:     models.JobStatusInCall,
	}
}

// A bot that ended the call but has produced no recordings yet must
// complete the meeting without creating a transcript row.
func TestPollerTickCallEndedWithoutRecordings(t *testing.T) {
	svc, m := newPollerService()
	meeting := pollableMeeting()

	bot := &models.Bot{
		ID: "bot-77",
		StatusChanges: []models.BotStatusChange{
			{Code: "starting"},
			{Code: models.JobStatusJoining},
			{Code: models.JobStatusCallEnded},
		},
	}

	m.meetingRepo.On("ListPollable", mock.Anything).Return([]*models.Meeting{meeting}, nil)
	m.transcriptRepo.On("Exists", mock.Anything, "meeting-1").Return(false, nil)
	m.recorder.On("GetBot", mock.Anything, "bot-77").Return(bot, nil)
	m.jobRepo.On("GetWithRevision", mock.Anything, "bot-77").Return(pollableJob(), uint64(1), nil)
	m.jobRepo.On("Update", mock.Anything, mock.MatchedBy(func(job *models.RecordingJob) bool {
		return job.Status == models.JobStatusCallEnded
	}), uint64(1)).Return(nil)
	// Terminal without artifacts triggers the speculative fetch.
	m.recorder.On("GetBotTranscript", mock.Anything, "bot-77").
		Return(nil, domain.NewNotFoundError("no transcript yet"))
	m.meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(meeting, uint64(5), nil)
	m.meetingRepo.On("Update", mock.Anything, mock.MatchedBy(func(updated *models.Meeting) bool {
		return updated.Status == models.MeetingStatusCompleted
	}), uint64(5)).Return(nil)

	summary, err := svc.ForceTick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 0, summary.Errored)
	m.transcriptRepo.AssertNotCalled(t, "CreateOnce", mock.Anything, mock.Anything)
}

// Once the same job exposes a finished recording, the next tick persists
// exactly one transcript, and the tick after that skips the meeting.
func TestPollerTickPersistsTranscriptThenSkips(t *testing.T) {
	svc, m := newPollerService()
	meeting := pollableMeeting()
	meeting.Status = models.MeetingStatusCompleted

	raw := json.RawMessage(`[
		{"participant": {"id": 7, "name": "Grace"}, "words": [
			{"text": "Hi", "start_time": 0, "end_time": 0.5}
		]}
	]`)

	bot := &models.Bot{
		ID: "bot-77",
		StatusChanges: []models.BotStatusChange{
			{Code: models.JobStatusCallEnded},
		},
		Recordings: []models.BotRecording{
			{ID: "rec-1", Transcript: &models.RecordingTranscriptMeta{
				Status:      models.BotStatus{Code: models.JobStatusDone},
				DownloadURL: "https://cdn.example.com/t/rec-1",
			}},
		},
	}

	m.meetingRepo.On("ListPollable", mock.Anything).Return([]*models.Meeting{meeting}, nil)
	m.transcriptRepo.On("Exists", mock.Anything, "meeting-1").Return(false, nil).Once()
	m.recorder.On("GetBot", mock.Anything, "bot-77").Return(bot, nil)
	m.jobRepo.On("GetWithRevision", mock.Anything, "bot-77").Return(pollableJob(), uint64(2), nil)
	m.jobRepo.On("Update", mock.Anything, mock.Anything, uint64(2)).Return(nil)
	m.meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(meeting, uint64(8), nil)
	m.recorder.On("GetRawTranscript", mock.Anything, "https://cdn.example.com/t/rec-1").Return(raw, nil)
	m.rawArchive.On("Put", mock.Anything, "meeting-1", raw).Return(nil)
	m.transcriptRepo.On("CreateOnce", mock.Anything, mock.MatchedBy(func(tr *models.Transcript) bool {
		return tr.MeetingUID == "meeting-1" && tr.Text == "Hi" && tr.DurationMinutes == 0
	})).Return(nil).Once()
	m.messageBuilder.On("SendIndexTranscript", mock.Anything, models.ActionCreated, mock.Anything).Return(nil)
	m.messageBuilder.On("SendTranscriptReady", mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.ForceTick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Completed)

	// Next tick: the stored transcript short-circuits the meeting.
	m.transcriptRepo.On("Exists", mock.Anything, "meeting-1").Return(true, nil).Once()

	summary, err = svc.ForceTick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	m.transcriptRepo.AssertNumberOfCalls(t, "CreateOnce", 1)
}

// Two passes racing on the same meeting must produce one transcript row:
// the loser's insert conflicts and is treated as benign.
func TestPollerTickExactlyOnceUnderRacingPasses(t *testing.T) {
	svc, m := newPollerService()
	meeting := pollableMeeting()

	raw := json.RawMessage(`"raced transcript"`)
	bot := &models.Bot{
		ID:            "bot-77",
		StatusChanges: []models.BotStatusChange{{Code: models.JobStatusDone}},
		Recordings: []models.BotRecording{
			{ID: "rec-1", Transcript: &models.RecordingTranscriptMeta{
				DownloadURL: "https://cdn.example.com/t/rec-1",
			}},
		},
	}

	m.meetingRepo.On("ListPollable", mock.Anything).Return([]*models.Meeting{meeting}, nil)
	// Both passes observe "no transcript yet".
	m.transcriptRepo.On("Exists", mock.Anything, "meeting-1").Return(false, nil)
	m.recorder.On("GetBot", mock.Anything, "bot-77").Return(bot, nil)
	m.jobRepo.On("GetWithRevision", mock.Anything, "bot-77").Return(pollableJob(), uint64(1), nil)
	m.jobRepo.On("Update", mock.Anything, mock.Anything, uint64(1)).Return(nil)
	m.meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(meeting, uint64(3), nil)
	m.meetingRepo.On("Update", mock.Anything, mock.Anything, uint64(3)).Return(nil)
	m.recorder.On("GetRawTranscript", mock.Anything, "https://cdn.example.com/t/rec-1").Return(raw, nil)
	m.rawArchive.On("Put", mock.Anything, "meeting-1", raw).Return(nil)
	m.transcriptRepo.On("CreateOnce", mock.Anything, mock.Anything).Return(nil).Once()
	m.transcriptRepo.On("CreateOnce", mock.Anything, mock.Anything).
		Return(domain.NewConflictError("transcript already exists")).Once()
	m.transcriptRepo.On("GetByMeeting", mock.Anything, "meeting-1").
		Return(&models.Transcript{MeetingUID: "meeting-1", Text: "raced transcript"}, nil)
	m.messageBuilder.On("SendIndexTranscript", mock.Anything, models.ActionCreated, mock.Anything).Return(nil)
	m.messageBuilder.On("SendTranscriptReady", mock.Anything, mock.Anything).Return(nil)

	first, err := svc.ForceTick(context.Background())
	require.NoError(t, err)
	second, err := svc.ForceTick(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, first.Completed)
	assert.Equal(t, 1, second.Completed)
	m.transcriptRepo.AssertNumberOfCalls(t, "CreateOnce", 2)
	// The ready event fires only for the pass that actually persisted.
	m.messageBuilder.AssertNumberOfCalls(t, "SendTranscriptReady", 1)
}

func TestPollerTickFailedBotMovesMeetingToError(t *testing.T) {
	svc, m := newPollerService()
	meeting := pollableMeeting()

	bot := &models.Bot{
		ID:            "bot-77",
		StatusChanges: []models.BotStatusChange{{Code: models.JobStatusFatal}},
	}

	m.meetingRepo.On("ListPollable", mock.Anything).Return([]*models.Meeting{meeting}, nil)
	m.transcriptRepo.On("Exists", mock.Anything, "meeting-1").Return(false, nil)
	m.recorder.On("GetBot", mock.Anything, "bot-77").Return(bot, nil)
	m.jobRepo.On("GetWithRevision", mock.Anything, "bot-77").Return(pollableJob(), uint64(1), nil)
	m.jobRepo.On("Update", mock.Anything, mock.Anything, uint64(1)).Return(nil)
	m.meetingRepo.On("GetWithRevision", mock.Anything, "meeting-1").Return(meeting, uint64(2), nil)
	m.meetingRepo.On("Update", mock.Anything, mock.MatchedBy(func(updated *models.Meeting) bool {
		return updated.Status == models.MeetingStatusError
	}), uint64(2)).Return(nil)

	summary, err := svc.ForceTick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Errored)
	m.transcriptRepo.AssertNotCalled(t, "CreateOnce", mock.Anything, mock.Anything)
}

func TestPollerTickPerMeetingFailureDoesNotAbortTick(t *testing.T) {
	svc, m := newPollerService()

	broken := pollableMeeting()
	healthy := &models.Meeting{
		UID:      "meeting-2",
		OwnerUID: "owner-1",
		JobUID:   "bot-88",
		Status:   models.MeetingStatusInProgress,
	}

	m.meetingRepo.On("ListPollable", mock.Anything).
		Return([]*models.Meeting{broken, healthy}, nil)

	m.transcriptRepo.On("Exists", mock.Anything, "meeting-1").Return(false, nil)
	m.recorder.On("GetBot", mock.Anything, "bot-77").
		Return(nil, domain.NewUnavailableError("provider down"))

	m.transcriptRepo.On("Exists", mock.Anything, "meeting-2").Return(false, nil)
	m.recorder.On("GetBot", mock.Anything, "bot-88").Return(&models.Bot{
		ID:            "bot-88",
		StatusChanges: []models.BotStatusChange{{Code: models.JobStatusInCall}},
	}, nil)
	m.jobRepo.On("GetWithRevision", mock.Anything, "bot-88").Return(&models.RecordingJob{
		UID: "bot-88", Status: models.JobStatusInCall,
	}, uint64(1), nil)

	summary, err := svc.ForceTick(context.Background())

	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, 1, summary.Errored)
	assert.Equal(t, 1, summary.Processing)
	assert.Equal(t, OutcomeErrored, summary.Results[0].Outcome)
	assert.NotEmpty(t, summary.Results[0].Error)
	assert.Equal(t, OutcomeProcessing, summary.Results[1].Outcome)
}

func TestPollerTickProviderTimeoutMeansProcessing(t *testing.T) {
	svc, m := newPollerService()
	meeting := pollableMeeting()

	m.meetingRepo.On("ListPollable", mock.Anything).Return([]*models.Meeting{meeting}, nil)
	m.transcriptRepo.On("Exists", mock.Anything, "meeting-1").Return(false, nil)
	m.recorder.On("GetBot", mock.Anything, "bot-77").
		Return(nil, domain.NewTimeoutError("request timed out"))

	summary, err := svc.ForceTick(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processing)
	assert.Equal(t, 0, summary.Errored)
}

func TestPollerStartStopIdempotent(t *testing.T) {
	svc, m := newPollerService()

	m.meetingRepo.On("ListPollable", mock.Anything).Return([]*models.Meeting{}, nil)

	ctx := context.Background()
	svc.Start(ctx)
	svc.Start(ctx)
	assert.True(t, svc.Status().Running)

	svc.Stop(ctx)
	svc.Stop(ctx)
	assert.False(t, svc.Status().Running)
}

func TestPollerCheckMeeting(t *testing.T) {
	svc, m := newPollerService()
	meeting := pollableMeeting()

	bot := &models.Bot{
		ID:            "bot-77",
		StatusChanges: []models.BotStatusChange{{Code: models.JobStatusInCall}},
	}

	m.meetingRepo.On("Get", mock.Anything, "meeting-1").Return(meeting, nil)
	m.transcriptRepo.On("Exists", mock.Anything, "meeting-1").Return(false, nil)
	m.recorder.On("GetBot", mock.Anything, "bot-77").Return(bot, nil)
	m.jobRepo.On("GetWithRevision", mock.Anything, "bot-77").Return(pollableJob(), uint64(1), nil)

	result, err := svc.CheckMeeting(context.Background(), "meeting-1")

	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessing, result.Outcome)

	_, err = svc.CheckMeeting(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestPollerCheckMeetingWithoutJobIsSkipped(t *testing.T) {
	svc, m := newPollerService()
	meeting := &models.Meeting{UID: "meeting-1", Status: models.MeetingStatusScheduled}

	m.meetingRepo.On("Get", mock.Anything, "meeting-1").Return(meeting, nil)

	result, err := svc.CheckMeeting(context.Background(), "meeting-1")

	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, result.Outcome)
}
