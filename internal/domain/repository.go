// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"encoding/json"

	"github.com/notewell/notetaker-service/internal/domain/models"
)

// MeetingRepository defines the interface for meeting storage operations.
// This interface can be implemented by different storage backends (NATS, PostgreSQL, etc.)
type MeetingRepository interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	Exists(ctx context.Context, meetingUID string) (bool, error)
	Get(ctx context.Context, meetingUID string) (*models.Meeting, error)
	GetWithRevision(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error)
	Update(ctx context.Context, meeting *models.Meeting, revision uint64) error
	Delete(ctx context.Context, meetingUID string, revision uint64) error

	// ListPollable returns all meetings with a linked job whose status has
	// not reached the error sink. This is the polling orchestrator's
	// candidate query.
	ListPollable(ctx context.Context) ([]*models.Meeting, error)
	ListAll(ctx context.Context) ([]*models.Meeting, error)
}

// RecordingJobRepository defines the interface for recording job storage.
// Jobs are stored by provider-issued UID and indexed by their
// (owner, cleaned URL) dedup key.
type RecordingJobRepository interface {
	// Create persists a job row and its dedup index entry. It returns a
	// conflict error if another job already holds the dedup key.
	Create(ctx context.Context, job *models.RecordingJob) error
	Get(ctx context.Context, jobUID string) (*models.RecordingJob, error)
	GetWithRevision(ctx context.Context, jobUID string) (*models.RecordingJob, uint64, error)
	Update(ctx context.Context, job *models.RecordingJob, revision uint64) error

	// GetByDedupKey resolves the job currently holding the
	// (owner, cleaned URL) key, or a not-found error.
	GetByDedupKey(ctx context.Context, ownerUID, cleanedURL string) (*models.RecordingJob, error)

	// Release removes the job row and frees its dedup key so a fresh job
	// can be created for the same meeting URL.
	Release(ctx context.Context, job *models.RecordingJob) error
}

// TranscriptRepository defines the interface for transcript storage.
// Transcripts are keyed by meeting UID, which is what enforces the
// at-most-one-transcript-per-meeting invariant.
type TranscriptRepository interface {
	// CreateOnce inserts the transcript if and only if no transcript
	// exists for the meeting yet. A concurrent insert surfaces as a
	// conflict error which callers treat as a benign duplicate.
	CreateOnce(ctx context.Context, transcript *models.Transcript) error
	Exists(ctx context.Context, meetingUID string) (bool, error)
	GetByMeeting(ctx context.Context, meetingUID string) (*models.Transcript, error)
}

// RawTranscriptArchive stores the raw provider payload that produced a
// transcript, keyed by meeting UID, so transcripts can be renormalized
// if a decoding bug is found later.
type RawTranscriptArchive interface {
	Put(ctx context.Context, meetingUID string, payload json.RawMessage) error
	Get(ctx context.Context, meetingUID string) (json.RawMessage, error)
}
