// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/notewell/notetaker-service/internal/domain/models"
)

// NatsTranscriptRepository is the NATS KV store repository for
// normalized transcripts. The transcript key is the meeting UID, which
// together with create-only inserts enforces at most one persisted
// transcript per meeting.
type NatsTranscriptRepository struct {
	*NatsBaseRepository[models.Transcript]
	keyBuilder *KeyBuilder
}

// NewNatsTranscriptRepository creates a new NATS KV store repository for transcripts.
func NewNatsTranscriptRepository(kvStore INatsKeyValue) *NatsTranscriptRepository {
	return &NatsTranscriptRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Transcript](kvStore, "transcript"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

// CreateOnce inserts the transcript if and only if no transcript exists
// for the meeting yet. A concurrent insert surfaces as a conflict error
// which callers treat as a benign duplicate.
func (r *NatsTranscriptRepository) CreateOnce(ctx context.Context, transcript *models.Transcript) error {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixTranscript, transcript.MeetingUID)
	return r.NatsBaseRepository.CreateOnly(ctx, key, transcript)
}

// Exists checks if a transcript exists for the meeting
func (r *NatsTranscriptRepository) Exists(ctx context.Context, meetingUID string) (bool, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixTranscript, meetingUID)
	return r.NatsBaseRepository.Exists(ctx, key)
}

// GetByMeeting retrieves the transcript persisted for a meeting
func (r *NatsTranscriptRepository) GetByMeeting(ctx context.Context, meetingUID string) (*models.Transcript, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixTranscript, meetingUID)
	return r.NatsBaseRepository.Get(ctx, key)
}
