// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/notewell/notetaker-service/internal/domain"
	"github.com/notewell/notetaker-service/internal/logging"
)

// rawTranscriptEnvelope is the archived form of a provider payload.
// msgpack keeps the stored blob compact; the payload itself stays the
// exact bytes the provider returned.
type rawTranscriptEnvelope struct {
	MeetingUID string    `msgpack:"meeting_uid"`
	Payload    []byte    `msgpack:"payload"`
	ArchivedAt time.Time `msgpack:"archived_at"`
}

// NatsRawTranscriptArchive stores raw provider transcript payloads in a
// NATS KV bucket, keyed by meeting UID. The archive lets transcripts be
// renormalized later without refetching from the provider.
type NatsRawTranscriptArchive struct {
	kvStore    INatsKeyValue
	keyBuilder *KeyBuilder
}

// NewNatsRawTranscriptArchive creates a new raw transcript archive.
func NewNatsRawTranscriptArchive(kvStore INatsKeyValue) *NatsRawTranscriptArchive {
	return &NatsRawTranscriptArchive{
		kvStore:    kvStore,
		keyBuilder: NewKeyBuilder(""),
	}
}

// IsReady checks if the archive is ready for use
func (r *NatsRawTranscriptArchive) IsReady() bool {
	return r.kvStore != nil
}

// Put archives the raw payload for a meeting. Re-archiving the same
// meeting overwrites the previous payload.
func (r *NatsRawTranscriptArchive) Put(ctx context.Context, meetingUID string, payload json.RawMessage) error {
	if !r.IsReady() {
		return domain.NewUnavailableError("raw transcript archive is not available")
	}

	envelope := rawTranscriptEnvelope{
		MeetingUID: meetingUID,
		Payload:    payload,
		ArchivedAt: time.Now().UTC(),
	}

	data, err := msgpack.Marshal(&envelope)
	if err != nil {
		slog.ErrorContext(ctx, "error marshaling raw transcript envelope",
			logging.ErrKey, err, "meeting_uid", meetingUID)
		return domain.NewInternalError("failed to marshal raw transcript", err)
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixTranscript, meetingUID)
	if _, err := r.kvStore.Put(ctx, key, data); err != nil {
		slog.ErrorContext(ctx, "error archiving raw transcript in NATS KV",
			logging.ErrKey, err, "meeting_uid", meetingUID)
		return domain.NewInternalError("failed to archive raw transcript", err)
	}

	return nil
}

// Get retrieves the archived raw payload for a meeting.
func (r *NatsRawTranscriptArchive) Get(ctx context.Context, meetingUID string) (json.RawMessage, error) {
	if !r.IsReady() {
		return nil, domain.NewUnavailableError("raw transcript archive is not available")
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixTranscript, meetingUID)
	entry, err := r.kvStore.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, domain.NewNotFoundError(
				fmt.Sprintf("raw transcript for meeting '%s' not found", meetingUID), err)
		}
		slog.ErrorContext(ctx, "error getting raw transcript from NATS KV",
			logging.ErrKey, err, "meeting_uid", meetingUID)
		return nil, domain.NewInternalError("failed to retrieve raw transcript", err)
	}

	var envelope rawTranscriptEnvelope
	if err := msgpack.Unmarshal(entry.Value(), &envelope); err != nil {
		slog.ErrorContext(ctx, "error unmarshaling raw transcript envelope",
			logging.ErrKey, err, "meeting_uid", meetingUID)
		return nil, domain.NewInternalError("failed to unmarshal raw transcript", err)
	}

	return json.RawMessage(envelope.Payload), nil
}
