// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"log/slog"

	"github.com/notewell/notetaker-service/internal/domain"
	"github.com/notewell/notetaker-service/internal/domain/models"
	"github.com/notewell/notetaker-service/internal/logging"
)

// NatsRecordingJobRepository is the NATS KV store repository for
// recording jobs. Jobs are stored by provider-issued UID and indexed by
// their (owner, cleaned URL) dedup key. The index claim uses KV create
// semantics, so two concurrent job creations for the same meeting URL
// cannot both win.
type NatsRecordingJobRepository struct {
	*NatsBaseRepository[models.RecordingJob]
	keyBuilder *KeyBuilder
}

// NewNatsRecordingJobRepository creates a new NATS KV store repository for recording jobs.
func NewNatsRecordingJobRepository(kvStore INatsKeyValue) *NatsRecordingJobRepository {
	return &NatsRecordingJobRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.RecordingJob](kvStore, "recording job"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

func (r *NatsRecordingJobRepository) dedupIndexKey(ownerUID, cleanedURL string) string {
	// The cleaned URL contains slashes, so each part is encoded as one
	// opaque segment rather than split on '/'.
	return r.keyBuilder.EncodeSegments(KeyPrefixIndex, KeyPrefixIndexURL, ownerUID, cleanedURL)
}

// Create persists a job row and its dedup index entry. The index key is
// claimed first: a conflict there means another job already owns the
// (owner, cleaned URL) pair and the new row is never written.
func (r *NatsRecordingJobRepository) Create(ctx context.Context, job *models.RecordingJob) error {
	indexKey := r.dedupIndexKey(job.OwnerUID, job.CleanedURL)
	if err := r.ClaimIndex(ctx, indexKey, job.UID); err != nil {
		return err
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixJob, job.UID)
	if err := r.NatsBaseRepository.CreateOnly(ctx, key, job); err != nil {
		// Free the claimed index so a retry is not locked out.
		if cleanupErr := r.DeleteIndex(ctx, indexKey); cleanupErr != nil {
			slog.ErrorContext(ctx, "failed to release dedup index after create failure",
				logging.ErrKey, cleanupErr, "job_uid", job.UID)
		}
		return err
	}

	return nil
}

// Get retrieves a recording job by UID
func (r *NatsRecordingJobRepository) Get(ctx context.Context, jobUID string) (*models.RecordingJob, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixJob, jobUID)
	return r.NatsBaseRepository.Get(ctx, key)
}

// GetWithRevision retrieves a recording job with its revision by UID
func (r *NatsRecordingJobRepository) GetWithRevision(ctx context.Context, jobUID string) (*models.RecordingJob, uint64, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixJob, jobUID)
	return r.NatsBaseRepository.GetWithRevision(ctx, key)
}

// Update updates an existing recording job with optimistic concurrency control
func (r *NatsRecordingJobRepository) Update(ctx context.Context, job *models.RecordingJob, revision uint64) error {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixJob, job.UID)
	return r.NatsBaseRepository.Update(ctx, key, job, revision)
}

// GetByDedupKey resolves the job currently holding the (owner, cleaned URL) key.
func (r *NatsRecordingJobRepository) GetByDedupKey(ctx context.Context, ownerUID, cleanedURL string) (*models.RecordingJob, error) {
	jobUID, err := r.GetIndex(ctx, r.dedupIndexKey(ownerUID, cleanedURL))
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, jobUID)
}

// Release removes the job row and frees its dedup key so a fresh job
// can be created for the same meeting URL.
func (r *NatsRecordingJobRepository) Release(ctx context.Context, job *models.RecordingJob) error {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixJob, job.UID)
	if err := r.DeleteWithoutRevision(ctx, key); err != nil {
		if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
			return err
		}
	}

	indexKey := r.dedupIndexKey(job.OwnerUID, job.CleanedURL)
	if err := r.DeleteIndex(ctx, indexKey); err != nil {
		slog.WarnContext(ctx, "failed to release dedup index",
			logging.ErrKey, err, "job_uid", job.UID)
		return err
	}

	return nil
}
