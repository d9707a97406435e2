// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/notewell/notetaker-service/internal/domain/models"
)

// MockRecordingJobRepository implements RecordingJobRepository for testing
type MockRecordingJobRepository struct {
	mock.Mock
}

func (m *MockRecordingJobRepository) Create(ctx context.Context, job *models.RecordingJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockRecordingJobRepository) Get(ctx context.Context, jobUID string) (*models.RecordingJob, error) {
	args := m.Called(ctx, jobUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecordingJob), args.Error(1)
}

func (m *MockRecordingJobRepository) GetWithRevision(ctx context.Context, jobUID string) (*models.RecordingJob, uint64, error) {
	args := m.Called(ctx, jobUID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.RecordingJob), args.Get(1).(uint64), args.Error(2)
}

func (m *MockRecordingJobRepository) Update(ctx context.Context, job *models.RecordingJob, revision uint64) error {
	args := m.Called(ctx, job, revision)
	return args.Error(0)
}

func (m *MockRecordingJobRepository) GetByDedupKey(ctx context.Context, ownerUID, cleanedURL string) (*models.RecordingJob, error) {
	args := m.Called(ctx, ownerUID, cleanedURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecordingJob), args.Error(1)
}

func (m *MockRecordingJobRepository) Release(ctx context.Context, job *models.RecordingJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}
