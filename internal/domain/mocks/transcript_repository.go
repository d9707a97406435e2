// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/notewell/notetaker-service/internal/domain/models"
)

// MockTranscriptRepository implements TranscriptRepository for testing
type MockTranscriptRepository struct {
	mock.Mock
}

func (m *MockTranscriptRepository) CreateOnce(ctx context.Context, transcript *models.Transcript) error {
	args := m.Called(ctx, transcript)
	return args.Error(0)
}

func (m *MockTranscriptRepository) Exists(ctx context.Context, meetingUID string) (bool, error) {
	args := m.Called(ctx, meetingUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTranscriptRepository) GetByMeeting(ctx context.Context, meetingUID string) (*models.Transcript, error) {
	args := m.Called(ctx, meetingUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transcript), args.Error(1)
}

// MockRawTranscriptArchive implements RawTranscriptArchive for testing
type MockRawTranscriptArchive struct {
	mock.Mock
}

func (m *MockRawTranscriptArchive) Put(ctx context.Context, meetingUID string, payload json.RawMessage) error {
	args := m.Called(ctx, meetingUID, payload)
	return args.Error(0)
}

func (m *MockRawTranscriptArchive) Get(ctx context.Context, meetingUID string) (json.RawMessage, error) {
	args := m.Called(ctx, meetingUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}
