// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/notewell/notetaker-service/internal/domain/models"
)

// MockRecorderClient implements RecorderClient for testing
type MockRecorderClient struct {
	mock.Mock
}

func (m *MockRecorderClient) CreateBot(ctx context.Context, request *models.CreateBotRequest) (*models.Bot, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bot), args.Error(1)
}

func (m *MockRecorderClient) GetBot(ctx context.Context, botID string) (*models.Bot, error) {
	args := m.Called(ctx, botID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bot), args.Error(1)
}

func (m *MockRecorderClient) GetRawTranscript(ctx context.Context, downloadURL string) (json.RawMessage, error) {
	args := m.Called(ctx, downloadURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockRecorderClient) GetBotTranscript(ctx context.Context, botID string) (json.RawMessage, error) {
	args := m.Called(ctx, botID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}
