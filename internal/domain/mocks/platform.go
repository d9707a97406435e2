// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/notewell/notetaker-service/internal/domain"
)

// MockPlatformProvider implements PlatformProvider for testing
type MockPlatformProvider struct {
	mock.Mock
}

func (m *MockPlatformProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPlatformProvider) MatchesHost(host string) bool {
	args := m.Called(host)
	return args.Bool(0)
}

func (m *MockPlatformProvider) CleanURL(rawURL string) (string, error) {
	args := m.Called(rawURL)
	return args.String(0), args.Error(1)
}

// MockPlatformRegistry implements PlatformRegistry for testing
type MockPlatformRegistry struct {
	mock.Mock
}

func (m *MockPlatformRegistry) GetProvider(platform string) (domain.PlatformProvider, error) {
	args := m.Called(platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.PlatformProvider), args.Error(1)
}

func (m *MockPlatformRegistry) DetectProvider(rawURL string) (domain.PlatformProvider, error) {
	args := m.Called(rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.PlatformProvider), args.Error(1)
}

func (m *MockPlatformRegistry) RegisterProvider(platform string, provider domain.PlatformProvider) {
	m.Called(platform, provider)
}
