// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

// Package platform holds the per-platform meeting URL knowledge: which
// hosts belong to which provider and how their URLs canonicalize.
package platform

import (
	"fmt"
	"sync"

	"github.com/notewell/notetaker-service/internal/domain"
	"github.com/notewell/notetaker-service/internal/utils"
)

// Registry implements the PlatformRegistry interface
type Registry struct {
	providers map[string]domain.PlatformProvider
	mu        sync.RWMutex
}

// NewRegistry creates a new platform registry
func NewRegistry() domain.PlatformRegistry {
	return &Registry{
		providers: make(map[string]domain.PlatformProvider),
	}
}

// NewDefaultRegistry creates a registry with all supported platform
// providers registered.
func NewDefaultRegistry() domain.PlatformRegistry {
	registry := NewRegistry()
	for _, provider := range []domain.PlatformProvider{
		NewZoomProvider(),
		NewGoogleMeetProvider(),
		NewTeamsProvider(),
	} {
		registry.RegisterProvider(provider.Name(), provider)
	}
	return registry
}

// GetProvider returns the platform provider for the specified platform name
func (r *Registry) GetProvider(platform string) (domain.PlatformProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[platform]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.NewNotFoundError("platform provider not found"), platform)
	}

	return provider, nil
}

// DetectProvider resolves the provider owning the URL's host.
func (r *Registry) DetectProvider(rawURL string) (domain.PlatformProvider, error) {
	host := utils.ExtractHost(rawURL)
	if host == "" {
		return nil, domain.NewValidationError("meeting URL is not a valid URL")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, provider := range r.providers {
		if provider.MatchesHost(host) {
			return provider, nil
		}
	}

	return nil, domain.NewValidationError(fmt.Sprintf("unsupported meeting platform: %s", host))
}

// RegisterProvider registers a platform provider
func (r *Registry) RegisterProvider(platform string, provider domain.PlatformProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[platform] = provider
}
