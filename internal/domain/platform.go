// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package domain

// PlatformProvider defines the per-platform knowledge the service needs
// about a meeting platform: whether a host belongs to it and how to
// canonicalize its meeting URLs for deduplication.
type PlatformProvider interface {
	// Name returns the platform identifier (e.g. "zoom", "google_meet").
	Name() string

	// MatchesHost reports whether the given URL host belongs to this platform.
	MatchesHost(host string) bool

	// CleanURL canonicalizes a meeting URL: volatile/tracking query
	// parameters are stripped while parameters required to join are kept.
	// Cleaning is idempotent: CleanURL(CleanURL(u)) == CleanURL(u).
	CleanURL(rawURL string) (string, error)
}

// PlatformRegistry manages platform providers
type PlatformRegistry interface {
	// GetProvider returns the platform provider for the specified platform name
	GetProvider(platform string) (PlatformProvider, error)

	// DetectProvider resolves the platform provider owning the URL's
	// host, or a validation error when no provider claims it.
	DetectProvider(rawURL string) (PlatformProvider, error)

	// RegisterProvider registers a platform provider
	RegisterProvider(platform string, provider PlatformProvider)
}
