// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package platform

import (
	"strings"

	"github.com/notewell/notetaker-service/internal/utils"
)

// Platform names as stored on the meeting record.
const (
	PlatformZoom       = "zoom"
	PlatformGoogleMeet = "google_meet"
	PlatformTeams      = "teams"
)

// ZoomProvider canonicalizes Zoom meeting URLs. The pwd query parameter
// is part of the join credentials and is kept; everything else is noise.
type ZoomProvider struct{}

// NewZoomProvider creates a Zoom platform provider.
func NewZoomProvider() *ZoomProvider {
	return &ZoomProvider{}
}

// Name returns the platform identifier.
func (p *ZoomProvider) Name() string {
	return PlatformZoom
}

// MatchesHost reports whether the host belongs to Zoom.
func (p *ZoomProvider) MatchesHost(host string) bool {
	return host == "zoom.us" || strings.HasSuffix(host, ".zoom.us")
}

// CleanURL canonicalizes a Zoom meeting URL.
func (p *ZoomProvider) CleanURL(rawURL string) (string, error) {
	return utils.CanonicalizeURL(rawURL, "pwd")
}

// GoogleMeetProvider canonicalizes Google Meet URLs. Meet puts nothing
// join-relevant in the query string, so all parameters are dropped.
type GoogleMeetProvider struct{}

// NewGoogleMeetProvider creates a Google Meet platform provider.
func NewGoogleMeetProvider() *GoogleMeetProvider {
	return &GoogleMeetProvider{}
}

// Name returns the platform identifier.
func (p *GoogleMeetProvider) Name() string {
	return PlatformGoogleMeet
}

// MatchesHost reports whether the host belongs to Google Meet.
func (p *GoogleMeetProvider) MatchesHost(host string) bool {
	return host == "meet.google.com"
}

// CleanURL canonicalizes a Google Meet URL.
func (p *GoogleMeetProvider) CleanURL(rawURL string) (string, error) {
	return utils.CanonicalizeURL(rawURL)
}

// TeamsProvider canonicalizes Microsoft Teams meetup-join URLs. The
// context parameter carries the tenant and organizer ids that route the
// join, so it survives cleaning.
type TeamsProvider struct{}

// NewTeamsProvider creates a Microsoft Teams platform provider.
func NewTeamsProvider() *TeamsProvider {
	return &TeamsProvider{}
}

// Name returns the platform identifier.
func (p *TeamsProvider) Name() string {
	return PlatformTeams
}

// MatchesHost reports whether the host belongs to Microsoft Teams.
func (p *TeamsProvider) MatchesHost(host string) bool {
	return host == "teams.microsoft.com" || host == "teams.live.com"
}

// CleanURL canonicalizes a Teams meeting URL.
func (p *TeamsProvider) CleanURL(rawURL string) (string, error) {
	return utils.CanonicalizeURL(rawURL, "context")
}
