// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package models

import "time"

// Bot is the provider's view of a recording job. Only the fields the
// reconciliation logic depends on are modeled; everything else the
// provider returns is ignored.
type Bot struct {
	ID            string            `json:"id"`
	MeetingURL    string            `json:"meeting_url"`
	BotName       string            `json:"bot_name"`
	Status        BotStatus         `json:"status"`
	StatusChanges []BotStatusChange `json:"status_changes"`
	Recordings    []BotRecording    `json:"recordings"`
	JoinAt        *time.Time        `json:"join_at,omitempty"`
}

// BotStatus is the provider's top-level status of a bot.
type BotStatus struct {
	Code string `json:"code"`
}

// BotStatusChange is one entry of the bot's ordered status history.
// The history is more authoritative than the top-level status field:
// some provider versions update one without the other.
type BotStatusChange struct {
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// BotRecording is a recording artifact attached to a bot, optionally
// carrying transcript availability metadata.
type BotRecording struct {
	ID         string                   `json:"id"`
	Transcript *RecordingTranscriptMeta `json:"transcript,omitempty"`
}

// RecordingTranscriptMeta describes transcript availability for one recording.
type RecordingTranscriptMeta struct {
	Status      BotStatus `json:"status"`
	DownloadURL string    `json:"download_url"`
}

// EffectiveStatus returns the bot's effective status code, preferring the
// last entry of the status-change history over the top-level status field.
func (b *Bot) EffectiveStatus() string {
	if b == nil {
		return ""
	}
	if n := len(b.StatusChanges); n > 0 {
		return b.StatusChanges[n-1].Code
	}
	return b.Status.Code
}

// TranscriptDownloadURL returns the first non-empty transcript download
// URL across the bot's recordings, or empty when none is exposed yet.
func (b *Bot) TranscriptDownloadURL() string {
	if b == nil {
		return ""
	}
	for _, rec := range b.Recordings {
		if rec.Transcript != nil && rec.Transcript.DownloadURL != "" {
			return rec.Transcript.DownloadURL
		}
	}
	return ""
}

// HasTranscriptArtifact reports whether any recording advertises a
// finished transcript: either its transcript sub-status is done or it
// exposes a non-empty download URL.
func (b *Bot) HasTranscriptArtifact() bool {
	if b == nil {
		return false
	}
	for _, rec := range b.Recordings {
		if rec.Transcript == nil {
			continue
		}
		if rec.Transcript.Status.Code == JobStatusDone || rec.Transcript.DownloadURL != "" {
			return true
		}
	}
	return false
}

// CreateBotRequest is the request to schedule a bot on a meeting.
type CreateBotRequest struct {
	MeetingURL string     `json:"meeting_url"`
	BotName    string     `json:"bot_name"`
	JoinAt     *time.Time `json:"join_at,omitempty"`
}
