// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package models

import (
	"testing"
	"time"
)

func TestBot_EffectiveStatus(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name     string
		bot      *Bot
		expected string
	}{
		{
			name:     "nil bot",
			bot:      nil,
			expected: "",
		},
		{
			name:     "top-level status only",
			bot:      &Bot{Status: BotStatus{Code: JobStatusReady}},
			expected: JobStatusReady,
		},
		{
			name: "history outranks top-level status",
			bot: &Bot{
				Status: BotStatus{Code: JobStatusInCall},
				StatusChanges: []BotStatusChange{
					{Code: JobStatusJoining, CreatedAt: now.Add(-2 * time.Minute)},
					{Code: JobStatusInCall, CreatedAt: now.Add(-time.Minute)},
					{Code: JobStatusDone, CreatedAt: now},
				},
			},
			expected: JobStatusDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bot.EffectiveStatus(); got != tt.expected {
				t.Errorf("expected status %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestBot_TranscriptDownloadURL(t *testing.T) {
	bot := &Bot{
		Recordings: []BotRecording{
			{ID: "rec-1"},
			{ID: "rec-2", Transcript: &RecordingTranscriptMeta{}},
			{ID: "rec-3", Transcript: &RecordingTranscriptMeta{DownloadURL: "https://provider.example/t/rec-3"}},
			{ID: "rec-4", Transcript: &RecordingTranscriptMeta{DownloadURL: "https://provider.example/t/rec-4"}},
		},
	}

	if got := bot.TranscriptDownloadURL(); got != "https://provider.example/t/rec-3" {
		t.Errorf("expected first non-empty URL, got %q", got)
	}

	var nilBot *Bot
	if got := nilBot.TranscriptDownloadURL(); got != "" {
		t.Errorf("expected empty URL for nil bot, got %q", got)
	}
}

func TestBot_HasTranscriptArtifact(t *testing.T) {
	tests := []struct {
		name     string
		bot      *Bot
		expected bool
	}{
		{
			name:     "nil bot",
			bot:      nil,
			expected: false,
		},
		{
			name:     "no recordings",
			bot:      &Bot{},
			expected: false,
		},
		{
			name: "recording without transcript meta",
			bot: &Bot{
				Recordings: []BotRecording{{ID: "rec-1"}},
			},
			expected: false,
		},
		{
			name: "transcript still processing",
			bot: &Bot{
				Recordings: []BotRecording{
					{ID: "rec-1", Transcript: &RecordingTranscriptMeta{Status: BotStatus{Code: "processing"}}},
				},
			},
			expected: false,
		},
		{
			name: "transcript done",
			bot: &Bot{
				Recordings: []BotRecording{
					{ID: "rec-1", Transcript: &RecordingTranscriptMeta{Status: BotStatus{Code: JobStatusDone}}},
				},
			},
			expected: true,
		},
		{
			name: "download URL without done status",
			bot: &Bot{
				Recordings: []BotRecording{
					{ID: "rec-1", Transcript: &RecordingTranscriptMeta{DownloadURL: "https://provider.example/t/rec-1"}},
				},
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bot.HasTranscriptArtifact(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestJobStatusHelpers(t *testing.T) {
	terminal := []string{JobStatusDone, JobStatusCallEnded, JobStatusError, JobStatusFatal}
	for _, code := range terminal {
		if !IsTerminalJobStatus(code) {
			t.Errorf("expected %q to be terminal", code)
		}
	}

	inProgress := []string{JobStatusReady, JobStatusJoining, JobStatusInCall, "some_future_code", ""}
	for _, code := range inProgress {
		if IsTerminalJobStatus(code) {
			t.Errorf("expected %q to not be terminal", code)
		}
	}

	if !IsFailedJobStatus(JobStatusError) || !IsFailedJobStatus(JobStatusFatal) {
		t.Error("expected error and fatal to be failed statuses")
	}
	if IsFailedJobStatus(JobStatusDone) || IsFailedJobStatus(JobStatusCallEnded) {
		t.Error("expected done and call_ended to not be failed statuses")
	}
}
