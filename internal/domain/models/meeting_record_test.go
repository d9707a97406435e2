// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package models

import (
	"testing"
)

func TestMeeting_TransitionStatus(t *testing.T) {
	tests := []struct {
		name           string
		from           MeetingStatus
		to             MeetingStatus
		expectedChange bool
		expectedStatus MeetingStatus
	}{
		{
			name:           "scheduled to in progress",
			from:           MeetingStatusScheduled,
			to:             MeetingStatusInProgress,
			expectedChange: true,
			expectedStatus: MeetingStatusInProgress,
		},
		{
			name:           "in progress to completed",
			from:           MeetingStatusInProgress,
			to:             MeetingStatusCompleted,
			expectedChange: true,
			expectedStatus: MeetingStatusCompleted,
		},
		{
			name:           "scheduled straight to completed",
			from:           MeetingStatusScheduled,
			to:             MeetingStatusCompleted,
			expectedChange: true,
			expectedStatus: MeetingStatusCompleted,
		},
		{
			name:           "completed to error sink",
			from:           MeetingStatusCompleted,
			to:             MeetingStatusError,
			expectedChange: true,
			expectedStatus: MeetingStatusError,
		},
		{
			name:           "same status is a no-op",
			from:           MeetingStatusInProgress,
			to:             MeetingStatusInProgress,
			expectedChange: false,
			expectedStatus: MeetingStatusInProgress,
		},
		{
			name:           "backward transition is ignored",
			from:           MeetingStatusCompleted,
			to:             MeetingStatusInProgress,
			expectedChange: false,
			expectedStatus: MeetingStatusCompleted,
		},
		{
			name:           "error sink is final",
			from:           MeetingStatusError,
			to:             MeetingStatusCompleted,
			expectedChange: false,
			expectedStatus: MeetingStatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meeting := &Meeting{UID: "meeting-1", Status: tt.from}
			changed := meeting.TransitionStatus(tt.to)
			if changed != tt.expectedChange {
				t.Errorf("expected change %v, got %v", tt.expectedChange, changed)
			}
			if meeting.Status != tt.expectedStatus {
				t.Errorf("expected status %q, got %q", tt.expectedStatus, meeting.Status)
			}
		})
	}
}

func TestMeeting_IsPollable(t *testing.T) {
	tests := []struct {
		name     string
		meeting  *Meeting
		expected bool
	}{
		{
			name:     "nil meeting",
			meeting:  nil,
			expected: false,
		},
		{
			name:     "no linked job",
			meeting:  &Meeting{UID: "meeting-1", Status: MeetingStatusScheduled},
			expected: false,
		},
		{
			name:     "scheduled with job",
			meeting:  &Meeting{UID: "meeting-1", JobUID: "bot-1", Status: MeetingStatusScheduled},
			expected: true,
		},
		{
			name:     "in progress with job",
			meeting:  &Meeting{UID: "meeting-1", JobUID: "bot-1", Status: MeetingStatusInProgress},
			expected: true,
		},
		{
			name:     "completed stays pollable",
			meeting:  &Meeting{UID: "meeting-1", JobUID: "bot-1", Status: MeetingStatusCompleted},
			expected: true,
		},
		{
			name:     "error sink is not pollable",
			meeting:  &Meeting{UID: "meeting-1", JobUID: "bot-1", Status: MeetingStatusError},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.meeting.IsPollable(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestMeeting_ResetTracking(t *testing.T) {
	meeting := &Meeting{
		UID:    "meeting-1",
		JobUID: "bot-1",
		Status: MeetingStatusCompleted,
	}

	meeting.ResetTracking()

	if meeting.JobUID != "" {
		t.Errorf("expected job linkage cleared, got %q", meeting.JobUID)
	}
	if meeting.Status != MeetingStatusScheduled {
		t.Errorf("expected status rewound to scheduled, got %q", meeting.Status)
	}
}

func TestMeeting_Tags(t *testing.T) {
	meeting := &Meeting{
		UID:      "meeting-1",
		OwnerUID: "user-1",
		Platform: "zoom",
		JobUID:   "bot-1",
	}

	tags := meeting.Tags()
	expected := []string{
		"meeting-1",
		"meeting_uid:meeting-1",
		"owner_uid:user-1",
		"platform:zoom",
		"job_uid:bot-1",
	}
	if len(tags) != len(expected) {
		t.Fatalf("expected %d tags, got %d: %v", len(expected), len(tags), tags)
	}
	for i, tag := range expected {
		if tags[i] != tag {
			t.Errorf("expected tag %q at index %d, got %q", tag, i, tags[i])
		}
	}
}
