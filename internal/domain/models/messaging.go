// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package models

import "time"

// NATS subjects that the notetaker service sends messages about.
const (
	// IndexMeetingSubject is the subject for the meeting indexing.
	// The subject is of the form: notewell.index.meeting
	IndexMeetingSubject = "notewell.index.meeting"

	// IndexTranscriptSubject is the subject for the transcript indexing.
	// The subject is of the form: notewell.index.transcript
	IndexTranscriptSubject = "notewell.index.transcript"

	// TranscriptReadySubject is the subject for transcript-ready events
	// consumed by the content-generation features.
	// The subject is of the form: notewell.notetaker-api.transcript_ready
	TranscriptReadySubject = "notewell.notetaker-api.transcript_ready"
)

// NATS wildcard subjects that the notetaker service handles messages about.
const (
	// NotetakerAPIQueue is the queue name for the notetaker API subscriptions.
	NotetakerAPIQueue = "notewell.notetaker-api.queue"
)

// NATS specific subjects that the notetaker service handles messages about.
const (
	// MeetingSyncedSubject carries meeting upserts from the calendar-sync
	// service. The subject is of the form: notewell.notetaker-api.meeting_synced
	MeetingSyncedSubject = "notewell.notetaker-api.meeting_synced"

	// MeetingRemovedSubject carries meeting deletions from the calendar-sync
	// service. The subject is of the form: notewell.notetaker-api.meeting_removed
	MeetingRemovedSubject = "notewell.notetaker-api.meeting_removed"

	// EnsureNotetakerSubject is the request subject for scheduling a
	// notetaker bot on a meeting.
	// The subject is of the form: notewell.notetaker-api.ensure_notetaker
	EnsureNotetakerSubject = "notewell.notetaker-api.ensure_notetaker"

	// RemoveNotetakerSubject is the request subject for removing local
	// notetaker tracking from a meeting.
	// The subject is of the form: notewell.notetaker-api.remove_notetaker
	RemoveNotetakerSubject = "notewell.notetaker-api.remove_notetaker"

	// GetTranscriptSubject is the request subject for fetching the stored
	// transcript of a meeting.
	// The subject is of the form: notewell.notetaker-api.get_transcript
	GetTranscriptSubject = "notewell.notetaker-api.get_transcript"

	// CheckMeetingSubject is the request subject for a manual, on-demand
	// reconciliation of a single meeting.
	// The subject is of the form: notewell.notetaker-api.check_meeting
	CheckMeetingSubject = "notewell.notetaker-api.check_meeting"

	// ForcePollSubject is the request subject for running one full
	// reconciliation pass immediately.
	// The subject is of the form: notewell.notetaker-api.force_poll
	ForcePollSubject = "notewell.notetaker-api.force_poll"

	// PollerStatusSubject is the request subject for the orchestrator status.
	// The subject is of the form: notewell.notetaker-api.poller_status
	PollerStatusSubject = "notewell.notetaker-api.poller_status"
)

// MessageAction is the action of an indexer message.
type MessageAction string

const (
	ActionCreated MessageAction = "created"
	ActionUpdated MessageAction = "updated"
	ActionDeleted MessageAction = "deleted"
)

// IndexerMessage is the envelope sent to the indexing service.
type IndexerMessage struct {
	Action  MessageAction     `json:"action"`
	Headers map[string]string `json:"headers"`
	Data    any               `json:"data"`
	Tags    []string          `json:"tags"`
}

// MeetingSyncedMessage is the meeting upsert payload published by the
// calendar-sync service. The meeting URL may be absent when the calendar
// event only carries the link inside its free-form description.
type MeetingSyncedMessage struct {
	UID            string    `json:"uid"`
	OwnerUID       string    `json:"owner_uid"`
	Title          string    `json:"title"`
	MeetingURL     string    `json:"meeting_url,omitempty"`
	Description    string    `json:"description,omitempty"`
	StartTime      time.Time `json:"start_time"`
	RecurrenceRule string    `json:"recurrence_rule,omitempty"`
	Timezone       string    `json:"timezone,omitempty"`
}

// MeetingRemovedMessage is the meeting deletion payload published by the
// calendar-sync service.
type MeetingRemovedMessage struct {
	UID string `json:"uid"`
}

// EnsureNotetakerRequest is the payload of an ensure-notetaker request.
type EnsureNotetakerRequest struct {
	MeetingUID      string `json:"meeting_uid"`
	JoinLeadMinutes int    `json:"join_lead_minutes"`
}

// EnsureNotetakerResponse is the reply payload of an ensure-notetaker request.
type EnsureNotetakerResponse struct {
	JobUID string `json:"job_uid"`
	Reused bool   `json:"reused"`
}

// TranscriptReadyMessage is published once when a transcript is persisted.
type TranscriptReadyMessage struct {
	MeetingUID      string `json:"meeting_uid"`
	JobUID          string `json:"job_uid"`
	DurationMinutes int    `json:"duration_minutes"`
	SpeakerCount    int    `json:"speaker_count"`
}
