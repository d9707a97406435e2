// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package models

import (
	"fmt"
	"time"
)

// MeetingStatus is the lifecycle status of a tracked meeting.
type MeetingStatus string

const (
	MeetingStatusScheduled  MeetingStatus = "scheduled"
	MeetingStatusInProgress MeetingStatus = "in_progress"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusError      MeetingStatus = "error"
)

// statusRank orders the lifecycle statuses so that transitions only move forward.
// The error status is a sink reachable from anywhere.
var statusRank = map[MeetingStatus]int{
	MeetingStatusScheduled:  0,
	MeetingStatusInProgress: 1,
	MeetingStatusCompleted:  2,
	MeetingStatusError:      3,
}

// Meeting represents a video call tracked by the notetaker service.
// Meetings are created by the calendar-sync service and mirrored here;
// the notetaker service owns only the bot linkage and lifecycle status.
type Meeting struct {
	UID            string        `json:"uid"`
	OwnerUID       string        `json:"owner_uid"`
	Title          string        `json:"title"`
	MeetingURL     string        `json:"meeting_url"`
	CleanedURL     string        `json:"cleaned_url"`
	Platform       string        `json:"platform"`
	StartTime      time.Time     `json:"start_time"`
	RecurrenceRule string        `json:"recurrence_rule,omitempty"` // RFC 5545 RRULE, empty for one-off meetings
	Timezone       string        `json:"timezone,omitempty"`
	Status         MeetingStatus `json:"status"`
	JobUID         string        `json:"job_uid,omitempty"` // linked recording job, at most one at a time
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// HasJob reports whether the meeting is linked to a recording job.
func (m *Meeting) HasJob() bool {
	return m != nil && m.JobUID != ""
}

// IsPollable reports whether the meeting should be considered by the
// polling orchestrator: it has a linked job and its status has not
// reached the error sink.
func (m *Meeting) IsPollable() bool {
	if m == nil || !m.HasJob() {
		return false
	}
	switch m.Status {
	case MeetingStatusScheduled, MeetingStatusInProgress, MeetingStatusCompleted:
		return true
	}
	return false
}

// TransitionStatus moves the meeting status forward. Backward transitions
// are ignored so that repeated reconciliation passes are idempotent.
// It returns true when the status actually changed.
func (m *Meeting) TransitionStatus(next MeetingStatus) bool {
	if m == nil {
		return false
	}
	if statusRank[next] <= statusRank[m.Status] {
		return false
	}
	m.Status = next
	m.UpdatedAt = time.Now().UTC()
	return true
}

// ResetTracking clears the job linkage and rewinds the meeting to
// scheduled. This is the only backward status transition and is used
// when the user removes the notetaker from a meeting.
func (m *Meeting) ResetTracking() {
	m.JobUID = ""
	m.Status = MeetingStatusScheduled
	m.UpdatedAt = time.Now().UTC()
}

// Tags generates a consistent set of tags for the meeting, used by the
// indexer messages so consumers can search meetings.
func (m *Meeting) Tags() []string {
	tags := []string{}

	if m == nil {
		return nil
	}

	if m.UID != "" {
		// without prefix
		tags = append(tags, m.UID)
		// with prefix
		tags = append(tags, fmt.Sprintf("meeting_uid:%s", m.UID))
	}

	if m.OwnerUID != "" {
		tags = append(tags, fmt.Sprintf("owner_uid:%s", m.OwnerUID))
	}

	if m.Platform != "" {
		tags = append(tags, fmt.Sprintf("platform:%s", m.Platform))
	}

	if m.JobUID != "" {
		tags = append(tags, fmt.Sprintf("job_uid:%s", m.JobUID))
	}

	return tags
}
