// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package models

import (
	"fmt"
	"time"
)

// Recording job status codes mirrored from the provider. The provider's
// status vocabulary is larger; only the terminal codes carry meaning for
// reconciliation, everything else counts as "in progress".
const (
	JobStatusReady     = "ready"
	JobStatusJoining   = "joining_call"
	JobStatusInCall    = "in_call_recording"
	JobStatusDone      = "done"
	JobStatusCallEnded = "call_ended"
	JobStatusError     = "error"
	JobStatusFatal     = "fatal"
)

// IsTerminalJobStatus reports whether a provider status code is terminal:
// no further transition back to "in progress" is expected.
func IsTerminalJobStatus(code string) bool {
	switch code {
	case JobStatusDone, JobStatusCallEnded, JobStatusError, JobStatusFatal:
		return true
	}
	return false
}

// IsFailedJobStatus reports whether a terminal status code indicates the
// bot failed rather than finished.
func IsFailedJobStatus(code string) bool {
	return code == JobStatusError || code == JobStatusFatal
}

// RecordingJob is the local mirror of a notetaker bot delegated to the
// external recording provider. The UID is the provider-issued bot ID.
// The (OwnerUID, CleanedURL) pair is the dedup key: the service must not
// knowingly create a second job while a usable one exists for that pair.
type RecordingJob struct {
	UID        string    `json:"uid"`
	OwnerUID   string    `json:"owner_uid"`
	CleanedURL string    `json:"cleaned_url"`
	MeetingUID string    `json:"meeting_uid"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DedupKey returns the (owner, cleaned URL) identity of the job.
func (j *RecordingJob) DedupKey() string {
	return fmt.Sprintf("%s/%s", j.OwnerUID, j.CleanedURL)
}

// Tags generates a consistent set of tags for the recording job.
func (j *RecordingJob) Tags() []string {
	tags := []string{}

	if j == nil {
		return nil
	}

	if j.UID != "" {
		tags = append(tags, j.UID)
		tags = append(tags, fmt.Sprintf("job_uid:%s", j.UID))
	}

	if j.OwnerUID != "" {
		tags = append(tags, fmt.Sprintf("owner_uid:%s", j.OwnerUID))
	}

	if j.MeetingUID != "" {
		tags = append(tags, fmt.Sprintf("meeting_uid:%s", j.MeetingUID))
	}

	return tags
}
