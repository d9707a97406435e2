// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package models

import (
	"fmt"
	"math"
	"time"
)

// Speaker is a meeting participant that appears in a transcript.
type Speaker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Word is a single transcribed word with its relative timestamps in
// seconds from the start of the recording.
type Word struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	SpeakerID string  `json:"speaker_id,omitempty"`
}

// Transcript is the canonical, normalized output of a finished recording
// job. There is at most one transcript per meeting; rows are append-only
// and never overwritten by polling.
type Transcript struct {
	MeetingUID      string    `json:"meeting_uid"`
	JobUID          string    `json:"job_uid"`
	Text            string    `json:"text"`
	Speakers        []Speaker `json:"speakers"`
	Words           []Word    `json:"words"`
	DurationMinutes int       `json:"duration_minutes"`
	ProcessedAt     time.Time `json:"processed_at"`
}

// DurationMinutesFromWords derives the transcript duration from the end
// time of the last word, rounded to whole minutes. No words means zero.
func DurationMinutesFromWords(words []Word) int {
	if len(words) == 0 {
		return 0
	}
	last := words[len(words)-1]
	return int(math.Round(last.EndTime / 60))
}

// Tags generates a consistent set of tags for the transcript.
func (t *Transcript) Tags() []string {
	tags := []string{}

	if t == nil {
		return nil
	}

	if t.MeetingUID != "" {
		tags = append(tags, t.MeetingUID)
		tags = append(tags, fmt.Sprintf("meeting_uid:%s", t.MeetingUID))
	}

	if t.JobUID != "" {
		tags = append(tags, fmt.Sprintf("job_uid:%s", t.JobUID))
	}

	return tags
}
