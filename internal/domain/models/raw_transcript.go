// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// RawTranscriptShape identifies which of the provider payload shapes a
// raw transcript artifact was recognized as. The provider has shipped at
// least four incompatible shapes across recording/version combinations,
// so the decoder inspects structure rather than trusting any version field.
type RawTranscriptShape int

const (
	// RawShapeUnrecognized is any payload the decoder cannot place. It
	// normalizes to an empty transcript, never an error: absence of a
	// usable shape must not block future polling attempts.
	RawShapeUnrecognized RawTranscriptShape = iota
	// RawShapePlainText is a bare JSON string holding the transcript text.
	RawShapePlainText
	// RawShapeCanonicalObject is an object already carrying transcript,
	// words and speakers fields.
	RawShapeCanonicalObject
	// RawShapeSegmentList is an array of segments with a text or
	// transcript field each, optionally with word lists.
	RawShapeSegmentList
	// RawShapeParticipantSegments is an array of participant-keyed
	// segments, each holding the participant identity and its words.
	RawShapeParticipantSegments
)

// NormalizedTranscript is the canonical {text, words, speakers} structure
// produced from any recognized raw payload shape.
type NormalizedTranscript struct {
	Text     string
	Words    []Word
	Speakers []Speaker
}

// rawCanonicalObject is the already-normalized object shape.
type rawCanonicalObject struct {
	Transcript string    `json:"transcript"`
	Words      []rawWord `json:"words"`
	Speakers   []Speaker `json:"speakers"`
}

// rawSegment is one entry of the segment-list shape. Providers have used
// both "text" and "transcript" as the field name.
type rawSegment struct {
	Text       string    `json:"text"`
	Transcript string    `json:"transcript"`
	Words      []rawWord `json:"words"`
}

// rawParticipantSegment is one entry of the participant-keyed shape.
type rawParticipantSegment struct {
	Participant rawParticipant `json:"participant"`
	Words       []rawWord      `json:"words"`
}

type rawParticipant struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

// rawWord tolerates both timestamp field spellings the provider has used.
type rawWord struct {
	Text           string   `json:"text"`
	StartTime      *float64 `json:"start_time"`
	EndTime        *float64 `json:"end_time"`
	StartTimestamp *float64 `json:"start_timestamp"`
	EndTimestamp   *float64 `json:"end_timestamp"`
	SpeakerID      string   `json:"speaker_id"`
}

func (w rawWord) toWord() Word {
	word := Word{Text: w.Text, SpeakerID: w.SpeakerID}
	if w.StartTime != nil {
		word.StartTime = *w.StartTime
	} else if w.StartTimestamp != nil {
		word.StartTime = *w.StartTimestamp
	}
	if w.EndTime != nil {
		word.EndTime = *w.EndTime
	} else if w.EndTimestamp != nil {
		word.EndTime = *w.EndTimestamp
	}
	return word
}

// RawTranscript is the decoded sum type over the recognized payload shapes.
type RawTranscript struct {
	Shape        RawTranscriptShape
	text         string
	object       rawCanonicalObject
	segments     []rawSegment
	participants []rawParticipantSegment
}

// DecodeRawTranscript classifies a raw provider payload by structural
// inspection. It never fails: anything it cannot place decodes as
// RawShapeUnrecognized.
func DecodeRawTranscript(raw json.RawMessage) RawTranscript {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return RawTranscript{Shape: RawShapeUnrecognized}
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return RawTranscript{Shape: RawShapeUnrecognized}
		}
		return RawTranscript{Shape: RawShapePlainText, text: text}

	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return RawTranscript{Shape: RawShapeUnrecognized}
		}
		if _, ok := probe["transcript"]; !ok {
			return RawTranscript{Shape: RawShapeUnrecognized}
		}
		var object rawCanonicalObject
		if err := json.Unmarshal(trimmed, &object); err != nil {
			return RawTranscript{Shape: RawShapeUnrecognized}
		}
		return RawTranscript{Shape: RawShapeCanonicalObject, object: object}

	case '[':
		var elements []json.RawMessage
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return RawTranscript{Shape: RawShapeUnrecognized}
		}
		if len(elements) == 0 {
			// A present-but-empty list is a recognized "nothing yet" signal.
			return RawTranscript{Shape: RawShapeSegmentList}
		}

		var probe map[string]json.RawMessage
		if err := json.Unmarshal(elements[0], &probe); err != nil {
			return RawTranscript{Shape: RawShapeUnrecognized}
		}

		if _, ok := probe["participant"]; ok {
			var participants []rawParticipantSegment
			if err := json.Unmarshal(trimmed, &participants); err != nil {
				return RawTranscript{Shape: RawShapeUnrecognized}
			}
			return RawTranscript{Shape: RawShapeParticipantSegments, participants: participants}
		}

		_, hasText := probe["text"]
		_, hasTranscript := probe["transcript"]
		if hasText || hasTranscript {
			var segments []rawSegment
			if err := json.Unmarshal(trimmed, &segments); err != nil {
				return RawTranscript{Shape: RawShapeUnrecognized}
			}
			return RawTranscript{Shape: RawShapeSegmentList, segments: segments}
		}
	}

	return RawTranscript{Shape: RawShapeUnrecognized}
}

// Normalize converts the decoded payload into the canonical structure.
// Pure transformation, no I/O.
func (r RawTranscript) Normalize() NormalizedTranscript {
	switch r.Shape {
	case RawShapePlainText:
		return NormalizedTranscript{
			Text:     r.text,
			Words:    []Word{},
			Speakers: []Speaker{},
		}

	case RawShapeCanonicalObject:
		words := make([]Word, 0, len(r.object.Words))
		for _, w := range r.object.Words {
			words = append(words, w.toWord())
		}
		speakers := r.object.Speakers
		if speakers == nil {
			speakers = []Speaker{}
		}
		return NormalizedTranscript{
			Text:     r.object.Transcript,
			Words:    words,
			Speakers: speakers,
		}

	case RawShapeSegmentList:
		var parts []string
		words := []Word{}
		for _, segment := range r.segments {
			text := segment.Text
			if text == "" {
				text = segment.Transcript
			}
			if text != "" {
				parts = append(parts, text)
			}
			for _, w := range segment.Words {
				words = append(words, w.toWord())
			}
		}
		return NormalizedTranscript{
			Text:     strings.Join(parts, " "),
			Words:    words,
			Speakers: []Speaker{},
		}

	case RawShapeParticipantSegments:
		return normalizeParticipantSegments(r.participants)
	}

	return NormalizedTranscript{Text: "", Words: []Word{}, Speakers: []Speaker{}}
}

// normalizeParticipantSegments flattens participant-keyed segments.
// Speakers are deduplicated by participant ID with the first-seen name
// winning. The transcript text is rebuilt from the word texts, not the
// segment texts, so that text and word list stay consistent.
func normalizeParticipantSegments(segments []rawParticipantSegment) NormalizedTranscript {
	words := []Word{}
	speakers := []Speaker{}
	seen := make(map[string]bool)
	var parts []string

	for _, segment := range segments {
		speakerID := segment.Participant.ID.String()
		if speakerID != "" && !seen[speakerID] {
			seen[speakerID] = true
			name := segment.Participant.Name
			if name == "" {
				name = fmt.Sprintf("Speaker %s", speakerID)
			}
			speakers = append(speakers, Speaker{ID: speakerID, Name: name})
		}

		for _, w := range segment.Words {
			word := w.toWord()
			if word.SpeakerID == "" {
				word.SpeakerID = speakerID
			}
			words = append(words, word)
			if word.Text != "" {
				parts = append(parts, word.Text)
			}
		}
	}

	return NormalizedTranscript{
		Text:     strings.Join(parts, " "),
		Words:    words,
		Speakers: speakers,
	}
}
