// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"testing"
)

func TestDecodeRawTranscript_PlainText(t *testing.T) {
	raw := json.RawMessage(`"Hello everyone, welcome to the call."`)

	decoded := DecodeRawTranscript(raw)
	if decoded.Shape != RawShapePlainText {
		t.Fatalf("expected plain text shape, got %v", decoded.Shape)
	}

	normalized := decoded.Normalize()
	if normalized.Text != "Hello everyone, welcome to the call." {
		t.Errorf("unexpected text: %q", normalized.Text)
	}
	if len(normalized.Words) != 0 {
		t.Errorf("expected no words, got %d", len(normalized.Words))
	}
	if len(normalized.Speakers) != 0 {
		t.Errorf("expected no speakers, got %d", len(normalized.Speakers))
	}
}

func TestDecodeRawTranscript_CanonicalObject(t *testing.T) {
	raw := json.RawMessage(`{
		"transcript": "hello world",
		"words": [
			{"text": "hello", "start_time": 0.5, "end_time": 1.0, "speaker_id": "1"},
			{"text": "world", "start_timestamp": 1.2, "end_timestamp": 1.8, "speaker_id": "2"}
		],
		"speakers": [
			{"id": "1", "name": "Alice"},
			{"id": "2", "name": "Bob"}
		]
	}`)

	decoded := DecodeRawTranscript(raw)
	if decoded.Shape != RawShapeCanonicalObject {
		t.Fatalf("expected canonical object shape, got %v", decoded.Shape)
	}

	normalized := decoded.Normalize()
	if normalized.Text != "hello world" {
		t.Errorf("unexpected text: %q", normalized.Text)
	}
	if len(normalized.Words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(normalized.Words))
	}
	// Both timestamp field spellings map onto the same Word fields.
	if normalized.Words[0].StartTime != 0.5 || normalized.Words[0].EndTime != 1.0 {
		t.Errorf("unexpected timestamps for first word: %+v", normalized.Words[0])
	}
	if normalized.Words[1].StartTime != 1.2 || normalized.Words[1].EndTime != 1.8 {
		t.Errorf("unexpected timestamps for second word: %+v", normalized.Words[1])
	}
	if len(normalized.Speakers) != 2 || normalized.Speakers[0].Name != "Alice" {
		t.Errorf("unexpected speakers: %+v", normalized.Speakers)
	}
}

func TestDecodeRawTranscript_SegmentList(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		expectedText string
	}{
		{
			name:         "segments with text field",
			raw:          `[{"text": "first segment"}, {"text": "second segment"}]`,
			expectedText: "first segment second segment",
		},
		{
			name:         "segments with transcript field",
			raw:          `[{"transcript": "first"}, {"transcript": "second"}]`,
			expectedText: "first second",
		},
		{
			name:         "empty segments are skipped",
			raw:          `[{"text": "only"}, {"text": ""}]`,
			expectedText: "only",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded := DecodeRawTranscript(json.RawMessage(tt.raw))
			if decoded.Shape != RawShapeSegmentList {
				t.Fatalf("expected segment list shape, got %v", decoded.Shape)
			}
			normalized := decoded.Normalize()
			if normalized.Text != tt.expectedText {
				t.Errorf("expected text %q, got %q", tt.expectedText, normalized.Text)
			}
		})
	}
}

func TestDecodeRawTranscript_SegmentListWords(t *testing.T) {
	raw := json.RawMessage(`[
		{"text": "hi there", "words": [
			{"text": "hi", "start_time": 0, "end_time": 0.4},
			{"text": "there", "start_time": 0.5, "end_time": 0.9}
		]}
	]`)

	normalized := DecodeRawTranscript(raw).Normalize()
	if len(normalized.Words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(normalized.Words))
	}
	if normalized.Words[1].Text != "there" {
		t.Errorf("unexpected second word: %+v", normalized.Words[1])
	}
}

func TestDecodeRawTranscript_ParticipantSegments(t *testing.T) {
	raw := json.RawMessage(`[
		{
			"participant": {"id": 100, "name": "Alice"},
			"words": [
				{"text": "shipping", "start_timestamp": 0.0, "end_timestamp": 0.8},
				{"text": "friday", "start_timestamp": 0.9, "end_timestamp": 1.4}
			]
		},
		{
			"participant": {"id": 200, "name": ""},
			"words": [
				{"text": "sounds", "start_timestamp": 2.0, "end_timestamp": 2.5},
				{"text": "good", "start_timestamp": 2.6, "end_timestamp": 3.0}
			]
		},
		{
			"participant": {"id": 100, "name": "Alice Again"},
			"words": [
				{"text": "thanks", "start_timestamp": 4.0, "end_timestamp": 4.5}
			]
		}
	]`)

	decoded := DecodeRawTranscript(raw)
	if decoded.Shape != RawShapeParticipantSegments {
		t.Fatalf("expected participant segments shape, got %v", decoded.Shape)
	}

	normalized := decoded.Normalize()
	if normalized.Text != "shipping friday sounds good thanks" {
		t.Errorf("unexpected text: %q", normalized.Text)
	}

	// Speakers deduplicated by ID, first-seen name wins, missing names
	// get a placeholder.
	if len(normalized.Speakers) != 2 {
		t.Fatalf("expected 2 speakers, got %d: %+v", len(normalized.Speakers), normalized.Speakers)
	}
	if normalized.Speakers[0].ID != "100" || normalized.Speakers[0].Name != "Alice" {
		t.Errorf("unexpected first speaker: %+v", normalized.Speakers[0])
	}
	if normalized.Speakers[1].ID != "200" || normalized.Speakers[1].Name != "Speaker 200" {
		t.Errorf("unexpected second speaker: %+v", normalized.Speakers[1])
	}

	// Words inherit the segment's speaker ID.
	if len(normalized.Words) != 5 {
		t.Fatalf("expected 5 words, got %d", len(normalized.Words))
	}
	if normalized.Words[0].SpeakerID != "100" {
		t.Errorf("expected first word speaker 100, got %q", normalized.Words[0].SpeakerID)
	}
	if normalized.Words[2].SpeakerID != "200" {
		t.Errorf("expected third word speaker 200, got %q", normalized.Words[2].SpeakerID)
	}
}

func TestDecodeRawTranscript_Unrecognized(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty payload", raw: ""},
		{name: "null payload", raw: "null"},
		{name: "number payload", raw: "42"},
		{name: "object without transcript field", raw: `{"status": "done"}`},
		{name: "array of unknown objects", raw: `[{"foo": "bar"}]`},
		{name: "array of scalars", raw: `[1, 2, 3]`},
		{name: "malformed JSON", raw: `{"transcript": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded := DecodeRawTranscript(json.RawMessage(tt.raw))
			if decoded.Shape != RawShapeUnrecognized {
				t.Fatalf("expected unrecognized shape, got %v", decoded.Shape)
			}
			normalized := decoded.Normalize()
			if normalized.Text != "" {
				t.Errorf("expected empty text, got %q", normalized.Text)
			}
			if normalized.Words == nil || normalized.Speakers == nil {
				t.Error("expected empty, non-nil words and speakers")
			}
		})
	}
}

func TestDecodeRawTranscript_EmptyArray(t *testing.T) {
	decoded := DecodeRawTranscript(json.RawMessage(`[]`))
	if decoded.Shape != RawShapeSegmentList {
		t.Fatalf("expected segment list shape for empty array, got %v", decoded.Shape)
	}
	if text := decoded.Normalize().Text; text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
}
