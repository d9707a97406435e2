// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/notewell/notetaker-service/internal/domain/models"
)

// Message represents a domain message interface
type Message interface {
	Subject() string
	Data() []byte
	Respond(data []byte) error
	HasReply() bool
}

// MessageHandler defines how the service handles incoming messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandlerReady() bool
}

// MeetingIndexSender handles indexing operations for meetings.
type MeetingIndexSender interface {
	SendIndexMeeting(ctx context.Context, action models.MessageAction, data models.Meeting) error
	SendDeleteIndexMeeting(ctx context.Context, meetingUID string) error
}

// TranscriptIndexSender handles indexing operations for transcripts.
type TranscriptIndexSender interface {
	SendIndexTranscript(ctx context.Context, action models.MessageAction, data models.Transcript) error
}

// TranscriptEventSender publishes transcript lifecycle events for the
// content-generation consumers.
type TranscriptEventSender interface {
	SendTranscriptReady(ctx context.Context, data models.TranscriptReadyMessage) error
}

// MessageBuilder is the main interface that composes all messaging capabilities.
type MessageBuilder interface {
	MeetingIndexSender
	TranscriptIndexSender
	TranscriptEventSender
}
