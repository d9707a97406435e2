// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/notewell/notetaker-service/internal/domain"
	"github.com/notewell/notetaker-service/internal/domain/models"
	"github.com/notewell/notetaker-service/internal/logging"
)

// ReadinessService decides whether a bot's transcript is ready for
// retrieval. Provider status reporting is unreliable across versions, so
// the decision is a cascade of heuristics ending in a speculative fetch.
type ReadinessService struct {
	Recorder domain.RecorderClient
}

// NewReadinessService creates a new ReadinessService
func NewReadinessService(recorder domain.RecorderClient) *ReadinessService {
	return &ReadinessService{
		Recorder: recorder,
	}
}

// ServiceReady checks if the service is ready to evaluate bots.
func (s *ReadinessService) ServiceReady() bool {
	return s.Recorder != nil
}

// ReadinessResult is the outcome of one readiness evaluation.
type ReadinessResult struct {
	// Ready means the bot reached a terminal state and polling for this
	// pass can stop; it does not imply a transcript exists.
	Ready bool
	// Failed means the bot terminated in an error state and will never
	// produce a transcript.
	Failed bool
	// HasTranscript means a non-empty transcript was confirmed.
	HasTranscript bool
	// RawPayload carries the raw transcript payload when the confirmation
	// came from a speculative fetch, so the caller does not fetch twice.
	RawPayload json.RawMessage
}

// Evaluate runs the readiness cascade for one bot:
//
//  1. a non-terminal effective status means the call is still in progress
//  2. an error or fatal status means the bot failed permanently
//  3. a recording advertising a finished transcript confirms readiness
//  4. otherwise fetch the transcript speculatively; non-empty normalized
//     text is the confirmation, anything else leaves the meeting pollable
//
// Fetch errors are never treated as bot failure: timeouts and missing
// artifacts just mean "not available yet".
func (s *ReadinessService) Evaluate(ctx context.Context, bot *models.Bot) (*ReadinessResult, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "readiness service not ready", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("readiness service not ready")
	}
	if bot == nil {
		return nil, domain.NewValidationError("bot is required")
	}

	effective := bot.EffectiveStatus()

	if !models.IsTerminalJobStatus(effective) {
		slog.DebugContext(ctx, "bot not in terminal state yet", "bot_id", bot.ID, "status", effective)
		return &ReadinessResult{}, nil
	}

	if models.IsFailedJobStatus(effective) {
		slog.InfoContext(ctx, "bot terminated with failure status", "bot_id", bot.ID, "status", effective)
		return &ReadinessResult{Ready: true, Failed: true}, nil
	}

	if bot.HasTranscriptArtifact() {
		return &ReadinessResult{Ready: true, HasTranscript: true}, nil
	}

	// Terminal and not failed, but no recording admits to a transcript.
	// Some provider versions simply never fill the artifact metadata, so
	// the only way to know is to ask for the transcript and see.
	raw, err := s.fetchTranscript(ctx, bot)
	if err != nil {
		switch domain.GetErrorType(err) {
		case domain.ErrorTypeTimeout, domain.ErrorTypeNotFound:
			slog.DebugContext(ctx, "speculative transcript fetch found nothing yet",
				logging.ErrKey, err, "bot_id", bot.ID)
			return &ReadinessResult{Ready: true}, nil
		}
		return nil, err
	}

	normalized := models.DecodeRawTranscript(raw).Normalize()
	if normalized.Text == "" {
		slog.DebugContext(ctx, "speculative transcript fetch returned empty transcript", "bot_id", bot.ID)
		return &ReadinessResult{Ready: true}, nil
	}

	return &ReadinessResult{Ready: true, HasTranscript: true, RawPayload: raw}, nil
}

// fetchTranscript retrieves the raw transcript payload, preferring the
// recording's pre-signed download URL over the bot-level endpoint.
func (s *ReadinessService) fetchTranscript(ctx context.Context, bot *models.Bot) (json.RawMessage, error) {
	if url := bot.TranscriptDownloadURL(); url != "" {
		return s.Recorder.GetRawTranscript(ctx, url)
	}
	return s.Recorder.GetBotTranscript(ctx, bot.ID)
}
