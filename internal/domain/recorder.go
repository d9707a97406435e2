// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"encoding/json"

	"github.com/notewell/notetaker-service/internal/domain/models"
)

// RecorderClient defines the operations against the external recording
// provider's bot API. All calls are synchronous and carry a bounded
// per-request timeout; an expired timeout surfaces as a timeout-typed
// error which callers treat as "not ready yet", never as a job failure.
type RecorderClient interface {
	// CreateBot requests a captioning-based transcription bot for the
	// given meeting URL.
	CreateBot(ctx context.Context, request *models.CreateBotRequest) (*models.Bot, error)

	// GetBot returns the bot's current status, its ordered status-change
	// history and any recording artifacts.
	GetBot(ctx context.Context, botID string) (*models.Bot, error)

	// GetRawTranscript retrieves the transcript artifact from a download
	// URL. The payload shape is provider/version dependent and is decoded
	// by models.DecodeRawTranscript.
	GetRawTranscript(ctx context.Context, downloadURL string) (json.RawMessage, error)

	// GetBotTranscript retrieves the transcript through the bot-level
	// endpoint. Some provider versions never expose a recording download
	// URL, so this is the fallback fetch path.
	GetBotTranscript(ctx context.Context, botID string) (json.RawMessage, error)
}
