// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/notewell/notetaker-service/internal/domain/models"
)

// transcriptionProviderCaptions selects caption-based transcription on
// the provider side. Captions work across all supported platforms
// without per-platform audio pipelines.
const transcriptionProviderCaptions = "meeting_captions"

// createBotAPIRequest is the provider's wire format for bot creation.
type createBotAPIRequest struct {
	MeetingURL           string                `json:"meeting_url"`
	BotName              string                `json:"bot_name"`
	JoinAt               *time.Time            `json:"join_at,omitempty"`
	TranscriptionOptions *transcriptionOptions `json:"transcription_options,omitempty"`
}

type transcriptionOptions struct {
	Provider string `json:"provider"`
}

// CreateBot requests a new transcription bot for a meeting URL.
// This is a pure API call with no business logic.
func (c *Client) CreateBot(ctx context.Context, request *models.CreateBotRequest) (*models.Bot, error) {
	apiRequest := &createBotAPIRequest{
		MeetingURL: request.MeetingURL,
		BotName:    request.BotName,
		JoinAt:     request.JoinAt,
		TranscriptionOptions: &transcriptionOptions{
			Provider: transcriptionProviderCaptions,
		},
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/bots", apiRequest)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(resp.StatusCode, body)
	}

	var bot models.Bot
	if err := json.NewDecoder(resp.Body).Decode(&bot); err != nil {
		return nil, fmt.Errorf("failed to decode create bot response: %w", err)
	}

	return &bot, nil
}

// GetBot returns the bot's current state: status, status-change history
// and recording artifacts.
func (c *Client) GetBot(ctx context.Context, botID string) (*models.Bot, error) {
	path := fmt.Sprintf("/bots/%s", botID)
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(resp.StatusCode, body)
	}

	var bot models.Bot
	if err := json.NewDecoder(resp.Body).Decode(&bot); err != nil {
		return nil, fmt.Errorf("failed to decode get bot response: %w", err)
	}

	return &bot, nil
}

// GetBotTranscript retrieves the transcript through the bot-level
// endpoint. Used when the bot exposes no recording download URL.
func (c *Client) GetBotTranscript(ctx context.Context, botID string) (json.RawMessage, error) {
	path := fmt.Sprintf("/bots/%s/transcript", botID)
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.wrapTransportError(err)
	}

	return json.RawMessage(body), nil
}

// GetRawTranscript downloads a transcript artifact. Download URLs are
// pre-signed by the provider, so the request is unauthenticated and
// goes straight to the given URL.
func (c *Client) GetRawTranscript(ctx context.Context, downloadURL string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.wrapTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.wrapTransportError(err)
	}

	return json.RawMessage(body), nil
}
