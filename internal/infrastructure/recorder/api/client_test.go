// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notewell/notetaker-service/internal/domain"
	"github.com/notewell/notetaker-service/internal/domain/models"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:        baseURL,
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	})
}

func TestCreateBot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bots", r.URL.Path)

		var req createBotAPIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Notewell Bot - Weekly Sync", req.BotName)
		require.NotNil(t, req.TranscriptionOptions)
		assert.Equal(t, transcriptionProviderCaptions, req.TranscriptionOptions.Provider)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.Bot{
			ID:         "bot-1",
			MeetingURL: req.MeetingURL,
			BotName:    req.BotName,
			Status:     models.BotStatus{Code: models.JobStatusReady},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	joinAt := time.Now().Add(10 * time.Minute).UTC()
	bot, err := client.CreateBot(context.Background(), &models.CreateBotRequest{
		MeetingURL: "https://zoom.us/j/123456789",
		BotName:    "Notewell Bot - Weekly Sync",
		JoinAt:     &joinAt,
	})
	require.NoError(t, err)
	assert.Equal(t, "bot-1", bot.ID)
	assert.Equal(t, models.JobStatusReady, bot.Status.Code)
}

func TestGetBot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/bots/bot-1", r.URL.Path)

		_ = json.NewEncoder(w).Encode(models.Bot{
			ID:     "bot-1",
			Status: models.BotStatus{Code: models.JobStatusInCall},
			StatusChanges: []models.BotStatusChange{
				{Code: models.JobStatusJoining},
				{Code: models.JobStatusInCall},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	bot, err := client.GetBot(context.Background(), "bot-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusInCall, bot.EffectiveStatus())
}

func TestGetBotNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code": 404, "message": "bot not found"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.GetBot(context.Background(), "dead-bot")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestGetBotRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(models.Bot{ID: "bot-1"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	bot, err := client.GetBot(context.Background(), "bot-1")
	require.NoError(t, err)
	assert.Equal(t, "bot-1", bot.ID)
	assert.Equal(t, 3, attempts)
}

func TestGetBotDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"code": 422, "message": "invalid meeting url"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.CreateBot(context.Background(), &models.CreateBotRequest{MeetingURL: "bad"})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
}

func TestGetRawTranscript(t *testing.T) {
	payload := `[{"participant":{"id":1,"name":"Alice"},"words":[{"text":"hello"}]}]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/artifacts/t-1.json", r.URL.Path)
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	raw, err := client.GetRawTranscript(context.Background(), server.URL+"/artifacts/t-1.json")
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(raw))
}

func TestGetRawTranscriptTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL: server.URL,
		Timeout: 20 * time.Millisecond,
	})

	_, err := client.GetRawTranscript(context.Background(), server.URL+"/artifacts/t-1.json")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeTimeout, domain.GetErrorType(err))
}

func TestCalculateBackoffBounds(t *testing.T) {
	client := NewClient(Config{
		BaseURL:        "http://localhost",
		InitialBackoff: time.Second,
		MaxBackoff:     10 * time.Second,
	})

	for attempt := 0; attempt < 10; attempt++ {
		backoff := client.calculateBackoff(attempt)
		assert.GreaterOrEqual(t, backoff, time.Second)
		assert.LessOrEqual(t, backoff, 13*time.Second) // max + 25% jitter
	}
}
