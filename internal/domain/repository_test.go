// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/notewell/notetaker-service/internal/domain/models"
)

// mockMeetingRepository implements the MeetingRepository interface for testing
type mockMeetingRepository struct {
	meetings  map[string]*models.Meeting
	revisions map[string]uint64
}

func newMockMeetingRepository() *mockMeetingRepository {
	return &mockMeetingRepository{
		meetings:  make(map[string]*models.Meeting),
		revisions: make(map[string]uint64),
	}
}

func (m *mockMeetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	m.meetings[meeting.UID] = meeting
	m.revisions[meeting.UID] = 1
	return nil
}

func (m *mockMeetingRepository) Exists(ctx context.Context, meetingUID string) (bool, error) {
	_, ok := m.meetings[meetingUID]
	return ok, nil
}

func (m *mockMeetingRepository) Get(ctx context.Context, meetingUID string) (*models.Meeting, error) {
	meeting, ok := m.meetings[meetingUID]
	if !ok {
		return nil, NewNotFoundError("meeting not found")
	}
	return meeting, nil
}

func (m *mockMeetingRepository) GetWithRevision(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error) {
	meeting, ok := m.meetings[meetingUID]
	if !ok {
		return nil, 0, NewNotFoundError("meeting not found")
	}
	return meeting, m.revisions[meetingUID], nil
}

func (m *mockMeetingRepository) Update(ctx context.Context, meeting *models.Meeting, revision uint64) error {
	if m.revisions[meeting.UID] != revision {
		return NewConflictError("revision mismatch")
	}
	m.meetings[meeting.UID] = meeting
	m.revisions[meeting.UID]++
	return nil
}

func (m *mockMeetingRepository) Delete(ctx context.Context, meetingUID string, revision uint64) error {
	if m.revisions[meetingUID] != revision {
		return NewConflictError("revision mismatch")
	}
	delete(m.meetings, meetingUID)
	delete(m.revisions, meetingUID)
	return nil
}

func (m *mockMeetingRepository) ListPollable(ctx context.Context) ([]*models.Meeting, error) {
	var pollable []*models.Meeting
	for _, meeting := range m.meetings {
		if meeting.IsPollable() {
			pollable = append(pollable, meeting)
		}
	}
	return pollable, nil
}

func (m *mockMeetingRepository) ListAll(ctx context.Context) ([]*models.Meeting, error) {
	all := make([]*models.Meeting, 0, len(m.meetings))
	for _, meeting := range m.meetings {
		all = append(all, meeting)
	}
	return all, nil
}

// mockTranscriptRepository implements the TranscriptRepository interface for testing
type mockTranscriptRepository struct {
	transcripts map[string]*models.Transcript
}

func newMockTranscriptRepository() *mockTranscriptRepository {
	return &mockTranscriptRepository{
		transcripts: make(map[string]*models.Transcript),
	}
}

func (m *mockTranscriptRepository) CreateOnce(ctx context.Context, transcript *models.Transcript) error {
	if _, ok := m.transcripts[transcript.MeetingUID]; ok {
		return NewConflictError("transcript already exists for meeting")
	}
	m.transcripts[transcript.MeetingUID] = transcript
	return nil
}

func (m *mockTranscriptRepository) Exists(ctx context.Context, meetingUID string) (bool, error) {
	_, ok := m.transcripts[meetingUID]
	return ok, nil
}

func (m *mockTranscriptRepository) GetByMeeting(ctx context.Context, meetingUID string) (*models.Transcript, error) {
	transcript, ok := m.transcripts[meetingUID]
	if !ok {
		return nil, NewNotFoundError("transcript not found")
	}
	return transcript, nil
}

var (
	_ MeetingRepository    = (*mockMeetingRepository)(nil)
	_ TranscriptRepository = (*mockTranscriptRepository)(nil)
)

func TestMeetingRepository_RevisionGuard(t *testing.T) {
	ctx := context.Background()
	repo := newMockMeetingRepository()

	meeting := &models.Meeting{UID: "meeting-1", Title: "Weekly Sync"}
	if err := repo.Create(ctx, meeting); err != nil {
		t.Fatalf("expected no error creating meeting, got %v", err)
	}

	got, revision, err := repo.GetWithRevision(ctx, "meeting-1")
	if err != nil {
		t.Fatalf("expected no error getting meeting, got %v", err)
	}
	if got.Title != "Weekly Sync" {
		t.Errorf("expected title 'Weekly Sync', got %q", got.Title)
	}

	got.Title = "Weekly Sync (renamed)"
	if err := repo.Update(ctx, got, revision); err != nil {
		t.Errorf("expected update at current revision to succeed, got %v", err)
	}

	if err := repo.Update(ctx, got, revision); err == nil {
		t.Error("expected update at stale revision to fail")
	} else if GetErrorType(err) != ErrorTypeConflict {
		t.Errorf("expected conflict error, got type %v", GetErrorType(err))
	}
}

func TestTranscriptRepository_CreateOnce(t *testing.T) {
	ctx := context.Background()
	repo := newMockTranscriptRepository()

	transcript := &models.Transcript{MeetingUID: "meeting-1", Text: "hello"}
	if err := repo.CreateOnce(ctx, transcript); err != nil {
		t.Fatalf("expected first insert to succeed, got %v", err)
	}

	err := repo.CreateOnce(ctx, &models.Transcript{MeetingUID: "meeting-1", Text: "racing"})
	if err == nil {
		t.Fatal("expected second insert for the same meeting to fail")
	}
	if GetErrorType(err) != ErrorTypeConflict {
		t.Errorf("expected conflict error, got type %v", GetErrorType(err))
	}

	got, err := repo.GetByMeeting(ctx, "meeting-1")
	if err != nil {
		t.Fatalf("expected no error getting transcript, got %v", err)
	}
	if got.Text != "hello" {
		t.Errorf("expected the first insert to win, got text %q", got.Text)
	}
}

func TestRawTranscriptArchive_RoundTrip(t *testing.T) {
	ctx := context.Background()
	archive := &mockRawTranscriptArchive{payloads: make(map[string]json.RawMessage)}

	payload := json.RawMessage(`{"words":[]}`)
	if err := archive.Put(ctx, "meeting-1", payload); err != nil {
		t.Fatalf("expected no error putting payload, got %v", err)
	}

	got, err := archive.Get(ctx, "meeting-1")
	if err != nil {
		t.Fatalf("expected no error getting payload, got %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("expected payload %s, got %s", payload, got)
	}
}

type mockRawTranscriptArchive struct {
	payloads map[string]json.RawMessage
}

func (m *mockRawTranscriptArchive) Put(ctx context.Context, meetingUID string, payload json.RawMessage) error {
	m.payloads[meetingUID] = payload
	return nil
}

func (m *mockRawTranscriptArchive) Get(ctx context.Context, meetingUID string) (json.RawMessage, error) {
	payload, ok := m.payloads[meetingUID]
	if !ok {
		return nil, NewNotFoundError("raw transcript not found")
	}
	return payload, nil
}
