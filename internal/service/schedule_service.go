// Copyright Notewell and each contributor to Notewell.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/notewell/notetaker-service/internal/domain"
	"github.com/notewell/notetaker-service/internal/domain/models"
	"github.com/notewell/notetaker-service/internal/logging"
)

// ScheduleService resolves when a meeting actually occurs next. One-off
// meetings occur at their fixed start time; recurring meetings carry an
// RFC 5545 RRULE from the calendar-sync service.
type ScheduleService struct{}

// NewScheduleService creates a new ScheduleService
func NewScheduleService() *ScheduleService {
	return &ScheduleService{}
}

// NextOccurrence returns the first occurrence of the meeting at or after
// the given time. For non-recurring meetings this is the start time
// itself; a start time already in the past is returned as-is so the bot
// can still join an in-progress call.
func (s *ScheduleService) NextOccurrence(ctx context.Context, meeting *models.Meeting, from time.Time) (time.Time, error) {
	if meeting == nil {
		return time.Time{}, domain.NewValidationError("meeting is required")
	}

	start := meeting.StartTime
	if meeting.Timezone != "" {
		if loc, err := time.LoadLocation(meeting.Timezone); err == nil {
			start = start.In(loc)
		}
	}

	if meeting.RecurrenceRule == "" {
		return start, nil
	}

	rule, err := rrule.StrToRRule(meeting.RecurrenceRule)
	if err != nil {
		slog.WarnContext(ctx, "invalid recurrence rule, using fixed start time",
			logging.ErrKey, err, "meeting_uid", meeting.UID, "rrule", meeting.RecurrenceRule)
		return start, nil
	}
	rule.DTStart(start)

	next := rule.After(from, true)
	if next.IsZero() {
		// The series has ended; fall back to the last known start.
		return start, nil
	}

	return next, nil
}

// JoinAt computes when the bot should join: the next occurrence minus
// the join lead.
func (s *ScheduleService) JoinAt(ctx context.Context, meeting *models.Meeting, from time.Time, joinLeadMinutes int) (time.Time, error) {
	occurrence, err := s.NextOccurrence(ctx, meeting, from)
	if err != nil {
		return time.Time{}, err
	}

	return occurrence.Add(-time.Duration(joinLeadMinutes) * time.Minute), nil
}
