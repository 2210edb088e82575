package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lm500_emulator/internal/lm500"
	"lm500_emulator/internal/models"
	"lm500_emulator/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var ErrInvalidTimeRange = errors.New("invalid time range: from must be <= to")

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeRange converts both bounds to UTC and rejects from > to.
func normalizeRange(from, to time.Time) (time.Time, time.Time, error) {
	from, to = normalizeToUTC(from), normalizeToUTC(to)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, ErrInvalidTimeRange
	}
	return from, to, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.FillEvent, error) {
	from, to, err := normalizeRange(f.From, f.To)
	if err != nil {
		return nil, err
	}
	if f.Channel != 0 {
		if err := lm500.ChannelID(f.Channel).Validate(); err != nil {
			return nil, fmt.Errorf("event filter: %w", err)
		}
	}
	return s.eventRepo.List(ctx, from, to, normalizeEventType(f.Type), f.Channel)
}
