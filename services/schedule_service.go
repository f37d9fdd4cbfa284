package services

import (
	"context"
	"time"

	"myScheduleAPI/internal/calendar"
	"myScheduleAPI/internal/dateutil"
	"myScheduleAPI/internal/schedule"
)

// ScheduleService layers validation and client-side ordering over an
// EntryStore. Everything else is pass-through to the backend.
type ScheduleService struct {
	store EntryStore
}

func NewScheduleService(store EntryStore) *ScheduleService {
	return &ScheduleService{store: store}
}

// ListEntries returns every entry owned by userID, sorted by date+time.
func (s *ScheduleService) ListEntries(ctx context.Context, userID string) ([]schedule.Entry, error) {
	entries, err := s.store.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	calendar.SortEntries(entries)
	return entries, nil
}

// UpcomingEntries returns the sidebar list: entries dated today or later.
func (s *ScheduleService) UpcomingEntries(ctx context.Context, userID string) ([]schedule.Entry, error) {
	entries, err := s.store.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	return calendar.Upcoming(entries, dateutil.ToKey(time.Now())), nil
}

func (s *ScheduleService) CreateEntry(ctx context.Context, userID string, fields schedule.EntryFields) (string, error) {
	if err := fields.Validate(); err != nil {
		return "", err
	}
	return s.store.CreateEntry(ctx, userID, fields)
}

func (s *ScheduleService) UpdateEntry(ctx context.Context, userID, id string, fields schedule.EntryFields) error {
	if err := fields.Validate(); err != nil {
		return err
	}
	return s.store.UpdateEntry(ctx, userID, id, fields)
}

func (s *ScheduleService) DeleteEntry(ctx context.Context, userID, id string) error {
	return s.store.DeleteEntry(ctx, userID, id)
}

// ListenEntries subscribes onChange to the user's live entry set. Each
// delivered snapshot is already sorted. The caller owns the stop func.
func (s *ScheduleService) ListenEntries(ctx context.Context, userID string, onChange func([]schedule.Entry)) (func(), error) {
	return s.store.ListenEntries(ctx, userID, func(entries []schedule.Entry) {
		calendar.SortEntries(entries)
		onChange(entries)
	})
}

// MonthView builds the render-ready grid for the month containing ref,
// with the user's entries bucketed by date key.
func (s *ScheduleService) MonthView(ctx context.Context, userID string, ref time.Time) (*calendar.MonthView, error) {
	entries, err := s.store.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	return calendar.BuildMonthView(ref, entries), nil
}
