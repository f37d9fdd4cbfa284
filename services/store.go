package services

import (
	"context"
	"errors"

	"myScheduleAPI/internal/schedule"
)

var (
	ErrEntryNotFound = errors.New("schedule entry not found")
	ErrNotOwner      = errors.New("schedule entry belongs to another user")
)

// EntryStore is the contract with the hosted document store. Entries are
// always scoped to one owning user; reads and mutations against another
// user's entries fail with ErrNotOwner.
type EntryStore interface {
	ListEntries(ctx context.Context, userID string) ([]schedule.Entry, error)
	CreateEntry(ctx context.Context, userID string, fields schedule.EntryFields) (string, error)
	UpdateEntry(ctx context.Context, userID, id string, fields schedule.EntryFields) error
	DeleteEntry(ctx context.Context, userID, id string) error

	// ListenEntries registers a live subscription scoped to userID. The
	// callback receives the full current entry set immediately and again on
	// every change. The returned stop func releases the listener; it must be
	// called before the owning session goes away so no subscription leaks
	// across user-session changes.
	ListenEntries(ctx context.Context, userID string, onChange func([]schedule.Entry)) (stop func(), err error)
}
