package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"myScheduleAPI/internal/dateutil"
)

// ErrInvalidEntry wraps every client-side validation failure so handlers
// can map them to a 400 without inspecting individual messages.
var ErrInvalidEntry = errors.New("invalid schedule entry")

// Entry is one user-owned schedule record, stored in the "schedules"
// collection of the document store.
type Entry struct {
	ID        string    `json:"id" firestore:"-"`
	UserID    string    `json:"userId" firestore:"userId"`
	Title     string    `json:"title" firestore:"title"`
	Date      string    `json:"date" firestore:"date"`
	Time      string    `json:"time" firestore:"time"`
	Notes     string    `json:"notes" firestore:"notes"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// EntryFields is the mutable part of an entry, used for both create and
// update payloads. Updates replace all four fields wholesale.
type EntryFields struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	Notes string `json:"notes"`
}

// Validate enforces the entry invariants: non-empty title, a canonical
// YYYY-MM-DD date and, when present, an HH:MM time.
func (f EntryFields) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidEntry)
	}
	if f.Date == "" {
		return fmt.Errorf("%w: date is required", ErrInvalidEntry)
	}
	if _, err := dateutil.ParseKey(f.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidEntry)
	}
	if f.Time != "" {
		if _, err := time.Parse("15:04", f.Time); err != nil {
			return fmt.Errorf("%w: time must be HH:MM", ErrInvalidEntry)
		}
	}
	return nil
}
