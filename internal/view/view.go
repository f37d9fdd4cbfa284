// Package view holds the per-session UI state machine as a pure reducer:
// a single State struct, events in, new state plus backend commands out.
// Nothing here touches the network, so every transition is unit-testable.
package view

import (
	"time"

	"myScheduleAPI/internal/calendar"
	"myScheduleAPI/internal/dateutil"
	"myScheduleAPI/internal/schedule"
)

type Phase string

const (
	PhaseLoading         Phase = "loading"
	PhaseUnauthenticated Phase = "unauthenticated"
	PhaseAuthenticated   Phase = "authenticated"
)

// Form is the day-detail editor's field set.
type Form struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	Notes string `json:"notes"`
}

// State is the whole mutable view state of one session.
type State struct {
	Phase        Phase
	UserID       string
	Email        string
	ViewMonth    time.Time // normalized to the 1st of the month
	SelectedDate string
	ModalOpen    bool
	EditingID    string // non-empty means the modal edits an existing entry
	Form         Form
	Entries      []schedule.Entry
	Alert        string // last backend failure, shown until dismissed
}

// NewState starts a session in the loading phase, viewing the month of now.
func NewState(now time.Time) State {
	return State{
		Phase:     PhaseLoading,
		ViewMonth: monthOf(now),
	}
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
}

// Event is a user interaction or an external notification.
type Event interface{ isEvent() }

type AuthChanged struct { // empty UserID means signed out
	UserID string
	Email  string
}
type EntriesChanged struct{ Entries []schedule.Entry }
type DaySelected struct{ Date string }
type EditRequested struct{ ID string }
type FormChanged struct{ Form Form }
type Submitted struct{}
type Canceled struct{}
type DeleteRequested struct{ ID string }
type MonthPrev struct{}
type MonthNext struct{}
type TodayPressed struct{ Now time.Time }
type WriteFailed struct{ Message string }
type AlertDismissed struct{}

func (AuthChanged) isEvent()     {}
func (EntriesChanged) isEvent()  {}
func (DaySelected) isEvent()     {}
func (EditRequested) isEvent()   {}
func (FormChanged) isEvent()     {}
func (Submitted) isEvent()       {}
func (Canceled) isEvent()        {}
func (DeleteRequested) isEvent() {}
func (MonthPrev) isEvent()       {}
func (MonthNext) isEvent()       {}
func (TodayPressed) isEvent()    {}
func (WriteFailed) isEvent()     {}
func (AlertDismissed) isEvent()  {}

// Effect is a backend command the session runtime must execute. A write
// either completes, fails (reported back as WriteFailed), or the session
// is torn down; there is no retry.
type Effect interface{ isEffect() }

type CreateEntry struct{ Fields schedule.EntryFields }
type UpdateEntry struct {
	ID     string
	Fields schedule.EntryFields
}
type DeleteEntry struct{ ID string }

func (CreateEntry) isEffect() {}
func (UpdateEntry) isEffect() {}
func (DeleteEntry) isEffect() {}

// Reduce applies one event to the state. It never blocks and never
// touches the backend; mutations come back out as effects.
func Reduce(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case AuthChanged:
		if ev.UserID == "" {
			next := NewState(s.ViewMonth)
			next.Phase = PhaseUnauthenticated
			return next, nil
		}
		s.Phase = PhaseAuthenticated
		s.UserID = ev.UserID
		s.Email = ev.Email
		return s, nil

	case EntriesChanged:
		// Wholesale replacement from the latest snapshot; no merging.
		entries := make([]schedule.Entry, len(ev.Entries))
		copy(entries, ev.Entries)
		calendar.SortEntries(entries)
		s.Entries = entries
		return s, nil

	case DaySelected:
		if s.Phase != PhaseAuthenticated {
			return s, nil
		}
		s.SelectedDate = ev.Date
		s.Form = Form{Date: ev.Date}
		s.EditingID = ""
		s.ModalOpen = true
		return s, nil

	case EditRequested:
		entry, ok := findEntry(s.Entries, ev.ID)
		if !ok {
			return s, nil
		}
		s.Form = Form{Title: entry.Title, Date: entry.Date, Time: entry.Time, Notes: entry.Notes}
		s.EditingID = entry.ID
		s.SelectedDate = entry.Date
		s.ModalOpen = true
		return s, nil

	case FormChanged:
		s.Form = ev.Form
		return s, nil

	case Submitted:
		fields := schedule.EntryFields(s.Form)
		if fields.Validate() != nil {
			// Validation failures block submission silently; nothing is persisted.
			return s, nil
		}
		var eff Effect
		if s.EditingID != "" {
			eff = UpdateEntry{ID: s.EditingID, Fields: fields}
		} else {
			eff = CreateEntry{Fields: fields}
		}
		s.Form = Form{Date: s.SelectedDate}
		s.EditingID = ""
		return s, []Effect{eff}

	case Canceled:
		s.ModalOpen = false
		s.EditingID = ""
		s.Form = Form{Date: s.Form.Date}
		return s, nil

	case DeleteRequested:
		if s.EditingID == ev.ID {
			s.EditingID = ""
			s.Form = Form{Date: s.SelectedDate}
		}
		return s, []Effect{DeleteEntry{ID: ev.ID}}

	case MonthPrev:
		s.ViewMonth = s.ViewMonth.AddDate(0, -1, 0)
		return s, nil

	case MonthNext:
		s.ViewMonth = s.ViewMonth.AddDate(0, 1, 0)
		return s, nil

	case TodayPressed:
		todayKey := dateutil.ToKey(ev.Now)
		s.ViewMonth = monthOf(ev.Now)
		s.SelectedDate = todayKey
		s.Form.Date = todayKey
		return s, nil

	case WriteFailed:
		s.Alert = ev.Message
		return s, nil

	case AlertDismissed:
		s.Alert = ""
		return s, nil
	}
	return s, nil
}

func findEntry(entries []schedule.Entry, id string) (schedule.Entry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return schedule.Entry{}, false
}

// RenderModel is the push payload: everything a client needs to paint the
// calendar, the upcoming sidebar and the day-detail modal.
type RenderModel struct {
	Phase         Phase                       `json:"phase"`
	Email         string                      `json:"email,omitempty"`
	MonthTitle    string                      `json:"monthTitle"`
	Weekdays      []string                    `json:"weekdays"`
	Cells         []calendar.DayCell          `json:"cells"`
	EntriesByDate map[string][]schedule.Entry `json:"entriesByDate"`
	Upcoming      []schedule.Entry            `json:"upcoming"`
	SelectedDate  string                      `json:"selectedDate,omitempty"`
	DayEntries    []schedule.Entry            `json:"dayEntries,omitempty"`
	ModalOpen     bool                        `json:"modalOpen"`
	EditingID     string                      `json:"editingId,omitempty"`
	Form          Form                        `json:"form"`
	Alert         string                      `json:"alert,omitempty"`
}

// Project derives the render model from the state. now feeds the "today"
// flags and the upcoming cutoff.
func Project(s State, now time.Time) RenderModel {
	m := RenderModel{
		Phase:        s.Phase,
		Email:        s.Email,
		MonthTitle:   calendar.MonthTitle(s.ViewMonth),
		Weekdays:     dateutil.Weekdays,
		SelectedDate: s.SelectedDate,
		ModalOpen:    s.ModalOpen,
		EditingID:    s.EditingID,
		Form:         s.Form,
		Alert:        s.Alert,
	}
	if s.Phase != PhaseAuthenticated {
		return m
	}
	m.Cells = calendar.BuildMonthGridAt(s.ViewMonth, now)
	m.EntriesByDate = calendar.BucketByDate(s.Entries)
	m.Upcoming = calendar.Upcoming(s.Entries, dateutil.ToKey(now))
	if s.SelectedDate != "" {
		m.DayEntries = calendar.ForDate(s.Entries, s.SelectedDate)
	}
	return m
}
