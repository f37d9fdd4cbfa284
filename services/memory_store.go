package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"myScheduleAPI/internal/schedule"
)

// MemoryStore implements EntryStore in process memory. It backs the app
// when no Firebase credentials are configured (dev mode) and the tests.
// The live-subscription contract matches FirestoreStore: subscribers get
// the full current snapshot immediately and after every mutation.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]schedule.Entry
	subs    map[string]map[int]func([]schedule.Entry) // userID -> subID -> callback
	nextSub int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]schedule.Entry),
		subs:    make(map[string]map[int]func([]schedule.Entry)),
	}
}

func (s *MemoryStore) ListEntries(ctx context.Context, userID string) ([]schedule.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(userID), nil
}

func (s *MemoryStore) CreateEntry(ctx context.Context, userID string, fields schedule.EntryFields) (string, error) {
	now := time.Now()
	entry := schedule.Entry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     fields.Title,
		Date:      fields.Date,
		Time:      fields.Time,
		Notes:     fields.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.entries[entry.ID] = entry
	s.mu.Unlock()

	s.notify(userID)
	return entry.ID, nil
}

func (s *MemoryStore) UpdateEntry(ctx context.Context, userID, id string, fields schedule.EntryFields) error {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return ErrEntryNotFound
	}
	if entry.UserID != userID {
		s.mu.Unlock()
		return ErrNotOwner
	}
	entry.Title = fields.Title
	entry.Date = fields.Date
	entry.Time = fields.Time
	entry.Notes = fields.Notes
	entry.UpdatedAt = time.Now()
	s.entries[id] = entry
	s.mu.Unlock()

	s.notify(userID)
	return nil
}

func (s *MemoryStore) DeleteEntry(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return ErrEntryNotFound
	}
	if entry.UserID != userID {
		s.mu.Unlock()
		return ErrNotOwner
	}
	delete(s.entries, id)
	s.mu.Unlock()

	s.notify(userID)
	return nil
}

func (s *MemoryStore) ListenEntries(ctx context.Context, userID string, onChange func([]schedule.Entry)) (func(), error) {
	s.mu.Lock()
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[int]func([]schedule.Entry))
	}
	id := s.nextSub
	s.nextSub++
	s.subs[userID][id] = onChange
	snapshot := s.snapshotLocked(userID)
	s.mu.Unlock()

	onChange(snapshot)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs[userID], id)
			s.mu.Unlock()
		})
	}
	return stop, nil
}

func (s *MemoryStore) notify(userID string) {
	s.mu.Lock()
	snapshot := s.snapshotLocked(userID)
	callbacks := make([]func([]schedule.Entry), 0, len(s.subs[userID]))
	for _, cb := range s.subs[userID] {
		callbacks = append(callbacks, cb)
	}
	s.mu.Unlock()

	// Invoke outside the lock so a callback may call back into the store.
	for _, cb := range callbacks {
		cb(snapshot)
	}
}

func (s *MemoryStore) snapshotLocked(userID string) []schedule.Entry {
	out := []schedule.Entry{}
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}
