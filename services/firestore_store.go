package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"myScheduleAPI/internal/schedule"
)

const schedulesCollection = "schedules"

// FirestoreStore persists entries in the hosted document store. All
// queries filter on exact-match userId; sorting happens client-side.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) ListEntries(ctx context.Context, userID string) ([]schedule.Entry, error) {
	iter := s.client.Collection(schedulesCollection).
		Where("userId", "==", userID).
		Documents(ctx)
	defer iter.Stop()

	entries := []schedule.Entry{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list schedules: %w", err)
		}
		entries = append(entries, docToEntry(doc))
	}
	return entries, nil
}

func (s *FirestoreStore) CreateEntry(ctx context.Context, userID string, fields schedule.EntryFields) (string, error) {
	now := time.Now()
	entry := schedule.Entry{
		UserID:    userID,
		Title:     fields.Title,
		Date:      fields.Date,
		Time:      fields.Time,
		Notes:     fields.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ref, _, err := s.client.Collection(schedulesCollection).Add(ctx, entry)
	if err != nil {
		return "", fmt.Errorf("failed to create schedule: %w", err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) UpdateEntry(ctx context.Context, userID, id string, fields schedule.EntryFields) error {
	ref, err := s.ownedRef(ctx, userID, id)
	if err != nil {
		return err
	}

	_, err = ref.Update(ctx, []firestore.Update{
		{Path: "title", Value: fields.Title},
		{Path: "date", Value: fields.Date},
		{Path: "time", Value: fields.Time},
		{Path: "notes", Value: fields.Notes},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return fmt.Errorf("failed to update schedule %s: %w", id, err)
	}
	return nil
}

func (s *FirestoreStore) DeleteEntry(ctx context.Context, userID, id string) error {
	ref, err := s.ownedRef(ctx, userID, id)
	if err != nil {
		return err
	}

	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete schedule %s: %w", id, err)
	}
	return nil
}

func (s *FirestoreStore) ListenEntries(ctx context.Context, userID string, onChange func([]schedule.Entry)) (func(), error) {
	listenCtx, cancel := context.WithCancel(ctx)
	snaps := s.client.Collection(schedulesCollection).
		Where("userId", "==", userID).
		Snapshots(listenCtx)

	go func() {
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					log.Printf("Schedule listener for user %s stopped: %v", userID, err)
				}
				return
			}

			entries := []schedule.Entry{}
			for {
				doc, err := snap.Documents.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					log.Printf("Schedule listener for user %s: bad snapshot: %v", userID, err)
					break
				}
				entries = append(entries, docToEntry(doc))
			}
			onChange(entries)
		}
	}()

	return cancel, nil
}

// ownedRef resolves an entry ref and enforces ownership. The backend's
// security rules enforce the same invariant; this keeps error reporting
// meaningful when the admin credential bypasses them.
func (s *FirestoreStore) ownedRef(ctx context.Context, userID, id string) (*firestore.DocumentRef, error) {
	ref := s.client.Collection(schedulesCollection).Doc(id)
	doc, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule %s: %w", id, err)
	}

	var entry schedule.Entry
	if err := doc.DataTo(&entry); err != nil {
		return nil, fmt.Errorf("failed to decode schedule %s: %w", id, err)
	}
	if entry.UserID != userID {
		return nil, ErrNotOwner
	}
	return ref, nil
}

func docToEntry(doc *firestore.DocumentSnapshot) schedule.Entry {
	var entry schedule.Entry
	if err := doc.DataTo(&entry); err != nil {
		log.Printf("Skipping malformed schedule document %s: %v", doc.Ref.ID, err)
	}
	entry.ID = doc.Ref.ID
	return entry
}
