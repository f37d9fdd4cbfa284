package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myScheduleAPI/internal/schedule"
	"myScheduleAPI/services"
	"myScheduleAPI/tests/helpers"
)

func TestFirestoreStore_CrudFlow(t *testing.T) {
	client := helpers.SetupFirestore(t)
	defer helpers.CleanupSchedules(t, client)

	store := services.NewFirestoreStore(client)
	ctx := context.Background()
	userID := "fs_user_" + time.Now().Format("20060102150405")

	id, err := store.CreateEntry(ctx, userID, schedule.EntryFields{Title: "Dentist", Date: "2024-03-15"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	entries, err := store.ListEntries(ctx, userID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
	assert.Equal(t, "Dentist", entries[0].Title)
	assert.Equal(t, "2024-03-15", entries[0].Date)
	createdAt := entries[0].CreatedAt

	err = store.UpdateEntry(ctx, userID, id, schedule.EntryFields{Title: "Dentist", Date: "2024-03-15", Time: "09:30"})
	require.NoError(t, err)

	entries, err = store.ListEntries(ctx, userID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "09:30", entries[0].Time)
	assert.Equal(t, "Dentist", entries[0].Title)
	assert.True(t, entries[0].UpdatedAt.After(createdAt))

	require.NoError(t, store.DeleteEntry(ctx, userID, id))

	entries, err = store.ListEntries(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.ErrorIs(t, store.DeleteEntry(ctx, userID, id), services.ErrEntryNotFound)
}

func TestFirestoreStore_OwnershipEnforced(t *testing.T) {
	client := helpers.SetupFirestore(t)
	defer helpers.CleanupSchedules(t, client)

	store := services.NewFirestoreStore(client)
	ctx := context.Background()
	suffix := time.Now().Format("20060102150405")
	userA := "fs_user_a_" + suffix
	userB := "fs_user_b_" + suffix

	id, err := store.CreateEntry(ctx, userA, schedule.EntryFields{Title: "A's entry", Date: "2024-03-15"})
	require.NoError(t, err)

	entriesB, err := store.ListEntries(ctx, userB)
	require.NoError(t, err)
	assert.Empty(t, entriesB, "user A's entry must not appear in user B's listing")

	assert.ErrorIs(t, store.UpdateEntry(ctx, userB, id, schedule.EntryFields{Title: "x", Date: "2024-01-01"}), services.ErrNotOwner)
	assert.ErrorIs(t, store.DeleteEntry(ctx, userB, id), services.ErrNotOwner)
}

func TestFirestoreStore_ListenDeliversSnapshots(t *testing.T) {
	client := helpers.SetupFirestore(t)
	defer helpers.CleanupSchedules(t, client)

	store := services.NewFirestoreStore(client)
	ctx := context.Background()
	userID := "fs_listen_" + time.Now().Format("20060102150405")

	snapshots := make(chan []schedule.Entry, 8)
	stop, err := store.ListenEntries(ctx, userID, func(entries []schedule.Entry) {
		snapshots <- entries
	})
	require.NoError(t, err)
	defer stop()

	waitForSnapshot := func(want int) []schedule.Entry {
		deadline := time.After(10 * time.Second)
		for {
			select {
			case snap := <-snapshots:
				if len(snap) == want {
					return snap
				}
			case <-deadline:
				t.Fatalf("timed out waiting for snapshot with %d entries", want)
			}
		}
	}

	waitForSnapshot(0)

	id, err := store.CreateEntry(ctx, userID, schedule.EntryFields{Title: "Dentist", Date: "2024-03-15"})
	require.NoError(t, err)
	snap := waitForSnapshot(1)
	assert.Equal(t, id, snap[0].ID)

	require.NoError(t, store.DeleteEntry(ctx, userID, id))
	waitForSnapshot(0)
}
