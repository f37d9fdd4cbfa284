package helpers

import (
	"context"
	"net/http"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"myScheduleAPI/middleware"
)

// SetupFirestore connects to the Firestore emulator. Tests that need it
// are skipped unless FIRESTORE_EMULATOR_HOST is set.
func SetupFirestore(t *testing.T) *firestore.Client {
	t.Helper()

	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set; skipping Firestore integration test")
	}

	client, err := firestore.NewClient(context.Background(), "demo-schedule-test")
	if err != nil {
		t.Fatalf("Failed to connect to Firestore emulator: %v", err)
	}
	return client
}

// CleanupSchedules removes test documents and closes the client.
func CleanupSchedules(t *testing.T, client *firestore.Client) {
	t.Helper()

	ctx := context.Background()
	iter := client.Collection("schedules").Documents(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			t.Logf("Warning: failed to cleanup test data: %v", err)
			break
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			t.Logf("Warning: failed to delete test document %s: %v", doc.Ref.ID, err)
		}
	}
	client.Close()
}

// RequestWithUser injects an authenticated user into the request
// context, simulating a successful pass through the auth middleware.
func RequestWithUser(req *http.Request, userID, email string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	ctx = context.WithValue(ctx, middleware.UserEmailKey, email)
	return req.WithContext(ctx)
}
