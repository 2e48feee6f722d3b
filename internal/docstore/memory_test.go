package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUpsertOverwritesByKey(t *testing.T) {
	store := NewMemory(nil)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "attendance", "STU001_2024-03-10", Document{"status": "present"}))
	require.NoError(t, store.Upsert(ctx, "attendance", "STU001_2024-03-10", Document{"status": "absent"}))

	docs, err := store.List(ctx, "attendance")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "absent", docs[0]["status"])
	assert.Equal(t, "STU001_2024-03-10", docs[0].Key())
}

func TestMemoryCreateRejectsDuplicateKey(t *testing.T) {
	store := NewMemory(nil)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "tests", "test-1", Document{"name": "Midterm"}))
	err := store.Create(ctx, "tests", "test-1", Document{"name": "Final"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestMemoryUpdateMergesPatch(t *testing.T) {
	store := NewMemory(nil)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "fee_status", "STU001_2024-05", Document{"status": "generated", "amount": 500.0}))
	require.NoError(t, store.Update(ctx, "fee_status", "STU001_2024-05", Document{"status": "submitted", "proof_ref": "ref-1"}))

	doc, err := store.Get(ctx, "fee_status", "STU001_2024-05")
	require.NoError(t, err)
	assert.Equal(t, "submitted", doc["status"])
	assert.Equal(t, 500.0, doc["amount"])
	assert.Equal(t, "ref-1", doc["proof_ref"])

	assert.ErrorIs(t, store.Update(ctx, "fee_status", "missing", Document{"status": "generated"}), ErrNotFound)
}

func TestMemoryQueryAppliesEqualityFilters(t *testing.T) {
	store := NewMemory(nil)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "attendance", "STU001_2024-03-10", Document{"person_id": "STU001", "status": "present"}))
	require.NoError(t, store.Upsert(ctx, "attendance", "STU001_2024-03-11", Document{"person_id": "STU001", "status": "absent"}))
	require.NoError(t, store.Upsert(ctx, "attendance", "STU002_2024-03-10", Document{"person_id": "STU002", "status": "present"}))

	docs, err := store.Query(ctx, "attendance", []Filter{Eq("person_id", "STU001")})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = store.Query(ctx, "attendance", []Filter{Eq("person_id", "STU001"), Eq("status", "absent")})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "STU001_2024-03-11", docs[0].Key())
}

func TestMemoryDelete(t *testing.T) {
	store := NewMemory(nil)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "tests", "test-1", Document{"name": "Midterm"}))
	require.NoError(t, store.Delete(ctx, "tests", "test-1"))

	_, err := store.Get(ctx, "tests", "test-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "tests", "test-1"), ErrNotFound)
}

func collectPushes(t *testing.T) (OnChange, chan []Document) {
	t.Helper()
	pushes := make(chan []Document, 8)
	return func(docs []Document) { pushes <- docs }, pushes
}

func waitForPush(t *testing.T, pushes chan []Document) []Document {
	t.Helper()
	select {
	case docs := <-pushes:
		return docs
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscription push")
		return nil
	}
}

func TestHubDeliversSnapshotAndChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(HubConfig{Workers: 1})
	store := NewMemory(hub)
	hub.Start(ctx, store)
	defer hub.Stop()

	require.NoError(t, store.Upsert(ctx, "announcements", "ann-1", Document{"audience": "global", "title": "Welcome"}))

	onChange, pushes := collectPushes(t)
	unsubscribe, err := store.Subscribe("announcements", []Filter{Eq("audience", "global")}, onChange)
	require.NoError(t, err)
	defer unsubscribe()

	snapshot := waitForPush(t, pushes)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Welcome", snapshot[0]["title"])

	require.NoError(t, store.Upsert(ctx, "announcements", "ann-2", Document{"audience": "global", "title": "Holiday"}))

	// The refresh always carries the full matching set, not a diff.
	var got []Document
	for len(got) != 2 {
		got = waitForPush(t, pushes)
	}
	assert.Len(t, got, 2)
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(HubConfig{Workers: 1})
	store := NewMemory(hub)
	hub.Start(ctx, store)
	defer hub.Stop()

	onChange, pushes := collectPushes(t)
	unsubscribe, err := store.Subscribe("tests", nil, onChange)
	require.NoError(t, err)

	waitForPush(t, pushes)
	unsubscribe()

	require.NoError(t, store.Upsert(ctx, "tests", "test-1", Document{"name": "Midterm"}))

	select {
	case docs := <-pushes:
		t.Fatalf("expected no push after unsubscribe, got %d docs", len(docs))
	case <-time.After(200 * time.Millisecond):
	}
}

func TestHubFiltersScopeSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(HubConfig{Workers: 1})
	store := NewMemory(hub)
	hub.Start(ctx, store)
	defer hub.Stop()

	onChange, pushes := collectPushes(t)
	unsubscribe, err := store.Subscribe("attendance", []Filter{Eq("person_id", "STU001")}, onChange)
	require.NoError(t, err)
	defer unsubscribe()

	waitForPush(t, pushes)

	require.NoError(t, store.Upsert(ctx, "attendance", "STU002_2024-03-10", Document{"person_id": "STU002"}))
	got := waitForPush(t, pushes)
	assert.Empty(t, got)
}
