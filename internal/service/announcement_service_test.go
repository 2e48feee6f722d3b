package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-ledger-api/internal/docstore"
	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/repository"
	appErrors "github.com/noah-isme/school-ledger-api/pkg/errors"
)

func newAnnouncementService() (*AnnouncementService, *repository.MemoryViewState) {
	store := docstore.NewMemory(nil)
	viewstate := repository.NewMemoryViewState()
	svc := NewAnnouncementService(repository.NewAnnouncementRepository(store), viewstate, nil, nil)
	return svc, viewstate
}

func publish(t *testing.T, svc *AnnouncementService, title, audience string) *models.Announcement {
	t.Helper()
	ann, err := svc.Publish(context.Background(), PublishAnnouncementRequest{
		Title:    title,
		Body:     "body of " + title,
		Priority: "medium",
		Audience: audience,
		AuthorID: "ADM001",
	})
	require.NoError(t, err)
	return ann
}

func TestAudienceScoping(t *testing.T) {
	svc, _ := newAnnouncementService()
	ctx := context.Background()

	publish(t, svc, "holiday notice", models.AudienceGlobal)
	publish(t, svc, "section briefing", "Class 10-A")
	publish(t, svc, "other class", "Class 9")

	cases := []struct {
		name     string
		audience string
		want     []string
	}{
		{"same class no section", "Class 10", []string{"holiday notice", "section briefing"}},
		{"sibling section", "Class 10-B", []string{"holiday notice", "section briefing"}},
		{"case insensitive", "class 10-a", []string{"holiday notice", "section briefing"}},
		{"different class", "Class 8", []string{"holiday notice"}},
		{"global viewer sees all", models.AudienceGlobal, []string{"holiday notice", "section briefing", "other class"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			anns, err := svc.ListFor(ctx, tc.audience)
			require.NoError(t, err)
			titles := make([]string, 0, len(anns))
			for _, ann := range anns {
				titles = append(titles, ann.Title)
			}
			assert.ElementsMatch(t, tc.want, titles)
		})
	}
}

func TestListForOrdersNewestFirst(t *testing.T) {
	svc, _ := newAnnouncementService()
	ctx := context.Background()

	older := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)

	_, err := svc.Publish(ctx, PublishAnnouncementRequest{
		Title: "older", Body: "b", Priority: "low", Audience: models.AudienceGlobal, Date: &older,
	})
	require.NoError(t, err)
	_, err = svc.Publish(ctx, PublishAnnouncementRequest{
		Title: "newer", Body: "b", Priority: "high", Audience: models.AudienceGlobal, Date: &newer,
	})
	require.NoError(t, err)

	anns, err := svc.ListFor(ctx, "Class 10")
	require.NoError(t, err)
	require.Len(t, anns, 2)
	assert.Equal(t, "newer", anns[0].Title)
	assert.Equal(t, "older", anns[1].Title)
}

func TestPublishRejectsUnknownPriority(t *testing.T) {
	svc, _ := newAnnouncementService()

	_, err := svc.Publish(context.Background(), PublishAnnouncementRequest{
		Title: "t", Body: "b", Priority: "urgent", Audience: models.AudienceGlobal,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "urgent", appErr.Details["priority"])
}

func TestUpdateEditsContentInPlace(t *testing.T) {
	svc, _ := newAnnouncementService()
	ctx := context.Background()

	ann := publish(t, svc, "draft", "Class 10-A")

	updated, err := svc.Update(ctx, ann.ID, UpdateAnnouncementRequest{
		Title: "final", Body: "revised", Priority: "high",
	})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, models.AnnouncementPriorityHigh, updated.Priority)
	assert.Equal(t, "Class 10-A", updated.Audience)

	_, err = svc.Update(ctx, "missing", UpdateAnnouncementRequest{Title: "t", Body: "b", Priority: "low"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUnreadWatermark(t *testing.T) {
	svc, _ := newAnnouncementService()
	ctx := context.Background()

	publish(t, svc, "first", models.AudienceGlobal)
	publish(t, svc, "second", "Class 10-A")

	// No watermark yet: everything visible is unread.
	count, err := svc.UnreadCount(ctx, "STU001", "announcements", "Class 10")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, svc.MarkSeen(ctx, "STU001", "announcements"))

	count, err = svc.UnreadCount(ctx, "STU001", "announcements", "Class 10")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// A record published after the watermark counts again.
	later := time.Now().UTC().Add(time.Minute)
	_, err = svc.Publish(ctx, PublishAnnouncementRequest{
		Title: "third", Body: "b", Priority: "low", Audience: models.AudienceGlobal, Date: &later,
	})
	require.NoError(t, err)

	count, err = svc.UnreadCount(ctx, "STU001", "announcements", "Class 10")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Watermarks are per viewer.
	count, err = svc.UnreadCount(ctx, "STU002", "announcements", "Class 10")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestComputeUnreadStrictlyAfter(t *testing.T) {
	svc, _ := newAnnouncementService()

	at := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	records := []models.Announcement{
		{ID: "a", Date: &at},
		{ID: "b", CreatedAt: at.Add(time.Second)},
		{ID: "c", CreatedAt: at.Add(-time.Second)},
	}

	assert.Equal(t, 3, svc.ComputeUnread(records, nil))
	// A record exactly at the watermark is already seen.
	assert.Equal(t, 1, svc.ComputeUnread(records, &at))
	after := at.Add(time.Minute)
	assert.Equal(t, 0, svc.ComputeUnread(records, &after))
}

func TestSubscribePushesScopedSets(t *testing.T) {
	hub := docstore.NewHub(docstore.HubConfig{Workers: 1, BufferSize: 16})
	store := docstore.NewMemory(hub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx, store)
	defer hub.Stop()

	svc := NewAnnouncementService(repository.NewAnnouncementRepository(store), repository.NewMemoryViewState(), nil, nil)

	var mu sync.Mutex
	var pushes [][]models.Announcement
	updates := make(chan struct{}, 16)

	unsubscribe, err := svc.Subscribe("Class 10", func(anns []models.Announcement) {
		mu.Lock()
		pushes = append(pushes, anns)
		mu.Unlock()
		updates <- struct{}{}
	})
	require.NoError(t, err)

	waitUpdate := func() {
		t.Helper()
		select {
		case <-updates:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for subscription push")
		}
	}

	// Initial snapshot of an empty collection.
	waitUpdate()

	publish(t, svc, "visible", "Class 10-A")
	waitUpdate()
	publish(t, svc, "hidden", "Class 9")
	waitUpdate()

	mu.Lock()
	last := pushes[len(pushes)-1]
	mu.Unlock()
	require.Len(t, last, 1)
	assert.Equal(t, "visible", last[0].Title)

	unsubscribe()
	publish(t, svc, "after unsubscribe", models.AudienceGlobal)

	select {
	case <-updates:
		t.Fatal("received push after unsubscribe")
	case <-time.After(200 * time.Millisecond):
	}
}
