package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/noah-isme/school-ledger-api/internal/docstore"
	"github.com/noah-isme/school-ledger-api/internal/models"
)

// AnnouncementRepository persists announcement records. Audience matching is
// not a pure equality predicate (global OR leading-segment match), so list
// and subscribe operate on the whole collection and the service applies the
// matching rule.
type AnnouncementRepository struct {
	store docstore.Store
}

// NewAnnouncementRepository constructs the repository.
func NewAnnouncementRepository(store docstore.Store) *AnnouncementRepository {
	return &AnnouncementRepository{store: store}
}

// Create inserts a new announcement keyed by its id.
func (r *AnnouncementRepository) Create(ctx context.Context, ann *models.Announcement) error {
	doc, err := docstore.Encode(ann)
	if err != nil {
		return err
	}
	if err := r.store.Create(ctx, docstore.CollectionAnnouncements, ann.ID, doc); err != nil {
		return fmt.Errorf("create announcement %s: %w", ann.ID, err)
	}
	return nil
}

// Get fetches one announcement.
func (r *AnnouncementRepository) Get(ctx context.Context, id string) (*models.Announcement, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionAnnouncements, id)
	if err != nil {
		return nil, err
	}
	var ann models.Announcement
	if err := docstore.Decode(doc, &ann); err != nil {
		return nil, err
	}
	return &ann, nil
}

// Update overwrites an existing announcement document.
func (r *AnnouncementRepository) Update(ctx context.Context, ann *models.Announcement) error {
	doc, err := docstore.Encode(ann)
	if err != nil {
		return err
	}
	if err := r.store.Upsert(ctx, docstore.CollectionAnnouncements, ann.ID, doc); err != nil {
		return fmt.Errorf("update announcement %s: %w", ann.ID, err)
	}
	return nil
}

// ListAll returns every announcement sorted newest first (Date falling back
// to CreatedAt).
func (r *AnnouncementRepository) ListAll(ctx context.Context) ([]models.Announcement, error) {
	docs, err := r.store.List(ctx, docstore.CollectionAnnouncements)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	var anns []models.Announcement
	if err := docstore.DecodeAll(docs, &anns); err != nil {
		return nil, err
	}
	SortAnnouncements(anns)
	return anns, nil
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, docstore.CollectionAnnouncements, id); err != nil {
		return fmt.Errorf("delete announcement %s: %w", id, err)
	}
	return nil
}

// SubscribeAll opens a live query over the whole collection; the caller
// applies audience scoping before fanning out to viewers.
func (r *AnnouncementRepository) SubscribeAll(fn func([]models.Announcement)) (docstore.Unsubscribe, error) {
	return r.store.Subscribe(docstore.CollectionAnnouncements, nil, func(docs []docstore.Document) {
		var anns []models.Announcement
		if err := docstore.DecodeAll(docs, &anns); err != nil {
			return
		}
		SortAnnouncements(anns)
		fn(anns)
	})
}

// SortAnnouncements orders records by effective time descending.
func SortAnnouncements(anns []models.Announcement) {
	sort.Slice(anns, func(i, j int) bool {
		return anns[i].EffectiveTime().After(anns[j].EffectiveTime())
	})
}
