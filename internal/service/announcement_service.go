package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/school-ledger-api/internal/docstore"
	"github.com/noah-isme/school-ledger-api/internal/models"
	appErrors "github.com/noah-isme/school-ledger-api/pkg/errors"
)

type announcementRepository interface {
	Create(ctx context.Context, ann *models.Announcement) error
	Get(ctx context.Context, id string) (*models.Announcement, error)
	Update(ctx context.Context, ann *models.Announcement) error
	ListAll(ctx context.Context) ([]models.Announcement, error)
	Delete(ctx context.Context, id string) error
	SubscribeAll(fn func([]models.Announcement)) (docstore.Unsubscribe, error)
}

type viewStateStore interface {
	Get(ctx context.Context, viewerID, category string) (*time.Time, error)
	Set(ctx context.Context, viewerID, category string, ts time.Time) error
}

// AnnouncementService distributes audience-scoped announcements and derives
// per-viewer unread counts from "last seen" watermarks.
type AnnouncementService struct {
	repo      announcementRepository
	viewstate viewStateStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(repo announcementRepository, viewstate viewStateStore, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{repo: repo, viewstate: viewstate, validator: validate, logger: logger}
}

// PublishAnnouncementRequest describes a new announcement.
type PublishAnnouncementRequest struct {
	Title    string     `json:"title" validate:"required"`
	Body     string     `json:"body" validate:"required"`
	Priority string     `json:"priority" validate:"required"`
	Audience string     `json:"audience" validate:"required"`
	AuthorID string     `json:"-"`
	Date     *time.Time `json:"date,omitempty"`
}

// Publish stores an announcement verbatim for its audience, which is either
// the global sentinel or a class name. The audience is fixed for the life
// of the record.
func (s *AnnouncementService) Publish(ctx context.Context, req PublishAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	priority := models.AnnouncementPriority(strings.ToLower(req.Priority))
	if !priority.Valid() {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "unknown priority"),
			map[string]interface{}{"priority": req.Priority})
	}

	ann := &models.Announcement{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Body:      req.Body,
		Priority:  priority,
		Audience:  req.Audience,
		AuthorID:  req.AuthorID,
		Date:      req.Date,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, ann); err != nil {
		return nil, storageError(err, "failed to publish announcement")
	}
	return ann, nil
}

// UpdateAnnouncementRequest edits announcement content. Audience re-scoping
// is not modeled, so the field is absent here.
type UpdateAnnouncementRequest struct {
	Title    string     `json:"title" validate:"required"`
	Body     string     `json:"body" validate:"required"`
	Priority string     `json:"priority" validate:"required"`
	Date     *time.Time `json:"date,omitempty"`
}

// Update edits the content of an existing announcement in place.
func (s *AnnouncementService) Update(ctx context.Context, id string, req UpdateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	priority := models.AnnouncementPriority(strings.ToLower(req.Priority))
	if !priority.Valid() {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "unknown priority"),
			map[string]interface{}{"priority": req.Priority})
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storageError(err, "announcement not found")
	}
	existing.Title = req.Title
	existing.Body = req.Body
	existing.Priority = priority
	existing.Date = req.Date
	existing.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, storageError(err, "failed to update announcement")
	}
	return existing, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storageError(err, "failed to delete announcement")
	}
	return nil
}

// ListFor returns the announcements visible to a viewer audience, newest
// first. Global records match everyone; class records match when the
// leading class segments agree (the "-section" qualifier is ignored,
// case-insensitively).
func (s *AnnouncementService) ListFor(ctx context.Context, viewerAudience string) ([]models.Announcement, error) {
	if viewerAudience == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "audience is required")
	}
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, storageError(err, "failed to list announcements")
	}
	return filterForAudience(all, viewerAudience), nil
}

// Subscribe opens a live channel for a viewer audience: whenever the
// underlying set changes, the full matching set is recomputed and pushed.
// Callers must invoke the returned handle when their session ends.
func (s *AnnouncementService) Subscribe(viewerAudience string, onUpdate func([]models.Announcement)) (docstore.Unsubscribe, error) {
	if viewerAudience == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "audience is required")
	}
	if onUpdate == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "onUpdate callback is required")
	}
	return s.repo.SubscribeAll(func(all []models.Announcement) {
		onUpdate(filterForAudience(all, viewerAudience))
	})
}

// ComputeUnread counts records strictly newer than the watermark. With no
// watermark every record is unread.
func (s *AnnouncementService) ComputeUnread(records []models.Announcement, watermark *time.Time) int {
	if watermark == nil {
		return len(records)
	}
	unread := 0
	for _, record := range records {
		if record.EffectiveTime().After(*watermark) {
			unread++
		}
	}
	return unread
}

// UnreadCount resolves the viewer's watermark and counts unseen
// announcements in their audience.
func (s *AnnouncementService) UnreadCount(ctx context.Context, viewerID, category, viewerAudience string) (int, error) {
	records, err := s.ListFor(ctx, viewerAudience)
	if err != nil {
		return 0, err
	}
	watermark, err := s.viewstate.Get(ctx, viewerID, category)
	if err != nil {
		return 0, storageError(err, "failed to load view watermark")
	}
	return s.ComputeUnread(records, watermark), nil
}

// MarkSeen advances the viewer's watermark to now. This is viewer-local
// state, not a ledger write.
func (s *AnnouncementService) MarkSeen(ctx context.Context, viewerID, category string) error {
	if viewerID == "" || category == "" {
		return appErrors.Clone(appErrors.ErrValidation, "viewerId and category are required")
	}
	if err := s.viewstate.Set(ctx, viewerID, category, time.Now().UTC()); err != nil {
		return storageError(err, "failed to store view watermark")
	}
	return nil
}

func filterForAudience(all []models.Announcement, viewerAudience string) []models.Announcement {
	matched := make([]models.Announcement, 0, len(all))
	for _, ann := range all {
		if models.AudienceMatches(ann.Audience, viewerAudience) {
			matched = append(matched, ann)
		}
	}
	return matched
}
