package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-ledger-api/internal/docstore"
	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/service"
	appErrors "github.com/noah-isme/school-ledger-api/pkg/errors"
	"github.com/noah-isme/school-ledger-api/pkg/response"
)

type announcementService interface {
	Publish(ctx context.Context, req service.PublishAnnouncementRequest) (*models.Announcement, error)
	Update(ctx context.Context, id string, req service.UpdateAnnouncementRequest) (*models.Announcement, error)
	Delete(ctx context.Context, id string) error
	ListFor(ctx context.Context, viewerAudience string) ([]models.Announcement, error)
	Subscribe(viewerAudience string, onUpdate func([]models.Announcement)) (docstore.Unsubscribe, error)
	UnreadCount(ctx context.Context, viewerID, category, viewerAudience string) (int, error)
	MarkSeen(ctx context.Context, viewerID, category string) error
}

type subscriberMetrics interface {
	SubscriberOpened()
	SubscriberClosed()
}

// AnnouncementHandler exposes announcement distribution, including the SSE
// stream endpoint that backs live subscriptions.
type AnnouncementHandler struct {
	service announcementService
	metrics subscriberMetrics
}

// NewAnnouncementHandler constructs the handler. metrics may be nil.
func NewAnnouncementHandler(service announcementService, metrics subscriberMetrics) *AnnouncementHandler {
	return &AnnouncementHandler{service: service, metrics: metrics}
}

// Publish godoc
// @Summary Publish an announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param payload body service.PublishAnnouncementRequest true "Announcement payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /announcements [post]
func (h *AnnouncementHandler) Publish(c *gin.Context) {
	var req service.PublishAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid announcement payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil {
		req.AuthorID = claims.UserID
	}

	ann, err := h.service.Publish(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ann)
}

// Update godoc
// @Summary Edit an announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param id path string true "Announcement ID"
// @Param payload body service.UpdateAnnouncementRequest true "Announcement payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /announcements/{id} [put]
func (h *AnnouncementHandler) Update(c *gin.Context) {
	var req service.UpdateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid announcement payload"))
		return
	}

	ann, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ann)
}

// Delete godoc
// @Summary Delete an announcement
// @Tags Announcements
// @Produce json
// @Param id path string true "Announcement ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /announcements/{id} [delete]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List godoc
// @Summary List announcements visible to the viewer
// @Tags Announcements
// @Produce json
// @Param audience query string false "Audience override (staff/admin only)"
// @Success 200 {object} response.Envelope
// @Router /announcements [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	anns, err := h.service.ListFor(c.Request.Context(), viewerAudience(c, claims))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, anns)
}

// Stream godoc
// @Summary Live announcement stream (SSE)
// @Description Pushes the full visible set on every change; the subscription is released when the client disconnects
// @Tags Announcements
// @Produce text/event-stream
// @Param audience query string false "Audience override (staff/admin only)"
// @Success 200 {string} string "event stream"
// @Router /announcements/stream [get]
func (h *AnnouncementHandler) Stream(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	// Buffered so a slow client never blocks the hub worker; intermediate
	// sets may be dropped, the latest full set always arrives.
	updates := make(chan []models.Announcement, 8)
	unsubscribe, err := h.service.Subscribe(viewerAudience(c, claims), func(anns []models.Announcement) {
		select {
		case updates <- anns:
		default:
		}
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	defer unsubscribe()

	if h.metrics != nil {
		h.metrics.SubscriberOpened()
		defer h.metrics.SubscriberClosed()
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case anns := <-updates:
			c.SSEvent("announcements", anns)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// Unread godoc
// @Summary Unread announcement count for the viewer
// @Tags Announcements
// @Produce json
// @Param category query string false "Watermark category (default announcements)"
// @Success 200 {object} response.Envelope
// @Router /announcements/unread [get]
func (h *AnnouncementHandler) Unread(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	category := c.DefaultQuery("category", "announcements")

	count, err := h.service.UnreadCount(c.Request.Context(), claims.UserID, category, viewerAudience(c, claims))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"unread": count})
}

// MarkSeen godoc
// @Summary Advance the viewer's seen watermark
// @Tags Announcements
// @Accept json
// @Produce json
// @Param payload body object false "Category payload"
// @Success 204 {object} response.Envelope
// @Router /announcements/seen [post]
func (h *AnnouncementHandler) MarkSeen(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		Category string `json:"category"`
	}
	// An empty body defaults the category.
	_ = c.ShouldBindJSON(&payload)
	if payload.Category == "" {
		payload.Category = "announcements"
	}

	if err := h.service.MarkSeen(c.Request.Context(), claims.UserID, payload.Category); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
