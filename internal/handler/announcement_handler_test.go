package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-ledger-api/internal/docstore"
	"github.com/noah-isme/school-ledger-api/internal/middleware"
	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/service"
	"github.com/noah-isme/school-ledger-api/pkg/response"
)

type announcementServiceMock struct {
	listAudience   string
	unreadAudience string
}

func (m *announcementServiceMock) Publish(ctx context.Context, req service.PublishAnnouncementRequest) (*models.Announcement, error) {
	return &models.Announcement{ID: "ann-1", Title: req.Title, Audience: req.Audience}, nil
}

func (m *announcementServiceMock) Update(ctx context.Context, id string, req service.UpdateAnnouncementRequest) (*models.Announcement, error) {
	return &models.Announcement{ID: id, Title: req.Title}, nil
}

func (m *announcementServiceMock) Delete(ctx context.Context, id string) error { return nil }

func (m *announcementServiceMock) ListFor(ctx context.Context, viewerAudience string) ([]models.Announcement, error) {
	m.listAudience = viewerAudience
	return []models.Announcement{}, nil
}

func (m *announcementServiceMock) Subscribe(viewerAudience string, onUpdate func([]models.Announcement)) (docstore.Unsubscribe, error) {
	return func() {}, nil
}

func (m *announcementServiceMock) UnreadCount(ctx context.Context, viewerID, category, viewerAudience string) (int, error) {
	m.unreadAudience = viewerAudience
	return 3, nil
}

func (m *announcementServiceMock) MarkSeen(ctx context.Context, viewerID, category string) error {
	return nil
}

func TestAnnouncementHandlerListRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAnnouncementHandler(&announcementServiceMock{}, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/announcements", nil)
	c.Request = req

	handler.List(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAnnouncementHandlerListScopesStudentToClass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &announcementServiceMock{}
	handler := NewAnnouncementHandler(mock, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	// A student's audience override is ignored.
	req, _ := http.NewRequest(http.MethodGet, "/announcements?audience=Class+12", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID: "STU001", Role: models.RoleStudent, ClassName: "Class 10-A",
	})

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Class 10-A", mock.listAudience)
}

func TestAnnouncementHandlerUnread(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &announcementServiceMock{}
	handler := NewAnnouncementHandler(mock, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/announcements/unread", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "ADM001", Role: models.RoleAdmin})

	handler.Unread(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.AudienceGlobal, mock.unreadAudience)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data := envelope.Data.(map[string]interface{})
	assert.Equal(t, float64(3), data["unread"])
}
