package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/service"
	appErrors "github.com/noah-isme/school-ledger-api/pkg/errors"
	"github.com/noah-isme/school-ledger-api/pkg/response"
)

type attendanceService interface {
	Mark(ctx context.Context, req service.MarkAttendanceRequest) (*models.AttendanceRecord, error)
	History(ctx context.Context, personID string) ([]models.AttendanceRecord, error)
	MonthlyStats(ctx context.Context, personID, month string) (*models.AttendanceMonthlyStats, error)
}

// AttendanceHandler exposes the attendance ledger.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Mark godoc
// @Summary Mark or correct attendance
// @Description Upsert the attendance record for (personId, date)
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil {
		req.MarkedBy = claims.UserID
	}

	record, err := h.service.Mark(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// History godoc
// @Summary Attendance history
// @Description Full attendance history for a person, newest first
// @Tags Attendance
// @Produce json
// @Param personId path string true "Person ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/{personId}/history [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	records, err := h.service.History(c.Request.Context(), c.Param("personId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}

// Stats godoc
// @Summary Monthly attendance statistics
// @Description Present/absent counts, percentage and danger flag for a month
// @Tags Attendance
// @Produce json
// @Param personId path string true "Person ID"
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/{personId}/stats [get]
func (h *AttendanceHandler) Stats(c *gin.Context) {
	stats, err := h.service.MonthlyStats(c.Request.Context(), c.Param("personId"), c.Query("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}
