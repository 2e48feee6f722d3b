package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/repository"
	"github.com/noah-isme/school-ledger-api/internal/service"
	appErrors "github.com/noah-isme/school-ledger-api/pkg/errors"
	"github.com/noah-isme/school-ledger-api/pkg/response"
)

type assessmentService interface {
	CreateTest(ctx context.Context, req service.CreateTestRequest) (*models.Test, error)
	GetTest(ctx context.Context, id string) (*models.Test, error)
	ListTests(ctx context.Context, filter repository.TestFilter) ([]models.Test, error)
	SetMarks(ctx context.Context, testID string, scores map[string]float64) error
	ResetMarks(ctx context.Context, testID string) error
	DeleteTest(ctx context.Context, testID string) error
}

// AssessmentHandler exposes the assessment ledger.
type AssessmentHandler struct {
	service assessmentService
}

// NewAssessmentHandler constructs the handler.
func NewAssessmentHandler(service assessmentService) *AssessmentHandler {
	return &AssessmentHandler{service: service}
}

// Create godoc
// @Summary Create a test
// @Tags Assessments
// @Accept json
// @Produce json
// @Param payload body service.CreateTestRequest true "Test payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tests [post]
func (h *AssessmentHandler) Create(c *gin.Context) {
	var req service.CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid test payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil {
		req.OwnerID = claims.UserID
	}

	test, err := h.service.CreateTest(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, test)
}

// List godoc
// @Summary List tests
// @Tags Assessments
// @Produce json
// @Param className query string false "Class name"
// @Param section query string false "Section"
// @Param owner query string false "Owner ID"
// @Success 200 {object} response.Envelope
// @Router /tests [get]
func (h *AssessmentHandler) List(c *gin.Context) {
	filter := repository.TestFilter{
		ClassName: c.Query("className"),
		Section:   c.Query("section"),
		OwnerID:   c.Query("owner"),
	}
	tests, err := h.service.ListTests(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tests)
}

// Get godoc
// @Summary Get a test with its marks
// @Tags Assessments
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tests/{id} [get]
func (h *AssessmentHandler) Get(c *gin.Context) {
	test, err := h.service.GetTest(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, test)
}

// SetMarks godoc
// @Summary Replace a test's marks wholesale
// @Description All scores are validated against [0, totalMarks] before anything is stored
// @Tags Assessments
// @Accept json
// @Produce json
// @Param id path string true "Test ID"
// @Param payload body map[string]number true "studentId to score"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tests/{id}/marks [put]
func (h *AssessmentHandler) SetMarks(c *gin.Context) {
	var scores map[string]float64
	if err := c.ShouldBindJSON(&scores); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid marks payload"))
		return
	}

	if err := h.service.SetMarks(c.Request.Context(), c.Param("id"), scores); err != nil {
		response.Error(c, err)
		return
	}
	test, err := h.service.GetTest(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, test)
}

// ResetMarks godoc
// @Summary Clear a test's marks
// @Tags Assessments
// @Produce json
// @Param id path string true "Test ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tests/{id}/marks [delete]
func (h *AssessmentHandler) ResetMarks(c *gin.Context) {
	if err := h.service.ResetMarks(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete a test
// @Tags Assessments
// @Produce json
// @Param id path string true "Test ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tests/{id} [delete]
func (h *AssessmentHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteTest(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
