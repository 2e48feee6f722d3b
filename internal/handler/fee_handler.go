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

type feeService interface {
	SetMonthlyFee(ctx context.Context, className string, amount float64) error
	GenerateChallans(ctx context.Context, req service.GenerateChallansRequest) ([]models.ChallanResult, error)
	SubmitProof(ctx context.Context, studentID, month, proofRef string) (*models.FeeStatusRecord, error)
	Verify(ctx context.Context, studentID, month string, approve bool) (*models.FeeStatusRecord, error)
	Status(ctx context.Context, studentID, month string) (*models.FeeStatusRecord, error)
	MonthSummary(ctx context.Context, month string) (*models.FeeMonthSummary, error)
}

// FeeHandler exposes the fee status ledger.
type FeeHandler struct {
	service feeService
}

// NewFeeHandler constructs the handler.
func NewFeeHandler(service feeService) *FeeHandler {
	return &FeeHandler{service: service}
}

// SetDefault godoc
// @Summary Set the default challan amount for a class
// @Tags Fees
// @Accept json
// @Produce json
// @Param className path string true "Class name"
// @Param payload body object true "Amount payload"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /fees/defaults/{className} [put]
func (h *FeeHandler) SetDefault(c *gin.Context) {
	var payload struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid fee payload"))
		return
	}

	if err := h.service.SetMonthlyFee(c.Request.Context(), c.Param("className"), payload.Amount); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GenerateChallans godoc
// @Summary Generate challans for a batch of students
// @Description Items are independent; per-student failures are reported in the result list
// @Tags Fees
// @Accept json
// @Produce json
// @Param payload body service.GenerateChallansRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /fees/challans [post]
func (h *FeeHandler) GenerateChallans(c *gin.Context) {
	var req service.GenerateChallansRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid challan payload"))
		return
	}

	results, err := h.service.GenerateChallans(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results)
}

// SubmitProof godoc
// @Summary Submit payment proof for a challan
// @Tags Fees
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param month path string true "Billing month (YYYY-MM)"
// @Param payload body object true "Proof payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /fees/{studentId}/{month}/proof [post]
func (h *FeeHandler) SubmitProof(c *gin.Context) {
	var payload struct {
		ProofRef string `json:"proof_ref"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid proof payload"))
		return
	}

	record, err := h.service.SubmitProof(c.Request.Context(), c.Param("studentId"), c.Param("month"), payload.ProofRef)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Verify godoc
// @Summary Verify or reject a submitted proof
// @Tags Fees
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param month path string true "Billing month (YYYY-MM)"
// @Param payload body object true "Verification payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /fees/{studentId}/{month}/verify [post]
func (h *FeeHandler) Verify(c *gin.Context) {
	var payload struct {
		Approve bool `json:"approve"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid verification payload"))
		return
	}

	record, err := h.service.Verify(c.Request.Context(), c.Param("studentId"), c.Param("month"), payload.Approve)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Status godoc
// @Summary Fee status for a student and month
// @Description Returns a computed pending record when none is materialised
// @Tags Fees
// @Produce json
// @Param studentId path string true "Student ID"
// @Param month path string true "Billing month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /fees/{studentId}/{month} [get]
func (h *FeeHandler) Status(c *gin.Context) {
	record, err := h.service.Status(c.Request.Context(), c.Param("studentId"), c.Param("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// MonthSummary godoc
// @Summary Per-status counts for a billing month
// @Tags Fees
// @Produce json
// @Param month path string true "Billing month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /fees/summary/{month} [get]
func (h *FeeHandler) MonthSummary(c *gin.Context) {
	summary, err := h.service.MonthSummary(c.Request.Context(), c.Param("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}
