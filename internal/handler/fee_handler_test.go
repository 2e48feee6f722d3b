package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/service"
	appErrors "github.com/noah-isme/school-ledger-api/pkg/errors"
	"github.com/noah-isme/school-ledger-api/pkg/response"
)

type feeServiceMock struct {
	statusResp *models.FeeStatusRecord
	verifyErr  error
}

func (m *feeServiceMock) SetMonthlyFee(ctx context.Context, className string, amount float64) error {
	return nil
}

func (m *feeServiceMock) GenerateChallans(ctx context.Context, req service.GenerateChallansRequest) ([]models.ChallanResult, error) {
	results := make([]models.ChallanResult, 0, len(req.StudentIDs))
	for _, id := range req.StudentIDs {
		results = append(results, models.ChallanResult{StudentID: id, Status: models.FeeStatusGenerated})
	}
	return results, nil
}

func (m *feeServiceMock) SubmitProof(ctx context.Context, studentID, month, proofRef string) (*models.FeeStatusRecord, error) {
	return m.statusResp, nil
}

func (m *feeServiceMock) Verify(ctx context.Context, studentID, month string, approve bool) (*models.FeeStatusRecord, error) {
	if m.verifyErr != nil {
		return nil, m.verifyErr
	}
	return m.statusResp, nil
}

func (m *feeServiceMock) Status(ctx context.Context, studentID, month string) (*models.FeeStatusRecord, error) {
	return m.statusResp, nil
}

func (m *feeServiceMock) MonthSummary(ctx context.Context, month string) (*models.FeeMonthSummary, error) {
	return &models.FeeMonthSummary{Month: month}, nil
}

func TestFeeHandlerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewFeeHandler(&feeServiceMock{statusResp: &models.FeeStatusRecord{
		StudentID: "STU001", BillingMonth: "2024-05", Status: models.FeeStatusPending,
	}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/fees/STU001/2024-05", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "studentId", Value: "STU001"}, {Key: "month", Value: "2024-05"}}

	handler.Status(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data := envelope.Data.(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
}

func TestFeeHandlerVerifyInvalidTransition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewFeeHandler(&feeServiceMock{
		verifyErr: appErrors.Clone(appErrors.ErrInvalidTransition, "fee record is not awaiting verification"),
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(map[string]bool{"approve": true})
	req, _ := http.NewRequest(http.MethodPost, "/fees/STU001/2024-05/verify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "studentId", Value: "STU001"}, {Key: "month", Value: "2024-05"}}

	handler.Verify(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, envelope.Error.Code)
}

func TestFeeHandlerGenerateChallansBadBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewFeeHandler(&feeServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/fees/challans", bytes.NewReader([]byte(`invalid`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.GenerateChallans(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
