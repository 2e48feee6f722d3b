package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-ledger-api/internal/docstore"
	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/repository"
	appErrors "github.com/noah-isme/school-ledger-api/pkg/errors"
)

func newAssessmentService() *AssessmentService {
	store := docstore.NewMemory(nil)
	return NewAssessmentService(repository.NewAssessmentRepository(store), nil, nil)
}

func validTestRequest() CreateTestRequest {
	return CreateTestRequest{
		Name:       "Midterm",
		Subject:    "Mathematics",
		Date:       "2024-03-20",
		TotalMarks: 50,
		ClassName:  "Class 10",
		Section:    "A",
		OwnerID:    "STF001",
	}
}

func TestCreateTestRequiresPositiveTotalMarks(t *testing.T) {
	svc := newAssessmentService()
	ctx := context.Background()

	for _, total := range []int{0, -10} {
		req := validTestRequest()
		req.TotalMarks = total
		_, err := svc.CreateTest(ctx, req)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}

	test, err := svc.CreateTest(ctx, validTestRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, test.ID)
	assert.Empty(t, test.Marks)
}

func TestSetMarksIsAllOrNothing(t *testing.T) {
	svc := newAssessmentService()
	ctx := context.Background()

	test, err := svc.CreateTest(ctx, validTestRequest())
	require.NoError(t, err)

	// One out-of-bounds entry fails the whole write and stores nothing.
	err = svc.SetMarks(ctx, test.ID, map[string]float64{"STU001": 60})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "STU001", appErr.Details["student_id"])

	stored, err := svc.GetTest(ctx, test.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Marks)

	// A mixed map with one violation leaves previously stored marks intact.
	require.NoError(t, svc.SetMarks(ctx, test.ID, map[string]float64{"STU001": 42}))
	err = svc.SetMarks(ctx, test.ID, map[string]float64{"STU001": 45, "STU002": 51})
	require.Error(t, err)

	stored, err = svc.GetTest(ctx, test.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"STU001": 42}, stored.Marks)
}

func TestSetMarksReplacesWholesale(t *testing.T) {
	svc := newAssessmentService()
	ctx := context.Background()

	test, err := svc.CreateTest(ctx, validTestRequest())
	require.NoError(t, err)

	require.NoError(t, svc.SetMarks(ctx, test.ID, map[string]float64{"STU001": 40, "STU002": 35}))
	require.NoError(t, svc.SetMarks(ctx, test.ID, map[string]float64{"STU003": 50}))

	stored, err := svc.GetTest(ctx, test.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"STU003": 50}, stored.Marks)

	// Boundary scores are allowed.
	require.NoError(t, svc.SetMarks(ctx, test.ID, map[string]float64{"STU001": 0, "STU002": 50}))
}

func TestResetMarksClearsTheMap(t *testing.T) {
	svc := newAssessmentService()
	ctx := context.Background()

	test, err := svc.CreateTest(ctx, validTestRequest())
	require.NoError(t, err)
	require.NoError(t, svc.SetMarks(ctx, test.ID, map[string]float64{"STU001": 40}))

	require.NoError(t, svc.ResetMarks(ctx, test.ID))

	stored, err := svc.GetTest(ctx, test.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Marks)
}

func TestDeleteTestRemovesDocument(t *testing.T) {
	svc := newAssessmentService()
	ctx := context.Background()

	test, err := svc.CreateTest(ctx, validTestRequest())
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTest(ctx, test.ID))

	_, err = svc.GetTest(ctx, test.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSetMarksUnknownTest(t *testing.T) {
	svc := newAssessmentService()
	err := svc.SetMarks(context.Background(), "missing", map[string]float64{"STU001": 10})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPercentageDisplay(t *testing.T) {
	score := 42.0
	assert.Equal(t, "84.0", models.Percentage(&score, 50))

	third := 1.0
	assert.Equal(t, "33.3", models.Percentage(&third, 3))

	// An absent score renders as the sentinel, never as zero.
	assert.Equal(t, models.ScoreAbsent, models.Percentage(nil, 50))
}
