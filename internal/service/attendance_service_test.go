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

func newAttendanceService() (*AttendanceService, *docstore.Memory) {
	store := docstore.NewMemory(nil)
	repo := repository.NewAttendanceRepository(store)
	return NewAttendanceService(repo, nil, nil), store
}

func TestMarkAttendanceIsIdempotentAndLastWriteWins(t *testing.T) {
	svc, _ := newAttendanceService()
	ctx := context.Background()

	_, err := svc.Mark(ctx, MarkAttendanceRequest{PersonID: "STU001", Date: "2024-03-11", Status: "present", Kind: "student"})
	require.NoError(t, err)
	_, err = svc.Mark(ctx, MarkAttendanceRequest{PersonID: "STU001", Date: "2024-03-11", Status: "present", Kind: "student"})
	require.NoError(t, err)

	history, err := svc.History(ctx, "STU001")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.AttendanceStatusPresent, history[0].Status)

	// Correcting the same day leaves exactly one record with the latest status.
	_, err = svc.Mark(ctx, MarkAttendanceRequest{PersonID: "STU001", Date: "2024-03-11", Status: "absent", Kind: "student"})
	require.NoError(t, err)

	history, err = svc.History(ctx, "STU001")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.AttendanceStatusAbsent, history[0].Status)
}

func TestMarkAttendanceRejectsStudentRestDay(t *testing.T) {
	svc, _ := newAttendanceService()
	ctx := context.Background()

	// 2024-03-10 is a Sunday.
	_, err := svc.Mark(ctx, MarkAttendanceRequest{PersonID: "STU001", Date: "2024-03-10", Status: "present", Kind: "student"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPolicyViolation.Code, appErrors.FromError(err).Code)

	// Staff records are unaffected by the rest-day policy.
	record, err := svc.Mark(ctx, MarkAttendanceRequest{PersonID: "STF007", Date: "2024-03-10", Status: "present", Kind: "staff"})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceKindStaff, record.Kind)
}

func TestMarkAttendanceValidation(t *testing.T) {
	svc, _ := newAttendanceService()
	ctx := context.Background()

	_, err := svc.Mark(ctx, MarkAttendanceRequest{PersonID: "STU001", Date: "11-03-2024", Status: "present", Kind: "student"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Mark(ctx, MarkAttendanceRequest{PersonID: "STU001", Date: "2024-03-11", Status: "late", Kind: "student"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestHistoryOrderedByDateDescending(t *testing.T) {
	svc, _ := newAttendanceService()
	ctx := context.Background()

	for _, date := range []string{"2024-03-11", "2024-03-13", "2024-03-12"} {
		_, err := svc.Mark(ctx, MarkAttendanceRequest{PersonID: "STU001", Date: date, Status: "present", Kind: "student"})
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, "STU001")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "2024-03-13", history[0].Date)
	assert.Equal(t, "2024-03-12", history[1].Date)
	assert.Equal(t, "2024-03-11", history[2].Date)
}

func TestMonthlyStatsUsesFixedDenominator(t *testing.T) {
	svc, _ := newAttendanceService()
	ctx := context.Background()

	present := []string{"2024-03-11", "2024-03-12", "2024-03-13"}
	for _, date := range present {
		_, err := svc.Mark(ctx, MarkAttendanceRequest{PersonID: "STU001", Date: date, Status: "present", Kind: "student"})
		require.NoError(t, err)
	}
	_, err := svc.Mark(ctx, MarkAttendanceRequest{PersonID: "STU001", Date: "2024-03-14", Status: "absent", Kind: "student"})
	require.NoError(t, err)
	// A record outside the month must not count.
	_, err = svc.Mark(ctx, MarkAttendanceRequest{PersonID: "STU001", Date: "2024-04-01", Status: "present", Kind: "student"})
	require.NoError(t, err)

	stats, err := svc.MonthlyStats(ctx, "STU001", "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.PresentCount)
	assert.Equal(t, 1, stats.AbsentCount)
	// Percentage divides by 30 regardless of the month's real length.
	assert.InDelta(t, 10.0, stats.Percentage, 0.0001)
	assert.False(t, stats.Danger)
}

func TestMonthlyStatsDangerFlag(t *testing.T) {
	svc, _ := newAttendanceService()
	ctx := context.Background()

	absent := []string{"2024-03-11", "2024-03-12", "2024-03-13", "2024-03-14", "2024-03-15", "2024-03-16"}
	for _, date := range absent {
		_, err := svc.Mark(ctx, MarkAttendanceRequest{PersonID: "STU001", Date: date, Status: "absent", Kind: "student"})
		require.NoError(t, err)
	}

	stats, err := svc.MonthlyStats(ctx, "STU001", "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 6, stats.AbsentCount)
	assert.True(t, stats.Danger)
}
