package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-ledger-api/internal/docstore"
	"github.com/noah-isme/school-ledger-api/internal/models"
	appErrors "github.com/noah-isme/school-ledger-api/pkg/errors"
)

// Fixed denominator and danger threshold for monthly stats. The 30-day
// denominator does not track actual month length; downstream displays
// assume this exact figure.
const (
	attendanceDenominator    = 30
	attendanceDangerAbsences = 5
)

type attendanceRepository interface {
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
	ListByPerson(ctx context.Context, personID string) ([]models.AttendanceRecord, error)
}

// AttendanceService keeps one record per (person, date) with upsert
// semantics. Two concurrent marks for the same key race at the storage layer
// and the later write wins; the domain needs nothing stronger.
type AttendanceService struct {
	repo      attendanceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the service.
func NewAttendanceService(repo attendanceRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, validator: validate, logger: logger}
}

// MarkAttendanceRequest describes a single mark operation.
type MarkAttendanceRequest struct {
	PersonID string `json:"person_id" validate:"required"`
	Date     string `json:"date" validate:"required"`
	Status   string `json:"status" validate:"required"`
	Kind     string `json:"kind" validate:"required"`
	MarkedBy string `json:"-"`
}

// Mark upserts the record for (personId, date): an existing record has its
// status overwritten, otherwise a new record is created. The same call
// serves "mark today" and "correct a past date". Student marks dated on the
// weekly rest day are rejected here, in the validation step; the ledger
// upsert itself carries no policy.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	status := models.AttendanceStatus(strings.ToLower(req.Status))
	if !status.Valid() {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "unknown attendance status"),
			map[string]interface{}{"status": req.Status})
	}
	kind := models.AttendanceKind(strings.ToLower(req.Kind))
	if !kind.Valid() {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "unknown attendance kind"),
			map[string]interface{}{"kind": req.Kind})
	}

	day, err := time.Parse(models.AttendanceDateLayout, req.Date)
	if err != nil {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"),
			map[string]interface{}{"date": req.Date})
	}

	if kind == models.AttendanceKindStudent && day.Weekday() == time.Sunday {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrPolicyViolation, "student attendance cannot be marked on the weekly rest day"),
			map[string]interface{}{"person_id": req.PersonID, "date": req.Date})
	}

	record := &models.AttendanceRecord{
		PersonID:  req.PersonID,
		Date:      req.Date,
		Kind:      kind,
		Status:    status,
		MarkedBy:  req.MarkedBy,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, storageError(err, "failed to store attendance record")
	}
	return record, nil
}

// History returns a person's records ordered by date descending.
func (s *AttendanceService) History(ctx context.Context, personID string) ([]models.AttendanceRecord, error) {
	if personID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "personId is required")
	}
	records, err := s.repo.ListByPerson(ctx, personID)
	if err != nil {
		return nil, storageError(err, "failed to load attendance history")
	}
	return records, nil
}

// MonthlyStats filters a person's records to the given calendar month and
// derives the presence percentage and danger flag.
func (s *AttendanceService) MonthlyStats(ctx context.Context, personID, month string) (*models.AttendanceMonthlyStats, error) {
	if personID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "personId is required")
	}
	if _, err := time.Parse(models.AttendanceMonthLayout, month); err != nil {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "month must be YYYY-MM"),
			map[string]interface{}{"month": month})
	}

	records, err := s.repo.ListByPerson(ctx, personID)
	if err != nil {
		return nil, storageError(err, "failed to load attendance records")
	}

	stats := &models.AttendanceMonthlyStats{PersonID: personID, Month: month}
	for _, record := range records {
		if !strings.HasPrefix(record.Date, month+"-") {
			continue
		}
		switch record.Status {
		case models.AttendanceStatusPresent:
			stats.PresentCount++
		case models.AttendanceStatusAbsent:
			stats.AbsentCount++
		}
	}
	stats.Percentage = float64(stats.PresentCount) / attendanceDenominator * 100
	stats.Danger = stats.AbsentCount > attendanceDangerAbsences
	return stats, nil
}

// storageError maps adapter failures onto the ledger error contract: an
// absent key stays NOT_FOUND, everything else is the store being
// unavailable. Errors propagate as-is; the core never retries.
func storageError(err error, message string) *appErrors.Error {
	if errors.Is(err, docstore.ErrNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, message)
	}
	return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, message)
}
