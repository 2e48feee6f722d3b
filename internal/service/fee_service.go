package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-ledger-api/internal/docstore"
	"github.com/noah-isme/school-ledger-api/internal/models"
	appErrors "github.com/noah-isme/school-ledger-api/pkg/errors"
)

type feeRepository interface {
	Get(ctx context.Context, studentID, month string) (*models.FeeStatusRecord, error)
	Upsert(ctx context.Context, record *models.FeeStatusRecord) error
	ListByMonth(ctx context.Context, month string) ([]models.FeeStatusRecord, error)
	GetDefault(ctx context.Context, className string) (*models.FeeDefault, error)
	UpsertDefault(ctx context.Context, def *models.FeeDefault) error
}

// FeeService drives the per-(student, month) fee lifecycle:
//
//	pending -> generated -> submitted -> verified
//	                  ^          |
//	                  +--reject--+
//
// A record materialises on the first state-changing write; before that,
// reads return a computed pending default that is never persisted.
type FeeService struct {
	repo      feeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeeService constructs the service.
func NewFeeService(repo feeRepository, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeService{repo: repo, validator: validate, logger: logger}
}

// SetMonthlyFee stores the default challan amount for a class. Already
// generated records keep the amount they were generated with.
func (s *FeeService) SetMonthlyFee(ctx context.Context, className string, amount float64) error {
	if className == "" {
		return appErrors.Clone(appErrors.ErrValidation, "className is required")
	}
	if amount <= 0 {
		return appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "amount must be positive"),
			map[string]interface{}{"amount": amount})
	}
	def := &models.FeeDefault{ClassName: className, Amount: amount, UpdatedAt: time.Now().UTC()}
	if err := s.repo.UpsertDefault(ctx, def); err != nil {
		return storageError(err, "failed to store fee default")
	}
	return nil
}

// GenerateChallansRequest describes a batch challan generation.
type GenerateChallansRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1"`
	Month      string   `json:"month" validate:"required"`
	Amount     float64  `json:"amount"`
	ClassName  string   `json:"class_name"`
}

// GenerateChallans transitions each student's record for the month to
// generated, creating it when absent. When Amount is omitted the class
// default applies. Items are independent upserts, not a transaction: one
// failure is reported in its result and never blocks the rest.
func (s *FeeService) GenerateChallans(ctx context.Context, req GenerateChallansRequest) ([]models.ChallanResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid challan payload")
	}
	if _, err := time.Parse(models.FeeMonthLayout, req.Month); err != nil {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "month must be YYYY-MM"),
			map[string]interface{}{"month": req.Month})
	}

	amount := req.Amount
	if amount <= 0 {
		if req.ClassName == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "amount or className is required")
		}
		def, err := s.repo.GetDefault(ctx, req.ClassName)
		if err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "no default fee set for class"),
					map[string]interface{}{"class_name": req.ClassName})
			}
			return nil, storageError(err, "failed to load fee default")
		}
		amount = def.Amount
	}

	results := make([]models.ChallanResult, 0, len(req.StudentIDs))
	for _, studentID := range req.StudentIDs {
		record := &models.FeeStatusRecord{
			StudentID:    studentID,
			BillingMonth: req.Month,
			Status:       models.FeeStatusGenerated,
			Amount:       amount,
			UpdatedAt:    time.Now().UTC(),
		}
		if err := s.repo.Upsert(ctx, record); err != nil {
			s.logger.Warn("challan generation failed",
				zap.String("student_id", studentID), zap.String("month", req.Month), zap.Error(err))
			results = append(results, models.ChallanResult{StudentID: studentID, Err: err.Error()})
			continue
		}
		results = append(results, models.ChallanResult{StudentID: studentID, Status: record.Status})
	}
	return results, nil
}

// SubmitProof attaches a payment proof reference and moves the record from
// generated to submitted. From any other state the call is a no-op that
// returns the current record unchanged: a resubmission race is expected and
// is not an error.
func (s *FeeService) SubmitProof(ctx context.Context, studentID, month, proofRef string) (*models.FeeStatusRecord, error) {
	if studentID == "" || month == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "studentId and month are required")
	}
	if proofRef == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "proofRef is required")
	}

	record, err := s.repo.Get(ctx, studentID, month)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return s.pendingDefault(studentID, month), nil
		}
		return nil, storageError(err, "failed to load fee record")
	}
	if record.Status != models.FeeStatusGenerated {
		return record, nil
	}

	record.Status = models.FeeStatusSubmitted
	record.ProofRef = proofRef
	record.UpdatedAt = time.Now().UTC()
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, storageError(err, "failed to store proof submission")
	}
	return record, nil
}

// Verify resolves a submitted record: approve moves it to verified, reject
// returns it to generated. Any state other than submitted fails with
// INVALID_TRANSITION and leaves the record untouched.
func (s *FeeService) Verify(ctx context.Context, studentID, month string, approve bool) (*models.FeeStatusRecord, error) {
	if studentID == "" || month == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "studentId and month are required")
	}

	record, err := s.repo.Get(ctx, studentID, month)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrInvalidTransition, "fee record is not awaiting verification"),
				map[string]interface{}{"current": string(models.FeeStatusPending), "expected": string(models.FeeStatusSubmitted)})
		}
		return nil, storageError(err, "failed to load fee record")
	}
	if record.Status != models.FeeStatusSubmitted {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrInvalidTransition, "fee record is not awaiting verification"),
			map[string]interface{}{"current": string(record.Status), "expected": string(models.FeeStatusSubmitted)})
	}

	if approve {
		record.Status = models.FeeStatusVerified
	} else {
		record.Status = models.FeeStatusGenerated
		record.ProofRef = ""
	}
	record.UpdatedAt = time.Now().UTC()
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, storageError(err, "failed to store verification")
	}
	return record, nil
}

// Status returns the record for (student, month). When none is materialised
// yet the computed pending default is returned without being persisted.
func (s *FeeService) Status(ctx context.Context, studentID, month string) (*models.FeeStatusRecord, error) {
	if studentID == "" || month == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "studentId and month are required")
	}
	record, err := s.repo.Get(ctx, studentID, month)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return s.pendingDefault(studentID, month), nil
		}
		return nil, storageError(err, "failed to load fee record")
	}
	return record, nil
}

// MonthSummary aggregates per-status counts for a billing month. Students
// without a materialised record are pending and do not appear here.
func (s *FeeService) MonthSummary(ctx context.Context, month string) (*models.FeeMonthSummary, error) {
	if _, err := time.Parse(models.FeeMonthLayout, month); err != nil {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "month must be YYYY-MM"),
			map[string]interface{}{"month": month})
	}
	records, err := s.repo.ListByMonth(ctx, month)
	if err != nil {
		return nil, storageError(err, "failed to load fee records")
	}

	summary := &models.FeeMonthSummary{Month: month}
	for _, record := range records {
		switch record.Status {
		case models.FeeStatusPending:
			summary.Pending++
		case models.FeeStatusGenerated:
			summary.Generated++
		case models.FeeStatusSubmitted:
			summary.Submitted++
		case models.FeeStatusVerified:
			summary.Verified++
			summary.Collected += record.Amount
		}
	}
	return summary, nil
}

func (s *FeeService) pendingDefault(studentID, month string) *models.FeeStatusRecord {
	return &models.FeeStatusRecord{
		StudentID:    studentID,
		BillingMonth: month,
		Status:       models.FeeStatusPending,
	}
}
