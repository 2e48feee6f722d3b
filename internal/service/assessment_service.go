package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/repository"
	appErrors "github.com/noah-isme/school-ledger-api/pkg/errors"
)

type assessmentRepository interface {
	Create(ctx context.Context, test *models.Test) error
	Get(ctx context.Context, id string) (*models.Test, error)
	List(ctx context.Context, filter repository.TestFilter) ([]models.Test, error)
	ReplaceMarks(ctx context.Context, id string, marks map[string]float64, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// AssessmentService manages test definitions and their embedded marks maps.
// Marks are replaced wholesale (last-writer-wins at map granularity) and
// every write is all-or-nothing against the bounds invariant.
type AssessmentService struct {
	repo      assessmentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssessmentService constructs the service.
func NewAssessmentService(repo assessmentRepository, validate *validator.Validate, logger *zap.Logger) *AssessmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{repo: repo, validator: validate, logger: logger}
}

// CreateTestRequest describes a new test definition.
type CreateTestRequest struct {
	Name       string `json:"name" validate:"required"`
	Subject    string `json:"subject" validate:"required"`
	Date       string `json:"date" validate:"required"`
	TotalMarks int    `json:"total_marks"`
	Section    string `json:"section"`
	ClassName  string `json:"class_name" validate:"required"`
	OwnerID    string `json:"-"`
}

// CreateTest registers a test. TotalMarks must be a positive integer; marks
// start empty.
func (s *AssessmentService) CreateTest(ctx context.Context, req CreateTestRequest) (*models.Test, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid test payload")
	}
	if req.TotalMarks <= 0 {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "totalMarks must be a positive integer"),
			map[string]interface{}{"total_marks": req.TotalMarks})
	}

	now := time.Now().UTC()
	test := &models.Test{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Subject:    req.Subject,
		Date:       req.Date,
		TotalMarks: req.TotalMarks,
		Section:    req.Section,
		ClassName:  req.ClassName,
		OwnerID:    req.OwnerID,
		Marks:      map[string]float64{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, test); err != nil {
		return nil, storageError(err, "failed to create test")
	}
	return test, nil
}

// GetTest returns a test with its marks.
func (s *AssessmentService) GetTest(ctx context.Context, id string) (*models.Test, error) {
	test, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storageError(err, "test not found")
	}
	return test, nil
}

// ListTests returns tests matching the filter.
func (s *AssessmentService) ListTests(ctx context.Context, filter repository.TestFilter) ([]models.Test, error) {
	tests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storageError(err, "failed to list tests")
	}
	return tests, nil
}

// SetMarks replaces the test's marks map wholesale. Every score is checked
// against [0, totalMarks] before anything is written; the first violation
// aborts the whole operation and leaves the stored map untouched.
func (s *AssessmentService) SetMarks(ctx context.Context, testID string, scores map[string]float64) error {
	test, err := s.repo.Get(ctx, testID)
	if err != nil {
		return storageError(err, "test not found")
	}

	for studentID, score := range scores {
		if score < 0 || score > float64(test.TotalMarks) {
			return appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "score outside the allowed bounds"),
				map[string]interface{}{
					"student_id":  studentID,
					"score":       score,
					"total_marks": test.TotalMarks,
				})
		}
	}

	if scores == nil {
		scores = map[string]float64{}
	}
	if err := s.repo.ReplaceMarks(ctx, testID, scores, time.Now().UTC()); err != nil {
		return storageError(err, "failed to store marks")
	}
	return nil
}

// ResetMarks clears every recorded score for the test.
func (s *AssessmentService) ResetMarks(ctx context.Context, testID string) error {
	return s.SetMarks(ctx, testID, map[string]float64{})
}

// DeleteTest removes the test and its embedded marks. No cascading cleanup
// is needed since marks live inside the document.
func (s *AssessmentService) DeleteTest(ctx context.Context, testID string) error {
	if err := s.repo.Delete(ctx, testID); err != nil {
		return storageError(err, "failed to delete test")
	}
	return nil
}
