package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/school-ledger-api/internal/docstore"
	"github.com/noah-isme/school-ledger-api/internal/models"
)

// AssessmentRepository persists test definitions with their embedded marks
// map. Marks are part of the test document, so replacing them is a partial
// update of one document and deleting a test needs no cascade.
type AssessmentRepository struct {
	store docstore.Store
}

// NewAssessmentRepository constructs the repository.
func NewAssessmentRepository(store docstore.Store) *AssessmentRepository {
	return &AssessmentRepository{store: store}
}

// Create inserts a new test document keyed by its id.
func (r *AssessmentRepository) Create(ctx context.Context, test *models.Test) error {
	doc, err := docstore.Encode(test)
	if err != nil {
		return err
	}
	if err := r.store.Create(ctx, docstore.CollectionTests, test.ID, doc); err != nil {
		return fmt.Errorf("create test %s: %w", test.ID, err)
	}
	return nil
}

// Get fetches one test with its marks.
func (r *AssessmentRepository) Get(ctx context.Context, id string) (*models.Test, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionTests, id)
	if err != nil {
		return nil, err
	}
	var test models.Test
	if err := docstore.Decode(doc, &test); err != nil {
		return nil, err
	}
	if test.Marks == nil {
		test.Marks = map[string]float64{}
	}
	return &test, nil
}

// TestFilter scopes listing queries.
type TestFilter struct {
	ClassName string
	Section   string
	OwnerID   string
}

// List returns tests matching the filter.
func (r *AssessmentRepository) List(ctx context.Context, filter TestFilter) ([]models.Test, error) {
	var filters []docstore.Filter
	if filter.ClassName != "" {
		filters = append(filters, docstore.Eq("class_name", filter.ClassName))
	}
	if filter.Section != "" {
		filters = append(filters, docstore.Eq("section", filter.Section))
	}
	if filter.OwnerID != "" {
		filters = append(filters, docstore.Eq("owner_id", filter.OwnerID))
	}
	docs, err := r.store.Query(ctx, docstore.CollectionTests, filters)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	var tests []models.Test
	if err := docstore.DecodeAll(docs, &tests); err != nil {
		return nil, err
	}
	return tests, nil
}

// ReplaceMarks swaps the embedded marks map wholesale.
func (r *AssessmentRepository) ReplaceMarks(ctx context.Context, id string, marks map[string]float64, updatedAt time.Time) error {
	patch := docstore.Document{"marks": marks, "updated_at": updatedAt}
	if err := r.store.Update(ctx, docstore.CollectionTests, id, patch); err != nil {
		return fmt.Errorf("replace marks for test %s: %w", id, err)
	}
	return nil
}

// Delete removes a test and its embedded marks.
func (r *AssessmentRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, docstore.CollectionTests, id); err != nil {
		return fmt.Errorf("delete test %s: %w", id, err)
	}
	return nil
}
