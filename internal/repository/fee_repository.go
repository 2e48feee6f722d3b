package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/school-ledger-api/internal/docstore"
	"github.com/noah-isme/school-ledger-api/internal/models"
)

// FeeRepository persists fee status records and per-class default amounts.
// Reads of absent records surface docstore.ErrNotFound; the service layer
// computes the pending default without persisting it.
type FeeRepository struct {
	store docstore.Store
}

// NewFeeRepository constructs the repository.
func NewFeeRepository(store docstore.Store) *FeeRepository {
	return &FeeRepository{store: store}
}

// Get fetches the record for a (student, billing-month) pair.
func (r *FeeRepository) Get(ctx context.Context, studentID, month string) (*models.FeeStatusRecord, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionFeeStatus, models.FeeKey(studentID, month))
	if err != nil {
		return nil, err
	}
	var record models.FeeStatusRecord
	if err := docstore.Decode(doc, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert materialises or overwrites a record under its composite key.
func (r *FeeRepository) Upsert(ctx context.Context, record *models.FeeStatusRecord) error {
	doc, err := docstore.Encode(record)
	if err != nil {
		return err
	}
	if err := r.store.Upsert(ctx, docstore.CollectionFeeStatus, record.Key(), doc); err != nil {
		return fmt.Errorf("upsert fee record %s: %w", record.Key(), err)
	}
	return nil
}

// ListByMonth returns all materialised records for a billing month.
func (r *FeeRepository) ListByMonth(ctx context.Context, month string) ([]models.FeeStatusRecord, error) {
	docs, err := r.store.Query(ctx, docstore.CollectionFeeStatus, []docstore.Filter{
		docstore.Eq("billing_month", month),
	})
	if err != nil {
		return nil, fmt.Errorf("list fee records for %s: %w", month, err)
	}
	var records []models.FeeStatusRecord
	if err := docstore.DecodeAll(docs, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetDefault returns the stored default amount for a class.
func (r *FeeRepository) GetDefault(ctx context.Context, className string) (*models.FeeDefault, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionFeeDefaults, className)
	if err != nil {
		return nil, err
	}
	var def models.FeeDefault
	if err := docstore.Decode(doc, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// UpsertDefault stores the default challan amount for a class.
func (r *FeeRepository) UpsertDefault(ctx context.Context, def *models.FeeDefault) error {
	doc, err := docstore.Encode(def)
	if err != nil {
		return err
	}
	if err := r.store.Upsert(ctx, docstore.CollectionFeeDefaults, def.ClassName, doc); err != nil {
		return fmt.Errorf("upsert fee default %s: %w", def.ClassName, err)
	}
	return nil
}
