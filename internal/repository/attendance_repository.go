package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/noah-isme/school-ledger-api/internal/docstore"
	"github.com/noah-isme/school-ledger-api/internal/models"
)

// AttendanceRepository maps attendance documents onto typed records. The
// composite (person, date) key in the docstore enforces the one-record-per-day
// invariant; overwrites go through Upsert, never Create.
type AttendanceRepository struct {
	store docstore.Store
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(store docstore.Store) *AttendanceRepository {
	return &AttendanceRepository{store: store}
}

// Upsert creates or overwrites the record for its (person, date) key.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	doc, err := docstore.Encode(record)
	if err != nil {
		return err
	}
	if err := r.store.Upsert(ctx, docstore.CollectionAttendance, record.Key(), doc); err != nil {
		return fmt.Errorf("upsert attendance %s: %w", record.Key(), err)
	}
	return nil
}

// Get fetches the record for a (person, date) pair.
func (r *AttendanceRepository) Get(ctx context.Context, personID, date string) (*models.AttendanceRecord, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionAttendance, models.AttendanceKey(personID, date))
	if err != nil {
		return nil, err
	}
	var record models.AttendanceRecord
	if err := docstore.Decode(doc, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByPerson returns all of a person's records ordered by date descending.
func (r *AttendanceRepository) ListByPerson(ctx context.Context, personID string) ([]models.AttendanceRecord, error) {
	docs, err := r.store.Query(ctx, docstore.CollectionAttendance, []docstore.Filter{
		docstore.Eq("person_id", personID),
	})
	if err != nil {
		return nil, fmt.Errorf("list attendance for %s: %w", personID, err)
	}
	var records []models.AttendanceRecord
	if err := docstore.DecodeAll(docs, &records); err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})
	return records, nil
}

// Delete removes a record administratively.
func (r *AttendanceRepository) Delete(ctx context.Context, personID, date string) error {
	return r.store.Delete(ctx, docstore.CollectionAttendance, models.AttendanceKey(personID, date))
}
