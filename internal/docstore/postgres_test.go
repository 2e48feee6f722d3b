package docstore

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocstoreMock(t *testing.T) (*Postgres, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	store := NewPostgres(sqlxDB, "documents", nil)
	return store, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestPostgresGet(t *testing.T) {
	store, mock, cleanup := newDocstoreMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"doc"}).AddRow([]byte(`{"person_id":"STU001","status":"present"}`))
	mock.ExpectQuery("SELECT doc FROM documents").
		WithArgs("attendance", "STU001_2024-03-10").
		WillReturnRows(rows)

	doc, err := store.Get(context.Background(), "attendance", "STU001_2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, "present", doc["status"])
	assert.Equal(t, "STU001_2024-03-10", doc.Key())
}

func TestPostgresGetNotFound(t *testing.T) {
	store, mock, cleanup := newDocstoreMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT doc FROM documents").
		WithArgs("attendance", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}))

	_, err := store.Get(context.Background(), "attendance", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresQueryWithFilters(t *testing.T) {
	store, mock, cleanup := newDocstoreMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"key", "doc"}).
		AddRow("STU001_2024-03-10", []byte(`{"person_id":"STU001","status":"present"}`)).
		AddRow("STU001_2024-03-11", []byte(`{"person_id":"STU001","status":"absent"}`))
	mock.ExpectQuery("SELECT key, doc FROM documents").
		WithArgs("attendance", "person_id", "STU001").
		WillReturnRows(rows)

	docs, err := store.Query(context.Background(), "attendance", []Filter{Eq("person_id", "STU001")})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "STU001_2024-03-10", docs[0].Key())
}

func TestPostgresUpsert(t *testing.T) {
	store, mock, cleanup := newDocstoreMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO documents").
		WithArgs("fee_status", "STU001_2024-05", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Upsert(context.Background(), "fee_status", "STU001_2024-05", Document{"status": "generated", "amount": 500})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateMissingKey(t *testing.T) {
	store, mock, cleanup := newDocstoreMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE documents SET doc").
		WithArgs("fee_status", "missing", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Update(context.Background(), "fee_status", "missing", Document{"status": "generated"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresDelete(t *testing.T) {
	store, mock, cleanup := newDocstoreMock(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM documents").
		WithArgs("tests", "test-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), "tests", "test-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
