package docstore

import (
	"context"
	"errors"
)

// Collection names used by the ledger core.
const (
	CollectionAttendance    = "attendance"
	CollectionTests         = "tests"
	CollectionFeeStatus     = "fee_status"
	CollectionAnnouncements = "announcements"
	CollectionUsers         = "users"
	CollectionFeeDefaults   = "fee_defaults"
)

// Sentinel errors returned by Store implementations.
var (
	ErrNotFound     = errors.New("docstore: document not found")
	ErrDuplicateKey = errors.New("docstore: duplicate key")
)

// Document is a schemaless record stored under a string key.
type Document map[string]interface{}

// Key returns the document's storage key, set by the store on reads.
func (d Document) Key() string {
	key, _ := d["_key"].(string)
	return key
}

// Filter is an equality predicate on a top-level document field.
type Filter struct {
	Field string
	Value interface{}
}

// Eq builds an equality filter.
func Eq(field string, value interface{}) Filter {
	return Filter{Field: field, Value: value}
}

// OnChange receives the full refreshed result set of a subscribed query.
// There is no incremental diffing contract; every change delivers the
// complete matching set.
type OnChange func(docs []Document)

// Unsubscribe tears down a subscription. Callers must invoke it when the
// consuming request or session ends.
type Unsubscribe func()

// Store is the generic document CRUD surface the ledger core depends on.
// Keys are unique within a collection; writes to the same key serialize at
// the storage layer (last writer wins).
type Store interface {
	Get(ctx context.Context, collection, key string) (Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	Query(ctx context.Context, collection string, filters []Filter) ([]Document, error)
	Create(ctx context.Context, collection, key string, doc Document) error
	Upsert(ctx context.Context, collection, key string, doc Document) error
	Update(ctx context.Context, collection, key string, patch Document) error
	Delete(ctx context.Context, collection, key string) error
	Subscribe(collection string, filters []Filter, fn OnChange) (Unsubscribe, error)
}
