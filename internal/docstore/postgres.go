package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Postgres stores every collection in a single jsonb table:
//
//	CREATE TABLE documents (
//	    collection  text        NOT NULL,
//	    key         text        NOT NULL,
//	    doc         jsonb       NOT NULL,
//	    updated_at  timestamptz NOT NULL DEFAULT now(),
//	    PRIMARY KEY (collection, key)
//	);
//
// Equality filters compile to `doc->>field = value` text comparisons. Writes
// to the same (collection, key) serialize on the primary key, which is the
// ledger's concurrency boundary.
type Postgres struct {
	db    *sqlx.DB
	table string
	hub   *Hub
}

// NewPostgres constructs the store. The hub may be nil when change fan-out
// is not wired (one-shot tooling).
func NewPostgres(db *sqlx.DB, table string, hub *Hub) *Postgres {
	if table == "" {
		table = "documents"
	}
	return &Postgres{db: db, table: table, hub: hub}
}

func (p *Postgres) Get(ctx context.Context, collection, key string) (Document, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE collection = $1 AND key = $2`, p.table)
	var raw []byte
	if err := p.db.GetContext(ctx, &raw, query, collection, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("docstore get %s/%s: %w", collection, key, err)
	}
	return decodeRow(key, raw)
}

func (p *Postgres) List(ctx context.Context, collection string) ([]Document, error) {
	return p.Query(ctx, collection, nil)
}

func (p *Postgres) Query(ctx context.Context, collection string, filters []Filter) ([]Document, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, `SELECT key, doc FROM %s WHERE collection = $1`, p.table)
	args := []interface{}{collection}
	for _, f := range filters {
		fmt.Fprintf(&sb, ` AND doc->>$%d = $%d`, len(args)+1, len(args)+2)
		args = append(args, f.Field, fmt.Sprint(f.Value))
	}
	sb.WriteString(` ORDER BY key ASC`)

	rows, err := p.db.QueryxContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("docstore query %s: %w", collection, err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("docstore query %s: %w", collection, err)
		}
		doc, err := decodeRow(key, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("docstore query %s: %w", collection, err)
	}
	return docs, nil
}

func (p *Postgres) Create(ctx context.Context, collection, key string, doc Document) error {
	raw, err := encodeDoc(doc)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %s (collection, key, doc, updated_at) VALUES ($1, $2, $3, $4)`, p.table)
	if _, err := p.db.ExecContext(ctx, query, collection, key, raw, time.Now().UTC()); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateKey
		}
		return fmt.Errorf("docstore create %s/%s: %w", collection, key, err)
	}
	p.notify(collection)
	return nil
}

func (p *Postgres) Upsert(ctx context.Context, collection, key string, doc Document) error {
	raw, err := encodeDoc(doc)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %s (collection, key, doc, updated_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (collection, key)
DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`, p.table)
	if _, err := p.db.ExecContext(ctx, query, collection, key, raw, time.Now().UTC()); err != nil {
		return fmt.Errorf("docstore upsert %s/%s: %w", collection, key, err)
	}
	p.notify(collection)
	return nil
}

func (p *Postgres) Update(ctx context.Context, collection, key string, patch Document) error {
	raw, err := encodeDoc(patch)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET doc = doc || $3, updated_at = $4 WHERE collection = $1 AND key = $2`, p.table)
	res, err := p.db.ExecContext(ctx, query, collection, key, raw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("docstore update %s/%s: %w", collection, key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("docstore update %s/%s: %w", collection, key, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	p.notify(collection)
	return nil
}

func (p *Postgres) Delete(ctx context.Context, collection, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE collection = $1 AND key = $2`, p.table)
	res, err := p.db.ExecContext(ctx, query, collection, key)
	if err != nil {
		return fmt.Errorf("docstore delete %s/%s: %w", collection, key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("docstore delete %s/%s: %w", collection, key, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	p.notify(collection)
	return nil
}

func (p *Postgres) Subscribe(collection string, filters []Filter, fn OnChange) (Unsubscribe, error) {
	if p.hub == nil {
		return nil, errors.New("docstore: subscriptions not enabled")
	}
	return p.hub.Subscribe(collection, filters, fn)
}

func (p *Postgres) notify(collection string) {
	if p.hub != nil {
		p.hub.Notify(collection)
	}
}

func encodeDoc(doc Document) ([]byte, error) {
	clean := make(Document, len(doc))
	for field, value := range doc {
		if field == "_key" {
			continue
		}
		clean[field] = value
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("docstore encode: %w", err)
	}
	return raw, nil
}

func decodeRow(key string, raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("docstore decode %s: %w", key, err)
	}
	doc["_key"] = key
	return doc, nil
}
