package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure Postgres implements Store at compile time.
var _ Store = (*Postgres)(nil)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS pantry_documents (
	seq        BIGSERIAL PRIMARY KEY,
	collection TEXT NOT NULL,
	doc_key    TEXT NOT NULL,
	body       JSONB NOT NULL DEFAULT '{}'::jsonb,
	UNIQUE (collection, doc_key)
)`

// Postgres keeps documents as JSONB rows in a single table. Rows list in
// insertion order by seq.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing pool. The schema must already exist.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// OpenPostgres connects to dsn, pings the server and creates the documents
// table if needed.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	poolConfig.MaxConns = 4
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "pantry"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, unavailable("postgres", "connect", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, unavailable("postgres", "ping", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, wrapPostgres("create schema", err)
	}
	return NewPostgres(pool), nil
}

// ListAll implements Store.
func (p *Postgres) ListAll(ctx context.Context, collection string) ([]Document, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT doc_key, body FROM pantry_documents WHERE collection = $1 ORDER BY seq`,
		collection)
	if err != nil {
		return nil, wrapPostgres("list", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			key  string
			body []byte
		)
		if err := rows.Scan(&key, &body); err != nil {
			return nil, wrapPostgres("list", err)
		}
		fields, err := decodeFields(body)
		if err != nil {
			return nil, fmt.Errorf("postgres list %q: %w", key, err)
		}
		docs = append(docs, Document{Key: key, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPostgres("list", err)
	}
	return docs, nil
}

// GetOne implements Store.
func (p *Postgres) GetOne(ctx context.Context, collection, key string) (Document, bool, error) {
	if err := validateKey(key); err != nil {
		return Document{}, false, err
	}
	var body []byte
	err := p.pool.QueryRow(ctx,
		`SELECT body FROM pantry_documents WHERE collection = $1 AND doc_key = $2`,
		collection, key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, wrapPostgres("get", err)
	}
	fields, err := decodeFields(body)
	if err != nil {
		return Document{}, false, fmt.Errorf("postgres get %q: %w", key, err)
	}
	return Document{Key: key, Fields: fields}, true, nil
}

// SetOne implements Store.
func (p *Postgres) SetOne(ctx context.Context, collection, key string, fields Fields, merge bool) error {
	if err := validateKey(key); err != nil {
		return err
	}
	normalized, err := Normalize(fields)
	if err != nil {
		return err
	}
	body, err := encodeFields(normalized)
	if err != nil {
		return err
	}

	update := `EXCLUDED.body`
	if merge {
		update = `pantry_documents.body || EXCLUDED.body`
	}
	query := `INSERT INTO pantry_documents (collection, doc_key, body) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, doc_key) DO UPDATE SET body = ` + update
	if _, err := p.pool.Exec(ctx, query, collection, key, string(body)); err != nil {
		return wrapPostgres("set", err)
	}
	return nil
}

// DeleteOne implements Store.
func (p *Postgres) DeleteOne(ctx context.Context, collection, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := p.pool.Exec(ctx,
		`DELETE FROM pantry_documents WHERE collection = $1 AND doc_key = $2`,
		collection, key)
	if err != nil {
		return wrapPostgres("delete", err)
	}
	return nil
}

// Close implements Store.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func wrapPostgres(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("postgres %s: %w", op, err)
	}
	return unavailable("postgres", op, err)
}
