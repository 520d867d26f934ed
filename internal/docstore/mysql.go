package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Ensure MySQL implements Store at compile time.
var _ Store = (*MySQL)(nil)

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS pantry_documents (
	seq        BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	collection VARCHAR(191) NOT NULL,
	doc_key    VARCHAR(191) NOT NULL,
	body       JSON NOT NULL,
	UNIQUE KEY uq_pantry_documents_key (collection, doc_key)
)`

// MySQL keeps documents as JSON rows in a single table. Merge writes use
// JSON_MERGE_PATCH so unsupplied fields survive.
type MySQL struct {
	db *sql.DB
}

// NewMySQL wraps an existing handle. The schema must already exist.
func NewMySQL(db *sql.DB) *MySQL {
	return &MySQL{db: db}
}

// OpenMySQL connects to dsn, pings the server and creates the documents table
// if needed.
func OpenMySQL(ctx context.Context, dsn string) (*MySQL, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, unavailable("mysql", "ping", err)
	}
	if _, err := db.ExecContext(ctx, mysqlSchema); err != nil {
		_ = db.Close()
		return nil, wrapMySQL("create schema", err)
	}
	return NewMySQL(db), nil
}

// ListAll implements Store.
func (m *MySQL) ListAll(ctx context.Context, collection string) ([]Document, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT doc_key, body FROM pantry_documents WHERE collection = ? ORDER BY seq`,
		collection)
	if err != nil {
		return nil, wrapMySQL("list", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			key  string
			body []byte
		)
		if err := rows.Scan(&key, &body); err != nil {
			return nil, wrapMySQL("list", err)
		}
		fields, err := decodeFields(body)
		if err != nil {
			return nil, fmt.Errorf("mysql list %q: %w", key, err)
		}
		docs = append(docs, Document{Key: key, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapMySQL("list", err)
	}
	return docs, nil
}

// GetOne implements Store.
func (m *MySQL) GetOne(ctx context.Context, collection, key string) (Document, bool, error) {
	if err := validateKey(key); err != nil {
		return Document{}, false, err
	}
	var body []byte
	err := m.db.QueryRowContext(ctx,
		`SELECT body FROM pantry_documents WHERE collection = ? AND doc_key = ?`,
		collection, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, wrapMySQL("get", err)
	}
	fields, err := decodeFields(body)
	if err != nil {
		return Document{}, false, fmt.Errorf("mysql get %q: %w", key, err)
	}
	return Document{Key: key, Fields: fields}, true, nil
}

// SetOne implements Store.
func (m *MySQL) SetOne(ctx context.Context, collection, key string, fields Fields, merge bool) error {
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

	update := `VALUES(body)`
	if merge {
		update = `JSON_MERGE_PATCH(body, VALUES(body))`
	}
	query := `INSERT INTO pantry_documents (collection, doc_key, body) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE body = ` + update
	if _, err := m.db.ExecContext(ctx, query, collection, key, string(body)); err != nil {
		return wrapMySQL("set", err)
	}
	return nil
}

// DeleteOne implements Store.
func (m *MySQL) DeleteOne(ctx context.Context, collection, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := m.db.ExecContext(ctx,
		`DELETE FROM pantry_documents WHERE collection = ? AND doc_key = ?`,
		collection, key)
	if err != nil {
		return wrapMySQL("delete", err)
	}
	return nil
}

// Close implements Store.
func (m *MySQL) Close() error {
	return m.db.Close()
}

func wrapMySQL(op string, err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return fmt.Errorf("mysql %s: %w", op, err)
	}
	return unavailable("mysql", op, err)
}
