package docstore

import (
	"context"
	"os"
	"testing"
)

func TestPostgres_Contract(t *testing.T) {
	dsn := os.Getenv("PANTRY_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PANTRY_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	store, err := OpenPostgres(ctx, dsn)
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	t.Cleanup(func() {
		_, _ = store.pool.Exec(ctx, `DELETE FROM pantry_documents WHERE collection LIKE 'contract-%'`)
		_ = store.Close()
	})

	runContract(t, func(t *testing.T) Store { return store })
}

func TestMySQL_Contract(t *testing.T) {
	dsn := os.Getenv("PANTRY_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("PANTRY_TEST_MYSQL_DSN not set")
	}
	ctx := context.Background()
	store, err := OpenMySQL(ctx, dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	t.Cleanup(func() {
		_, _ = store.db.ExecContext(ctx, `DELETE FROM pantry_documents WHERE collection LIKE 'contract-%'`)
		_ = store.Close()
	})

	runContract(t, func(t *testing.T) Store { return store })
}
