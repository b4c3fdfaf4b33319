// internal/kv/sql_test.go
//
// sqlmock coverage for the MySQL-backed Store.  No live database; each
// test declares the exact statements the store is expected to issue.

package kv

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLFromDB(db), mock
}

func TestSQLStore_GetHit(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT v FROM kv_entry WHERE k = ? LIMIT 1`)).
		WithArgs("tenant:host:acme.example.com").
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow("acme"))

	val, ok, err := store.Get(context.Background(), "tenant:host:acme.example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || val != "acme" {
		t.Fatalf("got (%q, %v), want (\"acme\", true)", val, ok)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSQLStore_GetMissIsNotAnError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT v FROM kv_entry WHERE k = ? LIMIT 1`)).
		WithArgs("tenant:host:unknown.example.com").
		WillReturnRows(sqlmock.NewRows([]string{"v"}))

	val, ok, err := store.Get(context.Background(), "tenant:host:unknown.example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok || val != "" {
		t.Fatalf("got (%q, %v), want miss", val, ok)
	}
}

func TestSQLStore_GetStoreFailureSurfaces(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT v FROM kv_entry WHERE k = ? LIMIT 1`)).
		WithArgs("tenant:cfg:acme").
		WillReturnError(errors.New("connection reset"))

	if _, _, err := store.Get(context.Background(), "tenant:cfg:acme"); err == nil {
		t.Fatal("expected error from failing store")
	}
}

func TestSQLStore_SetUpserts(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv_entry (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)`)).
		WithArgs("tenant:cfg:acme", `{"tenant_id":"acme"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Set(context.Background(), "tenant:cfg:acme", `{"tenant_id":"acme"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSQLStore_Delete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv_entry WHERE k = ?`)).
		WithArgs("webhook:seen:evt_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Delete(context.Background(), "webhook:seen:evt_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
