package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestNewSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore(:memory:) returned error: %v", err)
	}
	defer store.Close()

	if store.db == nil {
		t.Fatal("NewSQLiteStore(:memory:) db field is nil")
	}
}

func TestSQLiteStore_AppendAndRecent(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []*Entry{
		{Method: "GET", URI: "http://example.com/a", Status: 200, Elapsed: 12 * time.Millisecond, BodySize: 512, CreatedAt: base},
		{Method: "POST", URI: "http://example.com/b", Error: "Couldn't connect to server", CreatedAt: base.Add(time.Second)},
		{ID: "fixed-id", CallID: "call-1", Method: "HEAD", URI: "http://example.com/c", Status: 404, CreatedAt: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
	}

	if entries[0].ID == "" {
		t.Error("Append should assign an ID")
	}
	if entries[2].ID != "fixed-id" {
		t.Errorf("Append should keep a given ID, got %s", entries[2].ID)
	}

	got, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(got))
	}
	if got[0].ID != "fixed-id" || got[0].CallID != "call-1" || got[0].Status != 404 {
		t.Errorf("Unexpected newest entry %+v", got[0])
	}
	if got[1].Error != "Couldn't connect to server" {
		t.Errorf("Expected error text to round-trip, got %q", got[1].Error)
	}
	if got[2].Elapsed != 12*time.Millisecond || got[2].BodySize != 512 {
		t.Errorf("Unexpected oldest entry %+v", got[2])
	}
	if !got[2].CreatedAt.Equal(base) {
		t.Errorf("Expected created_at %v, got %v", base, got[2].CreatedAt)
	}

	limited, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "fixed-id" {
		t.Errorf("Unexpected limited result %v", limited)
	}
}

func TestSQLiteStore_DefaultsCreatedAt(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	e := &Entry{Method: "GET", URI: "http://example.com"}
	before := time.Now().Add(-time.Second)
	if err := store.Append(context.Background(), e); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if e.CreatedAt.Before(before) {
		t.Errorf("Expected CreatedAt to be set to now, got %v", e.CreatedAt)
	}
}

func TestSQLiteStore_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := store.Append(ctx, &Entry{Method: "PUT", URI: "http://example.com/doc", Status: 201}); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(got) != 1 || got[0].Method != "PUT" || got[0].Status != 201 {
		t.Errorf("Unexpected entries after reopen: %v", got)
	}
}
