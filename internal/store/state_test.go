package store

import (
	"errors"
	"testing"

	"github.com/bhi-elliot/ScrappyMart/internal/database"
)

func setupStateTestDB(t *testing.T) *StateStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStateStore(db)
}

func TestStateLoadMissing(t *testing.T) {
	ss := setupStateTestDB(t)

	val, ok, err := ss.Load("nope")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Errorf("ok = true for missing key, value %q", val)
	}
}

func TestStateSaveAndLoad(t *testing.T) {
	ss := setupStateTestDB(t)

	if err := ss.Save("lists", `[{"id":"a"}]`); err != nil {
		t.Fatalf("save: %v", err)
	}
	val, ok, err := ss.Load("lists")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok || val != `[{"id":"a"}]` {
		t.Errorf("lists = %q (ok=%v), want %q", val, ok, `[{"id":"a"}]`)
	}

	// Upsert
	if err := ss.Save("lists", `[]`); err != nil {
		t.Fatalf("save again: %v", err)
	}
	val, _, _ = ss.Load("lists")
	if val != `[]` {
		t.Errorf("lists after overwrite = %q, want %q", val, `[]`)
	}
}

func TestMemoryStoreFailure(t *testing.T) {
	ms := NewMemoryStore()
	if err := ms.Save("k", "v"); err != nil {
		t.Fatalf("save: %v", err)
	}

	boom := errors.New("quota exceeded")
	ms.FailWith = boom
	err := ms.Save("k", "w")
	if !errors.Is(err, boom) {
		t.Fatalf("save error = %v, want %v", err, boom)
	}

	val, ok, _ := ms.Load("k")
	if !ok || val != "v" {
		t.Errorf("k = %q (ok=%v), want %q", val, ok, "v")
	}
	if ms.Saves() != 1 {
		t.Errorf("saves = %d, want 1", ms.Saves())
	}
}
