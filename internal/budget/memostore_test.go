package budget

import (
	"testing"
	"time"
)

func TestMemoStore_SetGet(t *testing.T) {
	store := NewMemoStore()
	store.Set("k", "v", time.Minute)

	got, ok := store.Get("k")
	if !ok || got != "v" {
		t.Fatalf("expected (v, true), got (%q, %v)", got, ok)
	}
}

func TestMemoStore_MissingKey(t *testing.T) {
	store := NewMemoStore()
	if _, ok := store.Get("nope"); ok {
		t.Fatal("expected a miss for an unknown key")
	}
}

func TestMemoStore_Expiry(t *testing.T) {
	now := time.Now()
	store := NewMemoStoreWithClock(func() time.Time { return now })

	store.Set("k", "v", time.Hour)

	if _, ok := store.Get("k"); !ok {
		t.Fatal("entry should be live before the TTL elapses")
	}

	now = now.Add(time.Hour + time.Second)
	if _, ok := store.Get("k"); ok {
		t.Fatal("entry should have expired")
	}

	// A second read after expiry stays a miss; the entry was dropped.
	if _, ok := store.Get("k"); ok {
		t.Fatal("expired entry should stay gone")
	}
}

func TestMemoStore_Overwrite(t *testing.T) {
	now := time.Now()
	store := NewMemoStoreWithClock(func() time.Time { return now })

	store.Set("k", "old", time.Minute)
	store.Set("k", "new", time.Hour)

	now = now.Add(30 * time.Minute)
	got, ok := store.Get("k")
	if !ok || got != "new" {
		t.Fatalf("overwrite should renew value and TTL, got (%q, %v)", got, ok)
	}
}
