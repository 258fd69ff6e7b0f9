package memory

import (
	"path/filepath"
	"testing"
	"time"
)

func TestStore_PutGetDelete(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "memories.json"))

	e := s.Put(Entry{Kind: KindReminder, Content: "buy milk"})
	if e.ID == "" {
		t.Fatal("Put must assign an ID")
	}
	if e.CreatedAt.IsZero() || e.ModifiedAt.IsZero() {
		t.Fatal("Put must stamp timestamps")
	}

	got, ok := s.Get(e.ID)
	if !ok || got.Content != "buy milk" {
		t.Fatalf("Get: got %v, %v", got, ok)
	}

	// Replacing keeps the original creation time.
	e2 := s.Put(Entry{ID: e.ID, Kind: KindReminder, Content: "buy oat milk"})
	if !e2.CreatedAt.Equal(e.CreatedAt) {
		t.Fatalf("CreatedAt changed on update: %v vs %v", e2.CreatedAt, e.CreatedAt)
	}

	s.Delete(e.ID)
	if _, ok := s.Get(e.ID); ok {
		t.Fatal("entry still present after Delete")
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memories.json")

	s1 := NewStore(path)
	due := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	e := s1.Put(Entry{
		Kind:    KindReminder,
		Content: "dentist",
		ReminderOptions: &ReminderOptions{
			DatetimeValue: &due,
		},
	})
	s1.Put(Entry{Kind: KindPreference, Content: "prefers mornings"})
	if err := s1.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s2 := NewStore(path)
	if err := s2.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s2.Len() != 2 {
		t.Fatalf("Len after reload: got %d", s2.Len())
	}
	got, ok := s2.Get(e.ID)
	if !ok {
		t.Fatal("reminder missing after reload")
	}
	if got.ReminderOptions == nil || !got.ReminderOptions.DatetimeValue.Equal(due) {
		t.Fatalf("reminder options lost: %+v", got.ReminderOptions)
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope.json"))
	if err := s.Load(); err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len: got %d", s.Len())
	}
}

func TestStore_PruneExpiredOneTime(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "memories.json"))
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	old := now.Add(-10 * 24 * time.Hour)
	recent := now.Add(-2 * 24 * time.Hour)
	future := now.Add(24 * time.Hour)

	s.Put(Entry{ID: "expired", Kind: KindReminder, Content: "x", ReminderOptions: &ReminderOptions{DatetimeValue: &old}})
	s.Put(Entry{ID: "recent", Kind: KindReminder, Content: "y", ReminderOptions: &ReminderOptions{DatetimeValue: &recent}})
	s.Put(Entry{ID: "future", Kind: KindReminder, Content: "z", ReminderOptions: &ReminderOptions{DatetimeValue: &future}})
	s.Put(Entry{ID: "daily", Kind: KindReminder, Content: "w", ReminderOptions: &ReminderOptions{TimeValue: "08:00"}})
	s.Put(Entry{ID: "note", Kind: KindObservation, Content: "v"})

	removed := s.PruneExpiredOneTime(now, 7*24*time.Hour)
	if removed != 1 {
		t.Fatalf("removed: got %d, want 1", removed)
	}
	if _, ok := s.Get("expired"); ok {
		t.Fatal("expired reminder still present")
	}
	for _, id := range []string{"recent", "future", "daily", "note"} {
		if _, ok := s.Get(id); !ok {
			t.Fatalf("entry %s should survive pruning", id)
		}
	}
}
