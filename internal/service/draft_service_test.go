package service

import (
	"testing"
	"time"
)

func TestSaveDraftCollapsesBurst(t *testing.T) {
	s := NewDraftService(DraftConfig{Debounce: 40 * time.Millisecond, MaxDrafts: 10})
	defer s.Close()

	s.SaveDraft("p1", "first", nil)
	s.SaveDraft("p1", "second", nil)

	if s.CurrentDraftID() != "p1" {
		t.Errorf("CurrentDraftID = %q, want p1", s.CurrentDraftID())
	}
	if _, ok := s.GetDraft("p1"); ok {
		t.Fatal("draft committed before debounce elapsed")
	}

	time.Sleep(150 * time.Millisecond)

	d, ok := s.GetDraft("p1")
	if !ok {
		t.Fatal("draft was not committed")
	}
	if d.Content != "second" {
		t.Errorf("content = %q, want second", d.Content)
	}
	if s.Count() != 1 {
		t.Errorf("count = %d, want 1", s.Count())
	}
}

func TestSaveDraftWindowResets(t *testing.T) {
	s := NewDraftService(DraftConfig{Debounce: 100 * time.Millisecond, MaxDrafts: 10})
	defer s.Close()

	s.SaveDraft("p1", "first", nil)
	time.Sleep(60 * time.Millisecond)
	s.SaveDraft("p1", "second", nil)
	time.Sleep(60 * time.Millisecond)

	// 120ms after the first call, but only 60ms after the second: the
	// trailing edge has not fired yet.
	if _, ok := s.GetDraft("p1"); ok {
		t.Fatal("window did not reset on second call")
	}

	time.Sleep(150 * time.Millisecond)
	d, ok := s.GetDraft("p1")
	if !ok {
		t.Fatal("draft was not committed")
	}
	if d.Content != "second" {
		t.Errorf("content = %q, want second", d.Content)
	}
}

func TestDraftEvictionRemovesOldest(t *testing.T) {
	s := NewDraftService(DraftConfig{Debounce: 10 * time.Millisecond, MaxDrafts: 3})
	defer s.Close()

	for _, id := range []string{"a", "b", "c", "d"} {
		s.SaveDraft(id, "content "+id, nil)
		time.Sleep(40 * time.Millisecond)
	}

	if s.Count() != 3 {
		t.Fatalf("count = %d, want 3", s.Count())
	}
	if _, ok := s.GetDraft("a"); ok {
		t.Error("oldest draft was not evicted")
	}
	for _, id := range []string{"b", "c", "d"} {
		if _, ok := s.GetDraft(id); !ok {
			t.Errorf("draft %q missing", id)
		}
	}
}

func TestGetAllDraftsOrder(t *testing.T) {
	s := NewDraftService(DraftConfig{Debounce: 10 * time.Millisecond, MaxDrafts: 10})
	defer s.Close()

	for _, id := range []string{"a", "b", "c"} {
		s.SaveDraft(id, id, nil)
		time.Sleep(40 * time.Millisecond)
	}

	entries := s.GetAllDrafts()
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	want := []string{"c", "b", "a"}
	for i, entry := range entries {
		if entry.ID != want[i] {
			t.Errorf("entries[%d].ID = %q, want %q", i, entry.ID, want[i])
		}
	}
}

func TestDeleteDraftCancelsPendingWrite(t *testing.T) {
	s := NewDraftService(DraftConfig{Debounce: 30 * time.Millisecond, MaxDrafts: 10})
	defer s.Close()

	s.SaveDraft("p1", "content", nil)
	s.DeleteDraft("p1")

	if s.CurrentDraftID() != "" {
		t.Errorf("CurrentDraftID = %q, want empty", s.CurrentDraftID())
	}

	time.Sleep(100 * time.Millisecond)
	if _, ok := s.GetDraft("p1"); ok {
		t.Error("pending write fired after delete")
	}
}

func TestCloseStopsPendingWrites(t *testing.T) {
	s := NewDraftService(DraftConfig{Debounce: 30 * time.Millisecond, MaxDrafts: 10})

	s.SaveDraft("p1", "content", nil)
	s.Close()

	time.Sleep(100 * time.Millisecond)
	if s.Count() != 0 {
		t.Errorf("count = %d after close, want 0", s.Count())
	}
}

func TestGenerationsReleasedAfterWritesSettle(t *testing.T) {
	s := NewDraftService(DraftConfig{Debounce: 10 * time.Millisecond, MaxDrafts: 10})
	defer s.Close()

	s.SaveDraft("p1", "one", nil)
	s.SaveDraft("p2", "two", nil)
	s.SaveDraft("p3", "three", nil)
	s.DeleteDraft("p3")
	time.Sleep(100 * time.Millisecond)

	ds := s.(*draftService)
	ds.mu.Lock()
	gens, timers := len(ds.gens), len(ds.timers)
	ds.mu.Unlock()
	if gens != 0 {
		t.Errorf("len(gens) = %d after all writes settled, want 0", gens)
	}
	if timers != 0 {
		t.Errorf("len(timers) = %d after all writes settled, want 0", timers)
	}
}

func TestSaveAfterDeleteIsNotClobbered(t *testing.T) {
	s := NewDraftService(DraftConfig{Debounce: 20 * time.Millisecond, MaxDrafts: 10})
	defer s.Close()

	s.SaveDraft("p1", "stale", nil)
	s.DeleteDraft("p1")
	s.SaveDraft("p1", "fresh", nil)
	time.Sleep(100 * time.Millisecond)

	d, ok := s.GetDraft("p1")
	if !ok {
		t.Fatal("draft never committed")
	}
	if d.Content != "fresh" {
		t.Errorf("content = %q, want fresh", d.Content)
	}
}
