package audit

import (
	"encoding/json"
	"testing"

	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
)

func TestNewEntryCreateHasNoBefore(t *testing.T) {
	projectID := uint(3)
	entry, err := NewEntry(Event{
		ActorID:    7,
		Action:     types.ActionCreate,
		EntityType: types.EntityTask,
		EntityID:   12,
		ProjectID:  &projectID,
		After:      map[string]any{"title": "Write spec", "status": "open"},
	})
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}

	if entry.Before != nil {
		t.Errorf("create entry should have nil before, got %s", entry.Before)
	}

	var after map[string]any
	if err := json.Unmarshal(entry.After, &after); err != nil {
		t.Fatalf("unmarshal after: %v", err)
	}
	if after["title"] != "Write spec" || after["status"] != "open" {
		t.Errorf("unexpected after snapshot: %v", after)
	}
	if entry.ProjectID == nil || *entry.ProjectID != 3 {
		t.Errorf("project scope not carried: %v", entry.ProjectID)
	}
}

func TestNewEntryDeleteHasNoAfter(t *testing.T) {
	entry, err := NewEntry(Event{
		ActorID:    7,
		Action:     types.ActionDelete,
		EntityType: types.EntityTask,
		EntityID:   12,
		Before:     map[string]any{"title": "Write spec"},
	})
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}

	if entry.After != nil {
		t.Errorf("delete entry should have nil after, got %s", entry.After)
	}
	if entry.Before == nil {
		t.Error("delete entry should carry a before snapshot")
	}
}

func TestNewEntryUpdateCarriesBothSnapshots(t *testing.T) {
	entry, err := NewEntry(Event{
		ActorID:    7,
		Action:     types.ActionUpdate,
		EntityType: types.EntityProject,
		EntityID:   3,
		Before:     map[string]any{"name": "Launch"},
		After:      map[string]any{"name": "Launch v2"},
	})
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}

	var before, after map[string]any
	if err := json.Unmarshal(entry.Before, &before); err != nil {
		t.Fatalf("unmarshal before: %v", err)
	}
	if err := json.Unmarshal(entry.After, &after); err != nil {
		t.Fatalf("unmarshal after: %v", err)
	}
	if before["name"] != "Launch" || after["name"] != "Launch v2" {
		t.Errorf("snapshots = %v -> %v", before, after)
	}
}

func TestNewEntryRejectsUnmarshalableSnapshot(t *testing.T) {
	_, err := NewEntry(Event{
		ActorID:    1,
		Action:     types.ActionCreate,
		EntityType: types.EntityTask,
		After:      make(chan int),
	})
	if err == nil {
		t.Fatal("expected marshal failure")
	}
}

func TestFilterNormalize(t *testing.T) {
	cases := []struct {
		name       string
		in         Filter
		wantLimit  int
		wantOffset int
	}{
		{"defaults", Filter{}, defaultQueryLimit, 0},
		{"clamped", Filter{Limit: 10000, Offset: 20}, maxQueryLimit, 20},
		{"negative offset", Filter{Limit: 5, Offset: -3}, 5, 0},
	}
	for _, tc := range cases {
		got := tc.in.Normalize()
		if got.Limit != tc.wantLimit || got.Offset != tc.wantOffset {
			t.Errorf("%s: Normalize() = limit %d offset %d, want %d/%d",
				tc.name, got.Limit, got.Offset, tc.wantLimit, tc.wantOffset)
		}
	}
}

func TestEntryResponseUnmarshalsSnapshots(t *testing.T) {
	entry, err := NewEntry(Event{
		ActorID:    2,
		Action:     types.ActionUpdate,
		EntityType: types.EntityTask,
		EntityID:   9,
		Before:     map[string]any{"status": "open"},
		After:      map[string]any{"status": "done"},
	})
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}

	resp := EntryResponse(entry)

	before, ok := resp.Before.(map[string]any)
	if !ok || before["status"] != "open" {
		t.Errorf("before = %v", resp.Before)
	}
	after, ok := resp.After.(map[string]any)
	if !ok || after["status"] != "done" {
		t.Errorf("after = %v", resp.After)
	}
}

func TestAuditEntryRefusesMutation(t *testing.T) {
	var entry models.AuditEntry
	if err := entry.BeforeUpdate(nil); err == nil {
		t.Error("BeforeUpdate should refuse")
	}
	if err := entry.BeforeDelete(nil); err == nil {
		t.Error("BeforeDelete should refuse")
	}
}
