package scheduler

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
)

func testLogger() zerolog.Logger { return zerolog.Nop() }

func TestNeedsOverdueNotice(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	cases := []struct {
		name string
		task models.Task
		want bool
	}{
		{"overdue open task", models.Task{DueDate: &past, Status: types.TaskStatusOpen}, true},
		{"overdue in-progress task", models.Task{DueDate: &past, Status: types.TaskStatusInProgress}, true},
		{"done task", models.Task{DueDate: &past, Status: types.TaskStatusDone}, false},
		{"not yet due", models.Task{DueDate: &future, Status: types.TaskStatusOpen}, false},
		{"no due date", models.Task{Status: types.TaskStatusOpen}, false},
		{"already notified", models.Task{DueDate: &past, Status: types.TaskStatusOpen, OverdueNotifiedAt: &past}, false},
	}

	for _, tc := range cases {
		if got := NeedsOverdueNotice(tc.task, now); got != tc.want {
			t.Errorf("%s: NeedsOverdueNotice = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSweeperStopIsIdempotent(t *testing.T) {
	s := NewSweeper(time.Minute, testLogger())

	s.Stop()
	s.Stop()

	select {
	case <-s.ctx.Done():
	default:
		t.Error("context should be cancelled after Stop")
	}
}
