package store

import (
	"errors"
	"testing"
	"time"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
	"gorm.io/gorm"
)

func TestDBErrMapping(t *testing.T) {
	if got := dbErr("load task", gorm.ErrRecordNotFound); !errors.Is(got, apperr.ErrNotFound) {
		t.Errorf("record-not-found mapped to %v", got)
	}
	if got := dbErr("create team", gorm.ErrDuplicatedKey); !errors.Is(got, apperr.ErrConflict) {
		t.Errorf("duplicated-key mapped to %v", got)
	}

	cause := errors.New("connection reset")
	got := dbErr("create task", cause)
	var storage *apperr.StorageError
	if !errors.As(got, &storage) {
		t.Fatalf("driver failure mapped to %v", got)
	}
	if !errors.Is(got, cause) {
		t.Error("StorageError should unwrap to the driver error")
	}
}

func TestRegisterUserInputValidate(t *testing.T) {
	cases := []struct {
		name  string
		in    RegisterUserInput
		field string // empty means valid
	}{
		{"valid", RegisterUserInput{Name: "Ann", Email: "ann@example.com", Password: "longenough"}, ""},
		{"normalizes email", RegisterUserInput{Name: "Ann", Email: "  ANN@Example.COM ", Password: "longenough"}, ""},
		{"empty name", RegisterUserInput{Email: "ann@example.com", Password: "longenough"}, "name"},
		{"bad email", RegisterUserInput{Name: "Ann", Email: "nope", Password: "longenough"}, "email"},
		{"short password", RegisterUserInput{Name: "Ann", Email: "ann@example.com", Password: "short"}, "password"},
	}

	for _, tc := range cases {
		err := tc.in.Validate()
		if tc.field == "" {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}
		var v *apperr.ValidationError
		if !errors.As(err, &v) || v.Field != tc.field {
			t.Errorf("%s: got %v, want validation error on %q", tc.name, err, tc.field)
		}
	}

	in := RegisterUserInput{Name: "Ann", Email: "  ANN@Example.COM ", Password: "longenough"}
	if err := in.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if in.Email != "ann@example.com" {
		t.Errorf("email not normalized: %q", in.Email)
	}
}

func TestCreateProjectInputValidate(t *testing.T) {
	valid := CreateProjectInput{Name: "Launch", TeamIDs: []uint{1, 2}}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid input rejected: %v", err)
	}

	noTeams := CreateProjectInput{Name: "Launch"}
	if err := noTeams.Validate(); !apperr.IsValidation(err) {
		t.Errorf("missing teams: got %v", err)
	}

	dupTeams := CreateProjectInput{Name: "Launch", TeamIDs: []uint{3, 3}}
	if err := dupTeams.Validate(); !apperr.IsValidation(err) {
		t.Errorf("duplicate teams: got %v", err)
	}
}

func TestCreateTaskInputValidate(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)

	in := CreateTaskInput{ProjectID: 1, Title: "  Write spec  "}
	if err := in.Validate(now); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if in.Title != "Write spec" {
		t.Errorf("title not trimmed: %q", in.Title)
	}
	if in.Priority != types.PriorityLow {
		t.Errorf("priority not defaulted: %d", in.Priority)
	}

	past := now.Add(-48 * time.Hour)
	withPastDue := CreateTaskInput{ProjectID: 1, Title: "Late", DueDate: &past}
	if err := withPastDue.Validate(now); !apperr.IsValidation(err) {
		t.Errorf("past due date: got %v", err)
	}

	// Due earlier today is still valid: the cutoff is start of day.
	earlierToday := now.Add(-time.Hour)
	sameDay := CreateTaskInput{ProjectID: 1, Title: "Today", DueDate: &earlierToday}
	if err := sameDay.Validate(now); err != nil {
		t.Errorf("same-day due date rejected: %v", err)
	}

	badPriority := CreateTaskInput{ProjectID: 1, Title: "X", Priority: 9}
	if err := badPriority.Validate(now); !apperr.IsValidation(err) {
		t.Errorf("bad priority: got %v", err)
	}

	noProject := CreateTaskInput{Title: "X"}
	if err := noProject.Validate(now); !apperr.IsValidation(err) {
		t.Errorf("missing project: got %v", err)
	}
}

func TestMemberInputValidate(t *testing.T) {
	if err := (MemberInput{UserID: 1, Role: "write"}).Validate(); err != nil {
		t.Errorf("valid member rejected: %v", err)
	}
	if err := (MemberInput{UserID: 1, Role: "owner"}).Validate(); !apperr.IsValidation(err) {
		t.Error("unknown role accepted")
	}
	if err := (MemberInput{Role: "read"}).Validate(); !apperr.IsValidation(err) {
		t.Error("zero user id accepted")
	}
}

func TestActivityTargetShouldNotify(t *testing.T) {
	cases := []struct {
		name   string
		target ActivityTarget
		want   bool
	}{
		{"opted in with URL", ActivityTarget{WebhookURL: "https://hooks.slack.com/x", NotifyActivity: true}, true},
		{"opted out", ActivityTarget{WebhookURL: "https://hooks.slack.com/x"}, false},
		{"no URL configured", ActivityTarget{NotifyActivity: true}, false},
		{"neither", ActivityTarget{}, false},
	}
	for _, tc := range cases {
		if got := tc.target.ShouldNotify(); got != tc.want {
			t.Errorf("%s: ShouldNotify = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestUserSnapshotExcludesCredentials(t *testing.T) {
	snap := userSnapshot(models.User{
		Name:         "Ann",
		Email:        "ann@example.com",
		PasswordHash: "$2a$10$secret",
	})

	for key, value := range snap {
		if s, ok := value.(string); ok && s == "$2a$10$secret" {
			t.Errorf("password hash leaked into snapshot under %q", key)
		}
	}
	if snap["name"] != "Ann" || snap["email"] != "ann@example.com" {
		t.Errorf("unexpected snapshot: %v", snap)
	}
}

func TestTaskSnapshotShape(t *testing.T) {
	due := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	task := models.Task{
		ProjectID: 3,
		Title:     "Write spec",
		Status:    types.TaskStatusOpen,
		Priority:  types.PriorityHigh,
		DueDate:   &due,
		Assignees: []models.User{{Model: gorm.Model{ID: 5}}},
		Tags:      []models.Tag{{Name: "docs"}},
	}

	snap := taskSnapshot(task)

	if snap["title"] != "Write spec" || snap["status"] != "open" {
		t.Errorf("unexpected snapshot: %v", snap)
	}
	if snap["due_date"] != "2026-09-02" {
		t.Errorf("due_date = %v", snap["due_date"])
	}
	ids, ok := snap["assignee_ids"].([]uint)
	if !ok || len(ids) != 1 || ids[0] != 5 {
		t.Errorf("assignee_ids = %v", snap["assignee_ids"])
	}
}

func TestUniqueIDs(t *testing.T) {
	got := uniqueIDs([]uint{1, 2, 2, 3, 1})
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("uniqueIDs = %v", got)
	}
}

func TestStartOfDay(t *testing.T) {
	at := time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC)
	want := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	if got := startOfDay(at); !got.Equal(want) {
		t.Errorf("startOfDay = %v, want %v", got, want)
	}
}
