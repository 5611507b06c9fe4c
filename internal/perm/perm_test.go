package perm

import (
	"context"
	"errors"
	"testing"

	"github.com/taskhive-dev/taskhive/internal/apperr"
)

type stubSource struct {
	teamRoles    map[uint]string   // teamID -> role for the test user
	projectRoles map[uint][]string // projectID -> roles for the test user
	err          error
}

func (s *stubSource) TeamRole(_ context.Context, _, teamID uint) (string, bool, error) {
	if s.err != nil {
		return "", false, s.err
	}
	role, ok := s.teamRoles[teamID]
	return role, ok, nil
}

func (s *stubSource) ProjectRoles(_ context.Context, _, projectID uint) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.projectRoles[projectID], nil
}

func denyReason(t *testing.T, err error) apperr.DenyReason {
	t.Helper()
	var d *apperr.DenyError
	if !errors.As(err, &d) {
		t.Fatalf("expected DenyError, got %v", err)
	}
	return d.Reason
}

func TestAdminCanDoAnythingOnProject(t *testing.T) {
	ev := New(&stubSource{projectRoles: map[uint][]string{1: {"admin"}}})

	actions := []Action{ActionView, ActionTaskCreate, ActionTaskUpdate, ActionTaskDelete, ActionProjUpdate, ActionProjDelete}
	for _, action := range actions {
		if err := ev.Authorize(context.Background(), 10, action, ProjectTarget(1)); err != nil {
			t.Errorf("admin denied %s: %v", action, err)
		}
	}
}

func TestNoMembershipIsNoRelation(t *testing.T) {
	ev := New(&stubSource{projectRoles: map[uint][]string{}})

	err := ev.Authorize(context.Background(), 10, ActionTaskDelete, ProjectTarget(1))
	if err == nil {
		t.Fatal("expected deny")
	}
	if reason := denyReason(t, err); reason != apperr.NoRelation {
		t.Errorf("reason = %q, want %q", reason, apperr.NoRelation)
	}
}

func TestLowRoleIsInsufficientRole(t *testing.T) {
	ev := New(&stubSource{projectRoles: map[uint][]string{1: {"read"}}})

	err := ev.Authorize(context.Background(), 10, ActionTaskCreate, ProjectTarget(1))
	if reason := denyReason(t, err); reason != apperr.InsufficientRole {
		t.Errorf("reason = %q, want %q", reason, apperr.InsufficientRole)
	}

	// Reading is still fine.
	if err := ev.Authorize(context.Background(), 10, ActionView, ProjectTarget(1)); err != nil {
		t.Errorf("read-level view denied: %v", err)
	}
}

func TestMaxRoleAcrossTeamsWins(t *testing.T) {
	// Member of two teams on the same project with different roles: the
	// higher role decides.
	ev := New(&stubSource{projectRoles: map[uint][]string{1: {"read", "write"}}})

	if err := ev.Authorize(context.Background(), 10, ActionTaskCreate, ProjectTarget(1)); err != nil {
		t.Errorf("write via second team denied: %v", err)
	}
	err := ev.Authorize(context.Background(), 10, ActionTaskDelete, ProjectTarget(1))
	if reason := denyReason(t, err); reason != apperr.InsufficientRole {
		t.Errorf("reason = %q, want %q", reason, apperr.InsufficientRole)
	}
}

func TestTeamTargetUsesDirectMembership(t *testing.T) {
	ev := New(&stubSource{teamRoles: map[uint]string{5: "admin"}})

	if err := ev.Authorize(context.Background(), 10, ActionTeamMembers, TeamTarget(5)); err != nil {
		t.Errorf("team admin denied member management: %v", err)
	}

	err := ev.Authorize(context.Background(), 10, ActionTeamMembers, TeamTarget(6))
	if reason := denyReason(t, err); reason != apperr.NoRelation {
		t.Errorf("reason = %q, want %q", reason, apperr.NoRelation)
	}
}

func TestUnknownRoleGrantsNothing(t *testing.T) {
	ev := New(&stubSource{projectRoles: map[uint][]string{1: {"superuser"}}})

	err := ev.Authorize(context.Background(), 10, ActionView, ProjectTarget(1))
	if reason := denyReason(t, err); reason != apperr.NoRelation {
		t.Errorf("reason = %q, want %q", reason, apperr.NoRelation)
	}
}

func TestSourceFailureIsStorageError(t *testing.T) {
	ev := New(&stubSource{err: errors.New("connection refused")})

	err := ev.Authorize(context.Background(), 10, ActionView, ProjectTarget(1))
	var storage *apperr.StorageError
	if !errors.As(err, &storage) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}

func TestParseRole(t *testing.T) {
	cases := []struct {
		role  string
		level Level
		ok    bool
	}{
		{"read", LevelRead, true},
		{"write", LevelWrite, true},
		{"admin", LevelAdmin, true},
		{"", 0, false},
		{"owner", 0, false},
	}
	for _, tc := range cases {
		level, ok := ParseRole(tc.role)
		if level != tc.level || ok != tc.ok {
			t.Errorf("ParseRole(%q) = (%v, %v), want (%v, %v)", tc.role, level, ok, tc.level, tc.ok)
		}
	}
}

func TestRequiredLevelDefaultsToAdmin(t *testing.T) {
	if got := Action("nonsense").Required(); got != LevelAdmin {
		t.Errorf("unmapped action required level = %v, want admin", got)
	}
}
