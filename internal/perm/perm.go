package perm

import (
	"context"

	"github.com/taskhive-dev/taskhive/internal/apperr"
)

// Level is an ordered permission tier. A user's effective level on a
// project is the highest role they hold across the teams attached to
// that project.
type Level int

const (
	LevelRead Level = iota + 1
	LevelWrite
	LevelAdmin
)

const (
	RoleRead  = "read"
	RoleWrite = "write"
	RoleAdmin = "admin"
)

func (l Level) String() string {
	switch l {
	case LevelRead:
		return RoleRead
	case LevelWrite:
		return RoleWrite
	case LevelAdmin:
		return RoleAdmin
	}
	return "unknown"
}

// ParseRole maps a stored role string to its level. Unknown roles are
// rejected rather than defaulted, so a corrupt row can never grant
// access.
func ParseRole(role string) (Level, bool) {
	switch role {
	case RoleRead:
		return LevelRead, true
	case RoleWrite:
		return LevelWrite, true
	case RoleAdmin:
		return LevelAdmin, true
	}
	return 0, false
}

// Action names an operation subject to authorization.
type Action string

const (
	ActionView        Action = "view"
	ActionAuditRead   Action = "audit.read"
	ActionTaskCreate  Action = "task.create"
	ActionTaskUpdate  Action = "task.update"
	ActionTaskDelete  Action = "task.delete"
	ActionCommentAdd  Action = "comment.add"
	ActionProjUpdate  Action = "project.update"
	ActionProjDelete  Action = "project.delete"
	ActionProjTeams   Action = "project.teams"
	ActionTeamUpdate  Action = "team.update"
	ActionTeamDelete  Action = "team.delete"
	ActionTeamMembers Action = "team.members"
)

var requiredLevel = map[Action]Level{
	ActionView:        LevelRead,
	ActionAuditRead:   LevelRead,
	ActionTaskCreate:  LevelWrite,
	ActionTaskUpdate:  LevelWrite,
	ActionCommentAdd:  LevelWrite,
	ActionTaskDelete:  LevelAdmin,
	ActionProjUpdate:  LevelAdmin,
	ActionProjDelete:  LevelAdmin,
	ActionProjTeams:   LevelAdmin,
	ActionTeamUpdate:  LevelAdmin,
	ActionTeamDelete:  LevelAdmin,
	ActionTeamMembers: LevelAdmin,
}

// Required returns the minimum level the action demands. Unmapped
// actions require admin.
func (a Action) Required() Level {
	if level, ok := requiredLevel[a]; ok {
		return level
	}
	return LevelAdmin
}

// Target identifies what an action operates on. Exactly one of
// ProjectID or TeamID is set: task and comment actions resolve to their
// owning project before authorization.
type Target struct {
	ProjectID uint
	TeamID    uint
}

func ProjectTarget(projectID uint) Target { return Target{ProjectID: projectID} }
func TeamTarget(teamID uint) Target       { return Target{TeamID: teamID} }

// MembershipSource resolves the roles a user holds on a team or,
// transitively through team attachments, on a project. The store
// implements it inside the request transaction; tests use stubs.
type MembershipSource interface {
	TeamRole(ctx context.Context, userID, teamID uint) (role string, ok bool, err error)
	ProjectRoles(ctx context.Context, userID, projectID uint) ([]string, error)
}

type Evaluator struct {
	src MembershipSource
}

func New(src MembershipSource) Evaluator {
	return Evaluator{src: src}
}

// Authorize decides whether userID may perform action on target. A nil
// return means allow; otherwise the error is an *apperr.DenyError
// (NoRelation when the user has no membership path to the target,
// InsufficientRole when their best role is below the required level) or
// an *apperr.StorageError if membership lookup failed.
func (e Evaluator) Authorize(ctx context.Context, userID uint, action Action, target Target) error {
	var roles []string

	if target.TeamID != 0 {
		role, ok, err := e.src.TeamRole(ctx, userID, target.TeamID)
		if err != nil {
			return apperr.Storage("membership lookup", err)
		}
		if ok {
			roles = []string{role}
		}
	} else {
		var err error
		roles, err = e.src.ProjectRoles(ctx, userID, target.ProjectID)
		if err != nil {
			return apperr.Storage("membership lookup", err)
		}
	}

	required := action.Required()

	best, found := Level(0), false
	for _, role := range roles {
		level, ok := ParseRole(role)
		if !ok {
			continue
		}
		if level > best {
			best = level
		}
		found = true
	}

	if !found {
		return apperr.Deny(apperr.NoRelation, required.String())
	}
	if best < required {
		return apperr.Deny(apperr.InsufficientRole, required.String())
	}
	return nil
}
