package store

import (
	"context"
	"errors"
	"strings"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/audit"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/perm"
	"github.com/taskhive-dev/taskhive/internal/types"
	"gorm.io/gorm"
)

// CreateTeam registers a team; the creator becomes its first admin.
// Open to any authenticated user.
func (s *Store) CreateTeam(ctx context.Context, actorID uint, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Invalid("name", "must not be empty")
	}

	team := models.Team{Name: name}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return dbErr("create team", err)
		}

		membership := models.TeamMembership{
			UserID: actorID,
			TeamID: team.ID,
			Role:   perm.RoleAdmin,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return dbErr("create membership", err)
		}

		teamID := team.ID
		return s.recorder.Record(tx, audit.Event{
			ActorID:    actorID,
			Action:     types.ActionCreate,
			EntityType: types.EntityTeam,
			EntityID:   team.ID,
			TeamID:     &teamID,
			After:      teamSnapshot(team),
		})
	})
	if err != nil {
		return nil, err
	}

	return &team, nil
}

// RenameTeam requires the admin role in that team.
func (s *Store) RenameTeam(ctx context.Context, actorID, teamID uint, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Invalid("name", "must not be empty")
	}

	var team models.Team

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&team, teamID).Error; err != nil {
			return dbErr("load team", err)
		}

		if err := s.authorize(ctx, tx, actorID, perm.ActionTeamUpdate, perm.TeamTarget(teamID)); err != nil {
			return err
		}

		before := teamSnapshot(team)
		team.Name = name

		if err := tx.Save(&team).Error; err != nil {
			return dbErr("rename team", err)
		}

		scope := team.ID
		return s.recorder.Record(tx, audit.Event{
			ActorID:    actorID,
			Action:     types.ActionUpdate,
			EntityType: types.EntityTeam,
			EntityID:   team.ID,
			TeamID:     &scope,
			Before:     before,
			After:      teamSnapshot(team),
		})
	})
	if err != nil {
		return nil, err
	}

	return &team, nil
}

// DeleteTeam removes the team and its memberships. Audit entries that
// reference the team are left untouched.
func (s *Store) DeleteTeam(ctx context.Context, actorID, teamID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.First(&team, teamID).Error; err != nil {
			return dbErr("load team", err)
		}

		if err := s.authorize(ctx, tx, actorID, perm.ActionTeamDelete, perm.TeamTarget(teamID)); err != nil {
			return err
		}

		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMembership{}).Error; err != nil {
			return dbErr("delete memberships", err)
		}
		if err := tx.Model(&team).Association("Projects").Clear(); err != nil {
			return dbErr("detach projects", err)
		}
		if err := tx.Delete(&team).Error; err != nil {
			return dbErr("delete team", err)
		}

		scope := team.ID
		return s.recorder.Record(tx, audit.Event{
			ActorID:    actorID,
			Action:     types.ActionDelete,
			EntityType: types.EntityTeam,
			EntityID:   team.ID,
			TeamID:     &scope,
			Before:     teamSnapshot(team),
		})
	})
}

func (s *Store) GetTeam(ctx context.Context, actorID, teamID uint) (*models.Team, error) {
	var team models.Team

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Memberships.User").First(&team, teamID).Error; err != nil {
			return dbErr("load team", err)
		}
		return s.authorize(ctx, tx, actorID, perm.ActionView, perm.TeamTarget(teamID))
	})
	if err != nil {
		return nil, err
	}

	return &team, nil
}

// ListTeams returns the teams the actor belongs to.
func (s *Store) ListTeams(ctx context.Context, actorID uint) ([]models.Team, error) {
	ids, err := memberTeamIDs(ctx, s.db, actorID)
	if err != nil {
		return nil, dbErr("list teams", err)
	}
	if len(ids) == 0 {
		return []models.Team{}, nil
	}

	var teams []models.Team
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("name").Find(&teams).Error; err != nil {
		return nil, dbErr("list teams", err)
	}
	return teams, nil
}

type MemberInput struct {
	UserID uint
	Role   string
}

func (in MemberInput) Validate() error {
	if in.UserID == 0 {
		return apperr.Invalid("user_id", "must be set")
	}
	if _, ok := perm.ParseRole(in.Role); !ok {
		return apperr.Invalid("role", "must be read, write or admin")
	}
	return nil
}

// AddMember adds a user to the team. Requires team admin.
func (s *Store) AddMember(ctx context.Context, actorID, teamID uint, in MemberInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.First(&team, teamID).Error; err != nil {
			return dbErr("load team", err)
		}

		if err := s.authorize(ctx, tx, actorID, perm.ActionTeamMembers, perm.TeamTarget(teamID)); err != nil {
			return err
		}

		var user models.User
		if err := tx.First(&user, in.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Invalid("user_id", "user does not exist")
			}
			return dbErr("load user", err)
		}

		membership := models.TeamMembership{
			UserID: in.UserID,
			TeamID: teamID,
			Role:   in.Role,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return dbErr("create membership", err)
		}

		scope := teamID
		return s.recorder.Record(tx, audit.Event{
			ActorID:    actorID,
			Action:     types.ActionCreate,
			EntityType: types.EntityMembership,
			EntityID:   membership.ID,
			TeamID:     &scope,
			After:      membershipSnapshot(membership),
		})
	})
}

// UpdateMemberRole changes an existing member's role. Requires team admin.
func (s *Store) UpdateMemberRole(ctx context.Context, actorID, teamID uint, in MemberInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.authorize(ctx, tx, actorID, perm.ActionTeamMembers, perm.TeamTarget(teamID)); err != nil {
			return err
		}

		var membership models.TeamMembership
		err := tx.Where("team_id = ? AND user_id = ?", teamID, in.UserID).First(&membership).Error
		if err != nil {
			return dbErr("load membership", err)
		}

		before := membershipSnapshot(membership)
		membership.Role = in.Role

		if err := tx.Save(&membership).Error; err != nil {
			return dbErr("update membership", err)
		}

		scope := teamID
		return s.recorder.Record(tx, audit.Event{
			ActorID:    actorID,
			Action:     types.ActionUpdate,
			EntityType: types.EntityMembership,
			EntityID:   membership.ID,
			TeamID:     &scope,
			Before:     before,
			After:      membershipSnapshot(membership),
		})
	})
}

// RemoveMember drops a user from the team. Requires team admin.
func (s *Store) RemoveMember(ctx context.Context, actorID, teamID, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.authorize(ctx, tx, actorID, perm.ActionTeamMembers, perm.TeamTarget(teamID)); err != nil {
			return err
		}

		var membership models.TeamMembership
		err := tx.Where("team_id = ? AND user_id = ?", teamID, userID).First(&membership).Error
		if err != nil {
			return dbErr("load membership", err)
		}

		if err := tx.Delete(&membership).Error; err != nil {
			return dbErr("delete membership", err)
		}

		scope := teamID
		return s.recorder.Record(tx, audit.Event{
			ActorID:    actorID,
			Action:     types.ActionDelete,
			EntityType: types.EntityMembership,
			EntityID:   membership.ID,
			TeamID:     &scope,
			Before:     membershipSnapshot(membership),
		})
	})
}
