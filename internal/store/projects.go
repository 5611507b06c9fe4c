package store

import (
	"context"
	"strings"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/audit"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/perm"
	"github.com/taskhive-dev/taskhive/internal/types"
	"gorm.io/gorm"
)

type CreateProjectInput struct {
	Name        string
	Description string
	TeamIDs     []uint
	WebhookURL  string
}

func (in *CreateProjectInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperr.Invalid("name", "must not be empty")
	}
	if len(in.TeamIDs) == 0 {
		return apperr.Invalid("team_ids", "at least one team is required")
	}
	seen := make(map[uint]bool, len(in.TeamIDs))
	for _, id := range in.TeamIDs {
		if id == 0 {
			return apperr.Invalid("team_ids", "must not contain zero")
		}
		if seen[id] {
			return apperr.Invalid("team_ids", "must not contain duplicates")
		}
		seen[id] = true
	}
	return nil
}

// CreateProject registers a project attached to one or more teams. The
// creator must hold the admin role in at least one of them.
func (s *Store) CreateProject(ctx context.Context, actorID uint, in CreateProjectInput) (*models.Project, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	project := models.Project{
		Name:          in.Name,
		Description:   in.Description,
		CreatorID:     actorID,
		WebhookURL:    in.WebhookURL,
		NotifyOverdue: true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var teams []models.Team
		if err := tx.Where("id IN ?", in.TeamIDs).Find(&teams).Error; err != nil {
			return dbErr("load teams", err)
		}
		if len(teams) != len(in.TeamIDs) {
			return apperr.Invalid("team_ids", "one or more teams do not exist")
		}

		src := txMembership{tx: tx}
		best, related := perm.Level(0), false
		for _, team := range teams {
			role, ok, err := src.TeamRole(ctx, actorID, team.ID)
			if err != nil {
				return apperr.Storage("membership lookup", err)
			}
			if !ok {
				continue
			}
			related = true
			if level, valid := perm.ParseRole(role); valid && level > best {
				best = level
			}
		}
		if !related {
			return apperr.Deny(apperr.NoRelation, perm.RoleAdmin)
		}
		if best < perm.LevelAdmin {
			return apperr.Deny(apperr.InsufficientRole, perm.RoleAdmin)
		}

		if err := tx.Create(&project).Error; err != nil {
			return dbErr("create project", err)
		}
		if err := tx.Model(&project).Association("Teams").Append(&teams); err != nil {
			return dbErr("attach teams", err)
		}

		scope := project.ID
		return s.recorder.Record(tx, audit.Event{
			ActorID:    actorID,
			Action:     types.ActionCreate,
			EntityType: types.EntityProject,
			EntityID:   project.ID,
			ProjectID:  &scope,
			After:      projectSnapshot(project, in.TeamIDs),
		})
	})
	if err != nil {
		return nil, err
	}

	return &project, nil
}

type UpdateProjectInput struct {
	Name           *string
	Description    *string
	WebhookURL     *string
	NotifyOverdue  *bool
	NotifyActivity *bool
}

// UpdateProject edits project attributes. Requires admin on the project.
func (s *Store) UpdateProject(ctx context.Context, actorID, projectID uint, in UpdateProjectInput) (*models.Project, error) {
	var project models.Project

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Teams").First(&project, projectID).Error; err != nil {
			return dbErr("load project", err)
		}

		if err := s.authorize(ctx, tx, actorID, perm.ActionProjUpdate, perm.ProjectTarget(projectID)); err != nil {
			return err
		}

		teamIDs := teamIDsOf(project.Teams)
		before := projectSnapshot(project, teamIDs)

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperr.Invalid("name", "must not be empty")
			}
			project.Name = name
		}
		if in.Description != nil {
			project.Description = *in.Description
		}
		if in.WebhookURL != nil {
			project.WebhookURL = *in.WebhookURL
		}
		if in.NotifyOverdue != nil {
			project.NotifyOverdue = *in.NotifyOverdue
		}
		if in.NotifyActivity != nil {
			project.NotifyActivity = *in.NotifyActivity
		}

		if err := tx.Save(&project).Error; err != nil {
			return dbErr("update project", err)
		}

		scope := project.ID
		return s.recorder.Record(tx, audit.Event{
			ActorID:    actorID,
			Action:     types.ActionUpdate,
			EntityType: types.EntityProject,
			EntityID:   project.ID,
			ProjectID:  &scope,
			Before:     before,
			After:      projectSnapshot(project, teamIDs),
		})
	})
	if err != nil {
		return nil, err
	}

	return &project, nil
}

// DeleteProject removes the project and cascades a soft delete over its
// tasks, all in the same transaction. Requires admin on the project.
func (s *Store) DeleteProject(ctx context.Context, actorID, projectID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.Preload("Teams").First(&project, projectID).Error; err != nil {
			return dbErr("load project", err)
		}

		if err := s.authorize(ctx, tx, actorID, perm.ActionProjDelete, perm.ProjectTarget(projectID)); err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return dbErr("delete tasks", err)
		}
		if err := tx.Model(&project).Association("Teams").Clear(); err != nil {
			return dbErr("detach teams", err)
		}
		if err := tx.Delete(&project).Error; err != nil {
			return dbErr("delete project", err)
		}

		scope := project.ID
		return s.recorder.Record(tx, audit.Event{
			ActorID:    actorID,
			Action:     types.ActionDelete,
			EntityType: types.EntityProject,
			EntityID:   project.ID,
			ProjectID:  &scope,
			Before:     projectSnapshot(project, teamIDsOf(project.Teams)),
		})
	})
}

func (s *Store) GetProject(ctx context.Context, actorID, projectID uint) (*models.Project, error) {
	var project models.Project

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Teams").First(&project, projectID).Error; err != nil {
			return dbErr("load project", err)
		}
		return s.authorize(ctx, tx, actorID, perm.ActionView, perm.ProjectTarget(projectID))
	})
	if err != nil {
		return nil, err
	}

	return &project, nil
}

// ListProjects returns projects visible to the actor through their team
// memberships.
func (s *Store) ListProjects(ctx context.Context, actorID uint) ([]models.Project, error) {
	ids, err := accessibleProjectIDs(ctx, s.db, actorID)
	if err != nil {
		return nil, dbErr("list projects", err)
	}
	if len(ids) == 0 {
		return []models.Project{}, nil
	}

	var projects []models.Project
	err = s.db.WithContext(ctx).
		Preload("Teams").
		Where("id IN ?", ids).
		Order("name").
		Find(&projects).Error
	if err != nil {
		return nil, dbErr("list projects", err)
	}
	return projects, nil
}

// AttachTeam associates another team with the project. Requires admin
// on the project.
func (s *Store) AttachTeam(ctx context.Context, actorID, projectID, teamID uint) error {
	return s.changeTeams(ctx, actorID, projectID, teamID, true)
}

// DetachTeam removes a team association. The last team cannot be
// detached: a project with no teams would be unreachable by everyone.
func (s *Store) DetachTeam(ctx context.Context, actorID, projectID, teamID uint) error {
	return s.changeTeams(ctx, actorID, projectID, teamID, false)
}

func (s *Store) changeTeams(ctx context.Context, actorID, projectID, teamID uint, attach bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.Preload("Teams").First(&project, projectID).Error; err != nil {
			return dbErr("load project", err)
		}

		if err := s.authorize(ctx, tx, actorID, perm.ActionProjTeams, perm.ProjectTarget(projectID)); err != nil {
			return err
		}

		before := projectSnapshot(project, teamIDsOf(project.Teams))

		var team models.Team
		if err := tx.First(&team, teamID).Error; err != nil {
			return dbErr("load team", err)
		}

		if attach {
			for _, t := range project.Teams {
				if t.ID == teamID {
					return apperr.ErrConflict
				}
			}
			if err := tx.Model(&project).Association("Teams").Append(&team); err != nil {
				return dbErr("attach team", err)
			}
			project.Teams = append(project.Teams, team)
		} else {
			if len(project.Teams) <= 1 {
				return apperr.Invalid("team_id", "cannot detach the last team")
			}
			if err := tx.Model(&project).Association("Teams").Delete(&team); err != nil {
				return dbErr("detach team", err)
			}
			kept := project.Teams[:0]
			for _, t := range project.Teams {
				if t.ID != teamID {
					kept = append(kept, t)
				}
			}
			project.Teams = kept
		}

		scope := project.ID
		return s.recorder.Record(tx, audit.Event{
			ActorID:    actorID,
			Action:     types.ActionUpdate,
			EntityType: types.EntityProject,
			EntityID:   project.ID,
			ProjectID:  &scope,
			Before:     before,
			After:      projectSnapshot(project, teamIDsOf(project.Teams)),
		})
	})
}

func teamIDsOf(teams []models.Team) []uint {
	ids := make([]uint, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids
}
