package store

import (
	"context"
	"time"

	"github.com/taskhive-dev/taskhive/internal/audit"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/perm"
	"github.com/taskhive-dev/taskhive/internal/types"
	"gorm.io/gorm"
)

// QueryAudit returns audit entries visible to the actor: entries scoped
// to projects or teams they belong to, plus their own actions. When the
// filter names a project explicitly the actor must hold read on it, so
// a denial is reported instead of silently returning nothing.
func (s *Store) QueryAudit(ctx context.Context, actorID uint, filter audit.Filter) ([]models.AuditEntry, error) {
	if filter.ProjectID != 0 {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.authorize(ctx, tx, actorID, perm.ActionAuditRead, perm.ProjectTarget(filter.ProjectID))
		})
		if err != nil {
			return nil, err
		}
	}

	projectIDs, err := accessibleProjectIDs(ctx, s.db, actorID)
	if err != nil {
		return nil, dbErr("audit scope", err)
	}
	teamIDs, err := memberTeamIDs(ctx, s.db, actorID)
	if err != nil {
		return nil, dbErr("audit scope", err)
	}

	return audit.Query(ctx, s.db, filter, audit.Scope{
		ActorID:    actorID,
		ProjectIDs: projectIDs,
		TeamIDs:    teamIDs,
	})
}

// ActivityTarget carries what a post-commit notifier needs to know
// about a project. Read without authorization: callers have already
// authorized the mutation this notification follows.
type ActivityTarget struct {
	Name           string
	WebhookURL     string
	NotifyActivity bool
}

func (t ActivityTarget) ShouldNotify() bool {
	return t.NotifyActivity && t.WebhookURL != ""
}

func (s *Store) ActivityTarget(ctx context.Context, projectID uint) (ActivityTarget, error) {
	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, projectID).Error; err != nil {
		return ActivityTarget{}, dbErr("load project", err)
	}

	return ActivityTarget{
		Name:           project.Name,
		WebhookURL:     project.WebhookURL,
		NotifyActivity: project.NotifyActivity,
	}, nil
}

// Dashboard aggregates a project's state the way the index screen
// presents it: task counts plus recent tasks and activity.
type Dashboard struct {
	Project         models.Project
	OpenTasks       int64
	UnassignedTasks int64
	OverdueTasks    int64
	RecentTasks     []models.Task
	RecentActivity  []models.AuditEntry
}

const dashboardRecentLimit = 10

func (s *Store) ProjectDashboard(ctx context.Context, actorID, projectID uint) (*Dashboard, error) {
	var dash Dashboard

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Teams").First(&dash.Project, projectID).Error; err != nil {
			return dbErr("load project", err)
		}

		if err := s.authorize(ctx, tx, actorID, perm.ActionView, perm.ProjectTarget(projectID)); err != nil {
			return err
		}

		tasks := func() *gorm.DB {
			return tx.Model(&models.Task{}).Where("project_id = ?", projectID)
		}

		if err := tasks().Where("status <> ?", types.TaskStatusDone).Count(&dash.OpenTasks).Error; err != nil {
			return dbErr("count open tasks", err)
		}

		err := tasks().
			Where("status <> ?", types.TaskStatusDone).
			Where("NOT EXISTS (SELECT 1 FROM task_assignees WHERE task_assignees.task_id = tasks.id)").
			Count(&dash.UnassignedTasks).Error
		if err != nil {
			return dbErr("count unassigned tasks", err)
		}

		err = tasks().
			Where("due_date < ? AND status <> ?", time.Now(), types.TaskStatusDone).
			Count(&dash.OverdueTasks).Error
		if err != nil {
			return dbErr("count overdue tasks", err)
		}

		err = tx.Preload("Assignees").Preload("Tags").
			Where("project_id = ?", projectID).
			Order("created_at DESC").
			Limit(dashboardRecentLimit).
			Find(&dash.RecentTasks).Error
		if err != nil {
			return dbErr("recent tasks", err)
		}

		err = tx.Where("project_id = ?", projectID).
			Order("created_at DESC").
			Limit(dashboardRecentLimit).
			Find(&dash.RecentActivity).Error
		if err != nil {
			return dbErr("recent activity", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dash, nil
}
