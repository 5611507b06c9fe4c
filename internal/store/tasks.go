package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/audit"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/perm"
	"github.com/taskhive-dev/taskhive/internal/types"
	"gorm.io/gorm"
)

type CreateTaskInput struct {
	ProjectID   uint
	Title       string
	Description string
	Priority    int
	DueDate     *time.Time
	AssigneeIDs []uint
	TagNames    []string
}

func (in *CreateTaskInput) Validate(now time.Time) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return apperr.Invalid("title", "must not be empty")
	}
	if in.ProjectID == 0 {
		return apperr.Invalid("project_id", "must be set")
	}
	if in.Priority == 0 {
		in.Priority = types.PriorityLow
	}
	if !types.ValidPriority(in.Priority) {
		return apperr.Invalid("priority", "must be between 1 (low) and 4 (blocker)")
	}
	if in.DueDate != nil && in.DueDate.Before(startOfDay(now)) {
		return apperr.Invalid("due_date", "must not be in the past")
	}
	for i, name := range in.TagNames {
		in.TagNames[i] = strings.TrimSpace(name)
		if in.TagNames[i] == "" {
			return apperr.Invalid("tags", "must not contain empty names")
		}
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// CreateTask adds a task to a project. Requires the write role on the
// project. A project id that does not resolve is a validation error,
// not NotFound: the task itself has no identity yet.
func (s *Store) CreateTask(ctx context.Context, actorID uint, in CreateTaskInput) (*models.Task, error) {
	if err := in.Validate(time.Now()); err != nil {
		return nil, err
	}

	var task models.Task

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, in.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Invalid("project_id", "project does not exist")
			}
			return dbErr("load project", err)
		}

		if err := s.authorize(ctx, tx, actorID, perm.ActionTaskCreate, perm.ProjectTarget(project.ID)); err != nil {
			return err
		}

		task = models.Task{
			ProjectID:   project.ID,
			Title:       in.Title,
			Description: in.Description,
			Status:      types.TaskStatusOpen,
			Priority:    in.Priority,
			DueDate:     in.DueDate,
			CreatorID:   actorID,
		}
		if err := tx.Create(&task).Error; err != nil {
			return dbErr("create task", err)
		}

		if err := setAssignees(tx, &task, in.AssigneeIDs); err != nil {
			return err
		}
		if err := setTags(tx, &task, in.TagNames); err != nil {
			return err
		}

		scope := project.ID
		return s.recorder.Record(tx, audit.Event{
			ActorID:    actorID,
			Action:     types.ActionCreate,
			EntityType: types.EntityTask,
			EntityID:   task.ID,
			ProjectID:  &scope,
			After:      taskSnapshot(task),
		})
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *int
	DueDate     *time.Time
	ClearDue    bool
	AssigneeIDs *[]uint
	TagNames    *[]string
}

// UpdateTask applies a partial edit. Requires the write role.
func (s *Store) UpdateTask(ctx context.Context, actorID, projectID, taskID uint, in UpdateTaskInput) (*models.Task, error) {
	var task models.Task

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadTask(tx, &task, projectID, taskID); err != nil {
			return err
		}

		if err := s.authorize(ctx, tx, actorID, perm.ActionTaskUpdate, perm.ProjectTarget(task.ProjectID)); err != nil {
			return err
		}

		before := taskSnapshot(task)

		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			if title == "" {
				return apperr.Invalid("title", "must not be empty")
			}
			task.Title = title
		}
		if in.Description != nil {
			task.Description = *in.Description
		}
		if in.Status != nil {
			if !types.ValidTaskStatus(*in.Status) {
				return apperr.Invalid("status", "must be open, in_progress or done")
			}
			task.Status = *in.Status
		}
		if in.Priority != nil {
			if !types.ValidPriority(*in.Priority) {
				return apperr.Invalid("priority", "must be between 1 (low) and 4 (blocker)")
			}
			task.Priority = *in.Priority
		}
		if in.ClearDue {
			task.DueDate = nil
			task.OverdueNotifiedAt = nil
		} else if in.DueDate != nil {
			if in.DueDate.Before(startOfDay(time.Now())) {
				return apperr.Invalid("due_date", "must not be in the past")
			}
			task.DueDate = in.DueDate
			task.OverdueNotifiedAt = nil
		}

		if err := tx.Save(&task).Error; err != nil {
			return dbErr("update task", err)
		}

		if in.AssigneeIDs != nil {
			if err := tx.Model(&task).Association("Assignees").Clear(); err != nil {
				return dbErr("clear assignees", err)
			}
			task.Assignees = nil
			if err := setAssignees(tx, &task, *in.AssigneeIDs); err != nil {
				return err
			}
		}
		if in.TagNames != nil {
			if err := tx.Model(&task).Association("Tags").Clear(); err != nil {
				return dbErr("clear tags", err)
			}
			task.Tags = nil
			if err := setTags(tx, &task, *in.TagNames); err != nil {
				return err
			}
		}

		scope := task.ProjectID
		return s.recorder.Record(tx, audit.Event{
			ActorID:    actorID,
			Action:     types.ActionUpdate,
			EntityType: types.EntityTask,
			EntityID:   task.ID,
			ProjectID:  &scope,
			Before:     before,
			After:      taskSnapshot(task),
		})
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// DeleteTask removes a task. Requires admin on the project; deleting an
// already-deleted task is NotFound, with no second audit entry.
func (s *Store) DeleteTask(ctx context.Context, actorID, projectID, taskID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := loadTask(tx, &task, projectID, taskID); err != nil {
			return err
		}

		if err := s.authorize(ctx, tx, actorID, perm.ActionTaskDelete, perm.ProjectTarget(task.ProjectID)); err != nil {
			return err
		}

		if err := tx.Delete(&task).Error; err != nil {
			return dbErr("delete task", err)
		}

		scope := task.ProjectID
		return s.recorder.Record(tx, audit.Event{
			ActorID:    actorID,
			Action:     types.ActionDelete,
			EntityType: types.EntityTask,
			EntityID:   task.ID,
			ProjectID:  &scope,
			Before:     taskSnapshot(task),
		})
	})
}

func (s *Store) GetTask(ctx context.Context, actorID, projectID, taskID uint) (*models.Task, error) {
	var task models.Task

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadTask(tx, &task, projectID, taskID); err != nil {
			return err
		}
		return s.authorize(ctx, tx, actorID, perm.ActionView, perm.ProjectTarget(task.ProjectID))
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// TaskFilter narrows ListTasks. Zero values mean "no constraint".
type TaskFilter struct {
	Status     string
	Priority   int
	AssigneeID uint
	Overdue    bool
	Search     string
}

// ListTasks returns a project's tasks. Requires the read role.
func (s *Store) ListTasks(ctx context.Context, actorID, projectID uint, filter TaskFilter) ([]models.Task, error) {
	var tasks []models.Task

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			return dbErr("load project", err)
		}

		if err := s.authorize(ctx, tx, actorID, perm.ActionView, perm.ProjectTarget(projectID)); err != nil {
			return err
		}

		q := tx.Preload("Assignees").Preload("Tags").Where("project_id = ?", projectID)

		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.Priority != 0 {
			q = q.Where("priority = ?", filter.Priority)
		}
		if filter.AssigneeID != 0 {
			q = q.Joins("JOIN task_assignees ON task_assignees.task_id = tasks.id").
				Where("task_assignees.user_id = ?", filter.AssigneeID)
		}
		if filter.Overdue {
			q = q.Where("due_date < ? AND status <> ?", time.Now(), types.TaskStatusDone)
		}
		if filter.Search != "" {
			pattern := "%" + filter.Search + "%"
			q = q.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
		}

		return dbFindErr("list tasks", q.Order("priority DESC, created_at ASC").Find(&tasks).Error)
	})
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

func loadTask(tx *gorm.DB, task *models.Task, projectID, taskID uint) error {
	err := tx.Preload("Assignees").Preload("Tags").
		Where("project_id = ?", projectID).
		First(task, taskID).Error
	if err != nil {
		return dbErr("load task", err)
	}
	return nil
}

func dbFindErr(op string, err error) error {
	if err != nil {
		return dbErr(op, err)
	}
	return nil
}

func setAssignees(tx *gorm.DB, task *models.Task, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}

	var users []models.User
	if err := tx.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return dbErr("load assignees", err)
	}
	if len(users) != len(uniqueIDs(userIDs)) {
		return apperr.Invalid("assignee_ids", "one or more users do not exist")
	}

	if err := tx.Model(task).Association("Assignees").Append(&users); err != nil {
		return dbErr("assign users", err)
	}
	task.Assignees = users
	return nil
}

func setTags(tx *gorm.DB, task *models.Task, names []string) error {
	if len(names) == 0 {
		return nil
	}

	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		var tag models.Tag
		if err := tx.Where("name = ?", name).FirstOrCreate(&tag, models.Tag{Name: name}).Error; err != nil {
			return dbErr("upsert tag", err)
		}
		tags = append(tags, tag)
	}

	if err := tx.Model(task).Association("Tags").Append(&tags); err != nil {
		return dbErr("tag task", err)
	}
	task.Tags = tags
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
