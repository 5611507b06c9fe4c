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

// CreateComment attaches a comment to a task. Requires the write role
// on the task's project.
func (s *Store) CreateComment(ctx context.Context, actorID, projectID, taskID uint, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.Invalid("body", "must not be empty")
	}

	var comment models.Comment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		err := tx.Where("project_id = ?", projectID).First(&task, taskID).Error
		if err != nil {
			return dbErr("load task", err)
		}

		if err := s.authorize(ctx, tx, actorID, perm.ActionCommentAdd, perm.ProjectTarget(task.ProjectID)); err != nil {
			return err
		}

		comment = models.Comment{
			TaskID:   task.ID,
			AuthorID: actorID,
			Body:     body,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return dbErr("create comment", err)
		}

		scope := task.ProjectID
		return s.recorder.Record(tx, audit.Event{
			ActorID:    actorID,
			Action:     types.ActionCreate,
			EntityType: types.EntityComment,
			EntityID:   comment.ID,
			ProjectID:  &scope,
			After:      commentSnapshot(comment),
		})
	})
	if err != nil {
		return nil, err
	}

	return &comment, nil
}

// ListComments returns a task's comments oldest first. Requires read.
func (s *Store) ListComments(ctx context.Context, actorID, projectID, taskID uint) ([]models.Comment, error) {
	var comments []models.Comment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		err := tx.Where("project_id = ?", projectID).First(&task, taskID).Error
		if err != nil {
			return dbErr("load task", err)
		}

		if err := s.authorize(ctx, tx, actorID, perm.ActionView, perm.ProjectTarget(task.ProjectID)); err != nil {
			return err
		}

		return dbFindErr("list comments", tx.Where("task_id = ?", taskID).Order("created_at ASC").Find(&comments).Error)
	})
	if err != nil {
		return nil, err
	}

	return comments, nil
}
