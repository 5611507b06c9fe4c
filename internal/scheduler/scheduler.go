package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/types"
	"gorm.io/gorm"
)

// Sweeper periodically finds tasks that slipped past their due date,
// records a notification per assignee and fires the project webhook.
// Each task is notified once; editing its due date rearms it.
type Sweeper struct {
	interval time.Duration
	logger   zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewSweeper(interval time.Duration, logger zerolog.Logger) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		interval: interval,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the sweep loop with an immediate first pass.
func (s *Sweeper) Start() {
	s.logger.Info().Dur("interval", s.interval).Msg("starting deadline sweeper")

	go func() {
		s.sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// Stop shuts the loop down.
func (s *Sweeper) Stop() {
	s.logger.Info().Msg("stopping deadline sweeper")
	s.cancel()
}

// NeedsOverdueNotice reports whether the sweeper should flag the task.
func NeedsOverdueNotice(task models.Task, now time.Time) bool {
	if task.DueDate == nil || task.OverdueNotifiedAt != nil {
		return false
	}
	if task.Status == types.TaskStatusDone {
		return false
	}
	return task.DueDate.Before(now)
}

func (s *Sweeper) sweep() {
	now := time.Now()

	var tasks []models.Task
	err := db.DB.WithContext(s.ctx).
		Preload("Assignees").
		Preload("Project").
		Where("due_date < ? AND status <> ? AND overdue_notified_at IS NULL", now, types.TaskStatusDone).
		Find(&tasks).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("sweep query failed")
		return
	}

	for _, task := range tasks {
		if err := s.notify(task, now); err != nil {
			s.logger.Error().Err(err).Uint("task_id", task.ID).Msg("overdue notification failed")
		}
	}

	if len(tasks) > 0 {
		s.logger.Info().Int("count", len(tasks)).Msg("overdue tasks notified")
	}
}

func (s *Sweeper) notify(task models.Task, now time.Time) error {
	err := db.DB.WithContext(s.ctx).Transaction(func(tx *gorm.DB) error {
		for _, assignee := range task.Assignees {
			notification := models.Notification{
				UserID:  assignee.ID,
				TaskID:  task.ID,
				Kind:    "task_overdue",
				Message: "Task \"" + task.Title + "\" is past its due date",
				SentAt:  &now,
			}
			if err := tx.Create(&notification).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Task{}).
			Where("id = ?", task.ID).
			Update("overdue_notified_at", now).Error
	})
	if err != nil {
		return err
	}

	// Webhook delivery happens outside the transaction: a slow or
	// failing endpoint must not hold locks or roll back notifications.
	if task.Project.NotifyOverdue && task.Project.WebhookURL != "" {
		payload := services.BuildOverduePayload(task, task.Project.Name)
		if err := services.SendWebhook(task.Project.WebhookURL, payload); err != nil {
			s.logger.Warn().Err(err).Uint("task_id", task.ID).Msg("webhook delivery failed")
		}
	}

	return nil
}
