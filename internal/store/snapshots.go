package store

import (
	"github.com/taskhive-dev/taskhive/internal/models"
)

// Snapshot builders for audit entries. They deliberately flatten the
// entity to its user-visible fields; credentials and gorm bookkeeping
// stay out of the log.

func userSnapshot(u models.User) map[string]any {
	return map[string]any{
		"name":     u.Name,
		"email":    u.Email,
		"position": u.Position,
	}
}

func teamSnapshot(t models.Team) map[string]any {
	return map[string]any{
		"name": t.Name,
	}
}

func membershipSnapshot(m models.TeamMembership) map[string]any {
	return map[string]any{
		"user_id": m.UserID,
		"team_id": m.TeamID,
		"role":    m.Role,
	}
}

func projectSnapshot(p models.Project, teamIDs []uint) map[string]any {
	return map[string]any{
		"name":            p.Name,
		"description":     p.Description,
		"team_ids":        teamIDs,
		"webhook_url":     p.WebhookURL,
		"notify_overdue":  p.NotifyOverdue,
		"notify_activity": p.NotifyActivity,
	}
}

func taskSnapshot(t models.Task) map[string]any {
	snap := map[string]any{
		"title":       t.Title,
		"description": t.Description,
		"status":      t.Status,
		"priority":    t.Priority,
		"project_id":  t.ProjectID,
	}
	if t.DueDate != nil {
		snap["due_date"] = t.DueDate.Format("2006-01-02")
	}
	if len(t.Assignees) > 0 {
		ids := make([]uint, 0, len(t.Assignees))
		for _, u := range t.Assignees {
			ids = append(ids, u.ID)
		}
		snap["assignee_ids"] = ids
	}
	if len(t.Tags) > 0 {
		names := make([]string, 0, len(t.Tags))
		for _, tag := range t.Tags {
			names = append(names, tag.Name)
		}
		snap["tags"] = names
	}
	return snap
}

func commentSnapshot(c models.Comment) map[string]any {
	return map[string]any{
		"task_id": c.TaskID,
		"body":    c.Body,
	}
}
