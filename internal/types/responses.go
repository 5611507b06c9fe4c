package types

import "time"

type UserResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Position string `json:"position,omitempty"`
}

type TeamResponse struct {
	ID      uint             `json:"id"`
	Name    string           `json:"name"`
	Members []MemberResponse `json:"members,omitempty"`
}

type MemberResponse struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type ProjectResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatorID   uint   `json:"creator_id"`
	TeamIDs     []uint `json:"team_ids"`
}

type TaskResponse struct {
	ID          uint       `json:"id"`
	ProjectID   uint       `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    int        `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatorID   uint       `json:"creator_id"`
	AssigneeIDs []uint     `json:"assignee_ids"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CommentResponse struct {
	ID        uint      `json:"id"`
	TaskID    uint      `json:"task_id"`
	AuthorID  uint      `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditEntryResponse struct {
	ID         uint      `json:"id"`
	ActorID    uint      `json:"actor_id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   uint      `json:"entity_id"`
	ProjectID  *uint     `json:"project_id,omitempty"`
	TeamID     *uint     `json:"team_id,omitempty"`
	Before     any       `json:"before"`
	After      any       `json:"after"`
	CreatedAt  time.Time `json:"created_at"`
}
