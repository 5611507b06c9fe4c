package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

// Audit actions recorded for every tracked mutation.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Entity kinds referenced by audit entries.
const (
	EntityUser       = "user"
	EntityTeam       = "team"
	EntityMembership = "membership"
	EntityProject    = "project"
	EntityTask       = "task"
	EntityComment    = "comment"
)

// Task statuses.
const (
	TaskStatusOpen       = "open"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Task priorities, lowest to highest.
const (
	PriorityLow     = 1
	PriorityNormal  = 2
	PriorityHigh    = 3
	PriorityBlocker = 4
)

func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

func ValidPriority(p int) bool {
	return p >= PriorityLow && p <= PriorityBlocker
}

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
