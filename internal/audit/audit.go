package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
	"gorm.io/gorm"
)

// Event describes one tracked mutation. Before is nil for creates,
// After is nil for deletes.
type Event struct {
	ActorID    uint
	Action     string
	EntityType string
	EntityID   uint
	ProjectID  *uint
	TeamID     *uint
	Before     any
	After      any
}

// NewEntry builds the persistent entry for an event, marshaling the
// before/after states into JSON snapshots.
func NewEntry(ev Event) (models.AuditEntry, error) {
	entry := models.AuditEntry{
		ActorID:    ev.ActorID,
		Action:     ev.Action,
		EntityType: ev.EntityType,
		EntityID:   ev.EntityID,
		ProjectID:  ev.ProjectID,
		TeamID:     ev.TeamID,
	}

	if ev.Before != nil {
		raw, err := json.Marshal(ev.Before)
		if err != nil {
			return models.AuditEntry{}, fmt.Errorf("marshal before snapshot: %w", err)
		}
		entry.Before = raw
	}

	if ev.After != nil {
		raw, err := json.Marshal(ev.After)
		if err != nil {
			return models.AuditEntry{}, fmt.Errorf("marshal after snapshot: %w", err)
		}
		entry.After = raw
	}

	return entry, nil
}

// Recorder writes audit entries inside the caller's transaction, so the
// entry commits or rolls back together with the mutation it documents.
type Recorder struct {
	logger zerolog.Logger
}

func NewRecorder(logger zerolog.Logger) Recorder {
	return Recorder{logger: logger}
}

func (r Recorder) Record(tx *gorm.DB, ev Event) error {
	entry, err := NewEntry(ev)
	if err != nil {
		return apperr.Storage("audit record", err)
	}

	if err := tx.Create(&entry).Error; err != nil {
		return apperr.Storage("audit record", err)
	}

	r.logger.Info().
		Uint("actor_id", ev.ActorID).
		Str("action", ev.Action).
		Str("entity_type", ev.EntityType).
		Uint("entity_id", ev.EntityID).
		Msg("audit entry recorded")

	return nil
}

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 500
)

// Filter narrows an audit query. Zero values mean "no constraint".
type Filter struct {
	EntityType string
	ActorID    uint
	ProjectID  uint
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// Normalize clamps paging values so a caller cannot request unbounded
// result sets. Queries stay restartable: the same filter with a larger
// offset resumes where the previous page ended.
func (f Filter) Normalize() Filter {
	if f.Limit <= 0 {
		f.Limit = defaultQueryLimit
	}
	if f.Limit > maxQueryLimit {
		f.Limit = maxQueryLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Scope restricts results to what a caller may see: entries for
// projects or teams they belong to, plus their own actions.
type Scope struct {
	ActorID    uint
	ProjectIDs []uint
	TeamIDs    []uint
}

// Query returns entries matching the filter within the scope, ordered
// by creation time ascending.
func Query(ctx context.Context, db *gorm.DB, f Filter, scope Scope) ([]models.AuditEntry, error) {
	f = f.Normalize()

	q := db.WithContext(ctx).Model(&models.AuditEntry{}).
		Where("project_id IN ? OR team_id IN ? OR actor_id = ?", scope.ProjectIDs, scope.TeamIDs, scope.ActorID)

	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.ActorID != 0 {
		q = q.Where("actor_id = ?", f.ActorID)
	}
	if f.ProjectID != 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("created_at < ?", f.To)
	}

	var entries []models.AuditEntry
	if err := q.Order("created_at ASC, id ASC").Limit(f.Limit).Offset(f.Offset).Find(&entries).Error; err != nil {
		return nil, apperr.Storage("audit query", err)
	}

	return entries, nil
}

// EntryResponse shapes an entry for the API, unmarshaling snapshots
// back into JSON objects.
func EntryResponse(entry models.AuditEntry) types.AuditEntryResponse {
	resp := types.AuditEntryResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		ProjectID:  entry.ProjectID,
		TeamID:     entry.TeamID,
		CreatedAt:  entry.CreatedAt,
	}

	if len(entry.Before) > 0 {
		var before any
		if err := json.Unmarshal(entry.Before, &before); err == nil {
			resp.Before = before
		}
	}
	if len(entry.After) > 0 {
		var after any
		if err := json.Unmarshal(entry.After, &after); err == nil {
			resp.After = after
		}
	}

	return resp
}
