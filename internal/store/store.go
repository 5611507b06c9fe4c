package store

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/audit"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/perm"
	"gorm.io/gorm"
)

// Store is the entity store. Every mutating operation runs inside one
// transaction that covers the permission check, the mutation and the
// audit entry, so either all of them commit or none do. Concurrent
// writers to the same row are serialized by postgres row locks;
// last-committed-wins.
type Store struct {
	db       *gorm.DB
	recorder audit.Recorder
	logger   zerolog.Logger
}

func New(db *gorm.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:       db,
		recorder: audit.NewRecorder(logger),
		logger:   logger,
	}
}

// txMembership resolves memberships against the current transaction so
// authorization sees the same snapshot as the mutation it gates.
type txMembership struct {
	tx *gorm.DB
}

func (m txMembership) TeamRole(ctx context.Context, userID, teamID uint) (string, bool, error) {
	var membership models.TeamMembership

	err := m.tx.WithContext(ctx).
		Where("user_id = ? AND team_id = ?", userID, teamID).
		First(&membership).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return membership.Role, true, nil
}

func (m txMembership) ProjectRoles(ctx context.Context, userID, projectID uint) ([]string, error) {
	var roles []string

	err := m.tx.WithContext(ctx).
		Model(&models.TeamMembership{}).
		Joins("JOIN project_teams ON project_teams.team_id = team_memberships.team_id").
		Where("project_teams.project_id = ? AND team_memberships.user_id = ?", projectID, userID).
		Pluck("team_memberships.role", &roles).Error

	return roles, err
}

func (s *Store) authorize(ctx context.Context, tx *gorm.DB, actorID uint, action perm.Action, target perm.Target) error {
	return perm.New(txMembership{tx: tx}).Authorize(ctx, actorID, action, target)
}

// dbErr maps gorm errors to the store's typed taxonomy.
func dbErr(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.ErrConflict
	default:
		return apperr.Storage(op, err)
	}
}

// memberTeamIDs returns the ids of teams the user belongs to.
func memberTeamIDs(ctx context.Context, tx *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	err := tx.WithContext(ctx).
		Model(&models.TeamMembership{}).
		Where("user_id = ?", userID).
		Pluck("team_id", &ids).Error
	return ids, err
}

// accessibleProjectIDs returns ids of projects reachable through the
// user's team memberships.
func accessibleProjectIDs(ctx context.Context, tx *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	err := tx.WithContext(ctx).
		Model(&models.TeamMembership{}).
		Joins("JOIN project_teams ON project_teams.team_id = team_memberships.team_id").
		Where("team_memberships.user_id = ?", userID).
		Distinct().
		Pluck("project_teams.project_id", &ids).Error
	return ids, err
}
