package store

import (
	"context"
	"strings"

	"github.com/taskhive-dev/taskhive/internal/apperr"
	"github.com/taskhive-dev/taskhive/internal/audit"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
	Position string
}

func (in *RegisterUserInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Name == "" {
		return apperr.Invalid("name", "must not be empty")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return apperr.Invalid("email", "must be a valid address")
	}
	if len(in.Password) < 8 {
		return apperr.Invalid("password", "must be at least 8 characters")
	}
	return nil
}

// RegisterUser creates an account. Registration is the one mutation
// with no authorization step: the actor is the created user itself.
func (s *Store) RegisterUser(ctx context.Context, in RegisterUserInput) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Storage("hash password", err)
	}

	user := models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Position:     in.Position,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return dbErr("create user", err)
		}

		return s.recorder.Record(tx, audit.Event{
			ActorID:    user.ID,
			Action:     types.ActionCreate,
			EntityType: types.EntityUser,
			EntityID:   user.ID,
			After:      userSnapshot(user),
		})
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

type UpdateUserInput struct {
	Name            *string
	Email           *string
	Position        *string
	CurrentPassword string
	NewPassword     string
}

// UpdateUser edits the actor's own profile. Email changes collide on
// the unique index and surface as ErrConflict; password changes require
// the current password.
func (s *Store) UpdateUser(ctx context.Context, actorID uint, in UpdateUserInput) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, actorID).Error; err != nil {
			return dbErr("load user", err)
		}

		before := userSnapshot(user)

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperr.Invalid("name", "must not be empty")
			}
			user.Name = name
		}
		if in.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*in.Email))
			if email == "" || !strings.Contains(email, "@") {
				return apperr.Invalid("email", "must be a valid address")
			}
			user.Email = email
		}
		if in.Position != nil {
			user.Position = strings.TrimSpace(*in.Position)
		}
		if in.NewPassword != "" {
			if len(in.NewPassword) < 8 {
				return apperr.Invalid("new_password", "must be at least 8 characters")
			}
			if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
				return apperr.Invalid("current_password", "does not match")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
			if err != nil {
				return apperr.Storage("hash password", err)
			}
			user.PasswordHash = string(hash)
		}

		if err := tx.Save(&user).Error; err != nil {
			return dbErr("update user", err)
		}

		return s.recorder.Record(tx, audit.Event{
			ActorID:    actorID,
			Action:     types.ActionUpdate,
			EntityType: types.EntityUser,
			EntityID:   user.ID,
			Before:     before,
			After:      userSnapshot(user),
		})
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// DeactivateUser soft-deletes the actor's own account. The row stays in
// place so audit entries keep resolving to a real actor.
func (s *Store) DeactivateUser(ctx context.Context, actorID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, actorID).Error; err != nil {
			return dbErr("load user", err)
		}

		if err := tx.Delete(&user).Error; err != nil {
			return dbErr("deactivate user", err)
		}

		return s.recorder.Record(tx, audit.Event{
			ActorID:    actorID,
			Action:     types.ActionDelete,
			EntityType: types.EntityUser,
			EntityID:   user.ID,
			Before:     userSnapshot(user),
		})
	})
}

// AuthenticateUser checks credentials for login. Reads are not audited.
func (s *Store) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, dbErr("load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Invalid("credentials", "invalid email or password")
	}

	return &user, nil
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, dbErr("load user", err)
	}
	return &user, nil
}
