// Package service implements user lifecycle operations. Only what the
// allocator core needs lives here: creation with a hashed password,
// lookups, and a delete that cascades every owned entity.
package service

import (
	"context"
	"strings"

	"gullak/internal/apperr"
	"gullak/internal/module/identify/user/domain"
	"gullak/internal/module/identify/user/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service is the user module's public contract.
type Service interface {
	Create(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// Delete removes the user and cascades goals, connections, manual
	// transactions and the streak row in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
}

// OwnedEntity is a model deleted alongside its owner. Each owning module
// registers its models at wiring time so this package never imports them.
type OwnedEntity interface {
	TableName() string
}

type userService struct {
	repo   repository.Repository
	db     *gorm.DB
	owned  []OwnedEntity
	logger *zap.Logger
}

func New(repo repository.Repository, db *gorm.DB, owned []OwnedEntity, logger *zap.Logger) Service {
	return &userService{
		repo:   repo,
		db:     db,
		owned:  owned,
		logger: logger.Named("user"),
	}
}

func (s *userService) Create(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validation("a valid email is required")
	}
	if len(password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}

	if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperr.Conflict("a user with this email already exists")
	} else if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Validation("failed to hash password")
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Language:     "en",
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *userService) Update(ctx context.Context, user *domain.User) error {
	return s.repo.Update(ctx, user)
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, entity := range s.owned {
			if err := tx.Table(entity.TableName()).Where("user_id = ?", id).Delete(entity).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&domain.User{}).Error
	})
	if err != nil {
		return apperr.DBFailure("failed to delete user", err)
	}
	s.logger.Info("user deleted with owned entities", zap.String("user_id", id.String()))
	return nil
}
