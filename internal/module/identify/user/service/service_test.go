package service

import (
	"context"
	"testing"

	"gullak/internal/apperr"
	conndomain "gullak/internal/module/connection/domain"
	goaldomain "gullak/internal/module/goal/domain"
	"gullak/internal/module/identify/user/domain"
	"gullak/internal/module/identify/user/repository"
	"gullak/internal/money"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUserService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &goaldomain.Goal{}, &conndomain.Connection{}))

	svc := New(repository.New(db), db, []OwnedEntity{
		&goaldomain.Goal{},
		&conndomain.Connection{},
	}, zap.NewNop())
	return svc, db
}

func TestCreateValidatesInput(t *testing.T) {
	svc, _ := setupUserService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "not-an-email", "password123")
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.Create(ctx, "a@b.c", "short")
	assert.True(t, apperr.IsValidation(err))
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc, _ := setupUserService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "ravi@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "Ravi@Example.com", "password123")
	assert.True(t, apperr.IsConflict(err), "emails are case-insensitive")
}

func TestDeleteCascadesOwnedEntities(t *testing.T) {
	svc, db := setupUserService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, "ravi@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, db.Create(&goaldomain.Goal{
		ID: uuid.New(), UserID: user.ID, Name: "Emergency Fund",
		Type: goaldomain.GoalTypeEmergency, Target: money.NewFromInt(10000),
	}).Error)
	conn := &conndomain.Connection{
		ID: uuid.New(), UserID: user.ID, DisplayName: "PhonePe",
		Type: conndomain.ConnectionTypeUPI, Status: conndomain.ConnectionStatusConnected,
	}
	require.NoError(t, conn.SerializePayload())
	require.NoError(t, db.Create(conn).Error)

	require.NoError(t, svc.Delete(ctx, user.ID))

	_, err = svc.GetByID(ctx, user.ID)
	assert.True(t, apperr.IsNotFound(err))

	var goalCount, connCount int64
	db.Model(&goaldomain.Goal{}).Where("user_id = ?", user.ID).Count(&goalCount)
	db.Model(&conndomain.Connection{}).Where("user_id = ?", user.ID).Count(&connCount)
	assert.Zero(t, goalCount)
	assert.Zero(t, connCount)
}
