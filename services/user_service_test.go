package services

import (
	"context"
	"testing"

	"github.com/Dosada05/lobby-royale/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_GetByIDStripsPasswordHash(t *testing.T) {
	users := newFakeUserRepo()
	target := users.addUser("alice", models.RolePlayer)
	service := NewUserService(users, nil)

	got, err := service.GetByID(context.Background(), target.ID)
	require.NoError(t, err)

	assert.Equal(t, target.ID, got.ID)
	assert.Empty(t, got.PasswordHash)
}

func TestUser_UpdateRoleOnlyByAdmin(t *testing.T) {
	users := newFakeUserRepo()
	target := users.addUser("alice", models.RolePlayer)
	player := users.addUser("bob", models.RolePlayer)
	admin := users.addUser("root", models.RoleAdmin)
	service := NewUserService(users, nil)

	_, err := service.UpdateRole(context.Background(), player, target.ID, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	updated, err := service.UpdateRole(context.Background(), admin, target.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)
}

func TestUser_UpdateRoleValidation(t *testing.T) {
	users := newFakeUserRepo()
	target := users.addUser("alice", models.RolePlayer)
	admin := users.addUser("root", models.RoleAdmin)
	service := NewUserService(users, nil)

	_, err := service.UpdateRole(context.Background(), admin, target.ID, models.UserRole("superuser"))
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = service.UpdateRole(context.Background(), admin, 999, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
