package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"househunt/server/internal/models"
	"househunt/server/internal/services"
	"househunt/server/internal/utils"
)

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	db := utils.SetupTestDB(t, "househunt_test_users", "users")
	svc := services.NewUserService(db)
	ctx := context.Background()

	created, err := svc.Register(ctx, services.RegisterInput{
		Name:     "Rita Renter",
		Email:    "rita@example.com",
		Password: "secret123",
		Role:     models.RoleRenter,
		Phone:    "5550001111",
	})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.NotEqual(t, "secret123", created.Password, "password must be stored hashed")
	assert.Empty(t, created.Approval, "renters carry no approval flag")

	user, err := svc.Authenticate(ctx, "rita@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.Authenticate(ctx, "rita@example.com", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	db := utils.SetupTestDB(t, "househunt_test_users", "users")
	svc := services.NewUserService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, services.RegisterInput{
		Email: "dup@example.com", Password: "pw1", Role: models.RoleRenter,
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, services.RegisterInput{
		Email: "dup@example.com", Password: "pw2", Role: models.RoleOwner,
	})
	assert.ErrorIs(t, err, services.ErrEmailExists)
}

func TestUserService_Register_OwnerStartsPending(t *testing.T) {
	db := utils.SetupTestDB(t, "househunt_test_users", "users")
	svc := services.NewUserService(db)
	ctx := context.Background()

	created, err := svc.Register(ctx, services.RegisterInput{
		Name: "Oscar Owner", Email: "oscar@example.com", Password: "pw", Role: models.RoleOwner,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, created.Approval)
	assert.False(t, created.IsApprovedOwner())
}

func TestUserService_SetOwnerApproval(t *testing.T) {
	db := utils.SetupTestDB(t, "househunt_test_users", "users")
	svc := services.NewUserService(db)
	ctx := context.Background()

	created, err := svc.Register(ctx, services.RegisterInput{
		Email: "oscar@example.com", Password: "pw", Role: models.RoleOwner,
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetOwnerApproval(ctx, created.ID, models.ApprovalApproved))

	user, err := svc.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, user.Approval)
	assert.True(t, user.IsApprovedOwner())

	// Revoking puts the account back behind the gate.
	require.NoError(t, svc.SetOwnerApproval(ctx, created.ID, models.ApprovalPending))
	user, err = svc.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, user.IsApprovedOwner())

	err = svc.SetOwnerApproval(ctx, primitive.NewObjectID(), models.ApprovalApproved)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestUserService_ResetPassword(t *testing.T) {
	db := utils.SetupTestDB(t, "househunt_test_users", "users")
	svc := services.NewUserService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, services.RegisterInput{
		Email: "rita@example.com", Password: "oldpw", Role: models.RoleRenter,
	})
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, "rita@example.com", "newpw"))

	_, err = svc.Authenticate(ctx, "rita@example.com", "oldpw")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "rita@example.com", "newpw")
	assert.NoError(t, err)

	err = svc.ResetPassword(ctx, "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestUserService_ListAll(t *testing.T) {
	db := utils.SetupTestDB(t, "househunt_test_users", "users")
	svc := services.NewUserService(db)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := svc.Register(ctx, services.RegisterInput{Email: email, Password: "pw", Role: models.RoleRenter})
		require.NoError(t, err)
	}

	users, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}
