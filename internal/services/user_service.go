package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"househunt/server/internal/auth"
	"househunt/server/internal/db"
	"househunt/server/internal/models"
)

const usersCollection = "users"

// RegisterInput carries the fields accepted at registration time.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
	Phone    string
}

// IUserService defines the interface for user-related operations.
// This allows for easier mocking in tests.
type IUserService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	ResetPassword(ctx context.Context, email, newPassword string) error
	FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	SetOwnerApproval(ctx context.Context, userID primitive.ObjectID, status models.ApprovalStatus) error
	ListAll(ctx context.Context) ([]models.User, error)
}

// userService implements IUserService.
type userService struct {
	db *mongo.Database
}

// NewUserService creates a new UserService.
func NewUserService(db *mongo.Database) IUserService {
	return &userService{db: db}
}

// Register creates a new account. Owner registrations start with a pending
// approval flag; other roles carry no flag at all.
func (s *userService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	collection := s.db.Collection(usersCollection)

	// Pre-check gives a clean error for the common case; the unique email
	// index is what actually guarantees it.
	count, err := collection.CountDocuments(ctx, bson.M{"email": in.Email})
	if err != nil {
		return nil, fmt.Errorf("error checking email uniqueness for %s: %w", in.Email, err)
	}
	if count > 0 {
		return nil, ErrEmailExists
	}

	hashedPassword, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password for %s: %w", in.Email, err)
	}

	now := time.Now().UTC()
	newUser := &models.User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  hashedPassword,
		Role:      in.Role,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Role == models.RoleOwner {
		newUser.Approval = models.ApprovalPending
	}

	operation := func() error {
		newUser.ID = primitive.NewObjectID()
		_, insertErr := collection.InsertOne(ctx, newUser)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		if mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), "email_1") {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("error inserting new user for %s: %w", in.Email, err)
	}

	return newUser, nil
}

// Authenticate verifies an email/password pair and returns the account.
// Returns mongo.ErrNoDocuments when no such account exists and
// ErrInvalidCredentials when the password does not match.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !auth.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ResetPassword overwrites the stored password hash for the account with the
// given email. No proof of prior access is required; the account is looked
// up by email alone.
func (s *userService) ResetPassword(ctx context.Context, email, newPassword string) error {
	hashedPassword, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password for %s: %w", email, err)
	}

	collection := s.db.Collection(usersCollection)
	update := bson.M{"$set": bson.M{
		"password":   hashedPassword,
		"updated_at": time.Now().UTC(),
	}}

	result, err := collection.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return fmt.Errorf("error resetting password for %s: %w", email, err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// FindByID finds a user by their ID.
func (s *userService) FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	collection := s.db.Collection(usersCollection)

	err := collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding user by ID %s: %w", userID.Hex(), err)
	}
	return &user, nil
}

// FindByEmail finds a user by their email address (exact, case-sensitive).
func (s *userService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	collection := s.db.Collection(usersCollection)

	err := collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding user by email %s: %w", email, err)
	}
	return &user, nil
}

// SetOwnerApproval overwrites the approval flag on an owner account.
// No audit trail is kept.
func (s *userService) SetOwnerApproval(ctx context.Context, userID primitive.ObjectID, status models.ApprovalStatus) error {
	collection := s.db.Collection(usersCollection)
	update := bson.M{"$set": bson.M{
		"granted":    status,
		"updated_at": time.Now().UTC(),
	}}

	result, err := collection.UpdateByID(ctx, userID, update)
	if err != nil {
		return fmt.Errorf("error updating approval for user %s: %w", userID.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListAll returns every account, newest first.
func (s *userService) ListAll(ctx context.Context) ([]models.User, error) {
	collection := s.db.Collection(usersCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("error decoding users: %w", err)
	}
	return users, nil
}
