package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role identifies what a registered user is allowed to do.
type Role string

const (
	RoleRenter Role = "Renter"
	RoleOwner  Role = "Owner"
	RoleAdmin  Role = "Admin"
)

// ApprovalStatus is the admin-controlled gate for Owner accounts.
// It has no meaning for renters or admins and is omitted from their documents.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
)

// User represents a registered principal: renter, property owner or admin.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash, never serialized
	Role      Role               `bson:"type" json:"type"`
	Approval  ApprovalStatus     `bson:"granted,omitempty" json:"granted,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsApprovedOwner reports whether the user may post and manage properties.
func (u *User) IsApprovedOwner() bool {
	return u.Role == RoleOwner && u.Approval == ApprovalApproved
}
