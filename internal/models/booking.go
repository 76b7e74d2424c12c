package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingStatus is the two-valued booking state. There is no dedicated
// terminal state: an owner "cancelling" an approved booking moves it back
// to pending.
type BookingStatus string

const (
	BookingPending BookingStatus = "pending"
	BookingBooked  BookingStatus = "booked"
)

// Booking is a renter's request to occupy a property.
//
// OwnerID is denormalized from the property at booking time. RenterName and
// RenterPhone are supplied by the renter with the request, not read from
// their account, and stay as submitted.
type Booking struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	PropertyID  primitive.ObjectID `bson:"property_id" json:"property_id"`
	RenterID    primitive.ObjectID `bson:"renter_id" json:"renter_id"`
	OwnerID     primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	RenterName  string             `bson:"renter_name" json:"renter_name"`
	RenterPhone string             `bson:"renter_phone" json:"renter_phone"`
	Status      BookingStatus      `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
