package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Availability is the two-valued flag tracking whether a property can
// currently accept booking requests.
type Availability string

const (
	Available   Availability = "Available"
	Unavailable Availability = "Unavailable"
)

// PropertyImage holds the stored filename of an uploaded image and the
// path it is retrievable from.
type PropertyImage struct {
	Filename string `bson:"filename" json:"filename"`
	Path     string `bson:"path" json:"path"`
}

// Property is a rental/sale listing posted by an owner.
//
// OwnerName and OwnerContact are point-in-time snapshots taken when the
// property is created or updated; they are intentionally not kept in sync
// with later edits to the owner's account.
type Property struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	OwnerID        primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	OwnerName      string             `bson:"owner_name" json:"owner_name"`
	OwnerContact   string             `bson:"owner_contact,omitempty" json:"owner_contact,omitempty"`
	PropertyType   string             `bson:"property_type" json:"property_type"` // residential, commercial, land/plot
	AdType         string             `bson:"ad_type" json:"ad_type"`             // rent or sale
	Address        string             `bson:"address" json:"address"`
	Price          float64            `bson:"price" json:"price"`
	Images         []PropertyImage    `bson:"images" json:"images"`
	IsAvailable    Availability       `bson:"is_available" json:"is_available"`
	AdditionalInfo string             `bson:"additional_info,omitempty" json:"additional_info,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
