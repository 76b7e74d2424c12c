package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"househunt/server/internal/models"
)

// IBookingService is the booking workflow engine: it creates booking
// requests under duplicate/availability constraints and transitions booking
// status while keeping the property's availability flag in step.
type IBookingService interface {
	Create(ctx context.Context, propertyID, renterID primitive.ObjectID, renterName, renterPhone string) (*models.Booking, error)
	SetStatus(ctx context.Context, bookingID, propertyID, ownerID primitive.ObjectID, status models.BookingStatus) error
	ListByRenter(ctx context.Context, renterID primitive.ObjectID) ([]models.Booking, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Booking, error)
	ListAll(ctx context.Context) ([]models.Booking, error)
}

// bookingService implements IBookingService.
type bookingService struct {
	db *mongo.Database
}

// NewBookingService creates a new BookingService.
func NewBookingService(db *mongo.Database) IBookingService {
	return &bookingService{db: db}
}

// Create files a pending booking request for the renter. The property must
// exist and be Available, and the renter must not already have a pending
// request against it. The availability check is check-then-act; the
// duplicate check is additionally backed by a partial unique index, so a
// lost race between two identical requests still comes back as
// ErrDuplicateBooking rather than a second pending document.
func (s *bookingService) Create(ctx context.Context, propertyID, renterID primitive.ObjectID, renterName, renterPhone string) (*models.Booking, error) {
	var property models.Property
	err := s.db.Collection(propertiesCollection).FindOne(ctx, bson.M{"_id": propertyID}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding property %s: %w", propertyID.Hex(), err)
	}
	if property.IsAvailable != models.Available {
		return nil, ErrPropertyUnavailable
	}

	collection := s.db.Collection(bookingsCollection)

	count, err := collection.CountDocuments(ctx, bson.M{
		"property_id": propertyID,
		"renter_id":   renterID,
		"status":      models.BookingPending,
	})
	if err != nil {
		return nil, fmt.Errorf("error checking pending bookings for property %s: %w", propertyID.Hex(), err)
	}
	if count > 0 {
		return nil, ErrDuplicateBooking
	}

	now := time.Now().UTC()
	booking := &models.Booking{
		ID:          primitive.NewObjectID(),
		PropertyID:  propertyID,
		RenterID:    renterID,
		OwnerID:     property.OwnerID,
		RenterName:  renterName,
		RenterPhone: renterPhone,
		Status:      models.BookingPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := collection.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateBooking
		}
		return nil, fmt.Errorf("failed to insert booking for property %s: %w", propertyID.Hex(), err)
	}
	return booking, nil
}

// SetStatus transitions a booking between pending and booked and flips the
// property's availability to match: booked makes the property Unavailable,
// pending makes it Available again. Repeating the same transition is a
// no-op on both documents' observable state.
//
// The acting user must own the property, and the booking's stored property
// reference must match the supplied property id. The two writes (booking
// status, property availability) remain separate, non-transactional
// updates.
func (s *bookingService) SetStatus(ctx context.Context, bookingID, propertyID, ownerID primitive.ObjectID, status models.BookingStatus) error {
	propColl := s.db.Collection(propertiesCollection)
	count, err := propColl.CountDocuments(ctx, bson.M{"_id": propertyID, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("error checking ownership of property %s: %w", propertyID.Hex(), err)
	}
	if count == 0 {
		return ErrNotOwner
	}

	var booking models.Booking
	bookColl := s.db.Collection(bookingsCollection)
	err = bookColl.FindOne(ctx, bson.M{"_id": bookingID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return mongo.ErrNoDocuments
		}
		return fmt.Errorf("error finding booking %s: %w", bookingID.Hex(), err)
	}
	if booking.PropertyID != propertyID {
		return ErrBookingMismatch
	}

	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}}
	if _, err := bookColl.UpdateByID(ctx, bookingID, update); err != nil {
		return fmt.Errorf("failed to update booking %s: %w", bookingID.Hex(), err)
	}

	availability := models.Available
	if status == models.BookingBooked {
		availability = models.Unavailable
	}
	availUpdate := bson.M{"$set": bson.M{
		"is_available": availability,
		"updated_at":   time.Now().UTC(),
	}}
	if _, err := propColl.UpdateByID(ctx, propertyID, availUpdate); err != nil {
		return fmt.Errorf("failed to update availability of property %s: %w", propertyID.Hex(), err)
	}
	return nil
}

// ListByRenter returns the renter's booking requests, newest first.
func (s *bookingService) ListByRenter(ctx context.Context, renterID primitive.ObjectID) ([]models.Booking, error) {
	return s.list(ctx, bson.M{"renter_id": renterID})
}

// ListByOwner returns the bookings made against the owner's properties,
// newest first.
func (s *bookingService) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Booking, error) {
	return s.list(ctx, bson.M{"owner_id": ownerID})
}

// ListAll returns every booking in the system, newest first.
func (s *bookingService) ListAll(ctx context.Context) ([]models.Booking, error) {
	return s.list(ctx, bson.M{})
}

func (s *bookingService) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	collection := s.db.Collection(bookingsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}
