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

const (
	propertiesCollection = "properties"
	bookingsCollection   = "bookings"
)

// PropertyInput carries the form fields accepted when creating or updating
// a property. Empty strings / zero values are ignored on update.
type PropertyInput struct {
	PropertyType   string
	AdType         string
	Address        string
	Price          float64
	OwnerContact   string
	AdditionalInfo string
}

// IPropertyService defines the interface for property-related operations.
type IPropertyService interface {
	Create(ctx context.Context, owner *models.User, in PropertyInput, images []models.PropertyImage) (*models.Property, error)
	Update(ctx context.Context, propertyID, ownerID primitive.ObjectID, in PropertyInput, images []models.PropertyImage) (*models.Property, error)
	Delete(ctx context.Context, propertyID, ownerID primitive.ObjectID) error
	FindByID(ctx context.Context, propertyID primitive.ObjectID) (*models.Property, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Property, error)
	ListAll(ctx context.Context) ([]models.Property, error)
	SetAvailability(ctx context.Context, propertyID primitive.ObjectID, availability models.Availability) error
}

// propertyService implements IPropertyService.
type propertyService struct {
	db *mongo.Database
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(db *mongo.Database) IPropertyService {
	return &propertyService{db: db}
}

// Create inserts a new property for the given owner. The owner's display
// name and contact are snapshotted onto the document, and availability is
// always Available at creation.
func (s *propertyService) Create(ctx context.Context, owner *models.User, in PropertyInput, images []models.PropertyImage) (*models.Property, error) {
	collection := s.db.Collection(propertiesCollection)
	now := time.Now().UTC()

	ownerContact := in.OwnerContact
	if ownerContact == "" {
		ownerContact = owner.Phone
	}
	if images == nil {
		images = []models.PropertyImage{}
	}

	property := &models.Property{
		ID:             primitive.NewObjectID(),
		OwnerID:        owner.ID,
		OwnerName:      owner.Name,
		OwnerContact:   ownerContact,
		PropertyType:   in.PropertyType,
		AdType:         in.AdType,
		Address:        in.Address,
		Price:          in.Price,
		Images:         images,
		IsAvailable:    models.Available,
		AdditionalInfo: in.AdditionalInfo,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := collection.InsertOne(ctx, property); err != nil {
		return nil, fmt.Errorf("failed to insert property for owner %s: %w", owner.ID.Hex(), err)
	}
	return property, nil
}

// Update merges the supplied fields into a property owned by ownerID.
// A non-empty image slice replaces the entire stored image set. The filter
// combines id and owner, so a foreign property and a missing one are
// indistinguishable here; both surface as ErrNotOwner after an existence
// check.
func (s *propertyService) Update(ctx context.Context, propertyID, ownerID primitive.ObjectID, in PropertyInput, images []models.PropertyImage) (*models.Property, error) {
	collection := s.db.Collection(propertiesCollection)

	set := bson.M{"updated_at": time.Now().UTC()}
	if in.PropertyType != "" {
		set["property_type"] = in.PropertyType
	}
	if in.AdType != "" {
		set["ad_type"] = in.AdType
	}
	if in.Address != "" {
		set["address"] = in.Address
	}
	if in.Price != 0 {
		set["price"] = in.Price
	}
	if in.OwnerContact != "" {
		set["owner_contact"] = in.OwnerContact
	}
	if in.AdditionalInfo != "" {
		set["additional_info"] = in.AdditionalInfo
	}
	if len(images) > 0 {
		set["images"] = images
	}

	filter := bson.M{"_id": propertyID, "owner_id": ownerID}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Property
	err := collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, s.classifyMiss(ctx, propertyID)
		}
		return nil, fmt.Errorf("failed to update property %s: %w", propertyID.Hex(), err)
	}
	return &updated, nil
}

// Delete removes a property owned by ownerID together with every booking
// that references it. The two deletes are not transactional; the property
// goes first so a failure cannot leave a bookable orphan.
func (s *propertyService) Delete(ctx context.Context, propertyID, ownerID primitive.ObjectID) error {
	collection := s.db.Collection(propertiesCollection)

	result, err := collection.DeleteOne(ctx, bson.M{"_id": propertyID, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete property %s: %w", propertyID.Hex(), err)
	}
	if result.DeletedCount == 0 {
		return s.classifyMiss(ctx, propertyID)
	}

	if _, err := s.db.Collection(bookingsCollection).DeleteMany(ctx, bson.M{"property_id": propertyID}); err != nil {
		return fmt.Errorf("failed to delete bookings for property %s: %w", propertyID.Hex(), err)
	}
	return nil
}

// FindByID finds a property by its ID without any ownership check.
func (s *propertyService) FindByID(ctx context.Context, propertyID primitive.ObjectID) (*models.Property, error) {
	var property models.Property
	collection := s.db.Collection(propertiesCollection)

	err := collection.FindOne(ctx, bson.M{"_id": propertyID}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding property %s: %w", propertyID.Hex(), err)
	}
	return &property, nil
}

// ListByOwner returns all properties posted by the given owner, newest first.
func (s *propertyService) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Property, error) {
	return s.list(ctx, bson.M{"owner_id": ownerID})
}

// ListAll returns the full catalog, newest first.
func (s *propertyService) ListAll(ctx context.Context) ([]models.Property, error) {
	return s.list(ctx, bson.M{})
}

func (s *propertyService) list(ctx context.Context, filter bson.M) ([]models.Property, error) {
	collection := s.db.Collection(propertiesCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing properties: %w", err)
	}
	defer cursor.Close(ctx)

	properties := []models.Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("error decoding properties: %w", err)
	}
	return properties, nil
}

// SetAvailability overwrites the availability flag. Used by the booking
// workflow when a booking status changes.
func (s *propertyService) SetAvailability(ctx context.Context, propertyID primitive.ObjectID, availability models.Availability) error {
	collection := s.db.Collection(propertiesCollection)
	update := bson.M{"$set": bson.M{
		"is_available": availability,
		"updated_at":   time.Now().UTC(),
	}}

	result, err := collection.UpdateByID(ctx, propertyID, update)
	if err != nil {
		return fmt.Errorf("error setting availability on property %s: %w", propertyID.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// classifyMiss distinguishes "no such property" from "not yours" after an
// owner-scoped filter matched nothing.
func (s *propertyService) classifyMiss(ctx context.Context, propertyID primitive.ObjectID) error {
	count, err := s.db.Collection(propertiesCollection).CountDocuments(ctx, bson.M{"_id": propertyID})
	if err != nil {
		return fmt.Errorf("error checking property %s: %w", propertyID.Hex(), err)
	}
	if count == 0 {
		return mongo.ErrNoDocuments
	}
	return ErrNotOwner
}
