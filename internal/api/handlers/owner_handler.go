package handlers

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"househunt/server/internal/api/middleware"
	"househunt/server/internal/models"
	"househunt/server/internal/services"
	"househunt/server/internal/storage"
	"househunt/server/internal/tasks"
)

// OwnerHandler serves the approved-owner surface: property CRUD with image
// uploads, the owner's booking list and booking status transitions.
type OwnerHandler struct {
	propertyService services.IPropertyService
	bookingService  services.IBookingService
	store           storage.Storage
	taskClient      ITaskClient
}

// NewOwnerHandler creates a new OwnerHandler.
func NewOwnerHandler(propertyService services.IPropertyService, bookingService services.IBookingService, store storage.Storage, taskClient ITaskClient) *OwnerHandler {
	return &OwnerHandler{
		propertyService: propertyService,
		bookingService:  bookingService,
		store:           store,
		taskClient:      taskClient,
	}
}

// propertyInputFromForm reads the multipart form fields the dashboard posts.
func propertyInputFromForm(c *gin.Context) services.PropertyInput {
	price, _ := strconv.ParseFloat(c.PostForm("propertyAmt"), 64)
	return services.PropertyInput{
		PropertyType:   c.PostForm("propertyType"),
		AdType:         c.PostForm("propertyAdType"),
		Address:        c.PostForm("propertyAddress"),
		Price:          price,
		OwnerContact:   c.PostForm("ownerContact"),
		AdditionalInfo: c.PostForm("additionalInfo"),
	}
}

// storeImages writes each uploaded file through the storage backend and
// queues a thumbnail task per image. Thumbnailing is best-effort: an
// enqueue failure is logged and never fails the request.
func (h *OwnerHandler) storeImages(c *gin.Context, files []*multipart.FileHeader) ([]models.PropertyImage, error) {
	images := []models.PropertyImage{}
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		img, err := h.store.Save(c.Request.Context(), fh.Filename, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		images = append(images, img)

		if task, err := tasks.NewImageThumbnailTask(img.Filename); err == nil {
			if _, err := h.taskClient.Enqueue(task); err != nil {
				log.Printf("Failed to enqueue thumbnail task for %s: %v", img.Filename, err)
			}
		}
	}
	return images, nil
}

func formFiles(c *gin.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	return form.File["propertyImages"]
}

// PostProperty handles POST /api/owner/postproperty (multipart).
func (h *OwnerHandler) PostProperty(c *gin.Context) {
	in := propertyInputFromForm(c)
	if in.PropertyType == "" || in.AdType == "" || in.Address == "" {
		respondError(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	images, err := h.storeImages(c, formFiles(c))
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to store property images")
		return
	}

	owner := middleware.AuthUser(c)
	if _, err := h.propertyService.Create(c.Request.Context(), owner, in, images); err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to add property")
		return
	}

	respondMessage(c, http.StatusCreated, "Property listed successfully")
}

// GetMyProperties handles GET /api/owner/getallproperties.
func (h *OwnerHandler) GetMyProperties(c *gin.Context) {
	properties, err := h.propertyService.ListByOwner(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondData(c, http.StatusOK, properties)
}

// UpdateProperty handles PATCH /api/owner/updateproperty/:propertyid
// (multipart). Newly uploaded images replace the property's whole image set.
func (h *OwnerHandler) UpdateProperty(c *gin.Context) {
	propertyID, err := primitive.ObjectIDFromHex(c.Param("propertyid"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid property id")
		return
	}

	images, err := h.storeImages(c, formFiles(c))
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to store property images")
		return
	}

	updated, err := h.propertyService.Update(c.Request.Context(), propertyID, middleware.UserID(c), propertyInputFromForm(c), images)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotOwner):
			respondError(c, http.StatusForbidden, "Unauthorized to update this property")
		case errors.Is(err, mongo.ErrNoDocuments):
			respondError(c, http.StatusNotFound, "Property not found")
		default:
			_ = c.Error(err)
			respondError(c, http.StatusInternalServerError, "Failed to update property")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Property updated successfully",
		"data":    updated,
	})
}

// DeleteProperty handles DELETE /api/owner/deleteproperty/:propertyid.
// Bookings referencing the property are hard-deleted with it.
func (h *OwnerHandler) DeleteProperty(c *gin.Context) {
	propertyID, err := primitive.ObjectIDFromHex(c.Param("propertyid"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid property id")
		return
	}

	err = h.propertyService.Delete(c.Request.Context(), propertyID, middleware.UserID(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotOwner):
			respondError(c, http.StatusForbidden, "Unauthorized to delete this property")
		case errors.Is(err, mongo.ErrNoDocuments):
			respondError(c, http.StatusNotFound, "Property not found")
		default:
			_ = c.Error(err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondMessage(c, http.StatusOK, "Property and associated bookings removed")
}

// GetBookings handles GET /api/owner/getallbookings.
func (h *OwnerHandler) GetBookings(c *gin.Context) {
	bookings, err := h.bookingService.ListByOwner(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondData(c, http.StatusOK, bookings)
}

type bookingStatusRequest struct {
	BookingID  string `json:"bookingId"`
	PropertyID string `json:"propertyId"`
	Status     string `json:"status"`
}

// HandleBookingStatus handles POST /api/owner/handlebookingstatus.
// Approving a booking makes the property Unavailable; moving it back to
// pending makes the property Available again.
func (h *OwnerHandler) HandleBookingStatus(c *gin.Context) {
	var req bookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	bookingID, err := primitive.ObjectIDFromHex(req.BookingID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid booking id")
		return
	}
	propertyID, err := primitive.ObjectIDFromHex(req.PropertyID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid property id")
		return
	}
	status := models.BookingStatus(req.Status)
	if status != models.BookingPending && status != models.BookingBooked {
		respondError(c, http.StatusBadRequest, "Unknown booking status")
		return
	}

	err = h.bookingService.SetStatus(c.Request.Context(), bookingID, propertyID, middleware.UserID(c), status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotOwner):
			respondError(c, http.StatusForbidden, "Unauthorized action on this property")
		case errors.Is(err, services.ErrBookingMismatch):
			respondError(c, http.StatusForbidden, "Booking does not belong to this property")
		case errors.Is(err, mongo.ErrNoDocuments):
			respondError(c, http.StatusNotFound, "Booking not found")
		default:
			_ = c.Error(err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondMessage(c, http.StatusOK, "Booking status updated to "+req.Status)
}
