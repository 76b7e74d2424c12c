package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"househunt/server/internal/models"
	"househunt/server/internal/services"
)

// AdminHandler serves the read-only oversight views and the owner-approval
// switch.
type AdminHandler struct {
	userService     services.IUserService
	propertyService services.IPropertyService
	bookingService  services.IBookingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userService services.IUserService, propertyService services.IPropertyService, bookingService services.IBookingService) *AdminHandler {
	return &AdminHandler{
		userService:     userService,
		propertyService: propertyService,
		bookingService:  bookingService,
	}
}

// GetAllUsers handles GET /api/admin/getallusers.
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	users, err := h.userService.ListAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondData(c, http.StatusOK, users)
}

type approvalRequest struct {
	UserID string `json:"userid"`
	Status string `json:"status"`
}

// HandleStatus handles POST /api/admin/handlestatus: granting or revoking
// an owner's approval flag.
func (h *AdminHandler) HandleStatus(c *gin.Context) {
	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user id")
		return
	}
	status := models.ApprovalStatus(req.Status)
	if status != models.ApprovalPending && status != models.ApprovalApproved {
		respondError(c, http.StatusBadRequest, "Unknown approval status")
		return
	}

	if err := h.userService.SetOwnerApproval(c.Request.Context(), userID, status); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondMessage(c, http.StatusOK, "User status updated to "+req.Status)
}

// GetAllProperties handles GET /api/admin/getallproperties.
func (h *AdminHandler) GetAllProperties(c *gin.Context) {
	properties, err := h.propertyService.ListAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondData(c, http.StatusOK, properties)
}

// GetAllBookings handles GET /api/admin/getallbookings.
func (h *AdminHandler) GetAllBookings(c *gin.Context) {
	bookings, err := h.bookingService.ListAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondData(c, http.StatusOK, bookings)
}
