package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"househunt/server/internal/api/middleware"
	"househunt/server/internal/auth"
	"househunt/server/internal/config"
	"househunt/server/internal/models"
	"househunt/server/internal/services"
)

// UserHandler serves registration, login and the renter-facing surface:
// the public catalog, booking requests and the renter's booking list.
type UserHandler struct {
	cfg             *config.Config
	userService     services.IUserService
	propertyService services.IPropertyService
	bookingService  services.IBookingService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(cfg *config.Config, userService services.IUserService, propertyService services.IPropertyService, bookingService services.IBookingService) *UserHandler {
	return &UserHandler{
		cfg:             cfg,
		userService:     userService,
		propertyService: propertyService,
		bookingService:  bookingService,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"type"`
	Phone    string `json:"phone"`
}

// Register handles POST /api/user/register.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Role == "" {
		respondError(c, http.StatusBadRequest, "Missing required fields")
		return
	}
	role := models.Role(req.Role)
	if role != models.RoleRenter && role != models.RoleOwner && role != models.RoleAdmin {
		respondError(c, http.StatusBadRequest, "Unknown user type")
		return
	}

	_, err := h.userService.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
		Phone:    req.Phone,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailExists) {
			respondError(c, http.StatusConflict, "User already exists")
			return
		}
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondMessage(c, http.StatusCreated, "Registration successful")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/user/login. The response carries the signed
// token and the account with the password hash stripped.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			respondError(c, http.StatusNotFound, "User not found")
		case errors.Is(err, services.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, "Invalid email or password")
		default:
			_ = c.Error(err)
			respondError(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	token, err := auth.GenerateJWT(user.ID, h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user":    user, // password hash excluded by the model's json tags
	})
}

// ForgotPassword handles POST /api/user/forgotpassword. The stored hash is
// overwritten for whoever holds the email; no prior-access proof exists.
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	err := h.userService.ResetPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondMessage(c, http.StatusOK, "Password updated successfully")
}

// GetUserData handles GET /api/user/getuserdata (authenticated).
func (h *UserHandler) GetUserData(c *gin.Context) {
	user, err := h.userService.FindByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "User session expired")
			return
		}
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondData(c, http.StatusOK, user)
}

// GetAllProperties handles the public catalog listing.
func (h *UserHandler) GetAllProperties(c *gin.Context) {
	properties, err := h.propertyService.ListAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch properties")
		return
	}
	respondData(c, http.StatusOK, properties)
}

type bookingRequest struct {
	UserDetails struct {
		FullName string `json:"fullName"`
		Phone    string `json:"phone"`
	} `json:"userDetails"`
	// Sent by older clients; the owner is resolved from the property.
	OwnerID string `json:"ownerId"`
	Status  string `json:"status"`
}

// BookProperty handles POST /api/user/bookinghandle/:propertyid.
func (h *UserHandler) BookProperty(c *gin.Context) {
	propertyID, err := primitive.ObjectIDFromHex(c.Param("propertyid"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid property id")
		return
	}

	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserDetails.FullName == "" || req.UserDetails.Phone == "" {
		respondError(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	_, err = h.bookingService.Create(c.Request.Context(), propertyID, middleware.UserID(c), req.UserDetails.FullName, req.UserDetails.Phone)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			respondError(c, http.StatusNotFound, "Property no longer exists")
		case errors.Is(err, services.ErrPropertyUnavailable):
			respondError(c, http.StatusConflict, "This property is already booked")
		case errors.Is(err, services.ErrDuplicateBooking):
			respondError(c, http.StatusConflict, "You already have a pending request for this property")
		default:
			_ = c.Error(err)
			respondError(c, http.StatusInternalServerError, "Failed to process booking")
		}
		return
	}

	respondMessage(c, http.StatusCreated, "Booking request sent to owner")
}

// GetMyBookings handles GET /api/user/getallbookings (authenticated renter).
func (h *UserHandler) GetMyBookings(c *gin.Context) {
	bookings, err := h.bookingService.ListByRenter(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondData(c, http.StatusOK, bookings)
}
