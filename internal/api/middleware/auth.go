package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"househunt/server/internal/auth"
	"househunt/server/internal/models"
	"househunt/server/internal/services"
)

const (
	// ContextKeyUserID holds the authenticated user's id in the Gin context.
	ContextKeyUserID = "userID"
	// ContextKeyUser holds the resolved user document once a role gate ran.
	ContextKeyUser = "authUser"
)

// AuthMiddleware creates a Gin middleware for JWT authentication. On
// success the authenticated user id is stored in the request context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization header missing"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := auth.ValidateJWT(parts[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Token is not valid or has expired"})
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Token carries an invalid user id"})
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by AuthMiddleware.
func UserID(c *gin.Context) primitive.ObjectID {
	return c.MustGet(ContextKeyUserID).(primitive.ObjectID)
}

// AuthUser returns the user document resolved by a role gate.
func AuthUser(c *gin.Context) *models.User {
	return c.MustGet(ContextKeyUser).(*models.User)
}

// resolveUser loads the authenticated account. A valid token whose account
// has since disappeared is a stale credential, not a privilege problem, so
// it yields 401 rather than 403.
func resolveUser(c *gin.Context, userService services.IUserService) (*models.User, bool) {
	user, err := userService.FindByID(c.Request.Context(), UserID(c))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Account no longer exists"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		}
		return nil, false
	}
	return user, true
}

// AdminMiddleware only lets admins through. Assumes AuthMiddleware ran first.
func AdminMiddleware(userService services.IUserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolveUser(c, userService)
		if !ok {
			return
		}
		if user.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Forbidden: Admin access required"})
			return
		}
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// OwnerMiddleware only lets approved owners through. Assumes AuthMiddleware
// ran first. Unapproved owners get a distinct message so the frontend can
// surface the pending state.
func OwnerMiddleware(userService services.IUserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolveUser(c, userService)
		if !ok {
			return
		}
		if user.Role != models.RoleOwner {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Forbidden: Owner access required"})
			return
		}
		if user.Approval != models.ApprovalApproved {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Your account is pending admin approval"})
			return
		}
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}
