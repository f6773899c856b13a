package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/testing-service/internal/models"
)

// Identity is supplied by the gateway in front of the service
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRoles = "X-User-Roles"

	contextUserID    = "user_id"
	contextUserRoles = "user_roles"
)

// AuthMiddleware rejects requests without a caller id and stores the caller
// identity in the gin context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message:   "User not authenticated",
				Details:   HeaderUserID + " header missing",
				Timestamp: time.Now().UTC(),
				Path:      c.Request.URL.Path,
			})
			return
		}

		c.Set(contextUserID, userID)
		c.Set(contextUserRoles, parseRoles(c.GetHeader(HeaderUserRoles)))
		c.Next()
	}
}

// RequireRoleMiddleware checks that the caller holds one of the given roles
func RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, _ := GetUserRolesFromContext(c)
		for _, role := range roles {
			for _, required := range requiredRoles {
				if role == required {
					c.Next()
					return
				}
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message:   "Forbidden",
			Details:   fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
			Timestamp: time.Now().UTC(),
			Path:      c.Request.URL.Path,
		})
	}
}

// parseRoles keeps the recognised roles of a comma separated claim list
func parseRoles(raw string) []models.UserRole {
	var roles []models.UserRole
	for _, part := range strings.Split(raw, ",") {
		role := models.UserRole(strings.ToLower(strings.TrimSpace(part)))
		if role.IsValid() {
			roles = append(roles, role)
		}
	}
	return roles
}

// GetUserIDFromContext extracts the caller id set by AuthMiddleware
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID := c.GetString(contextUserID)
	if userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// GetUserRolesFromContext extracts the caller roles set by AuthMiddleware
func GetUserRolesFromContext(c *gin.Context) ([]models.UserRole, error) {
	value, exists := c.Get(contextUserRoles)
	if !exists {
		return nil, fmt.Errorf("user roles not found in context")
	}
	roles, ok := value.([]models.UserRole)
	if !ok {
		return nil, fmt.Errorf("invalid user roles type in context")
	}
	return roles, nil
}
