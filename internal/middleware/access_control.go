package middleware

import (
	"context"
	"net/http"

	"hospital-roster/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AdminLookup answers whether an admin is assigned to a hospital
type AdminLookup interface {
	IsAdminOfHospital(ctx context.Context, adminID, hospitalID string) (bool, error)
}

// AccessControlMiddleware provides hospital access control
type AccessControlMiddleware struct {
	admins AdminLookup
}

// NewAccessControlMiddleware creates a new access control middleware
func NewAccessControlMiddleware(admins AdminLookup) *AccessControlMiddleware {
	return &AccessControlMiddleware{admins: admins}
}

// CheckHospitalAccess verifies user has access to the hospital specified in the path
// Expected path parameter: :id
func (m *AccessControlMiddleware) CheckHospitalAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
			c.Abort()
			return
		}

		role := c.GetString("role")
		if role == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "User role not found")
			c.Abort()
			return
		}

		// Super admins have access to all hospitals
		if role == utils.RoleSuperAdmin {
			c.Next()
			return
		}

		hospitalID := c.Param("id")
		if hospitalID == "" {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid hospital ID")
			c.Abort()
			return
		}

		hasAccess, err := m.admins.IsAdminOfHospital(c.Request.Context(), userID, hospitalID)
		if err != nil {
			log.Error().Err(err).Str("hospital_id", hospitalID).Msg("Failed to verify hospital access")
			utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to verify access")
			c.Abort()
			return
		}

		if !hasAccess {
			utils.ErrorResponse(c, http.StatusForbidden, "Access denied: you don't have permission to access this hospital")
			c.Abort()
			return
		}

		c.Next()
	}
}
