package authentication

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobsy-backend/controllers/respond"
	"jobsy-backend/services"
)

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword is the only way to modify a password; PUT /api/profile
// ignores the field.
func (h *Handler) ChangePassword(c *gin.Context) {
	identity, ok := CurrentIdentity(c)
	if !ok {
		respond.Error(c, services.ErrUnauthenticated)
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Failure(c, errMalformedBody)
		return
	}

	if err := h.issuer.ChangePassword(c.Request.Context(), identity.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		respond.Failure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password changed successfully",
	})
}
