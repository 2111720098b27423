package authentication

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobsy-backend/controllers/respond"
	"jobsy-backend/services"
)

func (h *Handler) GetProfile(c *gin.Context) {
	identity, ok := CurrentIdentity(c)
	if !ok {
		respond.Error(c, services.ErrUnauthenticated)
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), identity.UserID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile applies only the fields listed in services.ProfileUpdate.
// Email, password, admin flag and unknown keys in the body are ignored.
func (h *Handler) UpdateProfile(c *gin.Context) {
	identity, ok := CurrentIdentity(c)
	if !ok {
		respond.Error(c, services.ErrUnauthenticated)
		return
	}

	var update services.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respond.Error(c, errMalformedBody)
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), identity.UserID, update)
	if err != nil {
		respond.Error(c, err)
		return
	}
	h.log.Info().Uint("user_id", user.ID).Msg("profile updated")
	c.JSON(http.StatusOK, user)
}
