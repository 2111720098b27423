package applications

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jobsy-backend/controllers/authentication"
	"jobsy-backend/controllers/respond"
	appmodels "jobsy-backend/models/applications"
	"jobsy-backend/services"
)

type Handler struct {
	ledger *services.Ledger
	log    zerolog.Logger
}

func NewHandler(ledger *services.Ledger, logger zerolog.Logger) *Handler {
	return &Handler{ledger: ledger, log: logger.With().Str("component", "applications").Logger()}
}

var errMalformedBody = fmt.Errorf("%w: malformed JSON body", services.ErrValidation)

type statusRequest struct {
	Status string `json:"status"`
}

// Mine lists the caller's own applications.
func (h *Handler) Mine(c *gin.Context) {
	identity, _ := authentication.CurrentIdentity(c)

	list, err := h.ledger.ListMine(c.Request.Context(), identity.UserID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) All(c *gin.Context) {
	list, err := h.ledger.ListAll(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) SetStatus(c *gin.Context) {
	id, err := respond.ParamID(c, "id", services.ErrApplicationNotFound)
	if err != nil {
		respond.Error(c, err)
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, errMalformedBody)
		return
	}

	app, err := h.ledger.SetStatus(c.Request.Context(), id, appmodels.Status(req.Status))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := respond.ParamID(c, "id", services.ErrApplicationNotFound)
	if err != nil {
		respond.Error(c, err)
		return
	}

	if err := h.ledger.Delete(c.Request.Context(), id); err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Application deleted successfully"})
}
