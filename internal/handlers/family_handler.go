package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"domus/internal/services"
)

// FamilyHandler handles family read requests.
type FamilyHandler struct {
	familyService services.FamilyServicer
}

// NewFamilyHandler creates a new FamilyHandler.
func NewFamilyHandler(familyService services.FamilyServicer) *FamilyHandler {
	return &FamilyHandler{familyService: familyService}
}

// GetFamily handles retrieving the caller's family with its members.
// @Summary     Get family
// @Description Get the caller's family and its members
// @Tags        family
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.Family "Family with members"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "User has no family"
// @Failure     404 {object} ErrorResponse "Family not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /family [get]
func (h *FamilyHandler) GetFamily(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	family, err := h.familyService.GetFamilyWithMembers(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"family": family})
}
