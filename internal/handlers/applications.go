package handlers

import (
	"net/http"

	"weathernet"

	"github.com/gin-gonic/gin"
)

const estimatedReviewTime = "48 hours"

// @Summary      Submit node operator application
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        body  body   weathernet.NodeApplication  true  "Application payload"
// @Success      200   {object}  map[string]interface{}  "success, applicationId, message"
// @Failure      400   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/apply [post]
func (h *Handler) submitApplication(c *gin.Context) {
	var app weathernet.NodeApplication
	if err := c.ShouldBindJSON(&app); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidJSON})
		return
	}

	id, err := h.services.Applications.Submit(c.Request.Context(), app)
	if err != nil {
		h.logAndJSONError(c, statusForError(err), err.Error(), "application_submit_failed", err,
			"wallet", app.AvaxWalletAddress)
		return
	}

	if h.log != nil {
		h.log.Infow("application_received",
			"application_id", id,
			"applicant", app.FirstName+" "+app.LastName,
			"wallet", app.AvaxWalletAddress,
		)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"applicationId":       id,
		"message":             "Application submitted successfully",
		"estimatedReviewTime": estimatedReviewTime,
	})
}
