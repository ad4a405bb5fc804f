package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const errRefreshFailed = "refresh failed"

// @Summary      Current dashboard snapshot
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  weathernet.Snapshot
// @Router       /api/v1/dashboard [get]
func (h *Handler) getSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Dashboard.Snapshot())
}

// @Summary      Trigger a one-shot poll cycle
// @Description  Runs one fetch outside the regular schedule. Skipped silently if a fetch is already in flight.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  weathernet.Snapshot
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/dashboard/refresh [post]
func (h *Handler) refreshSnapshot(c *gin.Context) {
	if err := h.services.Dashboard.Refresh(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusBadGateway, errRefreshFailed, "dashboard_refresh_failed", err)
		return
	}
	c.JSON(http.StatusOK, h.services.Dashboard.Snapshot())
}
