package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"weathernet"

	"github.com/gin-gonic/gin"
)

const (
	errContentType  = "Content-Type must be application/json"
	errInvalidJSON  = "Invalid JSON in request body"
	errInvalidLimit = "invalid 'limit': must be a positive integer"
	errQueryFailed  = "failed to fetch readings"

	msgReadingStored = "Data received and stored successfully"
)

// @Summary      Ingest one reading
// @Description  Accepts a single JSON reading from a field device. A missing timestamp is assigned at append time.
// @Tags         readings
// @Accept       json
// @Produce      json
// @Param        body  body   weathernet.Reading  true  "Reading payload"
// @Success      200   {object}  map[string]interface{}  "message, receivedData, timestamp"
// @Failure      400   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/readings [post]
func (h *Handler) storeReading(c *gin.Context) {
	if ct := c.ContentType(); !strings.Contains(ct, "application/json") {
		c.JSON(http.StatusBadRequest, gin.H{"error": errContentType})
		return
	}

	var reading weathernet.Reading
	if err := c.ShouldBindJSON(&reading); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidJSON})
		return
	}

	stored, err := h.services.Ingest.Store(c.Request.Context(), reading)
	if err != nil {
		h.logAndJSONError(c, statusForError(err), err.Error(), "reading_store_failed", err,
			"device_id", reading.DeviceID)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      msgReadingStored,
		"receivedData": stored,
		"timestamp":    stored.Timestamp,
	})
}

// @Summary      Latest readings
// @Description  Returns the most recent readings per device as a JSON array; empty array when no data is stored.
// @Tags         readings
// @Produce      json
// @Param        limit  query   int  false  "Max readings per device (default 20)"
// @Success      200    {array}   weathernet.Reading
// @Failure      400    {object}  map[string]string
// @Failure      503    {object}  map[string]string
// @Router       /api/v1/readings [get]
func (h *Handler) getReadings(c *gin.Context) {
	limit := 0
	if qs := c.Query("limit"); qs != "" {
		v, err := strconv.Atoi(qs)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLimit})
			return
		}
		limit = v
	}

	readings, err := h.services.Query.Latest(c.Request.Context(), limit)
	if err != nil {
		h.logAndJSONError(c, statusForError(err), errQueryFailed, "readings_query_failed", err, "limit", limit)
		return
	}
	if readings == nil {
		readings = []weathernet.Reading{}
	}

	// The dashboard polls this endpoint; stale caches would defeat it.
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.JSON(http.StatusOK, readings)
}
