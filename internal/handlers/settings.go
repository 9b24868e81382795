package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Request DTO for the runtime eco default duration.
type ecoDurationRequest struct {
	Minutes int `json:"minutes" binding:"required"`
}

// @Summary      Current eco/comfort default duration
// @Tags         settings
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /api/v1/settings/eco-duration [get]
// @Security     BearerAuth
func (h *Handler) getEcoDuration(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"minutes": h.services.EcoDefaultDuration(),
	})
}

// @Summary      Update eco/comfort default duration
// @Description  Must be a positive number of minutes; invalid input keeps the prior value.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body   ecoDurationRequest  true  "Duration payload"
// @Success      200   {object}  map[string]int
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/settings/eco-duration [put]
// @Security     BearerAuth
func (h *Handler) setEcoDuration(c *gin.Context) {
	var req ecoDurationRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if err := h.services.SetEcoDefaultDuration(req.Minutes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"minutes": h.services.EcoDefaultDuration()})
}
