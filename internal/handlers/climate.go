package handlers

import (
	"errors"
	"net/http"

	"windhager_gateway/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errNoSnapshot  = "no snapshot available yet; the poller has not completed a cycle"
	errWriteFailed = "device write failed"
)

// logAndJSONError centralizes error logging and the JSON error response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// writeErrorStatus maps a command-layer error to an HTTP status.
func writeErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNoSnapshot):
		return http.StatusServiceUnavailable, errNoSnapshot
	case errors.Is(err, service.ErrUnknownDevice):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrRoleNotMapped),
		errors.Is(err, service.ErrInvalidMode),
		errors.Is(err, service.ErrOffsetRange):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusBadGateway, errWriteFailed
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      List device descriptors
// @Tags         devices
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, devices"
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/devices [get]
// @Security     BearerAuth
func (h *Handler) getDevices(c *gin.Context) {
	devices, ok := h.services.Devices()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errNoSnapshot})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(devices),
		"devices": devices,
	})
}

// @Summary      Latest snapshot
// @Tags         devices
// @Produce      json
// @Success      200  {object}  models.Snapshot
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/snapshot [get]
// @Security     BearerAuth
func (h *Handler) getSnapshot(c *gin.Context) {
	snap, ok := h.services.Snapshot()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errNoSnapshot})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary      Climate states
// @Tags         climate
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, climates"
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/climate [get]
// @Security     BearerAuth
func (h *Handler) getClimateStates(c *gin.Context) {
	states, err := h.services.States(c.Request.Context())
	if err != nil {
		code, msg := writeErrorStatus(err)
		c.JSON(code, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(states),
		"climates": states,
	})
}

// Request DTO for setting the climate mode.
type modeRequest struct {
	Mode string `json:"mode" binding:"required"` // auto | heat | off
}

// @Summary      Set climate mode
// @Tags         climate
// @Accept       json
// @Produce      json
// @Param        id    path   string       true  "Climate device ID"
// @Param        body  body   modeRequest  true  "Mode payload"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/climate/{id}/mode [post]
// @Security     BearerAuth
func (h *Handler) setClimateMode(c *gin.Context) {
	var req modeRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	id := c.Param("id")
	if err := h.services.SetMode(c.Request.Context(), id, req.Mode); err != nil {
		code, msg := writeErrorStatus(err)
		h.logAndJSONError(c, code, msg, "climate_set_mode_failed", err, "device", id, "mode", req.Mode)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK, "mode": req.Mode})
}

// Request DTO for the eco/comfort temperature override. Temperature is a
// pointer so an explicit 0 passes the required check.
type temperatureRequest struct {
	Temperature     *float64 `json:"temperature" binding:"required"`
	DurationMinutes int      `json:"duration_minutes,omitempty"` // 0 = use runtime default
}

// @Summary      Set temperature override
// @Description  Writes the eco temperature and its duration; a missing duration uses the runtime eco default.
// @Tags         climate
// @Accept       json
// @Produce      json
// @Param        id    path   string              true  "Climate device ID"
// @Param        body  body   temperatureRequest  true  "Override payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/climate/{id}/temperature [post]
// @Security     BearerAuth
func (h *Handler) setClimateTemperature(c *gin.Context) {
	var req temperatureRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	id := c.Param("id")
	if err := h.services.SetTemperature(c.Request.Context(), id, *req.Temperature, req.DurationMinutes); err != nil {
		code, msg := writeErrorStatus(err)
		h.logAndJSONError(c, code, msg, "climate_set_temperature_failed", err, "device", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK, "temperature": *req.Temperature})
}

// Request DTO for the room temperature compensation bias.
type offsetRequest struct {
	Offset float64 `json:"offset"`
}

// @Summary      Set comfort offset
// @Tags         climate
// @Accept       json
// @Produce      json
// @Param        id    path   string         true  "Climate device ID"
// @Param        body  body   offsetRequest  true  "Offset payload (-3.5 .. 3.5)"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/climate/{id}/comfort-offset [post]
// @Security     BearerAuth
func (h *Handler) setComfortOffset(c *gin.Context) {
	var req offsetRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	id := c.Param("id")
	if err := h.services.SetComfortOffset(c.Request.Context(), id, req.Offset); err != nil {
		code, msg := writeErrorStatus(err)
		h.logAndJSONError(c, code, msg, "climate_set_offset_failed", err, "device", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK, "offset": req.Offset})
}
