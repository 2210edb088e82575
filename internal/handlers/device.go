package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"lm500_emulator/internal/lm500"
	"lm500_emulator/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK          = "ok"
	statusFillStarted = "fill_requested"
	statusFillStopped = "fill_withdrawn"
	statusParamSet    = "param_set"

	errGetState        = "failed to load state"
	errInvalidChannel  = "channel must be 1 or 2"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// statusFor maps service errors onto HTTP codes: validation failures are the
// caller's fault, anything else is ours.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lm500.ErrUnknownParam):
		return http.StatusNotFound
	case errors.Is(err, lm500.ErrInvalidChannel),
		errors.Is(err, lm500.ErrInvalidMode),
		errors.Is(err, lm500.ErrInvalidValue),
		errors.Is(err, service.ErrInvalidTimeRange),
		errors.Is(err, service.ErrInvalidLimit):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondWithStatusAndState includes the current state when available.
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	if st, err := h.services.Monitoring.GetState(c.Request.Context()); err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// SetParamRequest is the payload of PUT /api/v1/device/params/{name}.
type SetParamRequest struct {
	// Raw value, parsed according to the parameter's type
	Value string `json:"value" binding:"required" example:"12.5"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Get instrument state
// @Tags         device
// @Produce      json
// @Success      200  {object}  models.LevelState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/device/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "device_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func channelParam(c *gin.Context) (int, bool) {
	ch, err := strconv.Atoi(c.Param("channel"))
	if err != nil || lm500.ChannelID(ch).Validate() != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidChannel})
		return 0, false
	}
	return ch, true
}

// @Summary      Request a refill
// @Description  The level starts moving on the next simulator tick.
// @Tags         device
// @Produce      json
// @Param        channel  path  int  true  "Channel (1 or 2)"
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/device/channels/{channel}/fill/start [post]
// @Security     BearerAuth
func (h *Handler) startFill(c *gin.Context) {
	ch, ok := channelParam(c)
	if !ok {
		return
	}
	if err := h.services.Control.StartFill(c.Request.Context(), ch); err != nil {
		h.logAndJSONError(c, statusFor(err), err.Error(), "fill_start_failed", err, "channel", ch)
		return
	}
	h.respondWithStatusAndState(c, statusFillStarted, gin.H{"channel": ch})
}

// @Summary      Withdraw a refill request
// @Tags         device
// @Produce      json
// @Param        channel  path  int  true  "Channel (1 or 2)"
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/device/channels/{channel}/fill/stop [post]
// @Security     BearerAuth
func (h *Handler) stopFill(c *gin.Context) {
	ch, ok := channelParam(c)
	if !ok {
		return
	}
	if err := h.services.Control.StopFill(c.Request.Context(), ch); err != nil {
		h.logAndJSONError(c, statusFor(err), err.Error(), "fill_stop_failed", err, "channel", ch)
		return
	}
	h.respondWithStatusAndState(c, statusFillStopped, gin.H{"channel": ch})
}

// @Summary      Read a raw device parameter
// @Tags         device
// @Produce      json
// @Param        name  path  string  true  "Parameter name"  Enums(level1,level2,high_threshold,low_threshold,alarm_threshold,sensor_length,fill_speed,max_fill_time,type1,type2,identity,status)
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/device/params/{name} [get]
// @Security     BearerAuth
func (h *Handler) getParam(c *gin.Context) {
	name := c.Param("name")
	v, err := h.services.Control.Param(c.Request.Context(), name)
	if err != nil {
		h.logAndJSONError(c, statusFor(err), err.Error(), "param_get_failed", err, "name", name)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "value": v})
}

// @Summary      Overwrite a raw device parameter
// @Tags         device
// @Accept       json
// @Produce      json
// @Param        name  path  string           true  "Parameter name"
// @Param        body  body  SetParamRequest  true  "New value"
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/device/params/{name} [put]
// @Security     BearerAuth
func (h *Handler) setParam(c *gin.Context) {
	var req SetParamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	name := c.Param("name")
	if err := h.services.Control.SetParam(c.Request.Context(), name, req.Value); err != nil {
		h.logAndJSONError(c, statusFor(err), err.Error(), "param_set_failed", err, "name", name)
		return
	}
	h.respondWithStatusAndState(c, statusParamSet, gin.H{"name": name})
}
