package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lm500_emulator/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid    = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid      = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errChannelInvalid = "invalid 'channel'; use 1 or 2"
	errLimitInvalid   = "invalid 'limit'; use a non-negative integer"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// parseRange reads the optional from/to query parameters. A date-only 'to'
// is the end of that day. It writes a 400 and returns false on bad input.
func parseRange(c *gin.Context) (from, to time.Time, ok bool) {
	var err error
	if qs := c.Query("from"); qs != "" {
		if from, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return from, to, false
		}
	}
	if qs := c.Query("to"); qs != "" {
		if to, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return from, to, false
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return from, to, false
	}
	return from, to, true
}

// optionalInt parses an optional non-negative integer query parameter.
func optionalInt(c *gin.Context, key string) (int, error) {
	qs := c.Query(key)
	if qs == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(qs)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, qs)
	}
	return v, nil
}

// @Summary      List fill events
// @Description  Filter by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'), type and channel. A date-only 'to' is treated as end of day.
// @Tags         logs
// @Produce      json
// @Param        from     query  string  false  "Start of range"  example(2025-08-01)
// @Param        to       query  string  false  "End of range"    example(2025-08-31)
// @Param        type     query  string  false  "Event type"  Enums(FILL_REQUEST,FILL_STOP,TRANSITION,FILL_OFF,FILL_TIMEOUT,BACKDOOR)
// @Param        channel  query  int     false  "Channel (1 or 2)"
// @Success      200  {object}  map[string]interface{}  "count, events"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	channel, err := optionalInt(c, "channel")
	if err != nil || channel > 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errChannelInvalid})
		return
	}
	eventType := strings.ToUpper(strings.TrimSpace(c.Query("type")))

	events, err := h.services.EventLog.List(c.Request.Context(), service.LogFilter{
		From:    from,
		To:      to,
		Type:    eventType,
		Channel: channel,
	})
	if err != nil {
		h.logAndJSONError(c, statusFor(err), "failed to load logs", "logs_list_failed", err,
			"from", from, "to", to, "type", eventType, "channel", channel)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// @Summary      List level samples
// @Description  Newest first. 'limit' defaults to 500.
// @Tags         samples
// @Produce      json
// @Param        from   query  string  false  "Start of range"
// @Param        to     query  string  false  "End of range"
// @Param        limit  query  int     false  "Maximum number of samples"
// @Success      200  {object}  map[string]interface{}  "count, samples"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/samples [get]
// @Security     BearerAuth
func (h *Handler) getSamples(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	limit, err := optionalInt(c, "limit")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errLimitInvalid})
		return
	}

	samples, err := h.services.Samples.List(c.Request.Context(), service.SampleFilter{From: from, To: to, Limit: limit})
	if err != nil {
		h.logAndJSONError(c, statusFor(err), "failed to load samples", "samples_list_failed", err, "limit", limit)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(samples),
		"samples": samples,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
