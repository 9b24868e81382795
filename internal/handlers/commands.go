package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"windhager_gateway/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string has no time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List issued write commands
// @Description  Filter the command audit log by time range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD') and result. A date-only 'to' is treated as end-of-day inclusive.
// @Tags         commands
// @Produce      json
// @Param        from    query   string  false  "Start of range"  example(2026-08-01)
// @Param        to      query   string  false  "End of range"    example(2026-08-31)
// @Param        result  query   string  false  "Command result"  Enums(OK,FAILED)
// @Success      200     {object}  map[string]interface{}  "count, commands"
// @Failure      400     {object}  map[string]string
// @Failure      401     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /api/v1/commands [get]
// @Security     BearerAuth
func (h *Handler) getCommands(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		from   time.Time
		to     time.Time
		result = strings.ToUpper(strings.TrimSpace(c.Query("result")))
		err    error
	)

	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return
	}

	commands, err := h.services.CommandLog.List(ctx, service.CommandFilter{
		From:   from,
		To:     to,
		Result: result,
	})
	if err != nil {
		if h.log != nil {
			h.log.Errorw("commands_list_failed", "err", err, "from", from, "to", to, "result", result)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load commands"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(commands),
		"commands": commands,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'", s)
}
