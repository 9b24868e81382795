package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const operatorIDKey = "operatorId"

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// operatorAuth guards the API group: a request passes only with a valid
// bearer token, and the operator id travels in the request context.
func (h *Handler) operatorAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		abortUnauthorized(c, "authorization header required")
		return
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		abortUnauthorized(c, "authorization header must be a bearer token")
		return
	}

	operatorID, err := h.services.ParseToken(token)
	if err != nil {
		abortUnauthorized(c, "invalid or expired token")
		return
	}

	c.Set(operatorIDKey, operatorID)
	c.Next()
}
