package handler

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"nsn-odds-data/internal/apierr"

	"github.com/gin-gonic/gin"
)

// respondError writes err as {error, message, details}. Untyped errors become
// a 500 without leaking the cause.
func respondError(c *gin.Context, err error) {
	e, ok := apierr.As(err)
	if !ok {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "INTERNAL_ERROR",
			"message": "Internal server error",
		})
		return
	}
	if e.Status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	if retry, ok := e.Details["retry_after"]; ok {
		c.Header("Retry-After", strconv.Itoa(toInt(retry)))
	}
	c.AbortWithStatusJSON(apierr.StatusOf(err), e)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// queryLimit parses an optional positive limit no greater than max.
func queryLimit(c *gin.Context, name string, def, max int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > max {
		return 0, apierr.Validation(name + " must be between 1 and " + strconv.Itoa(max))
	}
	return n, nil
}

func queryOffset(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("offset"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apierr.Validation("offset must be >= 0")
	}
	return n, nil
}

func queryFloat(c *gin.Context, name string, def float64) (float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apierr.Validation(name + " must be a number")
	}
	return f, nil
}
