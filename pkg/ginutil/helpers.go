package ginutil

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// QueryInt extracts an integer from query parameters with default value
func QueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// ParamInt extracts an integer from path parameters
// Returns the parsed int and error if parsing fails
func ParamInt(c *gin.Context, key string) (int, error) {
	valueStr := c.Param(key)
	return strconv.Atoi(valueStr)
}

// ParamUint64 extracts a uint64 id from path parameters
// Returns the parsed uint64 and error if parsing fails
func ParamUint64(c *gin.Context, key string) (uint64, error) {
	valueStr := c.Param(key)
	return strconv.ParseUint(valueStr, 10, 64)
}

// Page returns clamped (page, limit) pagination query values
func Page(c *gin.Context, defaultLimit, maxLimit int) (int, int) {
	page := QueryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := QueryInt(c, "limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
