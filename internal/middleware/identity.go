package middleware

// identity.go holds helpers shared across middleware files for pulling
// the caller's identity out of the request context.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user id as a string, or
// "anon" for guests. The JWT middleware stores the sub claim as the
// number type encoding/json produced, so both forms are handled.
func currentUserID(c echo.Context) string {
	switch t := c.Get("user_id").(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	}
	return "anon"
}
