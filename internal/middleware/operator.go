package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const OperatorKey = "operator"

// Operator extracts the acting-user label stamped onto every audit record.
// Identity management is out of scope here; the label comes from the client
// as the X-Operator header with a neutral default.
func Operator() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.GetHeader("X-Operator"))
		if name == "" {
			name = "operator"
		}
		c.Set(OperatorKey, name)
		c.Next()
	}
}

// GetOperator returns the acting-user label from the request context.
func GetOperator(c *gin.Context) string {
	return c.GetString(OperatorKey)
}
