package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is where the request id lives in the Gin context.
const ContextKeyRequestID = "request_id"

// RequestID assigns every request an id and echoes it in the X-Request-ID
// response header. An inbound X-Request-ID is honored so an exam frontend
// or proxy can correlate its own traces with ours; otherwise a fresh UUID
// is minted.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
