// Package response defines the JSON envelope every HTTP endpoint speaks:
// a data payload or a coded error, plus request-id metadata so a client
// report can be matched to server logs.
package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Envelope is the wire shape of every API response.
type Envelope struct {
	Data     interface{} `json:"data"`
	Error    *ErrorBody  `json:"error,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// ErrorBody carries the machine-readable code, its default message, and
// optional per-field validation detail.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Metadata ties the response to a request id and server timestamp.
type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// Success writes data under the envelope.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Envelope{
		Data:     data,
		Metadata: buildMetadata(c),
	})
}

// Fail writes a coded error with its default message.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, errorEnvelope(c, code, nil))
}

// FailWithFields writes a coded error with per-field validation messages.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	c.JSON(statusCode, errorEnvelope(c, code, fields))
}

// AbortFail writes a coded error and stops the middleware chain. Used by
// auth middleware so denied requests never reach the handler.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, errorEnvelope(c, code, nil))
}

func errorEnvelope(c *gin.Context, code ErrCode, fields map[string]string) Envelope {
	return Envelope{
		Error:    &ErrorBody{Code: code, Message: GetMessage(code), Fields: fields},
		Metadata: buildMetadata(c),
	}
}

func buildMetadata(c *gin.Context) Metadata {
	id := c.GetString(ContextKeyRequestID)
	if id == "" {
		// Response written outside the middleware chain (tests, panics).
		id = uuid.New().String()
	}
	return Metadata{
		RequestID: id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
