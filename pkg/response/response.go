package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the error payload shape for every failing request.
// Failure responses that must be indistinguishable (credential errors)
// share the exact same Detail string and carry no Fields.
type ErrorBody struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Detail writes a plain error response.
func Detail(c *gin.Context, status int, detail string) {
	c.JSON(status, ErrorBody{Detail: detail})
}

// AbortDetail writes a plain error response and aborts the handler chain.
func AbortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, ErrorBody{Detail: detail})
}

// ValidationFailed writes a 422 with per-field messages.
func ValidationFailed(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusUnprocessableEntity, ErrorBody{Detail: "validation failed", Fields: fields})
}
