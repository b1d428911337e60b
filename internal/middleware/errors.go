package middleware

import (
	custom_error "itinventory/pkg/errors"

	"github.com/gin-gonic/gin"
)

// AbortWithError writes the JSON error body for err and stops the chain.
// The status comes from the error code; untyped errors are internal.
func AbortWithError(c *gin.Context, err error) {
	code := custom_error.CodeOf(err)
	meta := custom_error.MetadataFor(code)

	body := gin.H{"error": meta.PublicMessage, "code": code}
	if typed := custom_error.As(err); typed != nil {
		if code != custom_error.CodeInternal && typed.Message() != "" {
			body["message"] = typed.Message()
		}
		if details := typed.Details(); len(details) > 0 {
			body["details"] = details
		}
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(meta.HTTPStatus, body)
}
