// Package httputils provides HTTP utility functions.
package httputils

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/admin-guard/pkg/utils/errors"
	"github.com/kart-io/admin-guard/pkg/utils/response"
)

// WriteResponse writes the response to the client.
// It handles both success and error cases, ensuring consistent response format.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	if err != nil {
		var resp *response.Response
		if errno, ok := err.(*errors.Errno); ok {
			resp = response.Err(errno)
		} else {
			resp = response.Err(errors.ErrInternal.WithMessage(err.Error()))
		}
		c.JSON(resp.HTTPStatus(), resp)
		return
	}

	resp := response.Success(data)
	c.JSON(resp.HTTPStatus(), resp)
}
