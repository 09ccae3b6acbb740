// Package response provides unified API response structures.
// This package defines standard response formats for HTTP APIs,
// ensuring consistent response structures across all endpoints.
package response

import (
	"net/http"

	"github.com/kart-io/admin-guard/pkg/utils/errors"
)

// Response is the unified API response structure.
// All API responses should use this format for consistency.
type Response struct {
	// Code is the business error code (0 = success)
	Code int `json:"code"`

	// Message is a human-readable message
	Message string `json:"message"`

	// Data contains the response payload (nil for errors)
	Data interface{} `json:"data,omitempty"`

	// RequestID is the unique request identifier for tracing
	RequestID string `json:"request_id,omitempty"`

	httpCode int
}

// Success creates a successful response with data.
func Success(data interface{}) *Response {
	return &Response{
		Code:     0,
		Message:  "success",
		Data:     data,
		httpCode: http.StatusOK,
	}
}

// Err creates an error response from an Errno type.
func Err(e *errors.Errno) *Response {
	if e == nil {
		return Success(nil)
	}
	return &Response{
		Code:     e.Code,
		Message:  e.MessageEN,
		httpCode: e.HTTPStatus(),
	}
}

// WithRequestID adds request ID to the response.
func (r *Response) WithRequestID(requestID string) *Response {
	r.RequestID = requestID
	return r
}

// IsSuccess returns true if the response indicates success.
func (r *Response) IsSuccess() bool {
	return r.Code == 0
}

// HTTPStatus returns the appropriate HTTP status code for this response.
func (r *Response) HTTPStatus() int {
	if r.httpCode != 0 {
		return r.httpCode
	}
	if r.Code == 0 {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}
