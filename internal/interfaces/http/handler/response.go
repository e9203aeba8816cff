package handler

import "github.com/erp/backoffice/internal/interfaces/http/dto"

// Envelope types below only describe responses for the OpenAPI document.
// Handlers write dto.Response.

// APIResponse is a successful envelope carrying T
// @Description Success envelope. Listings add meta with the page and the total row count.
type APIResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    T         `json:"data,omitempty"`
	Meta    *dto.Meta `json:"meta,omitempty"`
}

// ErrorResponse is a failed envelope
// @Description Error envelope. error.code is stable; error.request_id matches the X-Request-ID header.
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}
