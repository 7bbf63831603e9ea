// Package dto defines HTTP request/response shapes for API v1.
package dto

// IDResponse returns a created entity ID.
type IDResponse struct {
	ID int64 `json:"id"`
}

// SuccessResponse returns an operation result message.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ListQuery holds common pagination parameters.
type ListQuery struct {
	Limit  int `form:"limit,default=50"`
	Offset int `form:"offset"`
}
