// Package dto defines data transfer objects for the investments HTTP API.
package dto

import "investhorizon_backend/internal/feature/investments/domain/entity"

// InvestmentsResponse is the body of a successful GET /investments/:userId.
type InvestmentsResponse struct {
	Status      string              `json:"status"`
	Investments []entity.Investment `json:"investments"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
