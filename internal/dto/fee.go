package dto

import "github.com/noah-isme/school-fee-api/internal/models"

// FeeTotalResponse is returned by the fee total endpoints. ClassName is empty
// for the school-wide total.
type FeeTotalResponse struct {
	ClassName string `json:"class_name,omitempty"`
	Total     int64  `json:"total"`
}

// MonthlyFeeResponse lists the fee records of a month with their sum.
type MonthlyFeeResponse struct {
	Month   string                    `json:"month"`
	Records []models.MonthlyFeeRecord `json:"records"`
	Total   int64                     `json:"total"`
}

// ClassListResponse wraps the distinct class names in use.
type ClassListResponse struct {
	Classes []string `json:"classes"`
}

// HealthResponse reports liveness and store readiness.
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store,omitempty"`
}
