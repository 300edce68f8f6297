package dto

import "github.com/noah-isme/lms-portal-gateway/internal/models"

// ChartPoint is one bar or slice.
type ChartPoint struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartSeries feeds one dashboard chart.
type ChartSeries struct {
	Name   string       `json:"name"`
	Title  string       `json:"title"`
	Points []ChartPoint `json:"points"`
}

// Dashboard is the portal home payload. Sections the caller may not see are
// omitted.
type Dashboard struct {
	Portal   models.Portal          `json:"portal"`
	Payments *models.PaymentSummary `json:"payments,omitempty"`
	Series   []ChartSeries          `json:"series"`
	Partial  bool                   `json:"partial"`
}
