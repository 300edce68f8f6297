package dto

import (
	"github.com/noah-isme/lms-portal-gateway/internal/filter"
)

// ListQuery is a parsed list request.
type ListQuery struct {
	Criteria filter.Criteria
	Page     int
	PageSize int
}
