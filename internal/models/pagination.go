package models

// Pagination contains pagination metadata returned in list responses.
// TotalCount counts the rows matching the filter.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
