package model

import "time"

// PageInfo describes the window of a paginated response.
type PageInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPageInfo computes the page window for an offset query. Page is the
// window containing the first returned row; next and previous come from
// the offset itself, so offsets that are not limit-aligned still report
// them correctly.
func NewPageInfo(offset, limit int, total int64) PageInfo {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return PageInfo{
		Page:       offset/limit + 1,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    int64(offset+limit) < total,
		HasPrev:    offset > 0,
	}
}

// ContactInfo is the structured contact block stored as JSON.
type ContactInfo struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// EmergencyContact is the structured emergency contact stored as JSON.
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// DateRange bounds a query by timestamp, either side optional.
type DateRange struct {
	Start *time.Time `json:"start_date" form:"start_date"`
	End   *time.Time `json:"end_date" form:"end_date"`
}
