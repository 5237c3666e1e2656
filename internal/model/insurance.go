package model

import "time"

// InsuranceProvider with read-only billing totals aggregated by join.
type InsuranceProvider struct {
	ProviderID   int64       `json:"provider_id" db:"provider_id"`
	ProviderName string      `json:"provider_name" db:"provider_name"`
	ContactInfo  ContactInfo `json:"contact_info" db:"-"`
	APIEndpoint  string      `json:"api_endpoint" db:"api_endpoint"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`

	// Aggregates, never stored
	TotalBillings   int     `json:"total_billings" db:"total_billings"`
	PaidBillings    int     `json:"paid_billings" db:"paid_billings"`
	TotalPaidAmount float64 `json:"total_paid_amount" db:"total_paid_amount"`
}

// SubmissionResult is the terminal outcome of one insurance submission.
type SubmissionResult struct {
	SubmissionID            string `json:"submission_id"`
	Accepted                bool   `json:"accepted"`
	Message                 string `json:"message"`
	Reason                  string `json:"reason,omitempty"`
	EstimatedProcessingDays int    `json:"estimated_processing_days,omitempty"`
}

// SubmissionOutcome reports the billing status transition driven by the
// provider response.
type SubmissionOutcome struct {
	BillingID int64             `json:"billing_id"`
	Status    BillingStatus     `json:"status"`
	Response  *SubmissionResult `json:"insurance_response"`
}
