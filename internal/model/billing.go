package model

import "time"

// BillingStatus enumerates billing summary states. Transitions are
// pending -> submitted -> (paid | denied); creation always starts pending.
type BillingStatus string

const (
	BillingStatusPending   BillingStatus = "pending"
	BillingStatusSubmitted BillingStatus = "submitted"
	BillingStatusPaid      BillingStatus = "paid"
	BillingStatusDenied    BillingStatus = "denied"
)

// BillingSummary belongs to exactly one Visit (at most one per visit).
// It references the patient and the assigned insurance provider but does
// not own them.
type BillingSummary struct {
	BillingID           int64         `json:"billing_id" db:"billing_id"`
	VisitID             int64         `json:"visit_id" db:"visit_id"`
	PatientID           int64         `json:"patient_id" db:"patient_id"`
	TotalCost           float64       `json:"total_cost" db:"total_cost"`
	Status              BillingStatus `json:"status" db:"status"`
	InsuranceProviderID int64         `json:"insurance_provider_id" db:"insurance_provider_id"`
	BillingDate         time.Time     `json:"billing_date" db:"billing_date"`
	CreatedAt           time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at" db:"updated_at"`
}

// CostBreakdown itemizes a computed visit cost.
type CostBreakdown struct {
	VitalsCount        int     `json:"vitals_count"`
	PrescriptionsCount int     `json:"prescriptions_count"`
	VitalsCost         float64 `json:"vitals_cost"`
	PrescriptionsCost  float64 `json:"prescriptions_cost"`
	BaseVisitCost      float64 `json:"base_visit_cost"`
}

// VisitCost is the computed cost for a single visit.
type VisitCost struct {
	VisitID   int64         `json:"visit_id"`
	PatientID int64         `json:"patient_id"`
	Cost      float64       `json:"cost"`
	Breakdown CostBreakdown `json:"breakdown"`
}

// GeneratedBilling is one pipeline result: the persisted summary plus its
// cost breakdown.
type GeneratedBilling struct {
	BillingSummary
	CostBreakdown CostBreakdown `json:"cost_breakdown"`
}

// GenerateBillingRequest selects the visits to bill.
type GenerateBillingRequest struct {
	VisitIDs []int64 `json:"visit_ids" binding:"required,min=1"`
}

// BillingStats aggregates a physician's billing history.
type BillingStats struct {
	TotalBillings  int     `json:"total_billings"`
	TotalAmount    float64 `json:"total_amount"`
	PendingCount   int     `json:"pending_count"`
	SubmittedCount int     `json:"submitted_count"`
	PaidCount      int     `json:"paid_count"`
	DeniedCount    int     `json:"denied_count"`
	PaidAmount     float64 `json:"paid_amount"`
}
