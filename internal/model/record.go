package model

import "time"

// RecordStatus enumerates patient-record states.
type RecordStatus string

const (
	RecordStatusActive      RecordStatus = "active"
	RecordStatusArchived    RecordStatus = "archived"
	RecordStatusTransferred RecordStatus = "transferred"
)

// PatientRecord is the aggregation root for a patient's clinical history.
// A patient may accumulate several records over time (for example after a
// transfer) but at most one is active.
type PatientRecord struct {
	RecordID           int64        `json:"record_id" db:"record_id"`
	PatientID          int64        `json:"patient_id" db:"patient_id"`
	CreationDate       time.Time    `json:"creation_date" db:"creation_date"`
	Status             RecordStatus `json:"status" db:"status"`
	PrimaryPhysicianID int64        `json:"primary_physician_id" db:"primary_physician_id"`
	CreatedAt          time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at" db:"updated_at"`
}

// VisitStatus enumerates visit states.
type VisitStatus string

const (
	VisitStatusCompleted  VisitStatus = "completed"
	VisitStatusInProgress VisitStatus = "in_progress"
	VisitStatusScheduled  VisitStatus = "scheduled"
	VisitStatusCancelled  VisitStatus = "cancelled"
)

// Visit is a dated clinical encounter belonging to exactly one
// PatientRecord and attended by one physician.
type Visit struct {
	VisitID         int64       `json:"visit_id" db:"visit_id"`
	PatientRecordID int64       `json:"patient_record_id" db:"patient_record_id"`
	VisitDate       time.Time   `json:"visit_date" db:"visit_date"`
	Reason          string      `json:"reason" db:"reason"`
	PhysicianID     int64       `json:"physician_id" db:"physician_id"`
	Notes           string      `json:"notes" db:"notes"`
	Status          VisitStatus `json:"status" db:"status"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`

	// Joined read-only fields
	PatientID     int64  `json:"patient_id,omitempty" db:"patient_id"`
	PatientName   string `json:"patient_name,omitempty" db:"patient_name"`
	PhysicianName string `json:"physician_name,omitempty" db:"physician_name"`
}

// UnbilledVisit is a visit with no billing summary yet, annotated with an
// estimated cost for the physician's billing screen.
type UnbilledVisit struct {
	Visit
	EstimatedCost float64 `json:"estimated_cost"`
}

// MedicalRecordView is the full clinical folder returned to physicians and
// to the patient's own "me" view.
type MedicalRecordView struct {
	Patient *Patient       `json:"patient"`
	Record  *PatientRecord `json:"record"`
	Visits  []*VisitDetail `json:"visits"`
}

// VisitDetail is a visit together with its owned measurements and
// prescriptions.
type VisitDetail struct {
	Visit
	VitalSigns    []*VitalSign    `json:"vital_signs"`
	Prescriptions []*Prescription `json:"prescriptions"`
}

// PatientSummary is the sanitized projection returned by physician search.
type PatientSummary struct {
	PersonID    int64     `json:"person_id" db:"person_id"`
	Name        string    `json:"name" db:"name"`
	InsuranceID string    `json:"insurance_id" db:"insurance_id"`
	DateOfBirth time.Time `json:"date_of_birth" db:"date_of_birth"`
}
