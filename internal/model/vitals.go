package model

import "time"

// VitalType enumerates supported measurement types.
type VitalType string

const (
	VitalTemperature     VitalType = "temperature"
	VitalBloodPressure   VitalType = "blood_pressure"
	VitalHeartRate       VitalType = "heart_rate"
	VitalRespiratoryRate VitalType = "respiratory_rate"
	VitalWeight          VitalType = "weight"
	VitalHeight          VitalType = "height"
)

// VitalSign is one measurement belonging to one Visit. Value is the
// normalized numeric rendering, or "systolic/diastolic" for blood
// pressure. The value+unit pair must pass validation before persistence.
type VitalSign struct {
	VitalID    int64     `json:"vital_id" db:"vital_id"`
	VisitID    int64     `json:"visit_id" db:"visit_id"`
	Type       VitalType `json:"measure_type" db:"measure_type"`
	Value      string    `json:"value" db:"value"`
	Unit       string    `json:"unit" db:"unit"`
	Timestamp  time.Time `json:"timestamp" db:"recorded_at"`
	RecordedBy int64     `json:"recorded_by" db:"recorded_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// VitalSignInput is a single raw measurement as submitted by a nurse.
type VitalSignInput struct {
	Type  VitalType `json:"measure_type" binding:"required"`
	Value string    `json:"value" binding:"required"`
	Unit  string    `json:"unit" binding:"required"`
}

// RecordVitalsRequest records a batch of measurements for a patient. When
// VisitID is zero a new visit is created for the recording.
type RecordVitalsRequest struct {
	VisitID    int64            `json:"visit_id"`
	VitalSigns []VitalSignInput `json:"vital_signs" binding:"required,min=1"`
}
