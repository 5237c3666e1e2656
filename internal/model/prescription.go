package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Prescription belongs to one Visit.
type Prescription struct {
	PrescriptionID int64      `json:"prescription_id" db:"prescription_id"`
	VisitID        int64      `json:"visit_id" db:"visit_id"`
	MedicationName string     `json:"medication_name" db:"medication_name"`
	Dosage         string     `json:"dosage" db:"dosage"`
	Frequency      string     `json:"frequency" db:"frequency"`
	StartDate      time.Time  `json:"start_date" db:"start_date"`
	EndDate        *time.Time `json:"end_date,omitempty" db:"end_date"`
	Instructions   string     `json:"instructions,omitempty" db:"instructions"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// CreatePrescriptionRequest adds a prescription to a visit.
type CreatePrescriptionRequest struct {
	VisitID        int64      `json:"visit_id" binding:"required"`
	MedicationName string     `json:"medication_name" binding:"required"`
	Dosage         string     `json:"dosage" binding:"required"`
	Frequency      string     `json:"frequency" binding:"required"`
	StartDate      time.Time  `json:"start_date" binding:"required"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Instructions   string     `json:"instructions,omitempty"`
}

func (r CreatePrescriptionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MedicationName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Dosage, validation.Required),
		validation.Field(&r.Frequency, validation.Required),
		validation.Field(&r.StartDate, validation.Required),
		validation.Field(&r.EndDate, validation.By(func(interface{}) error {
			if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
				return validation.NewError("validation_end_date", "end date must not precede start date")
			}
			return nil
		})),
	)
}
