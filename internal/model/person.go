package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Role identifies the single specialization a Person carries.
type Role string

const (
	RolePhysician Role = "physician"
	RolePatient   Role = "patient"
	RoleNurse     Role = "nurse"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePhysician, RolePatient, RoleNurse, RoleAdmin:
		return true
	}
	return false
}

// Person is the base identity record. The role is set once at creation and
// determines which detail table row accompanies it.
type Person struct {
	PersonID  int64     `json:"person_id" db:"person_id"`
	Name      string    `json:"name" db:"name"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Physician detail row, joined to Person by person_id.
type Physician struct {
	Person
	LicenseNumber string `json:"license_number" db:"license_number"`
	Specialty     string `json:"specialty" db:"specialty"`
	Department    string `json:"department" db:"department"`
}

// Patient detail row, joined to Person by person_id.
type Patient struct {
	Person
	InsuranceID      string           `json:"insurance_id" db:"insurance_id"`
	ContactInfo      ContactInfo      `json:"contact_info" db:"-"`
	DateOfBirth      time.Time        `json:"date_of_birth" db:"date_of_birth"`
	EmergencyContact EmergencyContact `json:"emergency_contact" db:"-"`
}

// Shift enumerates nurse shifts.
type Shift string

const (
	ShiftDay     Shift = "day"
	ShiftNight   Shift = "night"
	ShiftEvening Shift = "evening"
)

// Nurse detail row, joined to Person by person_id.
type Nurse struct {
	Person
	Certification string `json:"certification" db:"certification"`
	Department    string `json:"department" db:"department"`
	Shift         Shift  `json:"shift" db:"shift"`
}

// AccessLevel enumerates administrator access levels. The levels form a
// strict containment order for read purposes: full > readonly > audit_only.
type AccessLevel string

const (
	AccessFull      AccessLevel = "full"
	AccessReadonly  AccessLevel = "readonly"
	AccessAuditOnly AccessLevel = "audit_only"
)

func (a AccessLevel) rank() int {
	switch a {
	case AccessFull:
		return 3
	case AccessReadonly:
		return 2
	case AccessAuditOnly:
		return 1
	}
	return 0
}

// SystemAdministrator detail row, joined to Person by person_id.
type SystemAdministrator struct {
	Person
	AccessLevel    AccessLevel `json:"access_level" db:"access_level"`
	AssignedRegion string      `json:"assigned_region" db:"assigned_region"`
	LastLogin      *time.Time  `json:"last_login,omitempty" db:"last_login"`
}

// HasAccess reports whether the administrator's level contains the
// required level for read purposes.
func (a *SystemAdministrator) HasAccess(required AccessLevel) bool {
	return a.AccessLevel.rank() >= required.rank()
}

// RoleDetail is the tagged union of role-specific records; exactly one
// field is non-nil, matching Person.Role.
type RoleDetail struct {
	Physician *Physician           `json:"physician,omitempty"`
	Patient   *Patient             `json:"patient,omitempty"`
	Nurse     *Nurse               `json:"nurse,omitempty"`
	Admin     *SystemAdministrator `json:"admin,omitempty"`
}

// CreatePersonRequest creates a Person plus its role detail in one call.
type CreatePersonRequest struct {
	Name string `json:"name" binding:"required"`
	Role Role   `json:"role" binding:"required"`

	// Physician fields
	LicenseNumber string `json:"license_number,omitempty"`
	Specialty     string `json:"specialty,omitempty"`
	Department    string `json:"department,omitempty"`

	// Patient fields
	InsuranceID      string            `json:"insurance_id,omitempty"`
	ContactInfo      *ContactInfo      `json:"contact_info,omitempty"`
	DateOfBirth      *time.Time        `json:"date_of_birth,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`

	// Nurse fields
	Certification string `json:"certification,omitempty"`
	Shift         Shift  `json:"shift,omitempty"`

	// Admin fields
	AccessLevel    AccessLevel `json:"access_level,omitempty"`
	AssignedRegion string      `json:"assigned_region,omitempty"`
}

func (r CreatePersonRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Role, validation.Required, validation.In(
			RolePhysician, RolePatient, RoleNurse, RoleAdmin)),
	); err != nil {
		return err
	}

	switch r.Role {
	case RolePhysician:
		return validation.ValidateStruct(&r,
			validation.Field(&r.LicenseNumber, validation.Required),
			validation.Field(&r.Specialty, validation.Required),
		)
	case RolePatient:
		return validation.ValidateStruct(&r,
			validation.Field(&r.InsuranceID, validation.Required),
			validation.Field(&r.DateOfBirth, validation.Required),
		)
	case RoleNurse:
		return validation.ValidateStruct(&r,
			validation.Field(&r.Certification, validation.Required),
			validation.Field(&r.Shift, validation.Required, validation.In(
				ShiftDay, ShiftNight, ShiftEvening)),
		)
	case RoleAdmin:
		return validation.ValidateStruct(&r,
			validation.Field(&r.AccessLevel, validation.Required, validation.In(
				AccessFull, AccessReadonly, AccessAuditOnly)),
		)
	}
	return nil
}
