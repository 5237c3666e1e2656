package repository

import (
	"context"
	"time"

	"github.com/upmhealth/patient-records-api/internal/model"
)

// All repository interfaces in one file
type (
	// PersonRepository handles the base identity table and the four
	// role-detail tables joined to it.
	PersonRepository interface {
		Create(ctx context.Context, req *model.CreatePersonRequest) (int64, error)
		Get(ctx context.Context, personID int64) (*model.Person, error)
		GetPhysician(ctx context.Context, personID int64) (*model.Physician, error)
		GetPatient(ctx context.Context, personID int64) (*model.Patient, error)
		GetNurse(ctx context.Context, personID int64) (*model.Nurse, error)
		GetAdmin(ctx context.Context, personID int64) (*model.SystemAdministrator, error)
		ListByRole(ctx context.Context, role model.Role) ([]*model.Person, error)
		SearchPatients(ctx context.Context, query string) ([]*model.PatientSummary, error)
		TouchAdminLogin(ctx context.Context, personID int64, at time.Time) error
	}

	RecordRepository interface {
		GetActiveByPatient(ctx context.Context, patientID int64) (*model.PatientRecord, error)
		ListByPatient(ctx context.Context, patientID int64) ([]*model.PatientRecord, error)
		CreateVisit(ctx context.Context, visit *model.Visit) (int64, error)
		GetVisit(ctx context.Context, visitID int64) (*model.Visit, error)
		ListVisitsByRecord(ctx context.Context, recordID int64) ([]*model.Visit, error)
		ListUnbilledVisits(ctx context.Context, physicianID int64) ([]*model.Visit, error)
	}

	VitalSignRepository interface {
		CreateBatch(ctx context.Context, signs []*model.VitalSign) error
		ListByVisit(ctx context.Context, visitID int64) ([]*model.VitalSign, error)
	}

	PrescriptionRepository interface {
		Create(ctx context.Context, p *model.Prescription) (int64, error)
		ListByVisit(ctx context.Context, visitID int64) ([]*model.Prescription, error)
	}

	BillingRepository interface {
		// Create inserts the summary; a unique constraint on visit_id
		// turns a concurrent duplicate into a Conflict error.
		Create(ctx context.Context, b *model.BillingSummary) (int64, error)
		Get(ctx context.Context, billingID int64) (*model.BillingSummary, error)
		ExistsForVisit(ctx context.Context, visitID int64) (bool, error)
		// TransitionStatus moves the summary from one status to another
		// atomically; a concurrent transition loses and gets a Conflict.
		TransitionStatus(ctx context.Context, billingID int64, from, to model.BillingStatus) error
		ListByPhysician(ctx context.Context, physicianID int64) ([]*model.BillingSummary, error)
	}

	InsuranceRepository interface {
		List(ctx context.Context) ([]*model.InsuranceProvider, error)
		Get(ctx context.Context, providerID int64) (*model.InsuranceProvider, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) (int64, error)
		List(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, error)
		Count(ctx context.Context, filter *model.AuditFilter) (int64, error)
		Recent(ctx context.Context, limit int) ([]*model.AuditLog, error)
		Stats(ctx context.Context) (*model.AuditStats, error)
		Delete(ctx context.Context, logID int64) (bool, error)
		DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}
)
