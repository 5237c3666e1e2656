package postgres

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"

	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/repository"
)

type recordRepository struct {
	BaseRepository
}

func NewRecordRepository(base BaseRepository) repository.RecordRepository {
	return &recordRepository{base}
}

func (r *recordRepository) GetActiveByPatient(ctx context.Context, patientID int64) (*model.PatientRecord, error) {
	var rec model.PatientRecord
	err := r.GetDB().GetContext(ctx, &rec, `
        SELECT record_id, patient_id, creation_date, status, primary_physician_id,
               created_at, updated_at
        FROM patient_records
        WHERE patient_id = $1 AND status = 'active'
        ORDER BY creation_date DESC
        LIMIT 1
    `, patientID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("patient record", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient record: %w", err)
	}
	return &rec, nil
}

func (r *recordRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.PatientRecord, error) {
	var recs []*model.PatientRecord
	err := r.GetDB().SelectContext(ctx, &recs, `
        SELECT record_id, patient_id, creation_date, status, primary_physician_id,
               created_at, updated_at
        FROM patient_records
        WHERE patient_id = $1
        ORDER BY creation_date DESC
    `, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient records: %w", err)
	}
	return recs, nil
}

func (r *recordRepository) CreateVisit(ctx context.Context, visit *model.Visit) (int64, error) {
	var visitID int64
	err := r.GetDB().QueryRowContext(ctx, `
        INSERT INTO visits (patient_record_id, visit_date, reason, physician_id, notes, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING visit_id
    `, visit.PatientRecordID, visit.VisitDate, visit.Reason, visit.PhysicianID,
		visit.Notes, visit.Status).Scan(&visitID)
	if err != nil {
		return 0, fmt.Errorf("failed to create visit: %w", err)
	}
	return visitID, nil
}

// GetVisit joins through the patient record so callers get the owning
// patient's id and display names in one read.
func (r *recordRepository) GetVisit(ctx context.Context, visitID int64) (*model.Visit, error) {
	var v model.Visit
	err := r.GetDB().GetContext(ctx, &v, `
        SELECT v.visit_id, v.patient_record_id, v.visit_date, v.reason,
               v.physician_id, v.notes, v.status, v.created_at, v.updated_at,
               pr.patient_id,
               pp.name AS patient_name,
               COALESCE(dp.name, '') AS physician_name
        FROM visits v
        JOIN patient_records pr ON v.patient_record_id = pr.record_id
        JOIN persons pp ON pr.patient_id = pp.person_id
        LEFT JOIN persons dp ON v.physician_id = dp.person_id
        WHERE v.visit_id = $1
    `, visitID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundf("visit %d not found", visitID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	return &v, nil
}

func (r *recordRepository) ListVisitsByRecord(ctx context.Context, recordID int64) ([]*model.Visit, error) {
	var visits []*model.Visit
	err := r.GetDB().SelectContext(ctx, &visits, `
        SELECT v.visit_id, v.patient_record_id, v.visit_date, v.reason,
               v.physician_id, v.notes, v.status, v.created_at, v.updated_at,
               pr.patient_id,
               pp.name AS patient_name,
               COALESCE(dp.name, '') AS physician_name
        FROM visits v
        JOIN patient_records pr ON v.patient_record_id = pr.record_id
        JOIN persons pp ON pr.patient_id = pp.person_id
        LEFT JOIN persons dp ON v.physician_id = dp.person_id
        WHERE v.patient_record_id = $1
        ORDER BY v.visit_date DESC
    `, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return visits, nil
}

func (r *recordRepository) ListUnbilledVisits(ctx context.Context, physicianID int64) ([]*model.Visit, error) {
	var visits []*model.Visit
	err := r.GetDB().SelectContext(ctx, &visits, `
        SELECT v.visit_id, v.patient_record_id, v.visit_date, v.reason,
               v.physician_id, v.notes, v.status, v.created_at, v.updated_at,
               pr.patient_id,
               pp.name AS patient_name,
               COALESCE(dp.name, '') AS physician_name
        FROM visits v
        JOIN patient_records pr ON v.patient_record_id = pr.record_id
        JOIN persons pp ON pr.patient_id = pp.person_id
        LEFT JOIN persons dp ON v.physician_id = dp.person_id
        WHERE v.physician_id = $1
          AND v.status = 'completed'
          AND NOT EXISTS (
              SELECT 1 FROM billing_summaries bs WHERE bs.visit_id = v.visit_id
          )
        ORDER BY v.visit_date DESC
    `, physicianID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unbilled visits: %w", err)
	}
	return visits, nil
}
