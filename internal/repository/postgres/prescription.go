package postgres

import (
	"context"
	"fmt"

	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/repository"
)

type prescriptionRepository struct {
	BaseRepository
}

func NewPrescriptionRepository(base BaseRepository) repository.PrescriptionRepository {
	return &prescriptionRepository{base}
}

func (r *prescriptionRepository) Create(ctx context.Context, p *model.Prescription) (int64, error) {
	var id int64
	err := r.GetDB().QueryRowContext(ctx, `
        INSERT INTO prescriptions (visit_id, medication_name, dosage, frequency, start_date, end_date, instructions)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING prescription_id
    `, p.VisitID, p.MedicationName, p.Dosage, p.Frequency, p.StartDate, p.EndDate, p.Instructions).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create prescription: %w", err)
	}
	return id, nil
}

func (r *prescriptionRepository) ListByVisit(ctx context.Context, visitID int64) ([]*model.Prescription, error) {
	var prescriptions []*model.Prescription
	err := r.GetDB().SelectContext(ctx, &prescriptions, `
        SELECT prescription_id, visit_id, medication_name, dosage, frequency,
               start_date, end_date, instructions, created_at
        FROM prescriptions
        WHERE visit_id = $1
        ORDER BY start_date
    `, visitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}
