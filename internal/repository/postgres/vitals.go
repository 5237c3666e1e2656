package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/repository"
)

type vitalSignRepository struct {
	BaseRepository
}

func NewVitalSignRepository(base BaseRepository) repository.VitalSignRepository {
	return &vitalSignRepository{base}
}

// CreateBatch inserts all measurements in one transaction so a partial
// batch never persists.
func (r *vitalSignRepository) CreateBatch(ctx context.Context, signs []*model.VitalSign) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, s := range signs {
			err := tx.QueryRowContext(ctx, `
                INSERT INTO vital_signs (visit_id, measure_type, value, unit, recorded_at, recorded_by)
                VALUES ($1, $2, $3, $4, $5, $6)
                RETURNING vital_id
            `, s.VisitID, s.Type, s.Value, s.Unit, s.Timestamp, s.RecordedBy).Scan(&s.VitalID)
			if err != nil {
				return fmt.Errorf("failed to insert vital sign: %w", err)
			}
		}
		return nil
	})
}

func (r *vitalSignRepository) ListByVisit(ctx context.Context, visitID int64) ([]*model.VitalSign, error) {
	var signs []*model.VitalSign
	err := r.GetDB().SelectContext(ctx, &signs, `
        SELECT vital_id, visit_id, measure_type, value, unit, recorded_at, recorded_by, created_at
        FROM vital_signs
        WHERE visit_id = $1
        ORDER BY recorded_at
    `, visitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vital signs: %w", err)
	}
	return signs, nil
}
