package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"

	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/repository"
)

type billingRepository struct {
	BaseRepository
}

func NewBillingRepository(base BaseRepository) repository.BillingRepository {
	return &billingRepository{base}
}

// Create relies on the unique constraint on visit_id: a concurrent
// duplicate surfaces as a Conflict instead of a second row.
func (r *billingRepository) Create(ctx context.Context, b *model.BillingSummary) (int64, error) {
	var id int64
	start := time.Now()
	err := r.GetDB().QueryRowContext(ctx, `
        INSERT INTO billing_summaries (visit_id, patient_id, total_cost, status, insurance_provider_id, billing_date)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING billing_id
    `, b.VisitID, b.PatientID, b.TotalCost, b.Status, b.InsuranceProviderID, b.BillingDate).Scan(&id)
	r.Track("billing_create", start, err)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, apperrors.Conflictf("visit %d already has billing", b.VisitID)
		}
		return 0, fmt.Errorf("failed to create billing summary: %w", err)
	}
	return id, nil
}

func (r *billingRepository) Get(ctx context.Context, billingID int64) (*model.BillingSummary, error) {
	var b model.BillingSummary
	err := r.GetDB().GetContext(ctx, &b, `
        SELECT billing_id, visit_id, patient_id, total_cost, status,
               insurance_provider_id, billing_date, created_at, updated_at
        FROM billing_summaries
        WHERE billing_id = $1
    `, billingID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("billing summary", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get billing summary: %w", err)
	}
	return &b, nil
}

func (r *billingRepository) ExistsForVisit(ctx context.Context, visitID int64) (bool, error) {
	var exists bool
	err := r.GetDB().GetContext(ctx, &exists, `
        SELECT EXISTS (SELECT 1 FROM billing_summaries WHERE visit_id = $1)
    `, visitID)
	if err != nil {
		return false, fmt.Errorf("failed to check billing existence: %w", err)
	}
	return exists, nil
}

// TransitionStatus is a compare-and-set: the row only changes when it is
// still in the expected status, so two concurrent callers cannot both
// complete the same transition.
func (r *billingRepository) TransitionStatus(ctx context.Context, billingID int64, from, to model.BillingStatus) error {
	res, err := r.GetDB().ExecContext(ctx, `
        UPDATE billing_summaries
        SET status = $3, updated_at = NOW()
        WHERE billing_id = $1 AND status = $2
    `, billingID, from, to)
	if err != nil {
		return fmt.Errorf("failed to update billing status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.Conflictf("billing %d is no longer %s", billingID, from)
	}
	return nil
}

func (r *billingRepository) ListByPhysician(ctx context.Context, physicianID int64) ([]*model.BillingSummary, error) {
	var billings []*model.BillingSummary
	err := r.GetDB().SelectContext(ctx, &billings, `
        SELECT bs.billing_id, bs.visit_id, bs.patient_id, bs.total_cost, bs.status,
               bs.insurance_provider_id, bs.billing_date, bs.created_at, bs.updated_at
        FROM billing_summaries bs
        JOIN visits v ON bs.visit_id = v.visit_id
        WHERE v.physician_id = $1
        ORDER BY bs.billing_date DESC
    `, physicianID)
	if err != nil {
		return nil, fmt.Errorf("failed to list billing summaries: %w", err)
	}
	return billings, nil
}
