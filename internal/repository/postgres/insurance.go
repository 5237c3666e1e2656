package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"

	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/repository"
)

type insuranceRepository struct {
	BaseRepository
}

func NewInsuranceRepository(base BaseRepository) repository.InsuranceRepository {
	return &insuranceRepository{base}
}

type providerRow struct {
	ProviderID      int64           `db:"provider_id"`
	ProviderName    string          `db:"provider_name"`
	ContactInfo     json.RawMessage `db:"contact_info"`
	APIEndpoint     string          `db:"api_endpoint"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
	TotalBillings   int             `db:"total_billings"`
	PaidBillings    int             `db:"paid_billings"`
	TotalPaidAmount float64         `db:"total_paid_amount"`
}

func (row *providerRow) toModel() (*model.InsuranceProvider, error) {
	p := &model.InsuranceProvider{
		ProviderID:      row.ProviderID,
		ProviderName:    row.ProviderName,
		APIEndpoint:     row.APIEndpoint,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
		TotalBillings:   row.TotalBillings,
		PaidBillings:    row.PaidBillings,
		TotalPaidAmount: row.TotalPaidAmount,
	}
	if len(row.ContactInfo) > 0 {
		if err := json.Unmarshal(row.ContactInfo, &p.ContactInfo); err != nil {
			return nil, fmt.Errorf("failed to unmarshal provider contact info: %w", err)
		}
	}
	return p, nil
}

// Billing totals are aggregated by join, never stored as counters.
const providerSelect = `
    SELECT ip.provider_id,
           ip.provider_name,
           ip.contact_info,
           ip.api_endpoint,
           ip.created_at,
           ip.updated_at,
           COUNT(bs.billing_id) AS total_billings,
           COUNT(CASE WHEN bs.status = 'paid' THEN 1 END) AS paid_billings,
           COALESCE(SUM(CASE WHEN bs.status = 'paid' THEN bs.total_cost ELSE 0 END), 0) AS total_paid_amount
    FROM insurance_providers ip
    LEFT JOIN billing_summaries bs ON ip.provider_id = bs.insurance_provider_id
`

func (r *insuranceRepository) List(ctx context.Context) ([]*model.InsuranceProvider, error) {
	var rows []*providerRow
	err := r.GetDB().SelectContext(ctx, &rows, providerSelect+`
        GROUP BY ip.provider_id
        ORDER BY ip.provider_name
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to list insurance providers: %w", err)
	}

	providers := make([]*model.InsuranceProvider, 0, len(rows))
	for _, row := range rows {
		p, err := row.toModel()
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}

func (r *insuranceRepository) Get(ctx context.Context, providerID int64) (*model.InsuranceProvider, error) {
	var row providerRow
	err := r.GetDB().GetContext(ctx, &row, providerSelect+`
        WHERE ip.provider_id = $1
        GROUP BY ip.provider_id
    `, providerID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("insurance provider", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get insurance provider: %w", err)
	}
	return row.toModel()
}
