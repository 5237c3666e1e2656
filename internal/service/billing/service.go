package billing

import (
	"context"
	"fmt"
	"math"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"
	"github.com/upmhealth/patient-records-api/pkg/metrics"

	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/repository"
)

// Cost model constants. The formula must hold exactly for
// numeric-equality tests: 100 + 25*vitals + 15*prescriptions.
const (
	BaseVisitCost    = 100.0
	VitalSignCost    = 25.0
	PrescriptionCost = 15.0
)

const (
	providerCacheKey = "insurance_providers"
	providerCacheTTL = 5 * time.Minute
)

type Service struct {
	records       repository.RecordRepository
	vitals        repository.VitalSignRepository
	prescriptions repository.PrescriptionRepository
	billings      repository.BillingRepository
	providers     repository.InsuranceRepository
	cache         *gocache.Cache
	metrics       *metrics.Metrics
}

func NewService(
	records repository.RecordRepository,
	vitals repository.VitalSignRepository,
	prescriptions repository.PrescriptionRepository,
	billings repository.BillingRepository,
	providers repository.InsuranceRepository,
	m *metrics.Metrics,
) *Service {
	return &Service{
		records:       records,
		vitals:        vitals,
		prescriptions: prescriptions,
		billings:      billings,
		providers:     providers,
		cache:         gocache.New(providerCacheTTL, 10*time.Minute),
		metrics:       m,
	}
}

// CalculateCost computes the deterministic visit cost from recorded
// services, rounded to 2 decimal places.
func CalculateCost(vitals, prescriptions int) float64 {
	total := BaseVisitCost + float64(vitals)*VitalSignCost + float64(prescriptions)*PrescriptionCost
	return math.Round(total*100) / 100
}

// CalculateVisitCost loads the visit's recorded services and itemizes the
// cost.
func (s *Service) CalculateVisitCost(ctx context.Context, visitID int64) (*model.VisitCost, error) {
	visit, err := s.records.GetVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}

	vitals, err := s.vitals.ListByVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	prescriptions, err := s.prescriptions.ListByVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}

	return &model.VisitCost{
		VisitID:   visitID,
		PatientID: visit.PatientID,
		Cost:      CalculateCost(len(vitals), len(prescriptions)),
		Breakdown: model.CostBreakdown{
			VitalsCount:        len(vitals),
			PrescriptionsCount: len(prescriptions),
			VitalsCost:         float64(len(vitals)) * VitalSignCost,
			PrescriptionsCost:  float64(len(prescriptions)) * PrescriptionCost,
			BaseVisitCost:      BaseVisitCost,
		},
	}, nil
}

// GenerateSummaries runs the billing pipeline for each visit in input
// order. Each visit commits in its own transaction; the batch aborts on
// the first failure, so earlier visits stay billed. The error always
// names the failing visit.
func (s *Service) GenerateSummaries(ctx context.Context, visitIDs []int64, physicianID int64) ([]*model.GeneratedBilling, error) {
	if len(visitIDs) == 0 {
		return nil, apperrors.Validation("at least one visit ID is required")
	}

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.BillingPipelineDuration.Observe(time.Since(start).Seconds())
		}
	}()

	summaries := make([]*model.GeneratedBilling, 0, len(visitIDs))
	for _, visitID := range visitIDs {
		summary, err := s.generateOne(ctx, visitID, physicianID)
		if err != nil {
			s.countFailure(err)
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.BillingGenerated.Inc()
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *Service) generateOne(ctx context.Context, visitID, physicianID int64) (*model.GeneratedBilling, error) {
	visit, err := s.records.GetVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}

	// A physician may only bill their own visits.
	if visit.PhysicianID != physicianID {
		return nil, apperrors.Forbiddenf("access denied: visit %d does not belong to this physician", visitID)
	}

	// At most one billing per visit. The insert below also carries a
	// unique constraint, so a concurrent duplicate still ends in Conflict.
	exists, err := s.billings.ExistsForVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflictf("visit %d already has billing", visitID)
	}

	cost, err := s.CalculateVisitCost(ctx, visitID)
	if err != nil {
		return nil, err
	}

	providerID, err := s.assignProvider(ctx, visit.PatientID)
	if err != nil {
		return nil, err
	}

	summary := &model.BillingSummary{
		VisitID:             visitID,
		PatientID:           visit.PatientID,
		TotalCost:           cost.Cost,
		Status:              model.BillingStatusPending,
		InsuranceProviderID: providerID,
		BillingDate:         time.Now(),
	}
	billingID, err := s.billings.Create(ctx, summary)
	if err != nil {
		return nil, err
	}
	summary.BillingID = billingID

	return &model.GeneratedBilling{
		BillingSummary: *summary,
		CostBreakdown:  cost.Breakdown,
	}, nil
}

// assignProvider picks a provider by patientID modulo the provider count.
// This mirrors the legacy demo assignment; a real eligibility lookup
// would replace it.
func (s *Service) assignProvider(ctx context.Context, patientID int64) (int64, error) {
	providers, err := s.listProviders(ctx)
	if err != nil {
		return 0, err
	}
	if len(providers) == 0 {
		return 0, apperrors.Internal(fmt.Errorf("no insurance providers available"))
	}
	idx := int(patientID % int64(len(providers)))
	return providers[idx].ProviderID, nil
}

func (s *Service) listProviders(ctx context.Context) ([]*model.InsuranceProvider, error) {
	if cached, ok := s.cache.Get(providerCacheKey); ok {
		return cached.([]*model.InsuranceProvider), nil
	}
	providers, err := s.providers.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(providerCacheKey, providers, providerCacheTTL)
	return providers, nil
}

// UnbilledVisits lists a physician's completed visits that have no
// billing yet, each annotated with an estimated cost.
func (s *Service) UnbilledVisits(ctx context.Context, physicianID int64) ([]*model.UnbilledVisit, error) {
	visits, err := s.records.ListUnbilledVisits(ctx, physicianID)
	if err != nil {
		return nil, err
	}

	unbilled := make([]*model.UnbilledVisit, 0, len(visits))
	for _, v := range visits {
		uv := &model.UnbilledVisit{Visit: *v, EstimatedCost: BaseVisitCost}
		cost, err := s.CalculateVisitCost(ctx, v.VisitID)
		if err != nil {
			log.Warn().Err(err).Int64("visit_id", v.VisitID).Msg("failed to estimate visit cost")
		} else {
			uv.EstimatedCost = cost.Cost
		}
		unbilled = append(unbilled, uv)
	}
	return unbilled, nil
}

// Get returns one billing summary, restricted to the owning physician.
func (s *Service) Get(ctx context.Context, billingID, physicianID int64) (*model.BillingSummary, error) {
	billing, err := s.billings.Get(ctx, billingID)
	if err != nil {
		return nil, err
	}
	visit, err := s.records.GetVisit(ctx, billing.VisitID)
	if err != nil {
		return nil, err
	}
	if visit.PhysicianID != physicianID {
		return nil, apperrors.Forbidden("access denied: billing does not belong to this physician")
	}
	return billing, nil
}

// Stats aggregates the physician's billing history by status.
func (s *Service) Stats(ctx context.Context, physicianID int64) (*model.BillingStats, error) {
	billings, err := s.billings.ListByPhysician(ctx, physicianID)
	if err != nil {
		return nil, err
	}

	stats := &model.BillingStats{TotalBillings: len(billings)}
	for _, b := range billings {
		stats.TotalAmount += b.TotalCost
		switch b.Status {
		case model.BillingStatusPending:
			stats.PendingCount++
		case model.BillingStatusSubmitted:
			stats.SubmittedCount++
		case model.BillingStatusPaid:
			stats.PaidCount++
			stats.PaidAmount += b.TotalCost
		case model.BillingStatusDenied:
			stats.DeniedCount++
		}
	}
	return stats, nil
}

func (s *Service) countFailure(err error) {
	if s.metrics == nil {
		return
	}
	reason := "internal"
	switch {
	case apperrors.IsNotFound(err):
		reason = "not_found"
	case apperrors.IsForbidden(err):
		reason = "forbidden"
	case apperrors.IsConflict(err):
		reason = "conflict"
	}
	s.metrics.BillingFailed.WithLabelValues(reason).Inc()
}
