package insurance

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"
	"github.com/upmhealth/patient-records-api/pkg/metrics"

	"github.com/upmhealth/patient-records-api/internal/email"
	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/repository"
)

type Service struct {
	billings  repository.BillingRepository
	records   repository.RecordRepository
	providers repository.InsuranceRepository
	submitter Submitter
	email     *email.Service
	notifyTo  string
	metrics   *metrics.Metrics
}

func NewService(
	billings repository.BillingRepository,
	records repository.RecordRepository,
	providers repository.InsuranceRepository,
	submitter Submitter,
	emailSvc *email.Service,
	notifyTo string,
	m *metrics.Metrics,
) *Service {
	return &Service{
		billings:  billings,
		records:   records,
		providers: providers,
		submitter: submitter,
		email:     emailSvc,
		notifyTo:  notifyTo,
		metrics:   m,
	}
}

// Submit sends a pending billing to its assigned provider and records the
// terminal outcome. The transition is pending to submitted or denied;
// anything not pending is a conflict.
func (s *Service) Submit(ctx context.Context, billingID, physicianID int64) (*model.SubmissionOutcome, error) {
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

	if billing.Status != model.BillingStatusPending {
		return nil, apperrors.Conflictf("billing %d is already %s", billingID, billing.Status)
	}

	provider, err := s.providers.Get(ctx, billing.InsuranceProviderID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.submitter.Submit(ctx, provider, billing)
	if s.metrics != nil {
		s.metrics.InsuranceLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.InsuranceSubmissions.WithLabelValues("error").Inc()
		}
		return nil, apperrors.Internal(err)
	}

	status := model.BillingStatusDenied
	if result.Accepted {
		status = model.BillingStatusSubmitted
	}
	// Compare-and-set: if a concurrent submission already moved this
	// billing out of pending, this one loses with a Conflict.
	if err := s.billings.TransitionStatus(ctx, billingID, model.BillingStatusPending, status); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.InsuranceSubmissions.WithLabelValues(string(status)).Inc()
	}

	log.Info().
		Int64("billing_id", billingID).
		Str("provider", provider.ProviderName).
		Str("status", string(status)).
		Msg("insurance submission completed")

	if s.email != nil {
		go s.email.SendBillingOutcome(s.notifyTo, billing, result)
	}

	return &model.SubmissionOutcome{
		BillingID: billingID,
		Status:    status,
		Response:  result,
	}, nil
}

// Providers lists all providers with their billing aggregates.
func (s *Service) Providers(ctx context.Context) ([]*model.InsuranceProvider, error) {
	return s.providers.List(ctx)
}

// Provider returns a single provider.
func (s *Service) Provider(ctx context.Context, providerID int64) (*model.InsuranceProvider, error) {
	return s.providers.Get(ctx, providerID)
}
