package insurance

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"

	"github.com/upmhealth/patient-records-api/internal/model"
)

func deterministicSubmitter(seed int64) *MockSubmitter {
	m := NewMockSubmitter(0, 0)
	m.Rand = rand.New(rand.NewSource(seed))
	m.Sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return m
}

type fakeBillingRepo struct {
	mu       sync.Mutex
	billings map[int64]*model.BillingSummary
}

func (f *fakeBillingRepo) Create(ctx context.Context, b *model.BillingSummary) (int64, error) {
	return 0, nil
}

func (f *fakeBillingRepo) Get(ctx context.Context, billingID int64) (*model.BillingSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.billings[billingID]
	if !ok {
		return nil, apperrors.NotFoundf("billing %d not found", billingID)
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBillingRepo) ExistsForVisit(ctx context.Context, visitID int64) (bool, error) {
	return false, nil
}

func (f *fakeBillingRepo) TransitionStatus(ctx context.Context, billingID int64, from, to model.BillingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.billings[billingID]
	if !ok || b.Status != from {
		return apperrors.Conflictf("billing %d is no longer %s", billingID, from)
	}
	b.Status = to
	return nil
}

func (f *fakeBillingRepo) status(billingID int64) model.BillingStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.billings[billingID].Status
}

func (f *fakeBillingRepo) ListByPhysician(ctx context.Context, physicianID int64) ([]*model.BillingSummary, error) {
	return nil, nil
}

type fakeRecordRepo struct {
	visits map[int64]*model.Visit
}

func (f *fakeRecordRepo) GetActiveByPatient(ctx context.Context, patientID int64) (*model.PatientRecord, error) {
	return nil, apperrors.NotFound("patient record", nil)
}

func (f *fakeRecordRepo) ListByPatient(ctx context.Context, patientID int64) ([]*model.PatientRecord, error) {
	return nil, nil
}

func (f *fakeRecordRepo) CreateVisit(ctx context.Context, visit *model.Visit) (int64, error) {
	return 0, nil
}

func (f *fakeRecordRepo) GetVisit(ctx context.Context, visitID int64) (*model.Visit, error) {
	v, ok := f.visits[visitID]
	if !ok {
		return nil, apperrors.NotFoundf("visit %d not found", visitID)
	}
	return v, nil
}

func (f *fakeRecordRepo) ListVisitsByRecord(ctx context.Context, recordID int64) ([]*model.Visit, error) {
	return nil, nil
}

func (f *fakeRecordRepo) ListUnbilledVisits(ctx context.Context, physicianID int64) ([]*model.Visit, error) {
	return nil, nil
}

type fakeInsuranceRepo struct {
	providers map[int64]*model.InsuranceProvider
}

func (f *fakeInsuranceRepo) List(ctx context.Context) ([]*model.InsuranceProvider, error) {
	var out []*model.InsuranceProvider
	for _, p := range f.providers {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeInsuranceRepo) Get(ctx context.Context, providerID int64) (*model.InsuranceProvider, error) {
	p, ok := f.providers[providerID]
	if !ok {
		return nil, apperrors.NotFound("insurance provider", nil)
	}
	return p, nil
}

func newTestService(billings *fakeBillingRepo, records *fakeRecordRepo, submitter Submitter) *Service {
	providers := &fakeInsuranceRepo{providers: map[int64]*model.InsuranceProvider{
		7: {ProviderID: 7, ProviderName: "Alpha"},
	}}
	return NewService(billings, records, providers, submitter, nil, "", nil)
}

func TestMockSubmitterOutcomes(t *testing.T) {
	m := deterministicSubmitter(1)
	provider := &model.InsuranceProvider{ProviderID: 7, ProviderName: "Alpha"}
	billing := &model.BillingSummary{BillingID: 1, VisitID: 5, TotalCost: 165}

	accepted, rejected := 0, 0
	for i := 0; i < 50; i++ {
		res, err := m.Submit(context.Background(), provider, billing)
		require.NoError(t, err)
		require.NotEmpty(t, res.SubmissionID)
		if res.Accepted {
			accepted++
			assert.Positive(t, res.EstimatedProcessingDays)
		} else {
			rejected++
			assert.NotEmpty(t, res.Reason)
		}
	}
	// The sample distribution includes both outcomes.
	assert.Positive(t, accepted)
	assert.Positive(t, rejected)
}

func TestMockSubmitterConcurrentDraws(t *testing.T) {
	m := NewMockSubmitter(0, time.Millisecond)
	provider := &model.InsuranceProvider{ProviderID: 7, ProviderName: "Alpha"}
	billing := &model.BillingSummary{BillingID: 1, VisitID: 5, TotalCost: 165}

	errs := make(chan error, 8)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Submit(context.Background(), provider, billing)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestMockSubmitterCancellation(t *testing.T) {
	m := NewMockSubmitter(time.Hour, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Submit(ctx, &model.InsuranceProvider{}, &model.BillingSummary{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSubmitTerminalTransition(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		billings := &fakeBillingRepo{billings: map[int64]*model.BillingSummary{
			1: {BillingID: 1, VisitID: 5, InsuranceProviderID: 7, Status: model.BillingStatusPending},
		}}
		records := &fakeRecordRepo{visits: map[int64]*model.Visit{
			5: {VisitID: 5, PhysicianID: 1},
		}}
		svc := newTestService(billings, records, deterministicSubmitter(seed))

		outcome, err := svc.Submit(context.Background(), 1, 1)
		require.NoError(t, err)
		assert.Contains(t, []model.BillingStatus{
			model.BillingStatusSubmitted,
			model.BillingStatusDenied,
		}, outcome.Status)
		assert.Equal(t, outcome.Status, billings.billings[1].Status)
	}
}

type submitterFunc func(ctx context.Context, provider *model.InsuranceProvider, billing *model.BillingSummary) (*model.SubmissionResult, error)

func (f submitterFunc) Submit(ctx context.Context, provider *model.InsuranceProvider, billing *model.BillingSummary) (*model.SubmissionResult, error) {
	return f(ctx, provider, billing)
}

func TestSubmitConcurrentSingleTransition(t *testing.T) {
	billings := &fakeBillingRepo{billings: map[int64]*model.BillingSummary{
		1: {BillingID: 1, VisitID: 5, InsuranceProviderID: 7, Status: model.BillingStatusPending},
	}}
	records := &fakeRecordRepo{visits: map[int64]*model.Visit{
		5: {VisitID: 5, PhysicianID: 1},
	}}

	// Hold both callers inside the provider call so each has already
	// seen the billing as pending before either writes the outcome.
	var entered sync.WaitGroup
	entered.Add(2)
	submitter := submitterFunc(func(ctx context.Context, provider *model.InsuranceProvider, billing *model.BillingSummary) (*model.SubmissionResult, error) {
		entered.Done()
		entered.Wait()
		return &model.SubmissionResult{SubmissionID: "SUB-1", Accepted: true, Message: "ok"}, nil
	})
	svc := newTestService(billings, records, submitter)

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Submit(context.Background(), 1, 1)
			errs <- err
		}()
	}

	successes, conflicts := 0, 0
	for i := 0; i < 2; i++ {
		if err := <-errs; err == nil {
			successes++
		} else {
			assert.True(t, apperrors.IsConflict(err))
			conflicts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
	assert.Equal(t, model.BillingStatusSubmitted, billings.status(1))
}

func TestSubmitNotPending(t *testing.T) {
	billings := &fakeBillingRepo{billings: map[int64]*model.BillingSummary{
		1: {BillingID: 1, VisitID: 5, InsuranceProviderID: 7, Status: model.BillingStatusSubmitted},
	}}
	records := &fakeRecordRepo{visits: map[int64]*model.Visit{
		5: {VisitID: 5, PhysicianID: 1},
	}}
	svc := newTestService(billings, records, deterministicSubmitter(1))

	_, err := svc.Submit(context.Background(), 1, 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestSubmitOwnership(t *testing.T) {
	billings := &fakeBillingRepo{billings: map[int64]*model.BillingSummary{
		1: {BillingID: 1, VisitID: 5, InsuranceProviderID: 7, Status: model.BillingStatusPending},
	}}
	records := &fakeRecordRepo{visits: map[int64]*model.Visit{
		5: {VisitID: 5, PhysicianID: 99},
	}}
	svc := newTestService(billings, records, deterministicSubmitter(1))

	_, err := svc.Submit(context.Background(), 1, 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
	// Status unchanged on refusal.
	assert.Equal(t, model.BillingStatusPending, billings.billings[1].Status)
}

func TestProviderLookup(t *testing.T) {
	svc := newTestService(&fakeBillingRepo{}, &fakeRecordRepo{}, deterministicSubmitter(1))

	p, err := svc.Provider(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", p.ProviderName)

	_, err = svc.Provider(context.Background(), 404)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSubmitUnknownBilling(t *testing.T) {
	svc := newTestService(
		&fakeBillingRepo{billings: map[int64]*model.BillingSummary{}},
		&fakeRecordRepo{},
		deterministicSubmitter(1),
	)
	_, err := svc.Submit(context.Background(), 404, 1)
	assert.True(t, apperrors.IsNotFound(err))
}
