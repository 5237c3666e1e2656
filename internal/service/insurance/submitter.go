package insurance

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/upmhealth/patient-records-api/internal/model"
)

// Submitter sends a billing summary to an insurance provider and returns
// a single terminal outcome. No retries, no partial states.
type Submitter interface {
	Submit(ctx context.Context, provider *model.InsuranceProvider, billing *model.BillingSummary) (*model.SubmissionResult, error)
}

// MockSubmitter simulates a provider call with randomized latency and a
// randomized outcome drawn from a fixed sample of responses (3 accepts,
// 2 rejects). The distribution is demo realism, not a contract.
type MockSubmitter struct {
	MinLatency time.Duration
	MaxLatency time.Duration

	// Injection points for deterministic tests. Rand is not
	// goroutine-safe, so every draw goes through mu.
	Rand  *rand.Rand
	Sleep func(ctx context.Context, d time.Duration) error

	mu sync.Mutex
}

func (m *MockSubmitter) draw(n int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Rand.Int63n(n)
}

func NewMockSubmitter(minLatency, maxLatency time.Duration) *MockSubmitter {
	return &MockSubmitter{
		MinLatency: minLatency,
		MaxLatency: maxLatency,
		Rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
		Sleep:      sleepCtx,
	}
}

type sampleResponse struct {
	accepted bool
	message  string
	reason   string
}

var sampleResponses = []sampleResponse{
	{accepted: true, message: "Claim submitted successfully"},
	{accepted: true, message: "Claim received and is being processed"},
	{accepted: false, message: "Claim rejected: Patient coverage verification failed", reason: "Patient not covered under this plan"},
	{accepted: false, message: "Claim rejected: Missing required procedure codes", reason: "Invalid claim format"},
	{accepted: true, message: "Claim accepted for review"},
}

func (m *MockSubmitter) Submit(ctx context.Context, provider *model.InsuranceProvider, billing *model.BillingSummary) (*model.SubmissionResult, error) {
	latency := m.MinLatency
	if m.MaxLatency > m.MinLatency {
		latency += time.Duration(m.draw(int64(m.MaxLatency - m.MinLatency)))
	}
	if err := m.Sleep(ctx, latency); err != nil {
		return nil, err
	}

	sample := sampleResponses[m.draw(int64(len(sampleResponses)))]
	result := &model.SubmissionResult{
		SubmissionID: fmt.Sprintf("MOCK-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8]),
		Accepted:     sample.accepted,
		Message:      sample.message,
		Reason:       sample.reason,
	}
	if sample.accepted {
		result.EstimatedProcessingDays = int(m.draw(5)) + 1
	}
	return result, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
