package insurance

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/upmhealth/patient-records-api/internal/model"
)

// HTTPSubmitter posts claims to the provider's configured endpoint. It is
// the non-mock Submitter for deployments with real provider integrations.
type HTTPSubmitter struct {
	client *resty.Client
}

func NewHTTPSubmitter(timeout time.Duration) *HTTPSubmitter {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &HTTPSubmitter{client: client}
}

type claimPayload struct {
	BillingID   int64   `json:"billing_id"`
	VisitID     int64   `json:"visit_id"`
	PatientID   int64   `json:"patient_id"`
	TotalCost   float64 `json:"total_cost"`
	BillingDate string  `json:"billing_date"`
}

type claimResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		SubmissionID            string `json:"submission_id"`
		Reason                  string `json:"reason"`
		EstimatedProcessingDays int    `json:"estimated_processing_days"`
	} `json:"data"`
}

func (h *HTTPSubmitter) Submit(ctx context.Context, provider *model.InsuranceProvider, billing *model.BillingSummary) (*model.SubmissionResult, error) {
	if provider.APIEndpoint == "" {
		return nil, fmt.Errorf("provider %d has no API endpoint configured", provider.ProviderID)
	}

	var out claimResponse
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(claimPayload{
			BillingID:   billing.BillingID,
			VisitID:     billing.VisitID,
			PatientID:   billing.PatientID,
			TotalCost:   billing.TotalCost,
			BillingDate: billing.BillingDate.Format(time.RFC3339),
		}).
		SetResult(&out).
		Post(provider.APIEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to submit claim to %s: %w", provider.ProviderName, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("provider %s returned status %d", provider.ProviderName, resp.StatusCode())
	}

	return &model.SubmissionResult{
		SubmissionID:            out.Data.SubmissionID,
		Accepted:                out.Success,
		Message:                 out.Message,
		Reason:                  out.Data.Reason,
		EstimatedProcessingDays: out.Data.EstimatedProcessingDays,
	}, nil
}
