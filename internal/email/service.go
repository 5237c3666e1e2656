package email

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/upmhealth/patient-records-api/internal/config"
	"github.com/upmhealth/patient-records-api/internal/model"
)

// Service sends operational notifications over SMTP. All sends are
// best-effort; a mail failure never fails the triggering operation.
type Service struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

func NewService(cfg config.SMTPConfig) *Service {
	s := &Service{cfg: cfg}
	if cfg.Enabled {
		s.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return s
}

// SendBillingOutcome notifies the billing office of an insurance
// submission result.
func (s *Service) SendBillingOutcome(to string, billing *model.BillingSummary, result *model.SubmissionResult) {
	if s.dialer == nil || to == "" {
		return
	}

	outcome := "denied"
	if result.Accepted {
		outcome = "submitted"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Billing #%d %s", billing.BillingID, outcome))
	m.SetBody("text/plain", fmt.Sprintf(
		"Billing #%d for visit #%d ($%.2f) was %s.\n\nProvider response: %s\nSubmission ID: %s\n",
		billing.BillingID, billing.VisitID, billing.TotalCost, outcome, result.Message, result.SubmissionID,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		log.Warn().Err(err).Int64("billing_id", billing.BillingID).Msg("failed to send billing outcome email")
	}
}
