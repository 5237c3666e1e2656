package vitalsign

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"

	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/repository"
	"github.com/upmhealth/patient-records-api/internal/vitals"
)

// RecordResult reports a batch recording: the persisted measurements and
// the per-item messages for those that failed validation.
type RecordResult struct {
	Recorded []*model.VitalSign `json:"recorded"`
	Rejected []string           `json:"rejected,omitempty"`
	VisitID  int64              `json:"visit_id"`
}

type Service struct {
	persons repository.PersonRepository
	records repository.RecordRepository
	vitals  repository.VitalSignRepository
}

func NewService(
	persons repository.PersonRepository,
	records repository.RecordRepository,
	vitalRepo repository.VitalSignRepository,
) *Service {
	return &Service{persons: persons, records: records, vitals: vitalRepo}
}

// Record validates and persists a batch of measurements for a patient.
// Invalid measurements are rejected item by item; the valid remainder is
// stored in one transaction. A batch with no valid measurement fails
// outright. When no visit is given, a new one is opened for the
// recording.
func (s *Service) Record(ctx context.Context, patientID, nurseID int64, req *model.RecordVitalsRequest) (*RecordResult, error) {
	if _, err := s.persons.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}

	valid, rejected := vitals.ValidateBatch(req.VitalSigns)
	if len(valid) == 0 {
		return nil, apperrors.Validation("no valid vital signs in request: " + strings.Join(rejected, "; "))
	}

	visitID, err := s.resolveVisit(ctx, patientID, nurseID, req.VisitID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	signs := make([]*model.VitalSign, 0, len(valid))
	for _, in := range valid {
		signs = append(signs, &model.VitalSign{
			VisitID:    visitID,
			Type:       in.Type,
			Value:      in.Value,
			Unit:       in.Unit,
			Timestamp:  now,
			RecordedBy: nurseID,
		})
	}
	if err := s.vitals.CreateBatch(ctx, signs); err != nil {
		return nil, err
	}

	if len(rejected) > 0 {
		log.Warn().
			Int64("patient_id", patientID).
			Int("rejected", len(rejected)).
			Msg("some vital signs failed validation")
	}

	return &RecordResult{Recorded: signs, Rejected: rejected, VisitID: visitID}, nil
}

// ListByVisit returns the measurements for a visit the patient owns.
func (s *Service) ListByVisit(ctx context.Context, patientID, visitID int64) ([]*model.VitalSign, error) {
	visit, err := s.records.GetVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if visit.PatientID != patientID {
		return nil, apperrors.Forbidden("access denied: visit does not belong to this patient")
	}
	return s.vitals.ListByVisit(ctx, visitID)
}

// resolveVisit returns the target visit, verifying ownership for an
// explicit visit ID and opening a new visit on the patient's active
// record otherwise.
func (s *Service) resolveVisit(ctx context.Context, patientID, nurseID, visitID int64) (int64, error) {
	if visitID != 0 {
		visit, err := s.records.GetVisit(ctx, visitID)
		if err != nil {
			return 0, err
		}
		if visit.PatientID != patientID {
			return 0, apperrors.BadRequest("visit does not belong to this patient", nil)
		}
		return visitID, nil
	}

	record, err := s.records.GetActiveByPatient(ctx, patientID)
	if err != nil {
		return 0, err
	}

	visit := &model.Visit{
		PatientRecordID: record.RecordID,
		VisitDate:       time.Now(),
		Reason:          "Vital signs recording",
		PhysicianID:     record.PrimaryPhysicianID,
		Status:          model.VisitStatusInProgress,
	}
	newID, err := s.records.CreateVisit(ctx, visit)
	if err != nil {
		return 0, err
	}
	log.Info().
		Int64("visit_id", newID).
		Int64("patient_id", patientID).
		Int64("nurse_id", nurseID).
		Msg("opened visit for vital signs recording")
	return newID, nil
}
