package patient

import (
	"context"
	"strings"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"

	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/repository"
)

type Service struct {
	persons       repository.PersonRepository
	records       repository.RecordRepository
	vitals        repository.VitalSignRepository
	prescriptions repository.PrescriptionRepository
}

func NewService(
	persons repository.PersonRepository,
	records repository.RecordRepository,
	vitals repository.VitalSignRepository,
	prescriptions repository.PrescriptionRepository,
) *Service {
	return &Service{
		persons:       persons,
		records:       records,
		vitals:        vitals,
		prescriptions: prescriptions,
	}
}

// Search finds patients by name or insurance ID. The projection is
// limited to what the search screen shows.
func (s *Service) Search(ctx context.Context, query string) ([]*model.PatientSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.Validation("search query is required")
	}
	return s.persons.SearchPatients(ctx, query)
}

// MedicalRecord assembles the patient's active clinical folder: the
// record, its visits, and each visit's measurements and prescriptions.
func (s *Service) MedicalRecord(ctx context.Context, patientID int64) (*model.MedicalRecordView, error) {
	p, err := s.persons.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	record, err := s.records.GetActiveByPatient(ctx, patientID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			// A patient without visits yet has no record.
			return &model.MedicalRecordView{Patient: p, Visits: []*model.VisitDetail{}}, nil
		}
		return nil, err
	}

	visits, err := s.records.ListVisitsByRecord(ctx, record.RecordID)
	if err != nil {
		return nil, err
	}

	details := make([]*model.VisitDetail, 0, len(visits))
	for _, v := range visits {
		detail := &model.VisitDetail{Visit: *v}
		if detail.VitalSigns, err = s.vitals.ListByVisit(ctx, v.VisitID); err != nil {
			return nil, err
		}
		if detail.Prescriptions, err = s.prescriptions.ListByVisit(ctx, v.VisitID); err != nil {
			return nil, err
		}
		details = append(details, detail)
	}

	return &model.MedicalRecordView{
		Patient: p,
		Record:  record,
		Visits:  details,
	}, nil
}

// Prescribe adds a prescription to one of the physician's own visits.
func (s *Service) Prescribe(ctx context.Context, physicianID int64, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	v, err := s.records.GetVisit(ctx, req.VisitID)
	if err != nil {
		return nil, err
	}
	if v.PhysicianID != physicianID {
		return nil, apperrors.Forbidden("access denied: visit does not belong to this physician")
	}

	p := &model.Prescription{
		VisitID:        req.VisitID,
		MedicationName: req.MedicationName,
		Dosage:         req.Dosage,
		Frequency:      req.Frequency,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Instructions:   req.Instructions,
	}
	id, err := s.prescriptions.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	p.PrescriptionID = id
	return p, nil
}

// Visit returns one visit with its measurements and prescriptions,
// restricted to the owning patient.
func (s *Service) Visit(ctx context.Context, patientID, visitID int64) (*model.VisitDetail, error) {
	v, err := s.records.GetVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if v.PatientID != patientID {
		return nil, apperrors.Forbidden("access denied: visit does not belong to this patient")
	}

	detail := &model.VisitDetail{Visit: *v}
	if detail.VitalSigns, err = s.vitals.ListByVisit(ctx, visitID); err != nil {
		return nil, err
	}
	if detail.Prescriptions, err = s.prescriptions.ListByVisit(ctx, visitID); err != nil {
		return nil, err
	}
	return detail, nil
}
