package person

import (
	"context"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"

	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/repository"
)

type Service struct {
	persons repository.PersonRepository
}

func NewService(persons repository.PersonRepository) *Service {
	return &Service{persons: persons}
}

// Create validates and persists a person plus its role detail row.
func (s *Service) Create(ctx context.Context, req *model.CreatePersonRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, apperrors.Validation(err.Error())
	}
	return s.persons.Create(ctx, req)
}

// Get returns the base person row.
func (s *Service) Get(ctx context.Context, personID int64) (*model.Person, error) {
	return s.persons.Get(ctx, personID)
}

// GetDetail returns the person with its role-specific record.
func (s *Service) GetDetail(ctx context.Context, personID int64) (*model.Person, *model.RoleDetail, error) {
	p, err := s.persons.Get(ctx, personID)
	if err != nil {
		return nil, nil, err
	}

	detail := &model.RoleDetail{}
	switch p.Role {
	case model.RolePhysician:
		detail.Physician, err = s.persons.GetPhysician(ctx, personID)
	case model.RolePatient:
		detail.Patient, err = s.persons.GetPatient(ctx, personID)
	case model.RoleNurse:
		detail.Nurse, err = s.persons.GetNurse(ctx, personID)
	case model.RoleAdmin:
		detail.Admin, err = s.persons.GetAdmin(ctx, personID)
	}
	if err != nil {
		return nil, nil, err
	}
	return p, detail, nil
}

// ListByRole lists all persons carrying the given role.
func (s *Service) ListByRole(ctx context.Context, role model.Role) ([]*model.Person, error) {
	if !role.Valid() {
		return nil, apperrors.BadRequest("invalid role", nil)
	}
	return s.persons.ListByRole(ctx, role)
}
