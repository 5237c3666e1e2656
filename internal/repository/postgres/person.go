package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"

	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/repository"
)

type personRepository struct {
	BaseRepository
}

func NewPersonRepository(base BaseRepository) repository.PersonRepository {
	return &personRepository{base}
}

// Create inserts the Person row and its role-detail row in one
// transaction. Role is immutable after this point.
func (r *personRepository) Create(ctx context.Context, req *model.CreatePersonRequest) (int64, error) {
	var personID int64

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowContext(ctx, `
            INSERT INTO persons (name, role)
            VALUES ($1, $2)
            RETURNING person_id
        `, req.Name, req.Role).Scan(&personID)
		if err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}

		switch req.Role {
		case model.RolePhysician:
			_, err = tx.ExecContext(ctx, `
                INSERT INTO physicians (person_id, license_number, specialty, department)
                VALUES ($1, $2, $3, $4)
            `, personID, req.LicenseNumber, req.Specialty, req.Department)
		case model.RolePatient:
			contact, merr := json.Marshal(req.ContactInfo)
			if merr != nil {
				return merr
			}
			emergency, merr := json.Marshal(req.EmergencyContact)
			if merr != nil {
				return merr
			}
			_, err = tx.ExecContext(ctx, `
                INSERT INTO patients (person_id, insurance_id, contact_info, date_of_birth, emergency_contact)
                VALUES ($1, $2, $3, $4, $5)
            `, personID, req.InsuranceID, contact, req.DateOfBirth, emergency)
		case model.RoleNurse:
			_, err = tx.ExecContext(ctx, `
                INSERT INTO nurses (person_id, certification, department, shift)
                VALUES ($1, $2, $3, $4)
            `, personID, req.Certification, req.Department, req.Shift)
		case model.RoleAdmin:
			_, err = tx.ExecContext(ctx, `
                INSERT INTO system_administrators (person_id, access_level, assigned_region)
                VALUES ($1, $2, $3)
            `, personID, req.AccessLevel, req.AssignedRegion)
		default:
			return fmt.Errorf("unknown role %q", req.Role)
		}
		if err != nil {
			return fmt.Errorf("failed to insert %s detail: %w", req.Role, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return personID, nil
}

func (r *personRepository) Get(ctx context.Context, personID int64) (*model.Person, error) {
	var p model.Person
	err := r.GetDB().GetContext(ctx, &p, `
        SELECT person_id, name, role, created_at, updated_at
        FROM persons WHERE person_id = $1
    `, personID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("person", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return &p, nil
}

func (r *personRepository) GetPhysician(ctx context.Context, personID int64) (*model.Physician, error) {
	var p model.Physician
	err := r.GetDB().GetContext(ctx, &p, `
        SELECT p.person_id, p.name, p.role, p.created_at, p.updated_at,
               ph.license_number, ph.specialty, ph.department
        FROM physicians ph
        JOIN persons p ON ph.person_id = p.person_id
        WHERE ph.person_id = $1
    `, personID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("physician", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get physician: %w", err)
	}
	return &p, nil
}

type patientRow struct {
	model.Person
	InsuranceID      string          `db:"insurance_id"`
	ContactInfo      json.RawMessage `db:"contact_info"`
	DateOfBirth      time.Time       `db:"date_of_birth"`
	EmergencyContact json.RawMessage `db:"emergency_contact"`
}

func (r *personRepository) GetPatient(ctx context.Context, personID int64) (*model.Patient, error) {
	var row patientRow
	err := r.GetDB().GetContext(ctx, &row, `
        SELECT p.person_id, p.name, p.role, p.created_at, p.updated_at,
               pa.insurance_id, pa.contact_info, pa.date_of_birth, pa.emergency_contact
        FROM patients pa
        JOIN persons p ON pa.person_id = p.person_id
        WHERE pa.person_id = $1
    `, personID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	patient := &model.Patient{
		Person:      row.Person,
		InsuranceID: row.InsuranceID,
		DateOfBirth: row.DateOfBirth,
	}
	if len(row.ContactInfo) > 0 {
		if err := json.Unmarshal(row.ContactInfo, &patient.ContactInfo); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contact info: %w", err)
		}
	}
	if len(row.EmergencyContact) > 0 {
		if err := json.Unmarshal(row.EmergencyContact, &patient.EmergencyContact); err != nil {
			return nil, fmt.Errorf("failed to unmarshal emergency contact: %w", err)
		}
	}
	return patient, nil
}

func (r *personRepository) GetNurse(ctx context.Context, personID int64) (*model.Nurse, error) {
	var n model.Nurse
	err := r.GetDB().GetContext(ctx, &n, `
        SELECT p.person_id, p.name, p.role, p.created_at, p.updated_at,
               n.certification, n.department, n.shift
        FROM nurses n
        JOIN persons p ON n.person_id = p.person_id
        WHERE n.person_id = $1
    `, personID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("nurse", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get nurse: %w", err)
	}
	return &n, nil
}

func (r *personRepository) GetAdmin(ctx context.Context, personID int64) (*model.SystemAdministrator, error) {
	var a model.SystemAdministrator
	err := r.GetDB().GetContext(ctx, &a, `
        SELECT p.person_id, p.name, p.role, p.created_at, p.updated_at,
               sa.access_level, sa.assigned_region, sa.last_login
        FROM system_administrators sa
        JOIN persons p ON sa.person_id = p.person_id
        WHERE sa.person_id = $1
    `, personID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("administrator", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get administrator: %w", err)
	}
	return &a, nil
}

func (r *personRepository) ListByRole(ctx context.Context, role model.Role) ([]*model.Person, error) {
	var persons []*model.Person
	err := r.GetDB().SelectContext(ctx, &persons, `
        SELECT person_id, name, role, created_at, updated_at
        FROM persons WHERE role = $1 ORDER BY name
    `, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons by role: %w", err)
	}
	return persons, nil
}

func (r *personRepository) SearchPatients(ctx context.Context, query string) ([]*model.PatientSummary, error) {
	var patients []*model.PatientSummary
	err := r.GetDB().SelectContext(ctx, &patients, `
        SELECT p.person_id, p.name, pa.insurance_id, pa.date_of_birth
        FROM patients pa
        JOIN persons p ON pa.person_id = p.person_id
        WHERE p.name ILIKE '%' || $1 || '%' OR pa.insurance_id ILIKE '%' || $1 || '%'
        ORDER BY p.name
    `, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}
	return patients, nil
}

func (r *personRepository) TouchAdminLogin(ctx context.Context, personID int64, at time.Time) error {
	_, err := r.GetDB().ExecContext(ctx, `
        UPDATE system_administrators SET last_login = $2 WHERE person_id = $1
    `, personID, at)
	if err != nil {
		return fmt.Errorf("failed to update admin last login: %w", err)
	}
	return nil
}
