package vitalsign

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"

	"github.com/upmhealth/patient-records-api/internal/model"
)

type fakePersonRepo struct {
	patients map[int64]*model.Patient
}

func (f *fakePersonRepo) Create(ctx context.Context, req *model.CreatePersonRequest) (int64, error) {
	return 0, nil
}

func (f *fakePersonRepo) Get(ctx context.Context, personID int64) (*model.Person, error) {
	return nil, apperrors.NotFound("person", nil)
}

func (f *fakePersonRepo) GetPhysician(ctx context.Context, personID int64) (*model.Physician, error) {
	return nil, apperrors.NotFound("physician", nil)
}

func (f *fakePersonRepo) GetPatient(ctx context.Context, personID int64) (*model.Patient, error) {
	p, ok := f.patients[personID]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	return p, nil
}

func (f *fakePersonRepo) GetNurse(ctx context.Context, personID int64) (*model.Nurse, error) {
	return nil, apperrors.NotFound("nurse", nil)
}

func (f *fakePersonRepo) GetAdmin(ctx context.Context, personID int64) (*model.SystemAdministrator, error) {
	return nil, apperrors.NotFound("administrator", nil)
}

func (f *fakePersonRepo) ListByRole(ctx context.Context, role model.Role) ([]*model.Person, error) {
	return nil, nil
}

func (f *fakePersonRepo) SearchPatients(ctx context.Context, query string) ([]*model.PatientSummary, error) {
	return nil, nil
}

func (f *fakePersonRepo) TouchAdminLogin(ctx context.Context, personID int64, at time.Time) error {
	return nil
}

type fakeRecordRepo struct {
	records     map[int64]*model.PatientRecord
	visits      map[int64]*model.Visit
	nextVisitID int64
	created     []*model.Visit
}

func (f *fakeRecordRepo) GetActiveByPatient(ctx context.Context, patientID int64) (*model.PatientRecord, error) {
	r, ok := f.records[patientID]
	if !ok {
		return nil, apperrors.NotFound("patient record", nil)
	}
	return r, nil
}

func (f *fakeRecordRepo) ListByPatient(ctx context.Context, patientID int64) ([]*model.PatientRecord, error) {
	return nil, nil
}

func (f *fakeRecordRepo) CreateVisit(ctx context.Context, visit *model.Visit) (int64, error) {
	f.nextVisitID++
	stored := *visit
	stored.VisitID = f.nextVisitID
	f.created = append(f.created, &stored)
	return f.nextVisitID, nil
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

type fakeVitalRepo struct {
	stored []*model.VitalSign
}

func (f *fakeVitalRepo) CreateBatch(ctx context.Context, signs []*model.VitalSign) error {
	f.stored = append(f.stored, signs...)
	return nil
}

func (f *fakeVitalRepo) ListByVisit(ctx context.Context, visitID int64) ([]*model.VitalSign, error) {
	var out []*model.VitalSign
	for _, s := range f.stored {
		if s.VisitID == visitID {
			out = append(out, s)
		}
	}
	return out, nil
}

func testPatient(id int64) *fakePersonRepo {
	return &fakePersonRepo{patients: map[int64]*model.Patient{
		id: {Person: model.Person{PersonID: id, Role: model.RolePatient}},
	}}
}

func TestRecordExistingVisit(t *testing.T) {
	records := &fakeRecordRepo{visits: map[int64]*model.Visit{
		5: {VisitID: 5, PatientID: 2},
	}}
	vitalRepo := &fakeVitalRepo{}
	svc := NewService(testPatient(2), records, vitalRepo)

	result, err := svc.Record(context.Background(), 2, 3, &model.RecordVitalsRequest{
		VisitID: 5,
		VitalSigns: []model.VitalSignInput{
			{Type: model.VitalTemperature, Value: "98.6", Unit: "°F"},
			{Type: model.VitalBloodPressure, Value: "120/80", Unit: "mmHg"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.VisitID)
	require.Len(t, result.Recorded, 2)
	assert.Empty(t, result.Rejected)
	assert.Equal(t, int64(3), result.Recorded[0].RecordedBy)
	assert.Len(t, vitalRepo.stored, 2)
}

func TestRecordPartialRejection(t *testing.T) {
	records := &fakeRecordRepo{visits: map[int64]*model.Visit{
		5: {VisitID: 5, PatientID: 2},
	}}
	vitalRepo := &fakeVitalRepo{}
	svc := NewService(testPatient(2), records, vitalRepo)

	result, err := svc.Record(context.Background(), 2, 3, &model.RecordVitalsRequest{
		VisitID: 5,
		VitalSigns: []model.VitalSignInput{
			{Type: model.VitalHeartRate, Value: "72", Unit: "bpm"},
			{Type: model.VitalHeartRate, Value: "999", Unit: "bpm"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, result.Recorded, 1)
	assert.Len(t, result.Rejected, 1)
	assert.Len(t, vitalRepo.stored, 1)
}

func TestRecordAllInvalid(t *testing.T) {
	svc := NewService(testPatient(2), &fakeRecordRepo{}, &fakeVitalRepo{})

	_, err := svc.Record(context.Background(), 2, 3, &model.RecordVitalsRequest{
		VitalSigns: []model.VitalSignInput{
			{Type: model.VitalTemperature, Value: "200", Unit: "°F"},
		},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
}

func TestRecordVisitOwnershipMismatch(t *testing.T) {
	records := &fakeRecordRepo{visits: map[int64]*model.Visit{
		5: {VisitID: 5, PatientID: 77},
	}}
	svc := NewService(testPatient(2), records, &fakeVitalRepo{})

	_, err := svc.Record(context.Background(), 2, 3, &model.RecordVitalsRequest{
		VisitID: 5,
		VitalSigns: []model.VitalSignInput{
			{Type: model.VitalHeartRate, Value: "72", Unit: "bpm"},
		},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestRecordOpensVisit(t *testing.T) {
	records := &fakeRecordRepo{
		records: map[int64]*model.PatientRecord{
			2: {RecordID: 9, PatientID: 2, PrimaryPhysicianID: 1, Status: model.RecordStatusActive},
		},
		visits: map[int64]*model.Visit{},
	}
	svc := NewService(testPatient(2), records, &fakeVitalRepo{})

	result, err := svc.Record(context.Background(), 2, 3, &model.RecordVitalsRequest{
		VitalSigns: []model.VitalSignInput{
			{Type: model.VitalWeight, Value: "180", Unit: "lbs"},
		},
	})
	require.NoError(t, err)
	require.Len(t, records.created, 1)
	assert.Equal(t, result.VisitID, records.created[0].VisitID)
	assert.Equal(t, "Vital signs recording", records.created[0].Reason)
	assert.Equal(t, int64(9), records.created[0].PatientRecordID)
}

func TestRecordUnknownPatient(t *testing.T) {
	svc := NewService(testPatient(2), &fakeRecordRepo{}, &fakeVitalRepo{})

	_, err := svc.Record(context.Background(), 404, 3, &model.RecordVitalsRequest{
		VitalSigns: []model.VitalSignInput{
			{Type: model.VitalHeartRate, Value: "72", Unit: "bpm"},
		},
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestListByVisitOwnership(t *testing.T) {
	records := &fakeRecordRepo{visits: map[int64]*model.Visit{
		5: {VisitID: 5, PatientID: 2},
	}}
	vitalRepo := &fakeVitalRepo{stored: []*model.VitalSign{{VitalID: 1, VisitID: 5}}}
	svc := NewService(testPatient(2), records, vitalRepo)

	signs, err := svc.ListByVisit(context.Background(), 2, 5)
	require.NoError(t, err)
	assert.Len(t, signs, 1)

	_, err = svc.ListByVisit(context.Background(), 99, 5)
	assert.True(t, apperrors.IsForbidden(err))
}
