package audit

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"

	"github.com/upmhealth/patient-records-api/internal/model"
)

type fakeAuditRepo struct {
	logs []*model.AuditLog
}

func (f *fakeAuditRepo) Create(ctx context.Context, entry *model.AuditLog) (int64, error) {
	stored := *entry
	stored.LogID = int64(len(f.logs) + 1)
	f.logs = append(f.logs, &stored)
	return stored.LogID, nil
}

func (f *fakeAuditRepo) filtered(filter *model.AuditFilter) []*model.AuditLog {
	var out []*model.AuditLog
	for _, l := range f.logs {
		if filter.UserRole != "" && l.UserRole != filter.UserRole {
			continue
		}
		if filter.ActionType != "" && l.ActionType != filter.ActionType {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (f *fakeAuditRepo) List(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, error) {
	out := f.filtered(filter)
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeAuditRepo) Count(ctx context.Context, filter *model.AuditFilter) (int64, error) {
	return int64(len(f.filtered(filter))), nil
}

func (f *fakeAuditRepo) Recent(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	if limit > len(f.logs) {
		limit = len(f.logs)
	}
	return f.logs[:limit], nil
}

func (f *fakeAuditRepo) Stats(ctx context.Context) (*model.AuditStats, error) {
	return &model.AuditStats{TotalLogs: int64(len(f.logs))}, nil
}

func (f *fakeAuditRepo) Delete(ctx context.Context, logID int64) (bool, error) {
	for i, l := range f.logs {
		if l.LogID == logID {
			f.logs = append(f.logs[:i], f.logs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAuditRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var kept []*model.AuditLog
	var removed int64
	for _, l := range f.logs {
		if l.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	f.logs = kept
	return removed, nil
}

type fakePersonRepo struct {
	admins  map[int64]*model.SystemAdministrator
	touched map[int64]time.Time
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
	return nil, apperrors.NotFound("patient", nil)
}

func (f *fakePersonRepo) GetNurse(ctx context.Context, personID int64) (*model.Nurse, error) {
	return nil, apperrors.NotFound("nurse", nil)
}

func (f *fakePersonRepo) GetAdmin(ctx context.Context, personID int64) (*model.SystemAdministrator, error) {
	a, ok := f.admins[personID]
	if !ok {
		return nil, apperrors.NotFound("administrator", nil)
	}
	return a, nil
}

func (f *fakePersonRepo) ListByRole(ctx context.Context, role model.Role) ([]*model.Person, error) {
	return nil, nil
}

func (f *fakePersonRepo) SearchPatients(ctx context.Context, query string) ([]*model.PatientSummary, error) {
	return nil, nil
}

func (f *fakePersonRepo) TouchAdminLogin(ctx context.Context, personID int64, at time.Time) error {
	if f.touched == nil {
		f.touched = make(map[int64]time.Time)
	}
	f.touched[personID] = at
	return nil
}

type fakeResolver struct {
	known map[string]*model.Identity
}

func (f *fakeResolver) Resolve(username string) (*model.Identity, bool) {
	id, ok := f.known[username]
	return id, ok
}

func testAdmins() *fakePersonRepo {
	return &fakePersonRepo{admins: map[int64]*model.SystemAdministrator{
		4: {AccessLevel: model.AccessFull},
		5: {AccessLevel: model.AccessReadonly},
	}}
}

func testResolver() *fakeResolver {
	return &fakeResolver{known: map[string]*model.Identity{
		"dr.smith": {PersonID: 1, Username: "dr.smith", Role: model.RolePhysician},
		"admin":    {PersonID: 4, Username: "admin", Role: model.RoleAdmin},
	}}
}

func newTestService(repo *fakeAuditRepo, persons *fakePersonRepo) *Service {
	return NewService(repo, persons, testResolver(), nil, time.Second, nil)
}

func TestRecordLogin(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := newTestService(repo, testAdmins())

	svc.RecordLogin(context.Background(), "dr.smith", true, "10.0.0.1")
	svc.RecordLogin(context.Background(), "dr.smith", false, "10.0.0.1")

	require.Len(t, repo.logs, 2)
	assert.Equal(t, model.AuditActionLogin, repo.logs[0].ActionType)
	assert.Equal(t, model.AuditActionLoginFailed, repo.logs[1].ActionType)
	assert.Equal(t, int64(1), repo.logs[0].UserID)
	assert.Equal(t, "10.0.0.1", repo.logs[0].IPAddress)
}

func TestRecordLoginUnknownUserSkipped(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := newTestService(repo, testAdmins())

	svc.RecordLogin(context.Background(), "nobody", false, "10.0.0.1")
	assert.Empty(t, repo.logs)
}

func TestRecordLoginTouchesAdmin(t *testing.T) {
	repo := &fakeAuditRepo{}
	persons := testAdmins()
	svc := newTestService(repo, persons)

	svc.RecordLogin(context.Background(), "admin", true, "10.0.0.1")
	assert.Contains(t, persons.touched, int64(4))
}

func TestListPagination(t *testing.T) {
	repo := &fakeAuditRepo{}
	for i := 0; i < 60; i++ {
		repo.logs = append(repo.logs, &model.AuditLog{
			LogID:      int64(i + 1),
			UserID:     1,
			UserRole:   model.RolePhysician,
			ActionType: model.AuditActionLogin,
		})
	}
	svc := newTestService(repo, testAdmins())

	page, err := svc.List(context.Background(), &model.AuditFilter{Limit: 25, Offset: 25})
	require.NoError(t, err)
	require.Len(t, page.Logs, 25)
	assert.Equal(t, int64(26), page.Logs[0].LogID)
	assert.Equal(t, int64(50), page.Logs[24].LogID)
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, int64(60), page.Pagination.Total)
	assert.True(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)
}

func TestListPaginationUnalignedOffset(t *testing.T) {
	repo := &fakeAuditRepo{}
	for i := 0; i < 60; i++ {
		repo.logs = append(repo.logs, &model.AuditLog{LogID: int64(i + 1)})
	}
	svc := newTestService(repo, testAdmins())

	// Offset inside the first window still reports a previous page.
	page, err := svc.List(context.Background(), &model.AuditFilter{Limit: 25, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.True(t, page.Pagination.HasPrev)
	assert.True(t, page.Pagination.HasNext)

	// Offset past the last row has nothing further.
	page, err = svc.List(context.Background(), &model.AuditFilter{Limit: 25, Offset: 55})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Pagination.Page)
	assert.True(t, page.Pagination.HasPrev)
	assert.False(t, page.Pagination.HasNext)
}

func TestListClampsLimit(t *testing.T) {
	repo := &fakeAuditRepo{}
	for i := 0; i < 150; i++ {
		repo.logs = append(repo.logs, &model.AuditLog{LogID: int64(i + 1)})
	}
	svc := newTestService(repo, testAdmins())

	page, err := svc.List(context.Background(), &model.AuditFilter{Limit: 500})
	require.NoError(t, err)
	assert.Len(t, page.Logs, model.AuditListMaxLimit)
}

func TestRecentClampsLimit(t *testing.T) {
	repo := &fakeAuditRepo{}
	for i := 0; i < 80; i++ {
		repo.logs = append(repo.logs, &model.AuditLog{LogID: int64(i + 1)})
	}
	svc := newTestService(repo, testAdmins())

	logs, err := svc.Recent(context.Background(), 500)
	require.NoError(t, err)
	assert.Len(t, logs, model.AuditRecentMaxLimit)
}

func TestExportRequiresFullAccess(t *testing.T) {
	svc := newTestService(&fakeAuditRepo{}, testAdmins())

	_, _, err := svc.Export(context.Background(), 5, &model.AuditFilter{}, FormatCSV)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestExportCSV(t *testing.T) {
	repo := &fakeAuditRepo{logs: []*model.AuditLog{
		{LogID: 1, UserID: 1, UserName: "Dr. Sarah Smith", UserRole: model.RolePhysician,
			ActionType: model.AuditActionLogin, IPAddress: "10.0.0.1", Timestamp: time.Now()},
	}}
	svc := newTestService(repo, testAdmins())

	data, contentType, err := svc.Export(context.Background(), 4, &model.AuditFilter{}, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "action_type")
	assert.Contains(t, lines[1], "Dr. Sarah Smith")
}

func TestExportXLSX(t *testing.T) {
	repo := &fakeAuditRepo{logs: []*model.AuditLog{
		{LogID: 1, UserID: 1, UserRole: model.RoleAdmin, ActionType: model.AuditActionLogin, Timestamp: time.Now()},
	}}
	svc := newTestService(repo, testAdmins())

	data, contentType, err := svc.Export(context.Background(), 4, &model.AuditFilter{}, FormatXLSX)
	require.NoError(t, err)
	assert.Contains(t, contentType, "spreadsheetml")
	assert.NotEmpty(t, data)
}

func TestExportUnknownFormat(t *testing.T) {
	svc := newTestService(&fakeAuditRepo{}, testAdmins())
	_, _, err := svc.Export(context.Background(), 4, &model.AuditFilter{}, "pdf")
	require.Error(t, err)
}

func TestDeleteRequiresFullAccess(t *testing.T) {
	repo := &fakeAuditRepo{logs: []*model.AuditLog{{LogID: 1}}}
	svc := newTestService(repo, testAdmins())

	err := svc.Delete(context.Background(), 5, 1)
	assert.True(t, apperrors.IsForbidden(err))
	require.Len(t, repo.logs, 1)

	require.NoError(t, svc.Delete(context.Background(), 4, 1))
	assert.Empty(t, repo.logs)
}

func TestDeleteMissing(t *testing.T) {
	svc := newTestService(&fakeAuditRepo{}, testAdmins())
	err := svc.Delete(context.Background(), 4, 99)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCleanup(t *testing.T) {
	now := time.Now()
	repo := &fakeAuditRepo{logs: []*model.AuditLog{
		{LogID: 1, Timestamp: now.Add(-48 * time.Hour)},
		{LogID: 2, Timestamp: now},
	}}
	svc := newTestService(repo, testAdmins())

	removed, err := svc.Cleanup(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	require.Len(t, repo.logs, 1)
	assert.Equal(t, int64(2), repo.logs[0].LogID)
}

func TestExportCapsRows(t *testing.T) {
	repo := &fakeAuditRepo{}
	for i := 0; i < model.AuditExportMaxRows+500; i++ {
		repo.logs = append(repo.logs, &model.AuditLog{
			LogID: int64(i + 1), Timestamp: time.Now(),
		})
	}
	svc := newTestService(repo, testAdmins())

	data, _, err := svc.Export(context.Background(), 4, &model.AuditFilter{}, FormatCSV)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, model.AuditExportMaxRows+1, len(lines), fmt.Sprintf("header plus %d rows", model.AuditExportMaxRows))
}
