package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/upmhealth/patient-records-api/pkg/errors"
	"github.com/upmhealth/patient-records-api/pkg/metrics"

	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/repository"
)

const statsCacheKey = "audit:stats"

// Resolver maps a username to a known identity. Unknown usernames are
// skipped by the audit writer, not recorded.
type Resolver interface {
	Resolve(username string) (*model.Identity, bool)
}

type Service struct {
	audits   repository.AuditRepository
	persons  repository.PersonRepository
	resolver Resolver
	redis    *redis.Client
	statsTTL time.Duration
	metrics  *metrics.Metrics
}

func NewService(
	audits repository.AuditRepository,
	persons repository.PersonRepository,
	resolver Resolver,
	redisClient *redis.Client,
	statsTTL time.Duration,
	m *metrics.Metrics,
) *Service {
	return &Service{
		audits:   audits,
		persons:  persons,
		resolver: resolver,
		redis:    redisClient,
		statsTTL: statsTTL,
		metrics:  m,
	}
}

// RecordLogin appends one audit entry for a login attempt. Usernames that
// do not resolve to a known account are skipped with a warning so that
// probing with invented names cannot grow the audit table unboundedly.
func (s *Service) RecordLogin(ctx context.Context, username string, success bool, ipAddress string) {
	identity, ok := s.resolver.Resolve(username)
	if !ok {
		log.Warn().Str("username", username).Msg("skipping audit entry for unknown username")
		if s.metrics != nil {
			s.metrics.AuditEntriesSkipped.Inc()
		}
		return
	}

	action := model.AuditActionLoginFailed
	if success {
		action = model.AuditActionLogin
	}

	entry := &model.AuditLog{
		Timestamp:  time.Now(),
		UserID:     identity.PersonID,
		UserRole:   identity.Role,
		ActionType: action,
		IPAddress:  ipAddress,
	}
	if _, err := s.audits.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("username", username).Msg("failed to write audit entry")
		return
	}
	if s.metrics != nil {
		s.metrics.AuditEntriesWritten.Inc()
	}

	if success && identity.Role == model.RoleAdmin {
		if err := s.persons.TouchAdminLogin(ctx, identity.PersonID, entry.Timestamp); err != nil {
			log.Warn().Err(err).Int64("person_id", identity.PersonID).Msg("failed to update admin last login")
		}
	}
}

// List returns a filtered page of audit entries, newest first. Limits
// beyond the cap are clamped.
func (s *Service) List(ctx context.Context, filter *model.AuditFilter) (*model.AuditPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > model.AuditListMaxLimit {
		filter.Limit = model.AuditListMaxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	logs, err := s.audits.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.audits.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &model.AuditPage{
		Logs:       logs,
		Pagination: model.NewPageInfo(filter.Offset, filter.Limit, total),
	}, nil
}

// Recent returns the newest entries for the dashboard, capped at 50.
func (s *Service) Recent(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > model.AuditRecentMaxLimit {
		limit = model.AuditRecentMaxLimit
	}
	return s.audits.Recent(ctx, limit)
}

// Stats aggregates login activity, served from redis for a short TTL
// when a client is configured.
func (s *Service) Stats(ctx context.Context) (*model.AuditStats, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, statsCacheKey).Bytes(); err == nil {
			var stats model.AuditStats
			if err := json.Unmarshal(cached, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.audits.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.redis.Set(ctx, statsCacheKey, payload, s.statsTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("failed to cache audit stats")
			}
		}
	}
	return stats, nil
}

// ExportFormat selects the serialization for Export.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
	FormatXLSX ExportFormat = "xlsx"
)

// Export serializes up to 10000 filtered entries for offline review.
// Only full-access administrators may export.
func (s *Service) Export(ctx context.Context, adminID int64, filter *model.AuditFilter, format ExportFormat) ([]byte, string, error) {
	if err := s.requireFullAccess(ctx, adminID); err != nil {
		return nil, "", err
	}

	filter.Limit = model.AuditExportMaxRows
	filter.Offset = 0
	logs, err := s.audits.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	switch format {
	case FormatCSV:
		data, err := exportCSV(logs)
		return data, "text/csv", err
	case FormatJSON:
		data, err := json.MarshalIndent(logs, "", "  ")
		return data, "application/json", err
	case FormatXLSX:
		data, err := exportXLSX(logs)
		return data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	default:
		return nil, "", apperrors.BadRequest(fmt.Sprintf("unsupported export format %q", format), nil)
	}
}

// Delete removes a single audit entry. Restricted to full-access
// administrators.
func (s *Service) Delete(ctx context.Context, adminID, logID int64) error {
	if err := s.requireFullAccess(ctx, adminID); err != nil {
		return err
	}
	deleted, err := s.audits.Delete(ctx, logID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NotFoundf("audit log %d not found", logID)
	}
	log.Info().Int64("log_id", logID).Int64("admin_id", adminID).Msg("audit entry deleted")
	return nil
}

// Cleanup removes entries older than the retention window. Called from
// the background retention loop.
func (s *Service) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	removed, err := s.audits.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("audit retention cleanup completed")
	}
	return removed, nil
}

func (s *Service) requireFullAccess(ctx context.Context, adminID int64) error {
	admin, err := s.persons.GetAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if !admin.HasAccess(model.AccessFull) {
		return apperrors.Forbidden("full administrator access required")
	}
	return nil
}

var exportHeader = []string{"log_id", "timestamp", "user_id", "user_name", "user_role", "action_type", "ip_address"}

func exportCSV(logs []*model.AuditLog) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, l := range logs {
		row := []string{
			strconv.FormatInt(l.LogID, 10),
			l.Timestamp.Format(time.RFC3339),
			strconv.FormatInt(l.UserID, 10),
			l.UserName,
			string(l.UserRole),
			l.ActionType,
			l.IPAddress,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportXLSX(logs []*model.AuditLog) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Audit Logs"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	for i, l := range logs {
		values := []interface{}{
			l.LogID,
			l.Timestamp.Format(time.RFC3339),
			l.UserID,
			l.UserName,
			string(l.UserRole),
			l.ActionType,
			l.IPAddress,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
