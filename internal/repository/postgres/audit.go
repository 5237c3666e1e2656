package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/upmhealth/patient-records-api/internal/model"
	"github.com/upmhealth/patient-records-api/internal/repository"
)

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(base BaseRepository) repository.AuditRepository {
	return &auditRepository{base}
}

// Create appends one row. Audit rows are never updated.
func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) (int64, error) {
	var id int64
	start := time.Now()
	err := r.GetDB().QueryRowContext(ctx, `
        INSERT INTO audit_logs (timestamp, user_id, user_role, action_type, ip_address)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING log_id
    `, log.Timestamp, log.UserID, log.UserRole, log.ActionType, log.IPAddress).Scan(&id)
	r.Track("audit_create", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to create audit log: %w", err)
	}
	return id, nil
}

func buildAuditWhere(filter *model.AuditFilter) (string, []interface{}) {
	where := " WHERE 1=1"
	var args []interface{}

	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where += fmt.Sprintf(" AND al.timestamp >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where += fmt.Sprintf(" AND al.timestamp <= $%d", len(args))
	}
	if filter.UserRole != "" {
		args = append(args, filter.UserRole)
		where += fmt.Sprintf(" AND al.user_role = $%d", len(args))
	}
	if filter.ActionType != "" {
		args = append(args, filter.ActionType)
		where += fmt.Sprintf(" AND al.action_type = $%d", len(args))
	}
	return where, args
}

func (r *auditRepository) List(ctx context.Context, filter *model.AuditFilter) ([]*model.AuditLog, error) {
	where, args := buildAuditWhere(filter)

	query := `
        SELECT al.log_id, al.timestamp, al.user_id, al.user_role, al.action_type,
               al.ip_address, al.created_at, COALESCE(p.name, '') AS user_name
        FROM audit_logs al
        LEFT JOIN persons p ON al.user_id = p.person_id
    ` + where + " ORDER BY al.timestamp DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var logs []*model.AuditLog
	if err := r.GetDB().SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

func (r *auditRepository) Count(ctx context.Context, filter *model.AuditFilter) (int64, error) {
	where, args := buildAuditWhere(filter)

	var total int64
	query := "SELECT COUNT(*) FROM audit_logs al" + where
	if err := r.GetDB().GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count audit logs: %w", err)
	}
	return total, nil
}

func (r *auditRepository) Recent(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	var logs []*model.AuditLog
	err := r.GetDB().SelectContext(ctx, &logs, `
        SELECT al.log_id, al.timestamp, al.user_id, al.user_role, al.action_type,
               al.ip_address, al.created_at, COALESCE(p.name, '') AS user_name
        FROM audit_logs al
        LEFT JOIN persons p ON al.user_id = p.person_id
        ORDER BY al.timestamp DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent audit logs: %w", err)
	}
	return logs, nil
}

func (r *auditRepository) Stats(ctx context.Context) (*model.AuditStats, error) {
	stats := &model.AuditStats{
		ActivityByRole: make(map[string]int),
		ActivityByHour: make(map[int]int),
	}

	err := r.GetDB().QueryRowContext(ctx, `
        SELECT COUNT(*),
               COUNT(CASE WHEN action_type = 'LOGIN' THEN 1 END),
               COUNT(CASE WHEN action_type = 'LOGIN_FAILED' THEN 1 END),
               COUNT(DISTINCT user_id)
        FROM audit_logs
        WHERE action_type IN ('LOGIN', 'LOGIN_FAILED')
    `).Scan(&stats.TotalLogs, &stats.SuccessfulLogins, &stats.FailedLogins, &stats.UniqueUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to get login stats: %w", err)
	}
	stats.LoginAttempts = stats.SuccessfulLogins + stats.FailedLogins

	rows, err := r.GetDB().QueryContext(ctx, `
        SELECT user_role, COUNT(*) FROM audit_logs GROUP BY user_role
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to get role activity: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var role string
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		stats.ActivityByRole[role] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.GetDB().QueryContext(ctx, `
        SELECT EXTRACT(HOUR FROM timestamp)::int AS hour, COUNT(*)
        FROM audit_logs
        GROUP BY hour
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to get hourly activity: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var hour, count int
		if err := rows.Scan(&hour, &count); err != nil {
			return nil, err
		}
		stats.ActivityByHour[hour] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.GetDB().GetContext(ctx, &stats.Last24hActivity, `
        SELECT COUNT(*) FROM audit_logs WHERE timestamp >= NOW() - INTERVAL '24 hours'
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent activity count: %w", err)
	}

	return stats, nil
}

func (r *auditRepository) Delete(ctx context.Context, logID int64) (bool, error) {
	res, err := r.GetDB().ExecContext(ctx, `DELETE FROM audit_logs WHERE log_id = $1`, logID)
	if err != nil {
		return false, fmt.Errorf("failed to delete audit log: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *auditRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.GetDB().ExecContext(ctx, `DELETE FROM audit_logs WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}
	return res.RowsAffected()
}
