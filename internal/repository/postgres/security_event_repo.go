package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/CalumRakk/resume-project/internal/domain"
	"github.com/CalumRakk/resume-project/pkg/security"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SecurityEventRepository persists security events and reads them back for
// the admin view.
type SecurityEventRepository struct {
	db *pgxpool.Pool
}

func NewSecurityEventRepository(db *pgxpool.Pool) *SecurityEventRepository {
	return &SecurityEventRepository{db: db}
}

// PersistEvent matches security.PersistFunc.
func (r *SecurityEventRepository) PersistEvent(ctx context.Context, event security.SecurityEvent) error {
	query := `
		INSERT INTO security_events (
			event_type, service, environment, level,
			subject_type, subject_value, ip_address, user_agent,
			request_id, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var details any
	if len(event.Details) > 0 {
		b, err := json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("marshal security event details: %w", err)
		}
		details = string(b)
	}

	var ipAddr any
	if event.IP != "" {
		ipAddr = event.IP
	}

	_, err := r.db.Exec(ctx, query,
		string(event.Event),
		event.Service,
		event.Environment,
		event.Level,
		event.SubjectType,
		event.SubjectValue,
		ipAddr,
		event.UserAgent,
		event.RequestID,
		details,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to persist security event: %w", err)
	}
	return nil
}

func (r *SecurityEventRepository) GetStats(ctx context.Context) (*domain.SecurityStats, error) {
	stats := &domain.SecurityStats{
		EventsByType: make(map[string]int64),
		TopIPs:       []domain.IPSummary{},
	}

	rows, err := r.db.Query(ctx, `
		SELECT event_type, COUNT(*)
		FROM security_events
		WHERE created_at > NOW() - INTERVAL '24 hours'
		GROUP BY event_type
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query event counts: %w", err)
	}
	for rows.Next() {
		var eventType string
		var count int64
		if err := rows.Scan(&eventType, &count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.EventsByType[eventType] = count
		stats.TotalEvents += count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.FailedLogins24h = stats.EventsByType[string(security.EventLoginFailed)]
	stats.BindingMismatches24h = stats.EventsByType[string(security.EventTokenBindingMismatch)]
	stats.RevokedTokens24h = stats.EventsByType[string(security.EventTokenRevoked)]

	rows, err = r.db.Query(ctx, `
		SELECT ip_address, COUNT(*),
		       COUNT(*) FILTER (WHERE event_type = $1),
		       MAX(created_at)
		FROM security_events
		WHERE ip_address IS NOT NULL AND created_at > NOW() - INTERVAL '24 hours'
		GROUP BY ip_address
		ORDER BY COUNT(*) DESC
		LIMIT 10
	`, string(security.EventTokenBindingMismatch))
	if err != nil {
		return nil, fmt.Errorf("failed to query top ips: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ip domain.IPSummary
		if err := rows.Scan(&ip.IP, &ip.EventCount, &ip.Mismatches, &ip.LastSeen); err != nil {
			return nil, err
		}
		stats.TopIPs = append(stats.TopIPs, ip)
	}
	return stats, rows.Err()
}

func (r *SecurityEventRepository) ListEvents(ctx context.Context, filter domain.SecurityEventFilter) ([]domain.SecurityEventView, int64, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filter.StartTime != nil {
		add("created_at >= $%d", *filter.StartTime)
	}
	if len(filter.EventTypes) > 0 {
		add("event_type = ANY($%d)", filter.EventTypes)
	}
	if filter.SearchIP != "" {
		add("ip_address = $%d", filter.SearchIP)
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM security_events"+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	limit := filter.Limit
	switch {
	case limit <= 0:
		limit = 50
	case limit > 200:
		limit = 200
	}
	args = append(args, limit, max(filter.Offset, 0))
	query := fmt.Sprintf(`
		SELECT id, created_at, event_type, level, subject_type, subject_value,
		       COALESCE(ip_address, ''), user_agent, request_id, COALESCE(details, '{}'::jsonb)::text
		FROM security_events%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, cond, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []domain.SecurityEventView{}
	for rows.Next() {
		var (
			e       domain.SecurityEventView
			details string
			ts      time.Time
		)
		if err := rows.Scan(&e.ID, &ts, &e.EventType, &e.Level, &e.SubjectType, &e.SubjectValue,
			&e.IP, &e.UserAgent, &e.RequestID, &details); err != nil {
			return nil, 0, err
		}
		e.Timestamp = ts
		if details != "" && details != "{}" {
			_ = json.Unmarshal([]byte(details), &e.Details)
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}
