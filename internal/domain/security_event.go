package domain

import (
	"context"
	"time"
)

// SecurityStats aggregates the last 24 hours of security events.
type SecurityStats struct {
	TotalEvents          int64            `json:"total_events"`
	EventsByType         map[string]int64 `json:"events_by_type"`
	FailedLogins24h      int64            `json:"failed_logins_24h"`
	BindingMismatches24h int64            `json:"binding_mismatches_24h"`
	RevokedTokens24h     int64            `json:"revoked_tokens_24h"`
	TopIPs               []IPSummary      `json:"top_ips"`
}

type IPSummary struct {
	IP         string    `json:"ip"`
	EventCount int64     `json:"event_count"`
	Mismatches int64     `json:"binding_mismatches"`
	LastSeen   time.Time `json:"last_seen"`
}

type SecurityEventFilter struct {
	StartTime  *time.Time
	EventTypes []string
	SearchIP   string
	Limit      int
	Offset     int
}

type SecurityEventView struct {
	ID           int64          `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	EventType    string         `json:"event_type"`
	Level        string         `json:"level"`
	SubjectType  string         `json:"subject_type,omitempty"`
	SubjectValue string         `json:"subject_value,omitempty"`
	IP           string         `json:"ip,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	RequestID    string         `json:"request_id,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

// SecurityEventReader backs the admin security view.
type SecurityEventReader interface {
	ListEvents(ctx context.Context, filter SecurityEventFilter) ([]SecurityEventView, int64, error)
	GetStats(ctx context.Context) (*SecurityStats, error)
}
