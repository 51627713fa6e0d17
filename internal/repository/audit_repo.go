package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-project-hub/internal/model"
)

type AuditRepository struct {
	db DBTX
}

func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Log(ctx context.Context, entry model.AuditEntry) error {
	occurredAt := time.Now().UTC()
	if entry.OccurredAt != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, entry.OccurredAt); err == nil {
			occurredAt = parsed
		}
	}

	var actorID *int64
	if entry.Actor.UserID > 0 {
		actorID = &entry.Actor.UserID
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO audit_entries
		 (action, occurred_at, actor_id, actor_email, ip, status, resource, error_text)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.Action, occurredAt, actorID, entry.Actor.Email, entry.Actor.IP,
		entry.Status, entry.Resource, entry.Error)
	if err != nil {
		return fmt.Errorf("log audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	page, limit := normalizePage(query.Page, query.Limit)

	where := make([]string, 0)
	args := make([]any, 0)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if query.ActorID > 0 {
		where = append(where, "actor_id = "+arg(query.ActorID))
	}
	if action := strings.TrimSpace(query.Action); action != "" {
		where = append(where, "lower(action) = lower("+arg(action)+")")
	}
	if status := strings.TrimSpace(query.Status); status != "" {
		where = append(where, "lower(status) = lower("+arg(status)+")")
	}
	if from := strings.TrimSpace(query.From); from != "" {
		where = append(where, "occurred_at >= "+arg(from)+"::timestamptz")
	}
	if to := strings.TrimSpace(query.To); to != "" {
		where = append(where, "occurred_at <= "+arg(to)+"::timestamptz")
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM audit_entries "+whereClause, args...).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count audit entries: %w", err)
	}

	limitArg := arg(limit)
	offsetArg := arg(pageOffset(page, limit))
	rows, err := r.db.Query(ctx,
		`SELECT action, occurred_at, COALESCE(actor_id, 0), actor_email, ip, status, resource, error_text
		 FROM audit_entries `+whereClause+`
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT `+limitArg+` OFFSET `+offsetArg, args...)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AuditEntry, 0)
	for rows.Next() {
		var e model.AuditEntry
		var occurredAt time.Time
		if err := rows.Scan(&e.Action, &occurredAt, &e.Actor.UserID, &e.Actor.Email, &e.Actor.IP,
			&e.Status, &e.Resource, &e.Error); err != nil {
			return nil, model.Meta{}, fmt.Errorf("scan audit entry: %w", err)
		}
		e.OccurredAt = occurredAt.UTC().Format(time.RFC3339Nano)
		entries = append(entries, e)
	}

	return entries, pageMeta(page, limit, total), rows.Err()
}
