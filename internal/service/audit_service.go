package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go-project-hub/internal/model"
	"go-project-hub/pkg/apierror"
)

const (
	auditSuccess = "success"
	auditFailed  = "failed"
)

type AuditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error)
}

type AuditService struct {
	store AuditStore
	now   func() time.Time
}

func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store, now: time.Now}
}

// Log records an entry. Failures to persist are logged and never surface to
// the caller; a nil service is a no-op.
func (s *AuditService) Log(ctx context.Context, action string, actor model.AuditActor, status string, resource string, errText string) {
	if s == nil || s.store == nil {
		return
	}

	entry := model.AuditEntry{
		Action:     action,
		OccurredAt: s.now().UTC().Format(time.RFC3339Nano),
		Actor:      actor,
		Status:     status,
		Resource:   resource,
		Error:      errText,
	}

	// The request may already be cancelled when a failure is audited.
	if err := s.store.Log(context.WithoutCancel(ctx), entry); err != nil {
		slog.Warn("audit entry not recorded", "action", action, "resource", resource, "error", err)
	}
}

func (s *AuditService) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	from, err := parseOptionalAuditTime(query.From)
	if err != nil {
		return nil, model.Meta{}, apierror.BadRequest("invalid 'from' datetime format", query.From)
	}

	to, err := parseOptionalAuditTime(query.To)
	if err != nil {
		return nil, model.Meta{}, apierror.BadRequest("invalid 'to' datetime format", query.To)
	}

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, model.Meta{}, apierror.BadRequest("'from' must not be after 'to'", "")
	}

	query.Action = strings.TrimSpace(query.Action)
	query.Status = strings.TrimSpace(query.Status)
	if !from.IsZero() {
		query.From = from.Format(time.RFC3339Nano)
	}
	if !to.IsZero() {
		query.To = to.Format(time.RFC3339Nano)
	}

	return s.store.Query(ctx, query)
}

func parseOptionalAuditTime(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, nil
	}

	if value, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return value.UTC(), nil
	}

	value, err := time.Parse(time.DateOnly, trimmed)
	if err != nil {
		return time.Time{}, err
	}

	return value.UTC(), nil
}
