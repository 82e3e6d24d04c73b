package service

import (
	"context"
	"log/slog"
	"time"

	"go-taskboard/internal/model"
	"go-taskboard/pkg/apierror"
)

const auditWriteTimeout = 2 * time.Second

type AuditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
}

// AuditService records the outcome of every auth operation. Entries always
// go to the log; they are persisted too when a store is configured.
type AuditService struct {
	store  AuditStore
	logger *slog.Logger
	now    func() time.Time
}

func NewAuditService(store AuditStore, logger *slog.Logger) *AuditService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuditService{
		store:  store,
		logger: logger.With("component", "auth.audit"),
		now:    time.Now,
	}
}

// Record never fails the caller: a persistence error is logged and dropped.
func (s *AuditService) Record(ctx context.Context, action string, actor model.AuditActor, requestID string, opErr error) {
	if s == nil {
		return
	}

	entry := model.AuditEntry{
		Action:     action,
		OccurredAt: s.now().UTC().Format(time.RFC3339Nano),
		Actor:      actor,
		Status:     "success",
		RequestID:  requestID,
	}
	if opErr != nil {
		entry.Status = "failure"
		entry.Error = apierror.CodeOf(opErr)
	}

	attrs := []any{
		"action", entry.Action,
		"status", entry.Status,
		"email", actor.Email,
		"ip", actor.IP,
	}
	if actor.UserID != 0 {
		attrs = append(attrs, "user_id", actor.UserID)
	}
	if entry.Error != "" {
		attrs = append(attrs, "error_code", entry.Error)
		s.logger.Warn("auth audit", attrs...)
	} else {
		s.logger.Info("auth audit", attrs...)
	}

	if s.store == nil {
		return
	}

	// The request may already be finished; the write gets its own deadline.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	if err := s.store.Log(writeCtx, entry); err != nil {
		s.logger.Warn("persisting audit entry failed", "action", action, "error", err)
	}
}
