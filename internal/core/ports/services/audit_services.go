package services

import (
	"context"

	"github.com/knbsoft/knb_backend/internal/core/domain"
)

// AuditSvcFacade records operator actions. Recording is best-effort from the
// caller's point of view: a failed audit write is logged, never propagated,
// so it cannot fail a committed business operation.
type AuditSvcFacade interface {
	Record(ctx context.Context, userID, action, details string)
	ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}
