package repositories

import (
	"context"

	"github.com/knbsoft/knb_backend/internal/core/domain"
)

// AuditRepository is the append-only store of operator actions.
type AuditRepository interface {
	// SaveAuditEntry appends one audit record.
	SaveAuditEntry(ctx context.Context, entry domain.AuditEntry) error

	// ListRecent returns the newest entries first.
	ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}
