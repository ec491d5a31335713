package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/knbsoft/knb_backend/internal/apperrors"
	"github.com/knbsoft/knb_backend/internal/core/domain"
	portsrepo "github.com/knbsoft/knb_backend/internal/core/ports/repositories"
	"github.com/knbsoft/knb_backend/internal/models"
)

type PgxAuditRepository struct {
	pool *pgxpool.Pool
}

// newPgxAuditRepository creates the append-only audit log repository.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepository {
	return &PgxAuditRepository{pool: pool}
}

var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

func (r *PgxAuditRepository) SaveAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	query := `
		INSERT INTO audit_log (user_id, action, details, created_at)
		VALUES ($1, $2, $3, $4);
	`
	_, err := r.pool.Exec(ctx, query, entry.UserID, entry.Action, entry.Details, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to save audit entry: %v", apperrors.ErrStorage, err)
	}
	return nil
}

func (r *PgxAuditRepository) ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	query := `
		SELECT log_id, user_id, action, details, created_at
		FROM audit_log
		ORDER BY log_id DESC
		LIMIT $1;
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list audit entries: %v", apperrors.ErrStorage, err)
	}
	defer rows.Close()

	entries := make([]domain.AuditEntry, 0, limit)
	for rows.Next() {
		var m models.AuditEntry
		if err := rows.Scan(&m.LogID, &m.UserID, &m.Action, &m.Details, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan audit entry: %v", apperrors.ErrStorage, err)
		}
		entries = append(entries, domain.AuditEntry{
			LogID:     m.LogID,
			UserID:    m.UserID,
			Action:    m.Action,
			Details:   m.Details,
			CreatedAt: m.CreatedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to list audit entries: %v", apperrors.ErrStorage, err)
	}
	return entries, nil
}
