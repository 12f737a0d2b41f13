package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditEntry is one privileged state change worth keeping a trail of.
type AuditEntry struct {
	ID        string
	Actor     string
	Action    string
	Subject   string
	Details   map[string]any
	CreatedAt time.Time
}

// AuditRepository persists audit entries. Writes are best effort; callers
// must never couple their own success to an audit write.
type AuditRepository interface {
	Insert(ctx context.Context, entry *AuditEntry) error
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository returns a Postgres-backed implementation.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Insert(ctx context.Context, entry *AuditEntry) error {
	const query = `
        INSERT INTO audit_log (id, actor, action, subject, details, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.Actor,
		entry.Action,
		entry.Subject,
		entry.Details,
		entry.CreatedAt,
	)
	return err
}
