package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/directory-gatekeeper/internal/domain"
)

// SubscriptionRepository defines persistence access for subscription records.
// All write paths are idempotent: the webhook provider delivers at least once
// and may interleave events for the same business across instances, so
// convergence is enforced by the database's conflict target, not by locks.
type SubscriptionRepository interface {
	// Upsert inserts or fully overwrites the record keyed on business_id.
	Upsert(ctx context.Context, rec *domain.SubscriptionRecord) error
	// UpdateByProviderSubscriptionID patches an existing record; returns
	// pgx.ErrNoRows when no record matches (an ordering anomaly, not fatal).
	UpdateByProviderSubscriptionID(ctx context.Context, providerSubID string, patch domain.SubscriptionPatch) error
	// Cancel marks the record canceled and stamps ends_at.
	Cancel(ctx context.Context, providerSubID string, endsAt *time.Time) error
	GetByBusinessID(ctx context.Context, businessID string) (*domain.SubscriptionRecord, error)
	GetByProviderSubscriptionID(ctx context.Context, providerSubID string) (*domain.SubscriptionRecord, error)
}

type subscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository returns a Postgres-backed implementation.
func NewSubscriptionRepository(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepository{pool: pool}
}

func (r *subscriptionRepository) Upsert(ctx context.Context, rec *domain.SubscriptionRecord) error {
	const query = `
        INSERT INTO subscriptions (
            business_id, plan, status, provider_customer_id,
            provider_subscription_id, current_period_end,
            cancel_at_period_end, ends_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (business_id) DO UPDATE SET
            plan = EXCLUDED.plan,
            status = EXCLUDED.status,
            provider_customer_id = EXCLUDED.provider_customer_id,
            provider_subscription_id = EXCLUDED.provider_subscription_id,
            current_period_end = EXCLUDED.current_period_end,
            cancel_at_period_end = EXCLUDED.cancel_at_period_end,
            ends_at = EXCLUDED.ends_at,
            updated_at = NOW()
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		rec.BusinessID,
		rec.Plan,
		rec.Status,
		rec.ProviderCustomerID,
		rec.ProviderSubscriptionID,
		rec.CurrentPeriodEnd,
		rec.CancelAtPeriodEnd,
		rec.EndsAt,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
}

func (r *subscriptionRepository) UpdateByProviderSubscriptionID(ctx context.Context, providerSubID string, patch domain.SubscriptionPatch) error {
	const query = `
        UPDATE subscriptions SET
            plan = COALESCE($1, plan),
            status = COALESCE($2, status),
            current_period_end = COALESCE($3, current_period_end),
            cancel_at_period_end = COALESCE($4, cancel_at_period_end),
            updated_at = NOW()
        WHERE provider_subscription_id = $5`

	cmd, err := r.pool.Exec(ctx, query,
		patch.Plan,
		patch.Status,
		patch.CurrentPeriodEnd,
		patch.CancelAtPeriodEnd,
		providerSubID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *subscriptionRepository) Cancel(ctx context.Context, providerSubID string, endsAt *time.Time) error {
	const query = `
        UPDATE subscriptions SET
            status = $1,
            ends_at = $2,
            cancel_at_period_end = FALSE,
            updated_at = NOW()
        WHERE provider_subscription_id = $3`

	cmd, err := r.pool.Exec(ctx, query,
		domain.SubscriptionStatusCanceled,
		endsAt,
		providerSubID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *subscriptionRepository) GetByBusinessID(ctx context.Context, businessID string) (*domain.SubscriptionRecord, error) {
	const query = `
        SELECT id, business_id, plan, status, provider_customer_id,
               provider_subscription_id, current_period_end,
               cancel_at_period_end, ends_at, created_at, updated_at
        FROM subscriptions WHERE business_id=$1`

	return r.scanOne(r.pool.QueryRow(ctx, query, businessID))
}

func (r *subscriptionRepository) GetByProviderSubscriptionID(ctx context.Context, providerSubID string) (*domain.SubscriptionRecord, error) {
	const query = `
        SELECT id, business_id, plan, status, provider_customer_id,
               provider_subscription_id, current_period_end,
               cancel_at_period_end, ends_at, created_at, updated_at
        FROM subscriptions WHERE provider_subscription_id=$1`

	return r.scanOne(r.pool.QueryRow(ctx, query, providerSubID))
}

func (r *subscriptionRepository) scanOne(row pgx.Row) (*domain.SubscriptionRecord, error) {
	var rec domain.SubscriptionRecord
	if err := row.Scan(
		&rec.ID,
		&rec.BusinessID,
		&rec.Plan,
		&rec.Status,
		&rec.ProviderCustomerID,
		&rec.ProviderSubscriptionID,
		&rec.CurrentPeriodEnd,
		&rec.CancelAtPeriodEnd,
		&rec.EndsAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}
