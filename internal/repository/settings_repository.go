package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const maintenanceSettingKey = "maintenance_mode"

// SettingsRepository reads operator-controlled flags. The maintenance flag is
// read through on every gated request; no local cache, staleness is bounded
// by the request's own latency.
type SettingsRepository interface {
	MaintenanceEnabled(ctx context.Context) (bool, error)
	SetMaintenanceEnabled(ctx context.Context, enabled bool) error
}

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a Postgres-backed implementation.
func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) MaintenanceEnabled(ctx context.Context) (bool, error) {
	const query = `SELECT value FROM app_settings WHERE key=$1`

	var enabled bool
	if err := r.pool.QueryRow(ctx, query, maintenanceSettingKey).Scan(&enabled); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return enabled, nil
}

func (r *settingsRepository) SetMaintenanceEnabled(ctx context.Context, enabled bool) error {
	const query = `
        INSERT INTO app_settings (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	_, err := r.pool.Exec(ctx, query, maintenanceSettingKey, enabled)
	return err
}
