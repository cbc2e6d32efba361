package apiconfig

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/models"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository persists per-user provider credentials. Secret columns hold the
// encoded form; encoding is the service's business.
type Repository interface {
	Upsert(ctx context.Context, cfg models.APIConfig) (*models.APIConfig, error)
	Get(ctx context.Context, userID uuid.UUID, serviceType models.ServiceType) (*models.APIConfig, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.APIConfig, error)
	Delete(ctx context.Context, userID uuid.UUID, serviceType models.ServiceType) error
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool *pgxpool.Pool
	sb     sq.StatementBuilderType
}

func NewRepositoryImpl(pgpool *pgxpool.Pool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const configColumns = "id, user_id, service_type, api_key, base_url, model, app_id, api_secret, security_code, updated_at"

// Upsert inserts or replaces the config for (user, service type).
func (r *RepositoryImpl) Upsert(ctx context.Context, cfg models.APIConfig) (*models.APIConfig, error) {
	l := r.logger.With(zap.String("method", "Upsert"),
		zap.String("userID", cfg.UserID.String()),
		zap.String("serviceType", string(cfg.ServiceType)),
	)

	query, args, err := r.sb.
		Insert("api_configs").
		Columns("user_id", "service_type", "api_key", "base_url", "model", "app_id", "api_secret", "security_code", "updated_at").
		Values(cfg.UserID, cfg.ServiceType, cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.AppID, cfg.APISecret, cfg.SecurityCode, sq.Expr("Now()")).
		Suffix(`ON CONFLICT (user_id, service_type) DO UPDATE SET
			api_key = EXCLUDED.api_key,
			base_url = EXCLUDED.base_url,
			model = EXCLUDED.model,
			app_id = EXCLUDED.app_id,
			api_secret = EXCLUDED.api_secret,
			security_code = EXCLUDED.security_code,
			updated_at = Now()
			RETURNING ` + configColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building upsert query: %w", err)
	}

	var out models.APIConfig
	err = r.pgpool.QueryRow(ctx, query, args...).Scan(
		&out.ID, &out.UserID, &out.ServiceType,
		&out.APIKey, &out.BaseURL, &out.Model,
		&out.AppID, &out.APISecret, &out.SecurityCode,
		&out.UpdatedAt,
	)
	if err != nil {
		l.Error("Failed to upsert api config", zap.Error(err))
		return nil, fmt.Errorf("database error saving api config: %w", err)
	}

	l.Info("API config saved")
	return &out, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userID uuid.UUID, serviceType models.ServiceType) (*models.APIConfig, error) {
	query, args, err := r.sb.
		Select(configColumns).
		From("api_configs").
		Where(sq.Eq{"user_id": userID, "service_type": serviceType}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var out models.APIConfig
	err = r.pgpool.QueryRow(ctx, query, args...).Scan(
		&out.ID, &out.UserID, &out.ServiceType,
		&out.APIKey, &out.BaseURL, &out.Model,
		&out.AppID, &out.APISecret, &out.SecurityCode,
		&out.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to load api config", zap.Error(err))
		return nil, fmt.Errorf("database error loading api config: %w", err)
	}
	return &out, nil
}

func (r *RepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.APIConfig, error) {
	query, args, err := r.sb.
		Select(configColumns).
		From("api_configs").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("service_type").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list query: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("database error listing api configs: %w", err)
	}
	defer rows.Close()

	var configs []models.APIConfig
	for rows.Next() {
		var c models.APIConfig
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.ServiceType,
			&c.APIKey, &c.BaseURL, &c.Model,
			&c.AppID, &c.APISecret, &c.SecurityCode,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("database error scanning api config: %w", err)
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

func (r *RepositoryImpl) Delete(ctx context.Context, userID uuid.UUID, serviceType models.ServiceType) error {
	l := r.logger.With(zap.String("method", "Delete"), zap.String("serviceType", string(serviceType)))

	tag, err := r.pgpool.Exec(ctx,
		`DELETE FROM api_configs WHERE user_id = $1 AND service_type = $2`,
		userID, serviceType,
	)
	if err != nil {
		l.Error("Failed to delete api config", zap.Error(err))
		return fmt.Errorf("database error deleting api config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("config for %s: %w", serviceType, models.ErrNotFound)
	}

	l.Info("API config deleted")
	return nil
}
