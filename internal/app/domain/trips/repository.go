package trips

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/models"
)

var _ Repository = (*RepositoryImpl)(nil)

// PGXPool is the pool surface the repository needs. pgxpool.Pool satisfies it
// in production, pgxmock in tests.
type PGXPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists travel plans and their day sets.
type Repository interface {
	CreatePlan(ctx context.Context, plan *models.TravelPlan) (*models.TravelPlan, error)
	GetPlan(ctx context.Context, userID, planID uuid.UUID) (*models.TravelPlan, error)
	ListPlans(ctx context.Context, userID uuid.UUID) ([]models.TravelPlan, error)
	UpdatePlan(ctx context.Context, userID, planID uuid.UUID, params UpdatePlanParams) error
	DeletePlan(ctx context.Context, userID, planID uuid.UUID) error
	ReplacePlan(ctx context.Context, plan *models.TravelPlan) (*models.TravelPlan, error)
	SaveItinerary(ctx context.Context, userID, planID uuid.UUID, days []models.ItineraryDay) error
}

// UpdatePlanParams carries the mutable plan header fields. Nil means leave
// unchanged.
type UpdatePlanParams struct {
	Title       *string
	Status      *models.PlanStatus
	Description *string
	Budget      *float64
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool PGXPool
	sb     sq.StatementBuilderType
}

func NewRepositoryImpl(pgpool PGXPool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
		sb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const planColumns = `id, user_id, title, destination, start_date, end_date, days,
	budget, traveler_count, status, description, created_at, updated_at`

func (r *RepositoryImpl) CreatePlan(ctx context.Context, plan *models.TravelPlan) (*models.TravelPlan, error) {
	l := r.logger.With(zap.String("method", "CreatePlan"), zap.String("userID", plan.UserID.String()))

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("database error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `
        INSERT INTO travel_plans (user_id, title, destination, start_date, end_date, days,
            budget, traveler_count, status, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, Now(), Now())
        RETURNING ` + planColumns

	out := *plan
	err = tx.QueryRow(ctx, query,
		plan.UserID, plan.Title, plan.Destination, plan.StartDate, plan.EndDate, plan.Days,
		plan.Budget, plan.TravelerCount, plan.Status, plan.Description,
	).Scan(
		&out.ID, &out.UserID, &out.Title, &out.Destination, &out.StartDate, &out.EndDate,
		&out.Days, &out.Budget, &out.TravelerCount, &out.Status, &out.Description,
		&out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		l.Error("Failed to insert plan", zap.Error(err))
		return nil, fmt.Errorf("database error creating plan: %w", err)
	}

	if err := insertDays(ctx, tx, out.ID, plan.Itinerary); err != nil {
		l.Error("Failed to insert itinerary days", zap.Error(err))
		return nil, err
	}
	out.Itinerary = plan.Itinerary

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("database error committing plan: %w", err)
	}

	l.Info("Plan created", zap.String("planID", out.ID.String()), zap.Int("days", len(out.Itinerary)))
	return &out, nil
}

func (r *RepositoryImpl) GetPlan(ctx context.Context, userID, planID uuid.UUID) (*models.TravelPlan, error) {
	query := `SELECT ` + planColumns + ` FROM travel_plans WHERE id = $1 AND user_id = $2`

	var plan models.TravelPlan
	err := r.pgpool.QueryRow(ctx, query, planID, userID).Scan(
		&plan.ID, &plan.UserID, &plan.Title, &plan.Destination, &plan.StartDate, &plan.EndDate,
		&plan.Days, &plan.Budget, &plan.TravelerCount, &plan.Status, &plan.Description,
		&plan.CreatedAt, &plan.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("plan %s: %w", planID, models.ErrNotFound)
		}
		r.logger.Error("Failed to load plan", zap.Error(err))
		return nil, fmt.Errorf("database error loading plan: %w", err)
	}

	days, err := r.loadDays(ctx, planID)
	if err != nil {
		return nil, err
	}
	plan.Itinerary = days
	return &plan, nil
}

func (r *RepositoryImpl) ListPlans(ctx context.Context, userID uuid.UUID) ([]models.TravelPlan, error) {
	query := `SELECT ` + planColumns + ` FROM travel_plans WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("database error listing plans: %w", err)
	}
	defer rows.Close()

	var plans []models.TravelPlan
	for rows.Next() {
		var p models.TravelPlan
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Title, &p.Destination, &p.StartDate, &p.EndDate,
			&p.Days, &p.Budget, &p.TravelerCount, &p.Status, &p.Description,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("database error scanning plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// UpdatePlan applies the provided header fields with a dynamically built
// statement.
func (r *RepositoryImpl) UpdatePlan(ctx context.Context, userID, planID uuid.UUID, params UpdatePlanParams) error {
	l := r.logger.With(zap.String("method", "UpdatePlan"), zap.String("planID", planID.String()))

	update := r.sb.Update("travel_plans").
		Set("updated_at", sq.Expr("Now()")).
		Where(sq.Eq{"id": planID, "user_id": userID})

	changed := false
	if params.Title != nil {
		update = update.Set("title", *params.Title)
		changed = true
	}
	if params.Status != nil {
		if !params.Status.Settable() {
			return fmt.Errorf("status %q is not settable: %w", *params.Status, models.ErrValidation)
		}
		update = update.Set("status", *params.Status)
		changed = true
	}
	if params.Description != nil {
		update = update.Set("description", *params.Description)
		changed = true
	}
	if params.Budget != nil {
		update = update.Set("budget", *params.Budget)
		changed = true
	}
	if !changed {
		return fmt.Errorf("no fields to update: %w", models.ErrBadRequest)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}

	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		l.Error("Failed to update plan", zap.Error(err))
		return fmt.Errorf("database error updating plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plan %s: %w", planID, models.ErrNotFound)
	}

	l.Info("Plan updated")
	return nil
}

func (r *RepositoryImpl) DeletePlan(ctx context.Context, userID, planID uuid.UUID) error {
	l := r.logger.With(zap.String("method", "DeletePlan"), zap.String("planID", planID.String()))

	// Days and expenses go with it via ON DELETE CASCADE.
	tag, err := r.pgpool.Exec(ctx,
		`DELETE FROM travel_plans WHERE id = $1 AND user_id = $2`, planID, userID)
	if err != nil {
		l.Error("Failed to delete plan", zap.Error(err))
		return fmt.Errorf("database error deleting plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plan %s: %w", planID, models.ErrNotFound)
	}

	l.Info("Plan deleted")
	return nil
}

// ReplacePlan rewrites the header and the whole day set in one transaction.
func (r *RepositoryImpl) ReplacePlan(ctx context.Context, plan *models.TravelPlan) (*models.TravelPlan, error) {
	l := r.logger.With(zap.String("method", "ReplacePlan"), zap.String("planID", plan.ID.String()))

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("database error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `
        UPDATE travel_plans
        SET title = $1, days = $2, status = $3, description = $4, updated_at = Now()
        WHERE id = $5 AND user_id = $6
        RETURNING ` + planColumns

	out := *plan
	err = tx.QueryRow(ctx, query,
		plan.Title, len(plan.Itinerary), plan.Status, plan.Description, plan.ID, plan.UserID,
	).Scan(
		&out.ID, &out.UserID, &out.Title, &out.Destination, &out.StartDate, &out.EndDate,
		&out.Days, &out.Budget, &out.TravelerCount, &out.Status, &out.Description,
		&out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("plan %s: %w", plan.ID, models.ErrNotFound)
		}
		l.Error("Failed to update plan header", zap.Error(err))
		return nil, fmt.Errorf("database error replacing plan: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM itinerary_days WHERE plan_id = $1`, plan.ID); err != nil {
		return nil, fmt.Errorf("database error clearing itinerary: %w", err)
	}
	if err := insertDays(ctx, tx, plan.ID, plan.Itinerary); err != nil {
		return nil, err
	}
	out.Itinerary = plan.Itinerary

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("database error committing plan: %w", err)
	}

	l.Info("Plan replaced", zap.Int("days", len(out.Itinerary)))
	return &out, nil
}

// SaveItinerary replaces the full day set of a plan transactionally.
func (r *RepositoryImpl) SaveItinerary(ctx context.Context, userID, planID uuid.UUID, days []models.ItineraryDay) error {
	l := r.logger.With(zap.String("method", "SaveItinerary"), zap.String("planID", planID.String()))

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("database error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Ownership check doubles as existence check.
	var owner uuid.UUID
	err = tx.QueryRow(ctx, `SELECT user_id FROM travel_plans WHERE id = $1`, planID).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("plan %s: %w", planID, models.ErrNotFound)
		}
		return fmt.Errorf("database error loading plan: %w", err)
	}
	if owner != userID {
		return models.ErrForbidden
	}

	if _, err := tx.Exec(ctx, `DELETE FROM itinerary_days WHERE plan_id = $1`, planID); err != nil {
		return fmt.Errorf("database error clearing itinerary: %w", err)
	}
	if err := insertDays(ctx, tx, planID, days); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE travel_plans SET days = $1, updated_at = Now() WHERE id = $2`,
		len(days), planID,
	); err != nil {
		return fmt.Errorf("database error updating plan header: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("database error committing itinerary: %w", err)
	}

	l.Info("Itinerary saved", zap.Int("days", len(days)))
	return nil
}

func insertDays(ctx context.Context, tx pgx.Tx, planID uuid.UUID, days []models.ItineraryDay) error {
	for _, d := range days {
		activities, err := json.Marshal(d.Activities)
		if err != nil {
			return fmt.Errorf("encoding activities for day %d: %w", d.Day, err)
		}
		accommodation, _ := json.Marshal(d.Accommodation)
		transportation, _ := json.Marshal(d.Transportation)
		meals, _ := json.Marshal(d.Meals)

		_, err = tx.Exec(ctx, `
            INSERT INTO itinerary_days (plan_id, day, date, title, activities,
                accommodation, transportation, meals, total_cost, notes)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			planID, d.Day, d.Date, d.Title, activities,
			accommodation, transportation, meals, d.TotalCost, d.Notes,
		)
		if err != nil {
			return fmt.Errorf("database error inserting day %d: %w", d.Day, err)
		}
	}
	return nil
}

func (r *RepositoryImpl) loadDays(ctx context.Context, planID uuid.UUID) ([]models.ItineraryDay, error) {
	rows, err := r.pgpool.Query(ctx, `
        SELECT day, date, title, activities, accommodation, transportation, meals, total_cost, notes
        FROM itinerary_days
        WHERE plan_id = $1
        ORDER BY day`, planID)
	if err != nil {
		return nil, fmt.Errorf("database error loading itinerary: %w", err)
	}
	defer rows.Close()

	var days []models.ItineraryDay
	for rows.Next() {
		var (
			d                                           models.ItineraryDay
			activities, accommodation, transport, meals []byte
		)
		if err := rows.Scan(&d.Day, &d.Date, &d.Title, &activities,
			&accommodation, &transport, &meals, &d.TotalCost, &d.Notes); err != nil {
			return nil, fmt.Errorf("database error scanning day: %w", err)
		}

		if err := json.Unmarshal(activities, &d.Activities); err != nil {
			return nil, fmt.Errorf("decoding activities for day %d: %w", d.Day, err)
		}
		if len(accommodation) > 0 && string(accommodation) != "null" {
			_ = json.Unmarshal(accommodation, &d.Accommodation)
		}
		if len(transport) > 0 && string(transport) != "null" {
			_ = json.Unmarshal(transport, &d.Transportation)
		}
		if len(meals) > 0 && string(meals) != "null" {
			_ = json.Unmarshal(meals, &d.Meals)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
