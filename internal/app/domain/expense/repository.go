package expense

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/models"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository defines the contract for expense persistence.
type Repository interface {
	Create(ctx context.Context, e models.Expense) (*models.Expense, error)
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]models.Expense, error)
	Delete(ctx context.Context, planID, expenseID uuid.UUID) error
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool *pgxpool.Pool
}

func NewRepositoryImpl(pgpool *pgxpool.Pool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *RepositoryImpl) Create(ctx context.Context, e models.Expense) (*models.Expense, error) {
	l := r.logger.With(zap.String("method", "Create"), zap.String("planID", e.PlanID.String()))

	if !e.Category.Valid() {
		return nil, fmt.Errorf("unknown expense category %q: %w", e.Category, models.ErrValidation)
	}
	if e.Amount <= 0 {
		return nil, fmt.Errorf("expense amount must be positive: %w", models.ErrValidation)
	}

	query := `
        INSERT INTO expenses (plan_id, category, amount, description, expense_date, image_url, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, Now())
        RETURNING id, plan_id, category, amount, description, expense_date, image_url, created_at`

	var out models.Expense
	err := r.pgpool.QueryRow(ctx, query, e.PlanID, e.Category, e.Amount, e.Description, e.Date, e.ImageURL).Scan(
		&out.ID,
		&out.PlanID,
		&out.Category,
		&out.Amount,
		&out.Description,
		&out.Date,
		&out.ImageURL,
		&out.CreatedAt,
	)
	if err != nil {
		l.Error("Failed to insert expense", zap.Error(err))
		return nil, fmt.Errorf("database error creating expense: %w", err)
	}

	l.Info("Expense recorded", zap.String("expenseID", out.ID.String()), zap.Float64("amount", out.Amount))
	return &out, nil
}

func (r *RepositoryImpl) ListByPlan(ctx context.Context, planID uuid.UUID) ([]models.Expense, error) {
	l := r.logger.With(zap.String("method", "ListByPlan"), zap.String("planID", planID.String()))

	query := `
        SELECT id, plan_id, category, amount, description, expense_date, image_url, created_at
        FROM expenses
        WHERE plan_id = $1
        ORDER BY expense_date, created_at`

	rows, err := r.pgpool.Query(ctx, query, planID)
	if err != nil {
		l.Error("Failed to query expenses", zap.Error(err))
		return nil, fmt.Errorf("database error listing expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.PlanID, &e.Category, &e.Amount, &e.Description, &e.Date, &e.ImageURL, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("database error scanning expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error reading expenses: %w", err)
	}

	return expenses, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, planID, expenseID uuid.UUID) error {
	l := r.logger.With(zap.String("method", "Delete"), zap.String("expenseID", expenseID.String()))

	tag, err := r.pgpool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND plan_id = $2`, expenseID, planID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrNotFound
		}
		l.Error("Failed to delete expense", zap.Error(err))
		return fmt.Errorf("database error deleting expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, models.ErrNotFound)
	}

	l.Info("Expense deleted")
	return nil
}
