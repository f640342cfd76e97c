package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/bcm-risk-service/internal/domain"
)

// RiskFilter captures listing criteria. A nil field means no constraint;
// Limit <= 0 disables pagination (full filtered set, used by exports).
type RiskFilter struct {
	DepartmentID *string
	Severity     *domain.Severity
	Status       *domain.Status
	Search       *string
	Limit        int
	Offset       int
}

// RiskRepository encapsulates risk persistence.
type RiskRepository interface {
	Create(ctx context.Context, risk *domain.Risk) error
	Update(ctx context.Context, risk *domain.Risk) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Risk, error)
	ListWithFilter(ctx context.Context, filter RiskFilter) ([]domain.Risk, error)
	CountWithFilter(ctx context.Context, filter RiskFilter) (int, error)
	Lock(ctx context.Context, id, adminID string, lockedAt time.Time) error
	Unlock(ctx context.Context, id string) error
}

type riskRepository struct {
	pool *pgxpool.Pool
}

// NewRiskRepository instantiates repository.
func NewRiskRepository(pool *pgxpool.Pool) RiskRepository {
	return &riskRepository{pool: pool}
}

const riskColumns = `id, department_id, expected_problem, impact, estimated_resolution_duration,
               resolution_duration_unit, mitigation_notes, severity, status, is_locked,
               locked_by, locked_at, created_by, updated_by, created_at, updated_at`

func (r *riskRepository) Create(ctx context.Context, risk *domain.Risk) error {
	const query = `
        INSERT INTO risks (department_id, expected_problem, impact, estimated_resolution_duration,
            resolution_duration_unit, mitigation_notes, severity, status, created_by, updated_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		risk.DepartmentID,
		risk.ExpectedProblem,
		risk.Impact,
		risk.ResolutionDuration,
		risk.ResolutionUnit,
		risk.MitigationNotes,
		risk.Severity,
		risk.Status,
		risk.CreatedBy,
		risk.UpdatedBy,
	).Scan(&risk.ID, &risk.CreatedAt, &risk.UpdatedAt)
}

func (r *riskRepository) Update(ctx context.Context, risk *domain.Risk) error {
	const query = `
        UPDATE risks SET department_id=$1, expected_problem=$2, impact=$3,
            estimated_resolution_duration=$4, resolution_duration_unit=$5, mitigation_notes=$6,
            severity=$7, status=$8, updated_by=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		risk.DepartmentID,
		risk.ExpectedProblem,
		risk.Impact,
		risk.ResolutionDuration,
		risk.ResolutionUnit,
		risk.MitigationNotes,
		risk.Severity,
		risk.Status,
		risk.UpdatedBy,
		risk.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *riskRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM risks WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *riskRepository) GetByID(ctx context.Context, id string) (*domain.Risk, error) {
	query := `SELECT ` + riskColumns + ` FROM risks WHERE id=$1`
	var risk domain.Risk
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&risk.ID,
		&risk.DepartmentID,
		&risk.ExpectedProblem,
		&risk.Impact,
		&risk.ResolutionDuration,
		&risk.ResolutionUnit,
		&risk.MitigationNotes,
		&risk.Severity,
		&risk.Status,
		&risk.IsLocked,
		&risk.LockedBy,
		&risk.LockedAt,
		&risk.CreatedBy,
		&risk.UpdatedBy,
		&risk.CreatedAt,
		&risk.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &risk, nil
}

// Lock sets the three lock fields in a single statement. Re-locking an
// already locked risk refreshes locked_by and locked_at.
func (r *riskRepository) Lock(ctx context.Context, id, adminID string, lockedAt time.Time) error {
	const query = `UPDATE risks SET is_locked=TRUE, locked_by=$2, locked_at=$3 WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id, adminID, lockedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Unlock clears all three lock fields together.
func (r *riskRepository) Unlock(ctx context.Context, id string) error {
	const query = `UPDATE risks SET is_locked=FALSE, locked_by=NULL, locked_at=NULL WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func buildRiskClauses(filter RiskFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.Severity != nil {
		args = append(args, *filter.Severity)
		clauses = append(clauses, fmt.Sprintf("severity=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(expected_problem) LIKE %s OR LOWER(impact) LIKE %s OR LOWER(COALESCE(mitigation_notes,'')) LIKE %s)",
			placeholder, placeholder, placeholder))
	}
	return clauses, args
}

func (r *riskRepository) ListWithFilter(ctx context.Context, filter RiskFilter) ([]domain.Risk, error) {
	clauses, args := buildRiskClauses(filter)

	// Creation-descending with id as the stable tiebreaker.
	query := fmt.Sprintf(`SELECT %s FROM risks WHERE %s ORDER BY created_at DESC, id`,
		riskColumns, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query = fmt.Sprintf("%s LIMIT %d OFFSET %d", query, filter.Limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRisks(rows)
}

func (r *riskRepository) CountWithFilter(ctx context.Context, filter RiskFilter) (int, error) {
	clauses, args := buildRiskClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM risks WHERE %s`, strings.Join(clauses, " AND "))

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanRisks(rows pgx.Rows) ([]domain.Risk, error) {
	var result []domain.Risk
	for rows.Next() {
		var risk domain.Risk
		if err := rows.Scan(
			&risk.ID,
			&risk.DepartmentID,
			&risk.ExpectedProblem,
			&risk.Impact,
			&risk.ResolutionDuration,
			&risk.ResolutionUnit,
			&risk.MitigationNotes,
			&risk.Severity,
			&risk.Status,
			&risk.IsLocked,
			&risk.LockedBy,
			&risk.LockedAt,
			&risk.CreatedBy,
			&risk.UpdatedBy,
			&risk.CreatedAt,
			&risk.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, risk)
	}
	return result, rows.Err()
}
