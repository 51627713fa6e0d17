package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"go-project-hub/internal/database"
	"go-project-hub/internal/model"
)

const riskColumns = `id, project_id, title, description, probability, impact, status, created_at, updated_at`

type RiskRepository struct {
	db DBTX
}

func NewRiskRepository(db DBTX) *RiskRepository {
	return &RiskRepository{db: db}
}

func scanRisk(row pgx.Row) (model.Risk, error) {
	var rk model.Risk
	err := row.Scan(&rk.ID, &rk.ProjectID, &rk.Title, &rk.Description,
		&rk.Probability, &rk.Impact, &rk.Status, &rk.CreatedAt, &rk.UpdatedAt)
	rk.Score = rk.Probability * rk.Impact
	return rk, err
}

func touchProject(ctx context.Context, tx pgx.Tx, projectID int64) error {
	tag, err := tx.Exec(ctx, `UPDATE projects SET updated_at = NOW() WHERE id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("touch project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProjectNotFound
	}
	return nil
}

func (r *RiskRepository) ListByProject(ctx context.Context, projectID int64) ([]model.Risk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+riskColumns+` FROM risks WHERE project_id = $1
		 ORDER BY probability * impact DESC, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list risks: %w", err)
	}
	defer rows.Close()

	risks := make([]model.Risk, 0)
	for rows.Next() {
		rk, err := scanRisk(rows)
		if err != nil {
			return nil, fmt.Errorf("scan risk: %w", err)
		}
		risks = append(risks, rk)
	}
	return risks, rows.Err()
}

func (r *RiskRepository) FindByID(ctx context.Context, projectID int64, id int64) (model.Risk, error) {
	rk, err := scanRisk(r.db.QueryRow(ctx,
		`SELECT `+riskColumns+` FROM risks WHERE project_id = $1 AND id = $2`, projectID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Risk{}, model.ErrRiskNotFound
	}
	if err != nil {
		return model.Risk{}, fmt.Errorf("find risk: %w", err)
	}
	return rk, nil
}

func (r *RiskRepository) Create(ctx context.Context, rk model.Risk) (model.Risk, error) {
	var created model.Risk
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := touchProject(ctx, tx, rk.ProjectID); err != nil {
			return err
		}

		var err error
		created, err = scanRisk(tx.QueryRow(ctx,
			`INSERT INTO risks (project_id, title, description, probability, impact, status)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING `+riskColumns,
			rk.ProjectID, rk.Title, rk.Description, rk.Probability, rk.Impact, rk.Status))
		if err != nil {
			return fmt.Errorf("create risk: %w", err)
		}
		return nil
	})
	return created, err
}

func (r *RiskRepository) Update(ctx context.Context, rk model.Risk) (model.Risk, error) {
	var updated model.Risk
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		updated, err = scanRisk(tx.QueryRow(ctx,
			`UPDATE risks SET title = $3, description = $4, probability = $5, impact = $6,
			        status = $7, updated_at = NOW()
			 WHERE project_id = $1 AND id = $2
			 RETURNING `+riskColumns,
			rk.ProjectID, rk.ID, rk.Title, rk.Description, rk.Probability, rk.Impact, rk.Status))
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrRiskNotFound
		}
		if err != nil {
			return fmt.Errorf("update risk: %w", err)
		}
		return touchProject(ctx, tx, rk.ProjectID)
	})
	return updated, err
}

func (r *RiskRepository) Delete(ctx context.Context, projectID int64, id int64) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM risks WHERE project_id = $1 AND id = $2`, projectID, id)
		if err != nil {
			return fmt.Errorf("delete risk: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrRiskNotFound
		}
		return touchProject(ctx, tx, projectID)
	})
}
