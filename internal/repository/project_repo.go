package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"go-project-hub/internal/database"
	"go-project-hub/internal/model"
)

const projectColumns = `id, owner_id, name, description, public, created_at, updated_at`

type ProjectRepository struct {
	db DBTX
}

func NewProjectRepository(db DBTX) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func scanProject(row pgx.Row) (model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Public, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (model.Project, error) {
	p, err := scanProject(r.db.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Project{}, model.ErrProjectNotFound
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("find project: %w", err)
	}
	return p, nil
}

func (r *ProjectRepository) ExistsByOwnerAndName(ctx context.Context, ownerID int64, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM projects WHERE owner_id = $1 AND lower(name) = lower($2))`,
		ownerID, strings.TrimSpace(name)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check project name: %w", err)
	}
	return exists, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p model.Project) (model.Project, error) {
	created, err := scanProject(r.db.QueryRow(ctx,
		`INSERT INTO projects (owner_id, name, description, public)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+projectColumns,
		p.OwnerID, p.Name, p.Description, p.Public))
	if isUniqueViolation(err) {
		return model.Project{}, model.ErrProjectAlreadyExists
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("create project: %w", err)
	}
	return created, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p model.Project) (model.Project, error) {
	updated, err := scanProject(r.db.QueryRow(ctx,
		`UPDATE projects SET name = $3, description = $4, public = $5, updated_at = NOW()
		 WHERE id = $1 AND owner_id = $2
		 RETURNING `+projectColumns,
		p.ID, p.OwnerID, p.Name, p.Description, p.Public))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Project{}, model.ErrProjectNotFound
	}
	if isUniqueViolation(err) {
		return model.Project{}, model.ErrProjectAlreadyExists
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("update project: %w", err)
	}
	return updated, nil
}

// Delete removes the project and its risks in one transaction.
func (r *ProjectRepository) Delete(ctx context.Context, id int64, ownerID int64) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM risks WHERE project_id = $1`, id); err != nil {
			return fmt.Errorf("delete project risks: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND owner_id = $2`, id, ownerID)
		if err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrProjectNotFound
		}
		return nil
	})
}

// List returns public projects plus, for an authenticated viewer, the
// viewer's own projects.
func (r *ProjectRepository) List(ctx context.Context, query model.ProjectQuery) ([]model.Project, model.Meta, error) {
	page, limit := normalizePage(query.Page, query.Limit)

	where := `WHERE public`
	args := []any{}
	if query.ViewerID > 0 {
		where = `WHERE public OR owner_id = $1`
		args = append(args, query.ViewerID)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM projects `+where, args...).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count projects: %w", err)
	}

	args = append(args, limit, pageOffset(page, limit))
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT `+projectColumns+` FROM projects %s
		 ORDER BY created_at DESC, id DESC
		 LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, model.Meta{}, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}

	return projects, pageMeta(page, limit, total), rows.Err()
}
