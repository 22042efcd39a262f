package postgres

import (
	"context"
	"database/sql"

	"github.com/bitcoindistrict/bookclub-api/internal/domain/role"
)

type RoleRepo struct {
	db *sql.DB
}

func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{db: db}
}

func (r *RoleRepo) Insert(ctx context.Context, g *role.Grant) error {
	query := `
        INSERT INTO user_roles (user_id, role)
        VALUES ($1, $2)
        RETURNING id, created_at
    `
	err := r.db.QueryRowContext(ctx, query, g.UserID, g.Role).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return role.ErrAlreadyGranted
		}
		return err
	}
	return nil
}

func (r *RoleRepo) Delete(ctx context.Context, userID, roleName string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role = $2`, userID, roleName)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return role.ErrGrantNotFound
	}
	return nil
}

func (r *RoleRepo) Exists(ctx context.Context, userID, roleName string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)`,
		userID, roleName,
	).Scan(&ok)
	return ok, err
}

func (r *RoleRepo) List(ctx context.Context, roleName string) ([]role.Grant, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, user_id, role, created_at
        FROM user_roles
        WHERE role = $1
        ORDER BY created_at
    `, roleName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []role.Grant
	for rows.Next() {
		var g role.Grant
		if err := rows.Scan(&g.ID, &g.UserID, &g.Role, &g.CreatedAt); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}
