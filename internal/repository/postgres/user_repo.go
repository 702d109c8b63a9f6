package postgres

import (
	"context"

	"github.com/and161185/shopguard/internal/errs"
	"github.com/and161185/shopguard/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, username, email, password, role, deluxe_token, last_login_ip, profile_image, totp_secret, is_active, created_at, updated_at, deleted_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Role, &u.DeluxeToken, &u.LastLoginIP,
		&u.ProfileImage, &u.TotpSecret, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, username, email, password, role, deluxe_token, profile_image, totp_secret, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Username, u.Email, u.Password, u.Role, u.DeluxeToken, u.ProfileImage, u.TotpSecret, u.IsActive)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1 AND deleted_at IS NULL`
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, id))
	return u, mapNoRows(err)
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email=$1 AND deleted_at IS NULL`
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, email))
	return u, mapNoRows(err)
}

// List selects all users in insertion order, soft-deleted ones included.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// SetLastLoginIP updates last_login_ip.
func (r *UserRepo) SetLastLoginIP(ctx context.Context, id uuid.UUID, ip string) error {
	const q = `UPDATE users SET last_login_ip=$2, updated_at=now() WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, ip)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
