package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigboard/gigboard/internal/domain/user"
)

// UserRepository implements user.Repository.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (user_id, external_id, email, first_name, last_name, profile_image, roles, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`, u.UserID, u.ExternalID, u.Email, u.FirstName, u.LastName, u.ProfileImage, rolesToStrings(u.Roles), u.CreatedAt, u.UpdatedAt)
	return row.Scan(&u.ID)
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET email=$1, first_name=$2, last_name=$3, profile_image=$4, roles=$5, updated_at=$6
		WHERE user_id=$7
	`, u.Email, u.FirstName, u.LastName, u.ProfileImage, rolesToStrings(u.Roles), u.UpdatedAt, u.UserID)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	row := r.pool.QueryRow(ctx, userSelect+` WHERE user_id=$1`, userID)
	return scanUser(row)
}

func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (*user.User, error) {
	row := r.pool.QueryRow(ctx, userSelect+` WHERE external_id=$1`, externalID)
	return scanUser(row)
}

const userSelect = `
	SELECT id, user_id, external_id, email, first_name, last_name, profile_image, roles, created_at, updated_at
	FROM users`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	var roles []string
	if err := row.Scan(&u.ID, &u.UserID, &u.ExternalID, &u.Email, &u.FirstName, &u.LastName, &u.ProfileImage, &roles, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	u.Roles = rolesFromStrings(roles)
	return &u, nil
}

func rolesToStrings(roles []user.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func rolesFromStrings(values []string) []user.Role {
	out := make([]user.Role, len(values))
	for i, v := range values {
		out[i] = user.Role(v)
	}
	return out
}
