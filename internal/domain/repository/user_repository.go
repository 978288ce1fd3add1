package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Aniketv10/E-Commerce-Back-End/internal/common"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error

	UpdatePassword(ctx context.Context, id, hashedPassword string) error

	// Reset token lifecycle. SetResetToken overwrites any outstanding token,
	// so a user never has more than one redeemable token.
	SetResetToken(ctx context.Context, id, digest string, expiry time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	FindByValidResetToken(ctx context.Context, digest string) (*model.User, error)

	// RedeemResetToken sets the new password hash and clears the token fields
	// in one conditional update. It reports false when the token no longer
	// matches or has expired, which is how a concurrent redeemer loses the race.
	RedeemResetToken(ctx context.Context, id, digest, hashedPassword string) (bool, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, name, email, hashed_password, role, avatar_url,
	          reset_token_hash, reset_token_expiry, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.HashedPassword, &user.Role, &user.AvatarURL,
		&user.ResetTokenHash, &user.ResetTokenExpiry, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, name, email, hashed_password, role, avatar_url)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.HashedPassword, user.Role, user.AvatarURL)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `SELECT id, name, email, role, avatar_url, created_at, updated_at
	          FROM users ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.List query: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgUserRepository.List scan: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.List rows.Err: %w", err)
	}
	return users, nil
}

func (r *pgUserRepository) Update(ctx context.Context, user *model.User) error {
	query := `UPDATE users SET name = $1, email = $2, role = $3, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, user.Name, user.Email, user.Role, user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("email already in use: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Update: %w", err)
	}
	return requireRowAffected(res, "pgUserRepository.Update")
}

func (r *pgUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Delete: %w", err)
	}
	return requireRowAffected(res, "pgUserRepository.Delete")
}

func (r *pgUserRepository) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	query := `UPDATE users SET hashed_password = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, hashedPassword, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdatePassword: %w", err)
	}
	return requireRowAffected(res, "pgUserRepository.UpdatePassword")
}

func (r *pgUserRepository) SetResetToken(ctx context.Context, id, digest string, expiry time.Time) error {
	query := `UPDATE users SET reset_token_hash = $1, reset_token_expiry = $2, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, digest, expiry, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.SetResetToken: %w", err)
	}
	return requireRowAffected(res, "pgUserRepository.SetResetToken")
}

func (r *pgUserRepository) ClearResetToken(ctx context.Context, id string) error {
	query := `UPDATE users SET reset_token_hash = NULL, reset_token_expiry = NULL, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.ClearResetToken: %w", err)
	}
	return requireRowAffected(res, "pgUserRepository.ClearResetToken")
}

func (r *pgUserRepository) FindByValidResetToken(ctx context.Context, digest string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE reset_token_hash = $1 AND reset_token_expiry > CURRENT_TIMESTAMP`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, digest))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.FindByValidResetToken: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) RedeemResetToken(ctx context.Context, id, digest, hashedPassword string) (bool, error) {
	query := `UPDATE users
	          SET hashed_password = $1, reset_token_hash = NULL, reset_token_expiry = NULL,
	              updated_at = CURRENT_TIMESTAMP
	          WHERE id = $2 AND reset_token_hash = $3 AND reset_token_expiry > CURRENT_TIMESTAMP`
	res, err := r.db.ExecContext(ctx, query, hashedPassword, id, digest)
	if err != nil {
		return false, fmt.Errorf("pgUserRepository.RedeemResetToken: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgUserRepository.RedeemResetToken rows affected: %w", err)
	}
	return affected == 1, nil
}

func requireRowAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
