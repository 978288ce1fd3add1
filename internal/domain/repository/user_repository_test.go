package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Aniketv10/E-Commerce-Back-End/internal/common"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserRepoWithMock(t *testing.T) (UserRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPgUserRepository(db), mock, db
}

func userRows(u *model.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "hashed_password", "role", "avatar_url",
		"reset_token_hash", "reset_token_expiry", "created_at", "updated_at",
	}).AddRow(u.ID, u.Name, u.Email, u.HashedPassword, u.Role, u.AvatarURL,
		u.ResetTokenHash, u.ResetTokenExpiry, u.CreatedAt, u.UpdatedAt)
}

func TestPgUserRepository_FindByEmail(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	want := &model.User{
		ID: "user-1", Name: "Alice", Email: "a@x.com", HashedPassword: "hash",
		Role: model.RoleUser, AvatarURL: model.DefaultAvatarURL,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(userRows(want))

	got, err := repo.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Email, got.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_FindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
		WithArgs("nobody@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPgUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &model.User{
		ID: "user-1", Name: "Alice", Email: "a@x.com", HashedPassword: "hash", Role: model.RoleUser,
	})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestPgUserRepository_RedeemResetToken(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	// The conditional update only matches while the digest is still stored
	// and unexpired; one affected row means this caller won the redemption.
	mock.ExpectExec(`UPDATE users\s+SET hashed_password = \$1, reset_token_hash = NULL, reset_token_expiry = NULL`).
		WithArgs("new-hash", "user-1", "digest").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.RedeemResetToken(context.Background(), "user-1", "digest", "new-hash")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_RedeemResetToken_AlreadyRedeemed(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE users\s+SET hashed_password = \$1, reset_token_hash = NULL, reset_token_expiry = NULL`).
		WithArgs("new-hash", "user-1", "digest").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.RedeemResetToken(context.Background(), "user-1", "digest", "new-hash")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPgUserRepository_SetResetToken_UserMissing(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET reset_token_hash = \$1, reset_token_expiry = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetResetToken(context.Background(), "ghost", "digest", time.Now().Add(30*time.Minute))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPgUserRepository_Delete(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "user-1"))

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "ghost"), common.ErrNotFound)
}
