package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Aniketv10/E-Commerce-Back-End/internal/common"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/common/security"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/domain/repository"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/platform/mail"
)

// PasswordService owns the reset-token lifecycle (issue, redeem) and
// logged-in password changes.
type PasswordService struct {
	userRepo    repository.UserRepository
	tokens      *security.TokenManager
	mailer      mail.Mailer
	resetTTL    time.Duration
	mailTimeout time.Duration
}

func NewPasswordService(
	userRepo repository.UserRepository,
	tokens *security.TokenManager,
	mailer mail.Mailer,
	resetTTL time.Duration,
	mailTimeout time.Duration,
) *PasswordService {
	return &PasswordService{
		userRepo:    userRepo,
		tokens:      tokens,
		mailer:      mailer,
		resetTTL:    resetTTL,
		mailTimeout: mailTimeout,
	}
}

// ForgotPassword issues a single-use reset token and mails its URL.
// Re-issuing overwrites any outstanding token, so the previous raw token
// becomes unredeemable the moment a new one is stored. If delivery fails the
// stored digest and expiry are rolled back, leaving no redeemable token the
// user never received.
//
// A missing email returns ErrNotFound. This intentionally reveals whether an
// account exists, matching product behavior; see DESIGN.md.
func (s *PasswordService) ForgotPassword(ctx context.Context, email, baseURL string) error {
	if email == "" {
		return common.Errorf("email is required: %w", common.ErrBadRequest)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.Errorf("no user registered with this email: %w", common.ErrNotFound)
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	rawToken, digest, err := security.NewResetToken()
	if err != nil {
		return err
	}

	// The digest must be durably stored before the raw token leaves the
	// process, otherwise a delivered token could be unredeemable.
	expiry := time.Now().Add(s.resetTTL)
	if err := s.userRepo.SetResetToken(ctx, user.ID, digest, expiry); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := baseURL + "/api/v1/password/reset/" + rawToken
	body := "Your password reset token is as follow:\n\n" + resetURL +
		"\n\nIf you have not requested this email then ignore it."

	mailCtx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()

	if err := s.mailer.Send(mailCtx, user.Email, "E-Commerce Password Recovery", body); err != nil {
		// Roll back so a failed send never leaves an active token the user
		// does not know about. Use a fresh context: the request context may
		// already be past its mail deadline.
		rollbackCtx, rollbackCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer rollbackCancel()
		if clearErr := s.userRepo.ClearResetToken(rollbackCtx, user.ID); clearErr != nil {
			log.Printf("ERROR: failed to roll back reset token for user %s: %v", user.ID, clearErr)
		}
		return common.Errorf("could not send reset email: %w (%v)", common.ErrMailDelivery, err)
	}

	return nil
}

// ResetPassword redeems a raw reset token. The password write and the token
// clear happen in one conditional update keyed on the stored digest, so when
// two redeemers race, exactly one wins; the loser sees ErrResetTokenInvalid.
func (s *PasswordService) ResetPassword(ctx context.Context, rawToken, password, confirmPassword string) (*AuthResponse, error) {
	if rawToken == "" || password == "" {
		return nil, common.Errorf("token and password are required: %w", common.ErrBadRequest)
	}

	digest := security.HashResetToken(rawToken)

	user, err := s.userRepo.FindByValidResetToken(ctx, digest)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("failed to look up reset token: %w", err)
	}

	// Checked before any mutation.
	if password != confirmPassword {
		return nil, common.ErrPasswordMismatch
	}

	hashedPassword, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	ok, err := s.userRepo.RedeemResetToken(ctx, user.ID, digest, hashedPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem reset token: %w", err)
	}
	if !ok {
		// Lost the race to a concurrent redemption, or the token expired
		// between lookup and update.
		return nil, common.ErrResetTokenInvalid
	}

	user.HashedPassword = hashedPassword
	return issueCredential(s.tokens, user)
}

// UpdatePassword changes the password of a logged-in user after verifying
// the old one. Reusing the old password is rejected.
func (s *PasswordService) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) (*AuthResponse, error) {
	if oldPassword == "" || newPassword == "" {
		return nil, common.Errorf("old and new passwords are required: %w", common.ErrBadRequest)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(oldPassword, user.HashedPassword) {
		return nil, common.ErrInvalidCredentials
	}
	if oldPassword == newPassword {
		return nil, common.ErrPasswordReused
	}

	hashedPassword, err := security.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	user.HashedPassword = hashedPassword
	return issueCredential(s.tokens, user)
}
