package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/abygeorge8848/VolunteeringPortal/config"
	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
	"github.com/abygeorge8848/VolunteeringPortal/internal/repository"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/jwt"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/mail"
)

// ── password reset errors ──

var (
	ErrEmailNotFound     = errors.New("no account is registered with this email")
	ErrResetTokenInvalid = errors.New("reset token is invalid or has expired")
)

const (
	resetTokenBytes  = 32
	resetMailSubject = "Password Reset Request"
)

// PasswordResetService email-link password recovery
type PasswordResetService interface {
	// RequestReset stores a fresh token for email and mails the link
	RequestReset(ctx context.Context, accountType, email string) error
	// ResetPassword consumes token and sets the new password
	ResetPassword(ctx context.Context, token, newPassword string) error
	// PurgeExpired deletes expired tokens and returns how many went
	PurgeExpired(ctx context.Context) (int64, error)
}

type passwordResetService struct {
	cfg    *config.ResetConfig
	repo   *repository.Repository
	mailer mail.Sender
	creds  *credentialCache
	now    func() time.Time
	logger *zap.Logger
}

// NewPasswordResetService creates a PasswordResetService. creds is the cache
// shared with the AuthService.
func NewPasswordResetService(
	cfg *config.ResetConfig,
	repo *repository.Repository,
	mailer mail.Sender,
	creds *credentialCache,
	logger *zap.Logger,
) PasswordResetService {
	return &passwordResetService{
		cfg:    cfg,
		repo:   repo,
		mailer: mailer,
		creds:  creds,
		now:    time.Now,
		logger: logger,
	}
}

func (s *passwordResetService) RequestReset(ctx context.Context, accountType, email string) error {
	// 1. the account must exist
	var err error
	switch accountType {
	case model.AccountAdmin:
		_, err = s.repo.Admin.GetByEmail(ctx, email)
	case model.AccountVolunteer:
		_, err = s.repo.Volunteer.GetByEmail(ctx, email)
	default:
		return fmt.Errorf("unknown account type %q", accountType)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmailNotFound
		}
		s.logger.Error("lookup reset email failed", zap.String("account_type", accountType), zap.Error(err))
		return err
	}

	// 2. replace any earlier token for this email
	token, err := newResetToken()
	if err != nil {
		s.logger.Error("generate reset token failed", zap.Error(err))
		return err
	}
	now := s.now().UTC()
	record := &model.PasswordResetToken{
		Email:       email,
		AccountType: accountType,
		Token:       token,
		ExpiresAt:   now.Add(s.cfg.TokenTTL),
		CreatedAt:   now,
	}
	if err := s.repo.ResetToken.Upsert(ctx, record); err != nil {
		s.logger.Error("store reset token failed", zap.String("email", email), zap.Error(err))
		return err
	}

	// 3. mail the link
	link := s.resetLink(token)
	msg := mail.Message{
		To:      []string{email},
		Subject: resetMailSubject,
		Text: fmt.Sprintf(
			"Click the link below to reset your password:\n\n%s\n\nThe link expires in %s. "+
				"If you did not ask for a reset you can ignore this email.",
			link, s.cfg.TokenTTL),
		HTML: fmt.Sprintf(
			`<p>Click the link below to reset your password:</p><p><a href="%s">Reset password</a></p>`+
				`<p>The link expires in %s. If you did not ask for a reset you can ignore this email.</p>`,
			link, s.cfg.TokenTTL),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("send reset mail failed", zap.String("email", email), zap.Error(err))
		return err
	}

	s.logger.Info("password reset requested", zap.String("account_type", accountType), zap.String("email", email))
	return nil
}

func (s *passwordResetService) resetLink(token string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/?reset_token=" + url.QueryEscape(token)
}

func (s *passwordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	record, err := s.repo.ResetToken.GetValid(ctx, token, s.now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		s.logger.Error("lookup reset token failed", zap.Error(err))
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return err
	}

	var cred *credential
	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		var err error
		switch record.AccountType {
		case model.AccountAdmin:
			a, err := tx.Admin.GetByEmail(ctx, record.Email)
			if err != nil {
				return err
			}
			cred = adminCredential(a)
		default:
			v, err := tx.Volunteer.GetByEmail(ctx, record.Email)
			if err != nil {
				return err
			}
			cred = volunteerCredential(v)
		}

		if cred.Role == jwt.RoleAdmin {
			err = tx.Admin.UpdatePassword(ctx, cred.ID, hash)
		} else {
			err = tx.Volunteer.UpdatePassword(ctx, cred.ID, hash)
		}
		if err != nil {
			return err
		}
		return tx.ResetToken.DeleteByEmail(ctx, record.Email)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// account deleted after the token was issued
			return ErrResetTokenInvalid
		}
		s.logger.Error("reset password failed", zap.String("email", record.Email), zap.Error(err))
		return err
	}

	s.creds.invalidate(ctx, cred.Role, cred.loginName())
	s.logger.Info("password reset completed", zap.String("account_type", record.AccountType), zap.String("email", record.Email))
	return nil
}

func (s *passwordResetService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.ResetToken.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		s.logger.Error("purge reset tokens failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired reset tokens purged", zap.Int64("count", n))
	}
	return n, nil
}

// newResetToken 32 random bytes, URL-safe base64 without padding
func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
