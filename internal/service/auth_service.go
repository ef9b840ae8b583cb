package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/abygeorge8848/VolunteeringPortal/config"
	"github.com/abygeorge8848/VolunteeringPortal/internal/dto"
	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
	"github.com/abygeorge8848/VolunteeringPortal/internal/repository"
	pkgerrors "github.com/abygeorge8848/VolunteeringPortal/pkg/errors"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/jwt"
)

// ── auth errors ──

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrBootstrapPassword  = errors.New("bootstrap admin needs a password")
)

// tokenBlacklist revoked token ids
type tokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService credential verification and account creation
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	GetCurrentUser(ctx context.Context, userID int64, role string) (*dto.AccountResponse, error)
	ChangePassword(ctx context.Context, userID int64, role string, req *dto.ChangePasswordRequest) error
	RegisterVolunteer(ctx context.Context, req *dto.RegisterVolunteerRequest) (*dto.RegisterResponse, error)
	RegisterAdmin(ctx context.Context, req *dto.RegisterAdminRequest) (*dto.AccountResponse, error)
	// EnsureBootstrapAdmin creates the configured admin when no admin exists
	EnsureBootstrapAdmin(ctx context.Context) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist tokenBlacklist
	creds     *credentialCache
	logger    *zap.Logger
}

// NewAuthService creates an AuthService. blacklist may be nil.
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist tokenBlacklist,
	creds *credentialCache,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		creds:     creds,
		logger:    logger,
	}
}

func volunteerCredential(v *model.Volunteer) *credential {
	return &credential{
		ID:            v.ID,
		Role:          jwt.RoleVolunteer,
		PasswordHash:  v.PasswordHash,
		Name:          v.FullName(),
		Email:         v.Email,
		Username:      v.Username,
		VolunteerCode: v.Code(),
		CreatedAt:     v.CreatedAt,
	}
}

func adminCredential(a *model.Admin) *credential {
	return &credential{
		ID:           a.ID,
		Role:         jwt.RoleAdmin,
		PasswordHash: a.PasswordHash,
		Name:         a.Name,
		Email:        a.Email,
		CreatedAt:    a.CreatedAt,
	}
}

// loginName the value the account signs in with
func (c *credential) loginName() string {
	if c.Role == jwt.RoleAdmin {
		return c.Email
	}
	return c.Username
}

func (c *credential) response() dto.AccountResponse {
	resp := dto.AccountResponse{
		ID:            c.ID,
		Role:          c.Role,
		Name:          c.Name,
		Email:         c.Email,
		Username:      c.Username,
		VolunteerCode: c.VolunteerCode,
	}
	if !c.CreatedAt.IsZero() {
		resp.CreatedAt = c.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

// ════════════════════════════════════════════════════════════
// Login
// ════════════════════════════════════════════════════════════

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	cred, err := s.lookup(ctx, jwt.RoleVolunteer, req.Username, func() (*credential, error) {
		v, err := s.repo.Volunteer.GetByUsername(ctx, req.Username)
		if err != nil {
			return nil, err
		}
		return volunteerCredential(v), nil
	})
	if err != nil {
		return nil, err
	}
	return s.issue(cred, req.Password, req.RememberMe)
}

func (s *authService) AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.TokenResponse, error) {
	cred, err := s.lookup(ctx, jwt.RoleAdmin, req.Email, func() (*credential, error) {
		a, err := s.repo.Admin.GetByEmail(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		return adminCredential(a), nil
	})
	if err != nil {
		return nil, err
	}
	return s.issue(cred, req.Password, req.RememberMe)
}

// lookup reads the credential cache, falling back to load
func (s *authService) lookup(ctx context.Context, role, login string, load func() (*credential, error)) (*credential, error) {
	if cred, ok := s.creds.get(ctx, role, login); ok {
		return cred, nil
	}

	cred, err := load()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("load credential failed", zap.String("role", role), zap.Error(err))
		return nil, err
	}

	s.creds.put(ctx, login, cred)
	return cred, nil
}

func (s *authService) issue(cred *credential, password string, rememberMe bool) (*dto.TokenResponse, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.tokenPair(cred, rememberMe)
}

func (s *authService) tokenPair(cred *credential, rememberMe bool) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(cred.ID, cred.Role)
	if err != nil {
		s.logger.Error("generate access token failed", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(cred.ID, cred.Role, rememberMe)
	if err != nil {
		s.logger.Error("generate refresh token failed", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         cred.response(),
	}, nil
}

// ════════════════════════════════════════════════════════════
// RefreshToken / Logout
// ════════════════════════════════════════════════════════════

// RefreshToken rotates the pair; the presented refresh token is revoked
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TypeRefresh {
		return nil, ErrInvalidToken
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("blacklist check failed", zap.Error(err))
		} else if revoked {
			return nil, ErrInvalidToken
		}
	}

	cred, err := s.loadByID(ctx, claims.UserID, claims.Role)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if err := s.Logout(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		s.logger.Warn("revoke refresh token failed", zap.Error(err))
	}

	return s.tokenPair(cred, claims.RememberMe)
}

// Logout revokes jti until it would have expired
func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("blacklist token failed", zap.Error(err))
		return err
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// Current user / password change
// ════════════════════════════════════════════════════════════

func (s *authService) loadByID(ctx context.Context, id int64, role string) (*credential, error) {
	var (
		cred *credential
		err  error
	)
	switch role {
	case jwt.RoleVolunteer:
		var v *model.Volunteer
		if v, err = s.repo.Volunteer.GetByID(ctx, id); err == nil {
			cred = volunteerCredential(v)
		}
	case jwt.RoleAdmin:
		var a *model.Admin
		if a, err = s.repo.Admin.GetByID(ctx, id); err == nil {
			cred = adminCredential(a)
		}
	default:
		return nil, ErrAccountNotFound
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		s.logger.Error("load account failed", zap.Int64("id", id), zap.String("role", role), zap.Error(err))
		return nil, err
	}
	return cred, nil
}

func (s *authService) GetCurrentUser(ctx context.Context, userID int64, role string) (*dto.AccountResponse, error) {
	cred, err := s.loadByID(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	resp := cred.response()
	return &resp, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID int64, role string, req *dto.ChangePasswordRequest) error {
	cred, err := s.loadByID(ctx, userID, role)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return err
	}

	if err := s.setPassword(ctx, s.repo, cred, hash); err != nil {
		s.logger.Error("update password failed", zap.Int64("id", userID), zap.String("role", role), zap.Error(err))
		return err
	}
	return nil
}

// setPassword writes the hash and drops the cached credential
func (s *authService) setPassword(ctx context.Context, repo *repository.Repository, cred *credential, hash string) error {
	var err error
	if cred.Role == jwt.RoleAdmin {
		err = repo.Admin.UpdatePassword(ctx, cred.ID, hash)
	} else {
		err = repo.Volunteer.UpdatePassword(ctx, cred.ID, hash)
	}
	if err != nil {
		return err
	}
	s.creds.invalidate(ctx, cred.Role, cred.loginName())
	return nil
}

// ════════════════════════════════════════════════════════════
// Registration
// ════════════════════════════════════════════════════════════

func (s *authService) RegisterVolunteer(ctx context.Context, req *dto.RegisterVolunteerRequest) (*dto.RegisterResponse, error) {
	// 1. uniqueness
	if _, err := s.repo.Volunteer.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("check username failed", zap.Error(err))
		return nil, err
	}
	if _, err := s.repo.Volunteer.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("check email failed", zap.Error(err))
		return nil, err
	}

	// 2. build record
	hash, err := hashPassword(req.Password)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}
	profile, err := profileFromFields(&req.ProfileFields)
	if err != nil {
		return nil, err
	}
	v := &model.Volunteer{
		Username:         req.Username,
		Email:            req.Email,
		PasswordHash:     hash,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		VolunteerProfile: profile,
	}

	// 3. insert and assign the public id from the serial id
	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Volunteer.Create(ctx, v); err != nil {
			return err
		}
		code := model.FormatVolunteerCode(v.ID)
		if err := tx.Volunteer.AssignCode(ctx, v.ID, code); err != nil {
			return err
		}
		v.VolunteerCode = &code
		return nil
	})
	if err != nil {
		switch {
		case pkgerrors.IsUniqueViolation(err, "volunteers_username_key"):
			return nil, ErrUsernameExists
		case pkgerrors.IsUniqueViolation(err, "volunteers_email_key"):
			return nil, ErrEmailExists
		}
		s.logger.Error("register volunteer failed", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	s.creds.invalidate(ctx, jwt.RoleVolunteer, v.Username)
	s.logger.Info("volunteer registered", zap.Int64("id", v.ID), zap.String("volunteer_code", v.Code()))

	return &dto.RegisterResponse{
		ID:            v.ID,
		VolunteerCode: v.Code(),
		Username:      v.Username,
		Email:         v.Email,
	}, nil
}

func (s *authService) RegisterAdmin(ctx context.Context, req *dto.RegisterAdminRequest) (*dto.AccountResponse, error) {
	if _, err := s.repo.Admin.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("check admin email failed", zap.Error(err))
		return nil, err
	}

	admin, err := s.createAdmin(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	resp := adminCredential(admin).response()
	return &resp, nil
}

func (s *authService) createAdmin(ctx context.Context, name, email, password string) (*model.Admin, error) {
	hash, err := hashPassword(password)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return nil, err
	}

	admin := &model.Admin{Name: name, Email: email, PasswordHash: hash}
	if err := s.repo.Admin.Create(ctx, admin); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		s.logger.Error("create admin failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	s.creds.invalidate(ctx, jwt.RoleAdmin, email)
	s.logger.Info("admin created", zap.Int64("id", admin.ID), zap.String("email", email))
	return admin, nil
}

func (s *authService) EnsureBootstrapAdmin(ctx context.Context) error {
	b := s.cfg.Bootstrap
	if b.AdminEmail == "" {
		return nil
	}

	n, err := s.repo.Admin.Count(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return nil
	}
	if b.AdminPassword == "" {
		return ErrBootstrapPassword
	}

	_, err = s.createAdmin(ctx, b.AdminName, b.AdminEmail, b.AdminPassword)
	return err
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
