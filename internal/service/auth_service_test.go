package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/abygeorge8848/VolunteeringPortal/config"
	"github.com/abygeorge8848/VolunteeringPortal/internal/dto"
	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/jwt"
)

// ── in-memory blacklist ──

type memoryBlacklist struct {
	revoked map[string]time.Duration
}

func newMemoryBlacklist() *memoryBlacklist {
	return &memoryBlacklist{revoked: make(map[string]time.Duration)}
}

func (b *memoryBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	b.revoked[jti] = ttl
	return nil
}

func (b *memoryBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := b.revoked[jti]
	return ok, nil
}

// ── fixture ──

type authFixture struct {
	svc       AuthService
	mocks     *mockRepos
	store     *memoryStore
	blacklist *memoryBlacklist
	jwtMgr    *jwt.Manager
	cfg       *config.Config
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 7 * 24 * time.Hour,
		},
		Reset: config.ResetConfig{
			BaseURL:  "https://portal.example.org",
			TokenTTL: time.Hour,
		},
		Redis: config.RedisConfig{CacheTTL: time.Minute},
	}
}

func setupTestAuthService() *authFixture {
	cfg := testConfig()
	repo, mocks := newTestRepository()
	store := newMemoryStore()
	blacklist := newMemoryBlacklist()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	creds := newCredentialCache(store, time.Minute, zap.NewNop())

	return &authFixture{
		svc:       NewAuthService(cfg, repo, jwtMgr, blacklist, creds, zap.NewNop()),
		mocks:     mocks,
		store:     store,
		blacklist: blacklist,
		jwtMgr:    jwtMgr,
		cfg:       cfg,
	}
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(hash)
}

// ════════════════════════════════════════════════════════════
// Login
// ════════════════════════════════════════════════════════════

func TestLogin_Success(t *testing.T) {
	f := setupTestAuthService()
	v := f.mocks.addVolunteer("alice", mustHash(t, "password123"))

	result, err := f.svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "password123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("expected both tokens")
	}
	if result.ExpiresIn != 900 {
		t.Errorf("ExpiresIn = %d, want 900", result.ExpiresIn)
	}
	if result.User.Role != jwt.RoleVolunteer || result.User.ID != v.ID {
		t.Errorf("unexpected user %+v", result.User)
	}
	if result.User.VolunteerCode != model.FormatVolunteerCode(v.ID) {
		t.Errorf("VolunteerCode = %s", result.User.VolunteerCode)
	}

	claims, err := f.jwtMgr.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("access token does not parse: %v", err)
	}
	if claims.UserID != v.ID || claims.Role != jwt.RoleVolunteer {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	f := setupTestAuthService()
	f.mocks.addVolunteer("alice", mustHash(t, "password123"))

	_, err := f.svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	f := setupTestAuthService()

	_, err := f.svc.Login(context.Background(), &dto.LoginRequest{Username: "ghost", Password: "password123"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_CachesCredential(t *testing.T) {
	f := setupTestAuthService()
	f.mocks.addVolunteer("alice", mustHash(t, "password123"))
	ctx := context.Background()

	if _, err := f.svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "password123"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, ok := f.store.data[credentialKey(jwt.RoleVolunteer, "alice")]; !ok {
		t.Fatal("credential should be cached after login")
	}

	// served from cache even when the row is gone
	delete(f.mocks.volunteers.volunteers, 1)
	if _, err := f.svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "password123"}); err != nil {
		t.Errorf("cached login failed: %v", err)
	}
}

func TestAdminLogin(t *testing.T) {
	f := setupTestAuthService()
	_ = f.mocks.admins.Create(context.Background(), &model.Admin{
		Name: "Root", Email: "root@example.org", PasswordHash: mustHash(t, "adminpass1"),
	})

	result, err := f.svc.AdminLogin(context.Background(), &dto.AdminLoginRequest{Email: "root@example.org", Password: "adminpass1"})
	if err != nil {
		t.Fatalf("AdminLogin failed: %v", err)
	}
	if result.User.Role != jwt.RoleAdmin {
		t.Errorf("Role = %s, want admin", result.User.Role)
	}

	// a volunteer username is not an admin login
	if _, err := f.svc.AdminLogin(context.Background(), &dto.AdminLoginRequest{Email: "nobody@example.org", Password: "adminpass1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// Refresh / Logout
// ════════════════════════════════════════════════════════════

func TestRefreshToken_RotatesAndRevokes(t *testing.T) {
	f := setupTestAuthService()
	f.mocks.addVolunteer("alice", mustHash(t, "password123"))
	ctx := context.Background()

	login, err := f.svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "password123", RememberMe: true})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	refreshed, err := f.svc.RefreshToken(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.RefreshToken == login.RefreshToken {
		t.Error("expected a new token pair")
	}

	if _, err := f.svc.RefreshToken(ctx, login.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("reusing a rotated refresh token should fail, got %v", err)
	}
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	f := setupTestAuthService()
	f.mocks.addVolunteer("alice", mustHash(t, "password123"))

	login, _ := f.svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "password123"})
	if _, err := f.svc.RefreshToken(context.Background(), login.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshToken_Garbage(t *testing.T) {
	f := setupTestAuthService()
	if _, err := f.svc.RefreshToken(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestLogout_Blacklists(t *testing.T) {
	f := setupTestAuthService()
	if err := f.svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if ttl, ok := f.blacklist.revoked["jti-1"]; !ok || ttl <= 0 {
		t.Errorf("jti not blacklisted with a positive ttl: %v %v", ok, ttl)
	}
}

// ════════════════════════════════════════════════════════════
// Registration
// ════════════════════════════════════════════════════════════

func registerRequest(username, email string) *dto.RegisterVolunteerRequest {
	return &dto.RegisterVolunteerRequest{
		Username:  username,
		Email:     email,
		Password:  "password123",
		FirstName: "New",
		LastName:  "Volunteer",
		ProfileFields: dto.ProfileFields{
			DateOfBirth:          "1990-04-01",
			City:                 "Kochi",
			PreferredWorkingDays: []string{"Saturday", "Sunday"},
		},
	}
}

func TestRegisterVolunteer_AssignsCode(t *testing.T) {
	f := setupTestAuthService()

	result, err := f.svc.RegisterVolunteer(context.Background(), registerRequest("newbie", "newbie@example.org"))
	if err != nil {
		t.Fatalf("RegisterVolunteer failed: %v", err)
	}
	if result.VolunteerCode != "mima000001" {
		t.Errorf("VolunteerCode = %s, want mima000001", result.VolunteerCode)
	}

	stored := f.mocks.volunteers.volunteers[result.ID]
	if stored.Code() != result.VolunteerCode {
		t.Errorf("stored code %q differs from response", stored.Code())
	}
	if stored.DateOfBirth == nil || stored.DateOfBirth.Format(model.DateLayout) != "1990-04-01" {
		t.Errorf("date of birth not stored: %v", stored.DateOfBirth)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")); err != nil {
		t.Error("password was not hashed with bcrypt")
	}
}

func TestRegisterVolunteer_Duplicates(t *testing.T) {
	f := setupTestAuthService()
	ctx := context.Background()
	if _, err := f.svc.RegisterVolunteer(ctx, registerRequest("newbie", "newbie@example.org")); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	if _, err := f.svc.RegisterVolunteer(ctx, registerRequest("newbie", "other@example.org")); !errors.Is(err, ErrUsernameExists) {
		t.Errorf("expected ErrUsernameExists, got %v", err)
	}
	if _, err := f.svc.RegisterVolunteer(ctx, registerRequest("other", "newbie@example.org")); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestRegisterVolunteer_BadDateOfBirth(t *testing.T) {
	f := setupTestAuthService()
	req := registerRequest("newbie", "newbie@example.org")
	req.DateOfBirth = "01/04/1990"

	if _, err := f.svc.RegisterVolunteer(context.Background(), req); !errors.Is(err, ErrInvalidDateOfBirth) {
		t.Errorf("expected ErrInvalidDateOfBirth, got %v", err)
	}
}

func TestRegisterAdmin_DuplicateEmail(t *testing.T) {
	f := setupTestAuthService()
	ctx := context.Background()
	req := &dto.RegisterAdminRequest{Name: "Ops", Email: "ops@example.org", Password: "adminpass1"}

	if _, err := f.svc.RegisterAdmin(ctx, req); err != nil {
		t.Fatalf("RegisterAdmin failed: %v", err)
	}
	if _, err := f.svc.RegisterAdmin(ctx, req); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	f := setupTestAuthService()
	ctx := context.Background()

	// no email configured: nothing happens
	if err := f.svc.EnsureBootstrapAdmin(ctx); err != nil {
		t.Fatalf("EnsureBootstrapAdmin failed: %v", err)
	}
	if len(f.mocks.admins.admins) != 0 {
		t.Fatal("no admin should be created without configuration")
	}

	f.cfg.Bootstrap = config.BootstrapConfig{AdminName: "Root", AdminEmail: "root@example.org"}
	if err := f.svc.EnsureBootstrapAdmin(ctx); !errors.Is(err, ErrBootstrapPassword) {
		t.Errorf("expected ErrBootstrapPassword, got %v", err)
	}

	f.cfg.Bootstrap.AdminPassword = "bootstrap-pass"
	if err := f.svc.EnsureBootstrapAdmin(ctx); err != nil {
		t.Fatalf("EnsureBootstrapAdmin failed: %v", err)
	}
	if err := f.svc.EnsureBootstrapAdmin(ctx); err != nil {
		t.Fatalf("second EnsureBootstrapAdmin failed: %v", err)
	}
	if len(f.mocks.admins.admins) != 1 {
		t.Errorf("expected exactly 1 admin, got %d", len(f.mocks.admins.admins))
	}
}

// ════════════════════════════════════════════════════════════
// Password change
// ════════════════════════════════════════════════════════════

func TestChangePassword_InvalidatesCache(t *testing.T) {
	f := setupTestAuthService()
	v := f.mocks.addVolunteer("alice", mustHash(t, "password123"))
	ctx := context.Background()

	if _, err := f.svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "password123"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	err := f.svc.ChangePassword(ctx, v.ID, jwt.RoleVolunteer, &dto.ChangePasswordRequest{
		OldPassword: "password123",
		NewPassword: "newpassword456",
	})
	if err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if _, ok := f.store.data[credentialKey(jwt.RoleVolunteer, "alice")]; ok {
		t.Error("cached credential should be invalidated")
	}

	if _, err := f.svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "password123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password should no longer work, got %v", err)
	}
	if _, err := f.svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "newpassword456"}); err != nil {
		t.Errorf("new password should work: %v", err)
	}
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	f := setupTestAuthService()
	v := f.mocks.addVolunteer("alice", mustHash(t, "password123"))

	err := f.svc.ChangePassword(context.Background(), v.ID, jwt.RoleVolunteer, &dto.ChangePasswordRequest{
		OldPassword: "nope",
		NewPassword: "newpassword456",
	})
	if !errors.Is(err, ErrWrongPassword) {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
}

func TestGetCurrentUser_NotFound(t *testing.T) {
	f := setupTestAuthService()
	if _, err := f.svc.GetCurrentUser(context.Background(), 42, jwt.RoleAdmin); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}
