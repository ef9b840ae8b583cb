package dto

// ── auth DTOs ──

// LoginRequest volunteer login
type LoginRequest struct {
	Username   string `json:"username"    binding:"required"`
	Password   string `json:"password"    binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// AdminLoginRequest admin login
type AdminLoginRequest struct {
	Email      string `json:"email"       binding:"required,email"`
	Password   string `json:"password"    binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshTokenRequest refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest change own password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// RegisterVolunteerRequest self registration
type RegisterVolunteerRequest struct {
	Username  string `json:"username"   binding:"required,min=3,max=50"`
	Email     string `json:"email"      binding:"required,email,max=255"`
	Password  string `json:"password"   binding:"required,min=8,max=72"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name"  binding:"required,max=100"`
	ProfileFields
}

// RegisterAdminRequest admin creates another admin
type RegisterAdminRequest struct {
	Name     string `json:"name"     binding:"required,max=100"`
	Email    string `json:"email"    binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// PasswordResetRequest asks for a reset link
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetConfirmRequest sets a new password with a reset token
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"        binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}
