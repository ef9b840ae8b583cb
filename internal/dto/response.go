package dto

// ── auth responses ──

// TokenResponse token pair
type TokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	ExpiresIn    int             `json:"expires_in"` // seconds
	User         AccountResponse `json:"user"`
}

// AccountResponse signed-in identity, volunteer or admin
type AccountResponse struct {
	ID            int64  `json:"id"`
	Role          string `json:"role"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Username      string `json:"username,omitempty"`
	VolunteerCode string `json:"volunteer_id,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// ── pagination ──

// PaginationRequest common paging query
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// GetPage page number with default
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize page size with default
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 50
	}
	return p.PageSize
}

// GetOffset row offset
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
