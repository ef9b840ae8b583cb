package dto

// ── project DTOs ──

// CreateProjectRequest admin adds a project
type CreateProjectRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// ProjectResponse project
type ProjectResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedBy *int64 `json:"created_by,omitempty"`
	CreatedAt string `json:"created_at"`
}
