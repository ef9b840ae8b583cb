package dto

// ── volunteer profile DTOs ──

// ProfileFields optional profile details shared by registration and update
type ProfileFields struct {
	DateOfBirth           string   `json:"date_of_birth"           binding:"omitempty,datetime=2006-01-02"`
	Gender                string   `json:"gender"                  binding:"omitempty,max=20"`
	Nationality           string   `json:"nationality"             binding:"omitempty,max=100"`
	Phone                 string   `json:"phone"                   binding:"omitempty,max=30"`
	Address               string   `json:"address"                 binding:"omitempty,max=500"`
	City                  string   `json:"city"                    binding:"omitempty,max=100"`
	State                 string   `json:"state"                   binding:"omitempty,max=100"`
	Pincode               string   `json:"pincode"                 binding:"omitempty,max=20"`
	Occupation            string   `json:"occupation"              binding:"omitempty,max=100"`
	Organization          string   `json:"organization"            binding:"omitempty,max=200"`
	Skills                string   `json:"skills"                  binding:"omitempty,max=2000"`
	PreferredWorkingDays  []string `json:"preferred_working_days"  binding:"omitempty,max=7,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	FieldsOfInterest      []string `json:"fields_of_interest"      binding:"omitempty,max=20,dive,max=100"`
	AvailabilityHours     *int     `json:"availability_hours"      binding:"omitempty,min=0,max=168"`
	EmergencyContactName  string   `json:"emergency_contact_name"  binding:"omitempty,max=100"`
	EmergencyContactPhone string   `json:"emergency_contact_phone" binding:"omitempty,max=30"`
	HowDidYouHear         string   `json:"how_did_you_hear"        binding:"omitempty,max=200"`
}

// UpdateProfileRequest partial update; nil pointers keep the stored value
type UpdateProfileRequest struct {
	Email     *string        `json:"email"      binding:"omitempty,email,max=255"`
	FirstName *string        `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName  *string        `json:"last_name"  binding:"omitempty,min=1,max=100"`
	Profile   *ProfileFields `json:"profile"`
}

// ProfileResponse volunteer profile
type ProfileResponse struct {
	ID            int64  `json:"id"`
	VolunteerCode string `json:"volunteer_id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	ProfileFields
	Documents map[string]bool `json:"documents"`
	CreatedAt string          `json:"created_at"`
}

// DocumentResponse uploaded document metadata
type DocumentResponse struct {
	Kind        string `json:"kind"`
	Size        int    `json:"size"`
	ContentType string `json:"content_type"`
}

// RegisterResponse created volunteer
type RegisterResponse struct {
	ID            int64  `json:"id"`
	VolunteerCode string `json:"volunteer_id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
}
