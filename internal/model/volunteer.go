package model

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Volunteer volunteers table
type Volunteer struct {
	ID            int64   `gorm:"primaryKey;autoIncrement"   json:"id"`
	VolunteerCode *string `gorm:"type:varchar(20)"           json:"volunteer_id,omitempty"`
	Username      string  `gorm:"type:varchar(50);not null"  json:"username"`
	Email         string  `gorm:"type:varchar(255);not null" json:"email"`
	PasswordHash  string  `gorm:"type:varchar(255);not null" json:"-"`
	FirstName     string  `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName      string  `gorm:"type:varchar(100);not null" json:"last_name"`
	VolunteerProfile
	VolunteerDocuments
	BaseModel
}

// VolunteerProfile extended registration details
type VolunteerProfile struct {
	DateOfBirth           *time.Time     `gorm:"type:date"          json:"date_of_birth,omitempty"`
	Gender                string         `gorm:"type:varchar(20)"   json:"gender,omitempty"`
	Nationality           string         `gorm:"type:varchar(100)"  json:"nationality,omitempty"`
	Phone                 string         `gorm:"type:varchar(30)"   json:"phone,omitempty"`
	Address               string         `gorm:"type:text"          json:"address,omitempty"`
	City                  string         `gorm:"type:varchar(100)"  json:"city,omitempty"`
	State                 string         `gorm:"type:varchar(100)"  json:"state,omitempty"`
	Pincode               string         `gorm:"type:varchar(20)"   json:"pincode,omitempty"`
	Occupation            string         `gorm:"type:varchar(100)"  json:"occupation,omitempty"`
	Organization          string         `gorm:"type:varchar(200)"  json:"organization,omitempty"`
	Skills                string         `gorm:"type:text"          json:"skills,omitempty"`
	PreferredWorkingDays  pq.StringArray `gorm:"type:text[]"        json:"preferred_working_days,omitempty"`
	FieldsOfInterest      pq.StringArray `gorm:"type:text[]"        json:"fields_of_interest,omitempty"`
	AvailabilityHours     *int           `gorm:"type:integer"       json:"availability_hours,omitempty"`
	EmergencyContactName  string         `gorm:"type:varchar(100)"  json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string         `gorm:"type:varchar(30)"   json:"emergency_contact_phone,omitempty"`
	HowDidYouHear         string         `gorm:"type:varchar(200)"  json:"how_did_you_hear,omitempty"`
}

// VolunteerDocuments uploaded identity documents
type VolunteerDocuments struct {
	PassportPhoto []byte `gorm:"type:bytea" json:"-"`
	AadharCard    []byte `gorm:"type:bytea" json:"-"`
	PanCard       []byte `gorm:"type:bytea" json:"-"`
}

// Document kinds
const (
	DocumentPassportPhoto = "passport_photo"
	DocumentAadhar        = "aadhar"
	DocumentPAN           = "pan"
)

// DocumentKinds every accepted document kind
var DocumentKinds = []string{DocumentPassportPhoto, DocumentAadhar, DocumentPAN}

// DocumentColumn maps a document kind to its column
func DocumentColumn(kind string) (string, bool) {
	switch kind {
	case DocumentPassportPhoto:
		return "passport_photo", true
	case DocumentAadhar:
		return "aadhar_card", true
	case DocumentPAN:
		return "pan_card", true
	}
	return "", false
}

// Document returns the stored bytes for kind
func (d *VolunteerDocuments) Document(kind string) []byte {
	switch kind {
	case DocumentPassportPhoto:
		return d.PassportPhoto
	case DocumentAadhar:
		return d.AadharCard
	case DocumentPAN:
		return d.PanCard
	}
	return nil
}

// TableName table name
func (Volunteer) TableName() string { return "volunteers" }

// FullName first and last name
func (v *Volunteer) FullName() string {
	return v.FirstName + " " + v.LastName
}

// Code public volunteer id, empty before assignment
func (v *Volunteer) Code() string {
	if v.VolunteerCode == nil {
		return ""
	}
	return *v.VolunteerCode
}

// FormatVolunteerCode builds the public id from the serial id, e.g. mima000042
func FormatVolunteerCode(id int64) string {
	return fmt.Sprintf("mima%06d", id)
}
