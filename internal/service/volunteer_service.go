package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/abygeorge8848/VolunteeringPortal/internal/dto"
	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
	"github.com/abygeorge8848/VolunteeringPortal/internal/repository"
	pkgerrors "github.com/abygeorge8848/VolunteeringPortal/pkg/errors"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/jwt"
)

// MaxDocumentBytes upload limit per identity document
const MaxDocumentBytes = 2 << 20

// ── profile errors ──

var (
	ErrInvalidDocumentKind = errors.New("document kind must be passport_photo, aadhar or pan")
	ErrDocumentTooLarge    = errors.New("document exceeds 2 MiB")
	ErrDocumentEmpty       = errors.New("document is empty")
	ErrDocumentType        = errors.New("document must be a JPEG, PNG or PDF file")
	ErrDocumentNotFound    = errors.New("document not uploaded")
	ErrInvalidDateOfBirth  = errors.New("date_of_birth must be YYYY-MM-DD")
)

var documentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// VolunteerService own profile and identity documents
type VolunteerService interface {
	GetProfile(ctx context.Context, volunteerID int64) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, volunteerID int64, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	UploadDocument(ctx context.Context, volunteerID int64, kind string, data []byte) (*dto.DocumentResponse, error)
	// GetDocument returns the stored bytes and their sniffed content type
	GetDocument(ctx context.Context, volunteerID int64, kind string) ([]byte, string, error)
}

type volunteerService struct {
	repo   *repository.Repository
	creds  *credentialCache
	logger *zap.Logger
}

// NewVolunteerService creates a VolunteerService
func NewVolunteerService(repo *repository.Repository, creds *credentialCache, logger *zap.Logger) VolunteerService {
	return &volunteerService{repo: repo, creds: creds, logger: logger}
}

func (s *volunteerService) GetProfile(ctx context.Context, volunteerID int64) (*dto.ProfileResponse, error) {
	v, err := s.getVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	return s.toProfileResponse(ctx, v), nil
}

func (s *volunteerService) UpdateProfile(ctx context.Context, volunteerID int64, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	v, err := s.getVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != v.Email {
		other, err := s.repo.Volunteer.GetByEmail(ctx, *req.Email)
		switch {
		case err == nil && other.ID != v.ID:
			return nil, ErrEmailExists
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			s.logger.Error("check email failed", zap.Error(err))
			return nil, err
		}
		v.Email = *req.Email
	}
	if req.FirstName != nil {
		v.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		v.LastName = *req.LastName
	}
	if req.Profile != nil {
		profile, err := profileFromFields(req.Profile)
		if err != nil {
			return nil, err
		}
		v.VolunteerProfile = profile
	}
	v.UpdatedAt = time.Now().UTC()

	if err := s.repo.Volunteer.UpdateProfile(ctx, v); err != nil {
		if pkgerrors.IsUniqueViolation(err, "volunteers_email_key") {
			return nil, ErrEmailExists
		}
		s.logger.Error("update profile failed", zap.Int64("volunteer_id", volunteerID), zap.Error(err))
		return nil, err
	}

	s.creds.invalidate(ctx, jwt.RoleVolunteer, v.Username)
	s.logger.Info("profile updated", zap.Int64("volunteer_id", volunteerID))

	return s.toProfileResponse(ctx, v), nil
}

func (s *volunteerService) UploadDocument(ctx context.Context, volunteerID int64, kind string, data []byte) (*dto.DocumentResponse, error) {
	column, ok := model.DocumentColumn(kind)
	if !ok {
		return nil, ErrInvalidDocumentKind
	}
	switch {
	case len(data) == 0:
		return nil, ErrDocumentEmpty
	case len(data) > MaxDocumentBytes:
		return nil, ErrDocumentTooLarge
	}
	contentType := http.DetectContentType(data)
	if !documentTypes[contentType] {
		return nil, ErrDocumentType
	}

	if err := s.repo.Volunteer.UpdateDocument(ctx, volunteerID, column, data); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVolunteerNotFound
		}
		s.logger.Error("store document failed",
			zap.Int64("volunteer_id", volunteerID),
			zap.String("kind", kind),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("document uploaded",
		zap.Int64("volunteer_id", volunteerID),
		zap.String("kind", kind),
		zap.Int("size", len(data)))

	return &dto.DocumentResponse{Kind: kind, Size: len(data), ContentType: contentType}, nil
}

func (s *volunteerService) GetDocument(ctx context.Context, volunteerID int64, kind string) ([]byte, string, error) {
	column, ok := model.DocumentColumn(kind)
	if !ok {
		return nil, "", ErrInvalidDocumentKind
	}

	data, err := s.repo.Volunteer.GetDocument(ctx, volunteerID, column)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrVolunteerNotFound
		}
		s.logger.Error("load document failed", zap.Int64("volunteer_id", volunteerID), zap.Error(err))
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", ErrDocumentNotFound
	}
	return data, http.DetectContentType(data), nil
}

func (s *volunteerService) getVolunteer(ctx context.Context, id int64) (*model.Volunteer, error) {
	v, err := s.repo.Volunteer.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVolunteerNotFound
		}
		s.logger.Error("load volunteer failed", zap.Int64("volunteer_id", id), zap.Error(err))
		return nil, err
	}
	return v, nil
}

// toProfileResponse reports which documents exist without loading their bytes
func (s *volunteerService) toProfileResponse(ctx context.Context, v *model.Volunteer) *dto.ProfileResponse {
	resp := &dto.ProfileResponse{
		ID:            v.ID,
		VolunteerCode: v.Code(),
		Username:      v.Username,
		Email:         v.Email,
		FirstName:     v.FirstName,
		LastName:      v.LastName,
		ProfileFields: fieldsFromProfile(&v.VolunteerProfile),
		Documents:     make(map[string]bool, len(model.DocumentKinds)),
		CreatedAt:     v.CreatedAt.Format(time.RFC3339),
	}
	flags, err := s.repo.Volunteer.DocumentFlags(ctx, v.ID)
	if err != nil {
		s.logger.Warn("document flags failed", zap.Int64("volunteer_id", v.ID), zap.Error(err))
	}
	for _, kind := range model.DocumentKinds {
		column, _ := model.DocumentColumn(kind)
		resp.Documents[kind] = flags[column]
	}
	return resp
}

// ── profile conversions ──

func profileFromFields(f *dto.ProfileFields) (model.VolunteerProfile, error) {
	p := model.VolunteerProfile{
		Gender:                f.Gender,
		Nationality:           f.Nationality,
		Phone:                 f.Phone,
		Address:               f.Address,
		City:                  f.City,
		State:                 f.State,
		Pincode:               f.Pincode,
		Occupation:            f.Occupation,
		Organization:          f.Organization,
		Skills:                f.Skills,
		PreferredWorkingDays:  f.PreferredWorkingDays,
		FieldsOfInterest:      f.FieldsOfInterest,
		AvailabilityHours:     f.AvailabilityHours,
		EmergencyContactName:  f.EmergencyContactName,
		EmergencyContactPhone: f.EmergencyContactPhone,
		HowDidYouHear:         f.HowDidYouHear,
	}
	if f.DateOfBirth != "" {
		dob, err := time.Parse(model.DateLayout, f.DateOfBirth)
		if err != nil {
			return model.VolunteerProfile{}, ErrInvalidDateOfBirth
		}
		p.DateOfBirth = &dob
	}
	return p, nil
}

func fieldsFromProfile(p *model.VolunteerProfile) dto.ProfileFields {
	f := dto.ProfileFields{
		Gender:                p.Gender,
		Nationality:           p.Nationality,
		Phone:                 p.Phone,
		Address:               p.Address,
		City:                  p.City,
		State:                 p.State,
		Pincode:               p.Pincode,
		Occupation:            p.Occupation,
		Organization:          p.Organization,
		Skills:                p.Skills,
		PreferredWorkingDays:  p.PreferredWorkingDays,
		FieldsOfInterest:      p.FieldsOfInterest,
		AvailabilityHours:     p.AvailabilityHours,
		EmergencyContactName:  p.EmergencyContactName,
		EmergencyContactPhone: p.EmergencyContactPhone,
		HowDidYouHear:         p.HowDidYouHear,
	}
	if p.DateOfBirth != nil {
		f.DateOfBirth = p.DateOfBirth.Format(model.DateLayout)
	}
	return f
}
