package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
	"github.com/abygeorge8848/VolunteeringPortal/internal/repository"
	pkgerrors "github.com/abygeorge8848/VolunteeringPortal/pkg/errors"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/redis"
)

// ── Mock AdminRepository ──

type mockAdminRepo struct {
	admins map[int64]*model.Admin
	nextID int64
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{admins: make(map[int64]*model.Admin)}
}

func (m *mockAdminRepo) Create(_ context.Context, a *model.Admin) error {
	for _, existing := range m.admins {
		if existing.Email == a.Email {
			return &pgconn.PgError{Code: pkgerrors.CodeUniqueViolation, ConstraintName: "admins_email_key"}
		}
	}
	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = time.Now()
	m.admins[a.ID] = a
	return nil
}

func (m *mockAdminRepo) GetByID(_ context.Context, id int64) (*model.Admin, error) {
	if a, ok := m.admins[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminRepo) GetByEmail(_ context.Context, email string) (*model.Admin, error) {
	for _, a := range m.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.admins)), nil
}

func (m *mockAdminRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	a, ok := m.admins[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.PasswordHash = hash
	return nil
}

// ── Mock VolunteerRepository ──

type mockVolunteerRepo struct {
	volunteers map[int64]*model.Volunteer
	nextID     int64
	sheets     *mockTimesheetRepo // for SummarizeApprovedHours and cascades
}

func newMockVolunteerRepo() *mockVolunteerRepo {
	return &mockVolunteerRepo{volunteers: make(map[int64]*model.Volunteer)}
}

func (m *mockVolunteerRepo) Create(_ context.Context, v *model.Volunteer) error {
	for _, existing := range m.volunteers {
		if existing.Username == v.Username {
			return &pgconn.PgError{Code: pkgerrors.CodeUniqueViolation, ConstraintName: "volunteers_username_key"}
		}
		if existing.Email == v.Email {
			return &pgconn.PgError{Code: pkgerrors.CodeUniqueViolation, ConstraintName: "volunteers_email_key"}
		}
	}
	m.nextID++
	v.ID = m.nextID
	v.CreatedAt = time.Now()
	stored := *v
	m.volunteers[v.ID] = &stored
	return nil
}

func (m *mockVolunteerRepo) find(match func(*model.Volunteer) bool) (*model.Volunteer, error) {
	for _, v := range m.volunteers {
		if match(v) {
			cp := *v
			cp.VolunteerDocuments = model.VolunteerDocuments{}
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVolunteerRepo) GetByID(_ context.Context, id int64) (*model.Volunteer, error) {
	return m.find(func(v *model.Volunteer) bool { return v.ID == id })
}

func (m *mockVolunteerRepo) GetByUsername(_ context.Context, username string) (*model.Volunteer, error) {
	return m.find(func(v *model.Volunteer) bool { return v.Username == username })
}

func (m *mockVolunteerRepo) GetByEmail(_ context.Context, email string) (*model.Volunteer, error) {
	return m.find(func(v *model.Volunteer) bool { return v.Email == email })
}

func (m *mockVolunteerRepo) GetByCode(_ context.Context, code string) (*model.Volunteer, error) {
	return m.find(func(v *model.Volunteer) bool { return v.Code() == code })
}

func (m *mockVolunteerRepo) AssignCode(_ context.Context, id int64, code string) error {
	v, ok := m.volunteers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.VolunteerCode = &code
	return nil
}

func (m *mockVolunteerRepo) UpdateProfile(_ context.Context, v *model.Volunteer) error {
	stored, ok := m.volunteers[v.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Email = v.Email
	stored.FirstName = v.FirstName
	stored.LastName = v.LastName
	stored.VolunteerProfile = v.VolunteerProfile
	stored.UpdatedAt = v.UpdatedAt
	return nil
}

func (m *mockVolunteerRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	v, ok := m.volunteers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.PasswordHash = hash
	return nil
}

func (m *mockVolunteerRepo) GetDocument(_ context.Context, id int64, column string) ([]byte, error) {
	v, ok := m.volunteers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	switch column {
	case "passport_photo":
		return v.PassportPhoto, nil
	case "aadhar_card":
		return v.AadharCard, nil
	case "pan_card":
		return v.PanCard, nil
	}
	return nil, nil
}

func (m *mockVolunteerRepo) UpdateDocument(_ context.Context, id int64, column string, data []byte) error {
	v, ok := m.volunteers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	switch column {
	case "passport_photo":
		v.PassportPhoto = data
	case "aadhar_card":
		v.AadharCard = data
	case "pan_card":
		v.PanCard = data
	}
	return nil
}

func (m *mockVolunteerRepo) DocumentFlags(_ context.Context, id int64) (map[string]bool, error) {
	v, ok := m.volunteers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return map[string]bool{
		"passport_photo": len(v.PassportPhoto) > 0,
		"aadhar_card":    len(v.AadharCard) > 0,
		"pan_card":       len(v.PanCard) > 0,
	}, nil
}

func (m *mockVolunteerRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.volunteers[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.volunteers, id)
	if m.sheets != nil {
		for fid, f := range m.sheets.facts {
			if f.VolunteerID == id {
				delete(m.sheets.facts, fid)
			}
		}
	}
	return nil
}

func (m *mockVolunteerRepo) SummarizeApprovedHours(_ context.Context) ([]repository.VolunteerHoursSummary, error) {
	out := make([]repository.VolunteerHoursSummary, 0, len(m.volunteers))
	for _, v := range m.volunteers {
		row := repository.VolunteerHoursSummary{
			VolunteerID:   v.ID,
			VolunteerCode: v.Code(),
			FirstName:     v.FirstName,
			LastName:      v.LastName,
			Email:         v.Email,
		}
		projects := make(map[int64]bool)
		if m.sheets != nil {
			for _, f := range m.sheets.facts {
				if f.VolunteerID == v.ID && f.Status == model.StatusApproved {
					row.TotalHours += f.Hours
					projects[f.ProjectID] = true
				}
			}
		}
		row.ProjectCount = int64(len(projects))
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalHours != out[j].TotalHours {
			return out[i].TotalHours > out[j].TotalHours
		}
		return out[i].VolunteerID < out[j].VolunteerID
	})
	return out, nil
}

// ── Mock ProjectRepository ──

type mockProjectRepo struct {
	projects map[int64]*model.Project
	nextID   int64
	sheets   *mockTimesheetRepo
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[int64]*model.Project)}
}

func (m *mockProjectRepo) Create(_ context.Context, p *model.Project) error {
	for _, existing := range m.projects {
		if existing.Name == p.Name {
			return &pgconn.PgError{Code: pkgerrors.CodeUniqueViolation, ConstraintName: "projects_name_key"}
		}
	}
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id int64) (*model.Project, error) {
	if p, ok := m.projects[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) GetByName(_ context.Context, name string) (*model.Project, error) {
	for _, p := range m.projects {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) FirstOrCreateByName(ctx context.Context, name string, createdBy *int64) (*model.Project, bool, error) {
	if p, err := m.GetByName(ctx, name); err == nil {
		return p, false, nil
	}
	p := &model.Project{Name: name, CreatedBy: createdBy}
	if err := m.Create(ctx, p); err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func (m *mockProjectRepo) List(_ context.Context) ([]model.Project, error) {
	out := make([]model.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockProjectRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.projects[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	if m.sheets != nil {
		for _, f := range m.sheets.facts {
			if f.ProjectID == id {
				return &pgconn.PgError{Code: pkgerrors.CodeForeignKeyViolation, ConstraintName: "timesheets_project_id_fkey"}
			}
		}
	}
	delete(m.projects, id)
	return nil
}

func (m *mockProjectRepo) CountTimesheets(_ context.Context, projectID int64) (int64, error) {
	var n int64
	if m.sheets != nil {
		for _, f := range m.sheets.facts {
			if f.ProjectID == projectID {
				n++
			}
		}
	}
	return n, nil
}

// ── Mock TimesheetRepository ──

type mockTimesheetRepo struct {
	facts      map[int64]*model.Timesheet
	nextID     int64
	projects   *mockProjectRepo
	volunteers *mockVolunteerRepo
	createErr  error
}

func newMockTimesheetRepo() *mockTimesheetRepo {
	return &mockTimesheetRepo{facts: make(map[int64]*model.Timesheet)}
}

// withRelations copies f and attaches its project and volunteer
func (m *mockTimesheetRepo) withRelations(f *model.Timesheet) model.Timesheet {
	cp := *f
	if m.projects != nil {
		if p, ok := m.projects.projects[f.ProjectID]; ok {
			pc := *p
			cp.Project = &pc
		}
	}
	if m.volunteers != nil {
		if v, ok := m.volunteers.volunteers[f.VolunteerID]; ok {
			vc := *v
			vc.VolunteerDocuments = model.VolunteerDocuments{}
			cp.Volunteer = &vc
		}
	}
	return cp
}

func (m *mockTimesheetRepo) GetByID(_ context.Context, id int64) (*model.Timesheet, error) {
	if f, ok := m.facts[id]; ok {
		cp := m.withRelations(f)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimesheetRepo) GetByKey(_ context.Context, volunteerID, projectID int64, date time.Time) (*model.Timesheet, error) {
	day := model.Day(date)
	for _, f := range m.facts {
		if f.VolunteerID == volunteerID && f.ProjectID == projectID && model.Day(f.Date).Equal(day) {
			cp := *f
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimesheetRepo) Create(ctx context.Context, t *model.Timesheet) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, err := m.GetByKey(ctx, t.VolunteerID, t.ProjectID, t.Date); err == nil {
		return &pgconn.PgError{Code: pkgerrors.CodeUniqueViolation, ConstraintName: "timesheets_fact_key"}
	}
	m.nextID++
	t.ID = m.nextID
	cp := *t
	cp.Date = model.Day(t.Date)
	cp.Project, cp.Volunteer = nil, nil
	m.facts[t.ID] = &cp
	return nil
}

func (m *mockTimesheetRepo) UpdateEntry(_ context.Context, id int64, hours float64, status string, submittedAt time.Time) error {
	f, ok := m.facts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.Hours = hours
	f.Status = status
	f.SubmittedAt = submittedAt
	return nil
}

func (m *mockTimesheetRepo) sorted(match func(*model.Timesheet) bool, newestFirst bool) []model.Timesheet {
	var out []model.Timesheet
	for _, f := range m.facts {
		if match(f) {
			out = append(out, m.withRelations(f))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			if newestFirst {
				return out[i].Date.After(out[j].Date)
			}
			return out[i].Date.Before(out[j].Date)
		}
		if newestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *mockTimesheetRepo) ListByVolunteerRange(_ context.Context, volunteerID int64, from, to time.Time) ([]model.Timesheet, error) {
	from, to = model.Day(from), model.Day(to)
	return m.sorted(func(f *model.Timesheet) bool {
		return f.VolunteerID == volunteerID && !f.Date.Before(from) && !f.Date.After(to)
	}, false), nil
}

func (m *mockTimesheetRepo) ListByVolunteerStatus(_ context.Context, volunteerID int64, status string) ([]model.Timesheet, error) {
	return m.sorted(func(f *model.Timesheet) bool {
		return f.VolunteerID == volunteerID && f.Status == status
	}, false), nil
}

func (m *mockTimesheetRepo) Approve(_ context.Context, ids []int64, adminID int64, at time.Time) (int64, error) {
	var n int64
	for _, id := range ids {
		f, ok := m.facts[id]
		if !ok || f.Status == model.StatusApproved {
			continue
		}
		f.Status = model.StatusApproved
		approvedAt, by := at, adminID
		f.ApprovedAt = &approvedAt
		f.ApprovedBy = &by
		n++
	}
	return n, nil
}

func (m *mockTimesheetRepo) matches(f *model.Timesheet, filter repository.TimesheetFilter) bool {
	rel := m.withRelations(f)
	switch {
	case filter.Status != "" && f.Status != filter.Status:
		return false
	case filter.VolunteerID != 0 && f.VolunteerID != filter.VolunteerID:
		return false
	case filter.VolunteerCode != "" && (rel.Volunteer == nil || rel.Volunteer.Code() != filter.VolunteerCode):
		return false
	case filter.ProjectName != "" && rel.ProjectName() != filter.ProjectName:
		return false
	case filter.From != nil && f.Date.Before(*filter.From):
		return false
	case filter.To != nil && f.Date.After(*filter.To):
		return false
	}
	return true
}

func (m *mockTimesheetRepo) List(_ context.Context, filter repository.TimesheetFilter, offset, limit int) ([]model.Timesheet, int64, error) {
	all := m.sorted(func(f *model.Timesheet) bool { return m.matches(f, filter) }, true)
	total := int64(len(all))
	if limit <= 0 {
		return all, total, nil
	}
	if offset > len(all) {
		return nil, total, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], total, nil
}

func (m *mockTimesheetRepo) SumHours(_ context.Context, filter repository.TimesheetFilter) (float64, error) {
	var sum float64
	for _, f := range m.facts {
		if m.matches(f, filter) {
			sum += f.Hours
		}
	}
	return sum, nil
}

// ── Mock ResetTokenRepository ──

type mockResetTokenRepo struct {
	tokens map[string]*model.PasswordResetToken // key: email
	nextID int64
}

func newMockResetTokenRepo() *mockResetTokenRepo {
	return &mockResetTokenRepo{tokens: make(map[string]*model.PasswordResetToken)}
}

func (m *mockResetTokenRepo) Upsert(_ context.Context, t *model.PasswordResetToken) error {
	if existing, ok := m.tokens[t.Email]; ok {
		t.ID = existing.ID
	} else {
		m.nextID++
		t.ID = m.nextID
	}
	cp := *t
	m.tokens[t.Email] = &cp
	return nil
}

func (m *mockResetTokenRepo) GetValid(_ context.Context, token string, now time.Time) (*model.PasswordResetToken, error) {
	for _, t := range m.tokens {
		if t.Token == token && !t.Expired(now) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockResetTokenRepo) DeleteByEmail(_ context.Context, email string) error {
	delete(m.tokens, email)
	return nil
}

func (m *mockResetTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for email, t := range m.tokens {
		if t.Expired(now) {
			delete(m.tokens, email)
			n++
		}
	}
	return n, nil
}

// ── repository fixture ──

type mockRepos struct {
	admins     *mockAdminRepo
	volunteers *mockVolunteerRepo
	projects   *mockProjectRepo
	timesheets *mockTimesheetRepo
	tokens     *mockResetTokenRepo
}

// newTestRepository builds an aggregate without a database; RunInTx then
// runs its callback directly against the mocks
func newTestRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		admins:     newMockAdminRepo(),
		volunteers: newMockVolunteerRepo(),
		projects:   newMockProjectRepo(),
		timesheets: newMockTimesheetRepo(),
		tokens:     newMockResetTokenRepo(),
	}
	m.volunteers.sheets = m.timesheets
	m.projects.sheets = m.timesheets
	m.timesheets.projects = m.projects
	m.timesheets.volunteers = m.volunteers

	repo := &repository.Repository{
		Admin:      m.admins,
		Volunteer:  m.volunteers,
		Project:    m.projects,
		Timesheet:  m.timesheets,
		ResetToken: m.tokens,
	}
	return repo, m
}

// addProject seeds a project and returns its id
func (m *mockRepos) addProject(name string) int64 {
	p := &model.Project{Name: name}
	_ = m.projects.Create(context.Background(), p)
	return p.ID
}

// addVolunteer seeds a volunteer with an assigned code
func (m *mockRepos) addVolunteer(username, passwordHash string) *model.Volunteer {
	v := &model.Volunteer{
		Username:     username,
		Email:        username + "@example.org",
		PasswordHash: passwordHash,
		FirstName:    strings.ToUpper(username[:1]) + username[1:],
		LastName:     "Tester",
	}
	_ = m.volunteers.Create(context.Background(), v)
	_ = m.volunteers.AssignCode(context.Background(), v.ID, model.FormatVolunteerCode(v.ID))
	stored := m.volunteers.volunteers[v.ID]
	return stored
}

// addFact seeds a timesheet fact
func (m *mockRepos) addFact(volunteerID, projectID int64, date string, hours float64, status string) int64 {
	d, _ := time.Parse(model.DateLayout, date)
	f := &model.Timesheet{
		VolunteerID: volunteerID,
		ProjectID:   projectID,
		Date:        d,
		Hours:       hours,
		Status:      status,
		SubmittedAt: time.Now(),
	}
	_ = m.timesheets.Create(context.Background(), f)
	return f.ID
}

// ── in-memory cache store ──

type memoryStore struct {
	data    map[string][]byte
	deletes int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (s *memoryStore) GetJSON(_ context.Context, key string, dst any) error {
	raw, ok := s.data[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dst)
}

func (s *memoryStore) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.data[key] = raw
	return nil
}

func (s *memoryStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.data, k)
	}
	s.deletes++
	return nil
}
