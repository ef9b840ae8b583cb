package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/abygeorge8848/VolunteeringPortal/internal/dto"
	"github.com/abygeorge8848/VolunteeringPortal/internal/repository"
)

// ErrExportGenerateFail the document could not be rendered
var ErrExportGenerateFail = errors.New("failed to generate export file")

const approvedSheet = "Approved Hours"

// approvedColumns header row shared by the CSV and XLSX exports
var approvedColumns = []string{
	"Volunteer ID", "First Name", "Last Name", "Project", "Date", "Hours", "Approved At",
}

// ExportService downloadable reports. Every method returns the content and a
// suggested filename; the handler sets the response headers.
type ExportService interface {
	ApprovedCSV(ctx context.Context, req *dto.ApprovedFilterRequest) (*bytes.Buffer, string, error)
	ApprovedXLSX(ctx context.Context, req *dto.ApprovedFilterRequest) (*bytes.Buffer, string, error)
	// VolunteerCalendar every logged day of one volunteer as an iCalendar feed
	VolunteerCalendar(ctx context.Context, volunteerID int64) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewExportService creates an ExportService
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, now: time.Now, logger: logger}
}

// approvedRows every approved fact matching the filter, paging ignored
func (s *exportService) approvedRows(ctx context.Context, req *dto.ApprovedFilterRequest) ([]dto.TimesheetResponse, error) {
	filter, err := approvedFilter(req)
	if err != nil {
		return nil, err
	}
	facts, _, err := s.repo.Timesheet.List(ctx, filter, 0, 0)
	if err != nil {
		s.logger.Error("list approved hours for export failed", zap.Error(err))
		return nil, err
	}
	return toTimesheetResponses(facts), nil
}

func (s *exportService) filename(ext string) string {
	return fmt.Sprintf("approved_hours_%s.%s", s.now().UTC().Format("20060102"), ext)
}

// ════════════════════════════════════════════════════════════
// ApprovedCSV
// ════════════════════════════════════════════════════════════

func (s *exportService) ApprovedCSV(ctx context.Context, req *dto.ApprovedFilterRequest) (*bytes.Buffer, string, error) {
	rows, err := s.approvedRows(ctx, req)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	if err := WriteApprovedCSV(buf, rows); err != nil {
		s.logger.Error("write csv failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, s.filename("csv"), nil
}

// WriteApprovedCSV writes the header and one record per row
func WriteApprovedCSV(w io.Writer, rows []dto.TimesheetResponse) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(approvedColumns); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.VolunteerCode,
			r.FirstName,
			r.LastName,
			r.ProjectName,
			r.Date,
			strconv.FormatFloat(r.Hours, 'f', 2, 64),
			r.ApprovedAt,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ════════════════════════════════════════════════════════════
// ApprovedXLSX
// ════════════════════════════════════════════════════════════
//
// One sheet: title row, header row, one row per fact, then a total row.

func (s *exportService) ApprovedXLSX(ctx context.Context, req *dto.ApprovedFilterRequest) (*bytes.Buffer, string, error) {
	rows, err := s.approvedRows(ctx, req)
	if err != nil {
		return nil, "", err
	}

	f, err := BuildApprovedWorkbook(rows, s.now())
	if err != nil {
		s.logger.Error("build workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	defer f.Close()

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, s.filename("xlsx"), nil
}

// BuildApprovedWorkbook renders rows into a workbook; the caller closes it
func BuildApprovedWorkbook(rows []dto.TimesheetResponse, generatedAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	idx, err := f.NewSheet(approvedSheet)
	if err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	widths := []float64{14, 16, 16, 28, 12, 10, 22}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(approvedSheet, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	hoursStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 2})

	// title
	last := colName(len(approvedColumns) - 1)
	f.SetCellValue(approvedSheet, "A1", "Approved volunteer hours, generated "+generatedAt.UTC().Format(time.RFC1123))
	f.MergeCell(approvedSheet, "A1", cell(last, 1))

	// header
	for i, h := range approvedColumns {
		f.SetCellValue(approvedSheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(approvedSheet, "A2", cell(last, 2), headerStyle)

	// data
	row := 3
	var total float64
	for _, r := range rows {
		values := []interface{}{r.VolunteerCode, r.FirstName, r.LastName, r.ProjectName, r.Date, r.Hours, r.ApprovedAt}
		for i, v := range values {
			f.SetCellValue(approvedSheet, cell(colName(i), row), v)
		}
		total += r.Hours
		row++
	}
	if row > 3 {
		f.SetCellStyle(approvedSheet, cell("F", 3), cell("F", row-1), hoursStyle)
	}

	// total
	f.SetCellValue(approvedSheet, cell("E", row), "Total")
	f.SetCellValue(approvedSheet, cell("F", row), roundHours(total))
	f.SetCellStyle(approvedSheet, cell("E", row), cell("F", row), headerStyle)

	return f, nil
}

// ════════════════════════════════════════════════════════════
// VolunteerCalendar
// ════════════════════════════════════════════════════════════

func (s *exportService) VolunteerCalendar(ctx context.Context, volunteerID int64) (*bytes.Buffer, string, error) {
	v, err := s.repo.Volunteer.GetByID(ctx, volunteerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrVolunteerNotFound
		}
		s.logger.Error("get volunteer failed", zap.Int64("volunteer_id", volunteerID), zap.Error(err))
		return nil, "", err
	}

	facts, _, err := s.repo.Timesheet.List(ctx, repository.TimesheetFilter{VolunteerID: volunteerID}, 0, 0)
	if err != nil {
		s.logger.Error("list hours for calendar failed", zap.Int64("volunteer_id", volunteerID), zap.Error(err))
		return nil, "", err
	}

	cal := BuildHoursCalendar(v.Code(), facts, s.now())
	buf := bytes.NewBufferString(cal.Serialize())

	name := v.Code()
	if name == "" {
		name = strconv.FormatInt(v.ID, 10)
	}
	return buf, fmt.Sprintf("volunteer_hours_%s.ics", name), nil
}

// ── helpers ──

// colName zero-based column index to letters
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
