package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/abygeorge8848/VolunteeringPortal/internal/dto"
	"github.com/abygeorge8848/VolunteeringPortal/internal/service"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/response"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler approved-hours downloads
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ApprovedCSV
// GET /api/v1/admin/export/approved.csv
func (h *ExportHandler) ApprovedCSV(c *gin.Context) {
	h.export(c, h.exportSvc.ApprovedCSV, contentTypeCSV)
}

// ApprovedXLSX
// GET /api/v1/admin/export/approved.xlsx
func (h *ExportHandler) ApprovedXLSX(c *gin.Context) {
	h.export(c, h.exportSvc.ApprovedXLSX, contentTypeXLSX)
}

type exportFunc func(ctx context.Context, req *dto.ApprovedFilterRequest) (*bytes.Buffer, string, error)

func (h *ExportHandler) export(c *gin.Context, fn exportFunc, contentType string) {
	var req dto.ApprovedFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "invalid filter: "+err.Error())
		return
	}

	buf, filename, err := fn(c.Request.Context(), &req)
	if err != nil {
		handleExportError(c, err)
		return
	}
	sendFile(c, filename, contentType, buf.Bytes())
}

// sendFile writes data as an attachment download
func sendFile(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}

func handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 15002, "end_date must not be before start_date")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 16001, "failed to generate export file")
	default:
		response.FromError(c, err)
	}
}
