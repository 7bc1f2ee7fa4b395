package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-fee-api/internal/service"
	"github.com/noah-isme/school-fee-api/pkg/response"
)

type exportService interface {
	ClassRecord(ctx context.Context, className, format string) (*service.ExportFile, error)
	MonthlyReport(ctx context.Context, yearMonth, format string) (*service.ExportFile, error)
}

// ReportHandler serves file downloads of class records and monthly reports.
type ReportHandler struct {
	exports exportService
	now     func() time.Time
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(exports exportService) *ReportHandler {
	return &ReportHandler{exports: exports, now: time.Now}
}

// ExportClass godoc
// @Summary Export a class record
// @Tags Reports
// @Produce text/csv,application/pdf,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param class query string true "Class name"
// @Param format query string false "csv (default), pdf or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /api/v1/students/export [get]
func (h *ReportHandler) ExportClass(c *gin.Context) {
	file, err := h.exports.ClassRecord(c.Request.Context(), c.Query("class"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// ExportMonthly godoc
// @Summary Export the monthly fee report
// @Tags Reports
// @Produce text/csv,application/pdf,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param month query string false "Month as YYYY-MM, default current month"
// @Param format query string false "csv (default), pdf or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /api/v1/fees/monthly/export [get]
func (h *ReportHandler) ExportMonthly(c *gin.Context) {
	month := strings.TrimSpace(c.Query("month"))
	if month == "" {
		month = h.now().Format(monthLayout)
	}
	file, err := h.exports.MonthlyReport(c.Request.Context(), month, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
