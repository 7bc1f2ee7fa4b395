package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-fee-api/internal/models"
	appErrors "github.com/noah-isme/school-fee-api/pkg/errors"
	"github.com/noah-isme/school-fee-api/pkg/export"
)

const (
	columnRollNo = "Roll No"
	columnName   = "Name"
	columnClass  = "Class"
	columnAmount = "Fee Amount"
	columnDate   = "Fee Date"
	columnNote   = "Note"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

type exportSource interface {
	ListClassRecords(ctx context.Context, className string) ([]models.ClassRecord, error)
	ListRecordsForMonth(ctx context.Context, yearMonth string) ([]models.MonthlyFeeRecord, error)
}

type renderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered report ready to be served as a download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders class listings and monthly reports.
type ExportService struct {
	source    exportSource
	renderers map[export.Format]renderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService with the CSV, PDF and XLSX renderers.
func NewExportService(source exportSource, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		source: source,
		renderers: map[export.Format]renderer{
			export.FormatCSV:  export.NewCSVExporter(),
			export.FormatPDF:  export.NewPDFExporter(),
			export.FormatXLSX: export.NewXLSXExporter(),
		},
		logger: logger,
	}
}

// ClassRecord renders every student of a class with their fee status and a
// class total footer.
func (s *ExportService) ClassRecord(ctx context.Context, className, rawFormat string) (*ExportFile, error) {
	format, err := parseExportFormat(rawFormat)
	if err != nil {
		return nil, err
	}
	className = strings.TrimSpace(className)
	if className == "" {
		return nil, appErrors.WithFields(
			appErrors.Clone(appErrors.ErrValidation, "class is required"),
			map[string]string{"class": "class is required"},
		)
	}

	records, err := s.source.ListClassRecords(ctx, className)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: []string{columnRollNo, columnName, columnAmount, columnDate, columnNote}}
	var total int64
	for _, r := range records {
		if r.FeeAmount != nil {
			total += *r.FeeAmount
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			columnRollNo: strconv.Itoa(r.RollNo),
			columnName:   r.Name,
			columnAmount: formatAmount(r.FeeAmount),
			columnDate:   deref(r.FeeDate),
			columnNote:   deref(r.Note),
		})
	}
	dataset.Footer = map[string]string{columnName: "Total", columnAmount: strconv.FormatInt(total, 10)}

	return s.render(format, dataset, className, "class-"+slug(className))
}

// MonthlyReport renders the fee records dated in yearMonth with a total footer.
func (s *ExportService) MonthlyReport(ctx context.Context, yearMonth, rawFormat string) (*ExportFile, error) {
	format, err := parseExportFormat(rawFormat)
	if err != nil {
		return nil, err
	}

	records, err := s.source.ListRecordsForMonth(ctx, yearMonth)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: []string{columnRollNo, columnName, columnClass, columnAmount, columnDate}}
	var total int64
	for _, r := range records {
		if r.FeeAmount != nil {
			total += *r.FeeAmount
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			columnRollNo: strconv.Itoa(r.RollNo),
			columnName:   r.Name,
			columnClass:  r.ClassName,
			columnAmount: formatAmount(r.FeeAmount),
			columnDate:   deref(r.FeeDate),
		})
	}
	dataset.Footer = map[string]string{columnName: "Total", columnAmount: strconv.FormatInt(total, 10)}

	return s.render(format, dataset, "Fees "+yearMonth, "fees-"+slug(yearMonth))
}

func (s *ExportService) render(format export.Format, dataset export.Dataset, title, base string) (*ExportFile, error) {
	payload, err := s.renderers[format].Render(dataset, title)
	if err != nil {
		s.logger.Error("render export failed", zap.String("format", string(format)), zap.String("title", title), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("%s.%s", base, format),
		ContentType: format.ContentType(),
		Data:        payload,
	}, nil
}

func parseExportFormat(raw string) (export.Format, error) {
	format, err := export.ParseFormat(raw)
	if err != nil {
		return "", appErrors.WithFields(
			appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported export format"),
			map[string]string{"format": "format must be one of [csv pdf xlsx]"},
		)
	}
	return format, nil
}

func formatAmount(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func slug(raw string) string {
	s := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(raw), "-"), "-")
	if s == "" {
		return "report"
	}
	return s
}
