package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/school-fee-api/internal/models"
	appErrors "github.com/noah-isme/school-fee-api/pkg/errors"
)

type exportSourceStub struct {
	classRecords []models.ClassRecord
	monthRecords []models.MonthlyFeeRecord
	err          error
	lastMonth    string
}

func (s *exportSourceStub) ListClassRecords(ctx context.Context, className string) ([]models.ClassRecord, error) {
	return s.classRecords, s.err
}

func (s *exportSourceStub) ListRecordsForMonth(ctx context.Context, yearMonth string) ([]models.MonthlyFeeRecord, error) {
	s.lastMonth = yearMonth
	return s.monthRecords, s.err
}

func strPtr(v string) *string { return &v }

func newExportSourceStub() *exportSourceStub {
	return &exportSourceStub{
		classRecords: []models.ClassRecord{
			{ID: 1, RollNo: 1, Name: "Asha", FeeAmount: amount(1000), FeeDate: strPtr("2025-01-14"), Note: strPtr("Full")},
			{ID: 2, RollNo: 2, Name: "Bina"},
		},
		monthRecords: []models.MonthlyFeeRecord{
			{RollNo: 1, Name: "Asha", ClassName: "Class 6", FeeAmount: amount(1000), FeeDate: strPtr("2025-01-14")},
			{RollNo: 4, Name: "Dev", ClassName: "Class 7", FeeAmount: amount(250), FeeDate: strPtr("2025-01-02")},
		},
	}
}

func TestExportServiceClassRecordCSV(t *testing.T) {
	svc := NewExportService(newExportSourceStub(), zap.NewNop())

	file, err := svc.ClassRecord(context.Background(), "Class 6", "")
	require.NoError(t, err)
	assert.Equal(t, "class-class-6.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	rows, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Roll No", "Name", "Fee Amount", "Fee Date", "Note"},
		{"1", "Asha", "1000", "2025-01-14", "Full"},
		{"2", "Bina", "", "", ""},
		{"", "Total", "1000", "", ""},
	}, rows)
}

func TestExportServiceClassRecordXLSXUsesClassAsSheet(t *testing.T) {
	svc := NewExportService(newExportSourceStub(), zap.NewNop())

	file, err := svc.ClassRecord(context.Background(), "Class 6", "xlsx")
	require.NoError(t, err)
	assert.Equal(t, "class-class-6.xlsx", file.Filename)

	book, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{"Class 6"}, book.GetSheetList())
	rows, err := book.GetRows("Class 6")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Total", rows[3][1])
}

func TestExportServiceMonthlyReportXLSX(t *testing.T) {
	source := newExportSourceStub()
	svc := NewExportService(source, zap.NewNop())

	file, err := svc.MonthlyReport(context.Background(), "2025-01", "xlsx")
	require.NoError(t, err)
	assert.Equal(t, "2025-01", source.lastMonth)
	assert.Equal(t, "fees-2025-01.xlsx", file.Filename)

	book, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows("Fees 2025-01")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"4", "Dev", "Class 7", "250", "2025-01-02"}, rows[2])
	assert.Equal(t, "1250", rows[3][3])
}

func TestExportServiceMonthlyReportPDF(t *testing.T) {
	svc := NewExportService(newExportSourceStub(), zap.NewNop())

	file, err := svc.MonthlyReport(context.Background(), "2025-01", "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestExportServiceRejectsInput(t *testing.T) {
	svc := NewExportService(newExportSourceStub(), zap.NewNop())

	_, err := svc.ClassRecord(context.Background(), "Class 6", "docx")
	appErr := requireAppError(t, err, appErrors.ErrValidation.Code, http.StatusBadRequest)
	assert.Contains(t, appErr.Fields, "format")

	_, err = svc.ClassRecord(context.Background(), "  ", "csv")
	appErr = requireAppError(t, err, appErrors.ErrValidation.Code, http.StatusBadRequest)
	assert.Contains(t, appErr.Fields, "class")
}

func TestExportServicePropagatesSourceErrors(t *testing.T) {
	source := newExportSourceStub()
	source.err = appErrors.Clone(appErrors.ErrStoreUnavailable, "failed to list class records")
	svc := NewExportService(source, zap.NewNop())

	_, err := svc.ClassRecord(context.Background(), "Class 6", "csv")
	requireAppError(t, err, appErrors.ErrStoreUnavailable.Code, http.StatusServiceUnavailable)

	source.err = errors.New("boom")
	_, err = svc.MonthlyReport(context.Background(), "2025-01", "csv")
	assert.EqualError(t, err, "boom")
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "class-6-a", slug("Class 6/A"))
	assert.Equal(t, "report", slug("%%"))
}
