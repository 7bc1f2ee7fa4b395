package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-fee-api/internal/models"
	"github.com/noah-isme/school-fee-api/internal/service"
	appErrors "github.com/noah-isme/school-fee-api/pkg/errors"
	"github.com/noah-isme/school-fee-api/pkg/response"
)

type studentFeeService interface {
	CreateStudent(ctx context.Context, req service.CreateStudentRequest) (*models.StudentFeeRecord, error)
	RecordFee(ctx context.Context, studentID int64, req service.RecordFeeRequest) error
	ClearFee(ctx context.Context, studentID int64) error
	DeleteStudent(ctx context.Context, studentID int64) error
	Get(ctx context.Context, studentID int64) (*models.StudentFeeRecord, error)
	ListStudentsInClass(ctx context.Context, className string) ([]models.StudentSummary, error)
	ListClassRecords(ctx context.Context, className string) ([]models.ClassRecord, error)
}

// StudentHandler exposes student and per-student fee endpoints.
type StudentHandler struct {
	students studentFeeService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentFeeService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students of a class
// @Description Returns id, roll number and name ordered by roll number. view=full adds the fee fields.
// @Tags Students
// @Produce json
// @Param class query string true "Class name"
// @Param view query string false "lean (default) or full"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /api/v1/students [get]
func (h *StudentHandler) List(c *gin.Context) {
	className := strings.TrimSpace(c.Query("class"))
	if strings.EqualFold(c.Query("view"), "full") {
		records, err := h.students.ListClassRecords(c.Request.Context(), className)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, records)
		return
	}
	students, err := h.students.ListStudentsInClass(c.Request.Context(), className)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// Get godoc
// @Summary Get a student record
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/v1/students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	id, err := studentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Create godoc
// @Summary Add a student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/v1/students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.students.CreateStudent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Delete godoc
// @Summary Delete a student
// @Description Unknown ids succeed silently.
// @Tags Students
// @Param id path int true "Student ID"
// @Success 204
// @Router /api/v1/students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	id, err := studentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.students.DeleteStudent(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RecordFee godoc
// @Summary Record a fee payment
// @Description Overwrites the previous payment, dated today. Responds 204 when the id is unknown.
// @Tags Fees
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body service.RecordFeeRequest true "Fee payload"
// @Success 200 {object} response.Envelope
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /api/v1/students/{id}/fee [put]
func (h *StudentHandler) RecordFee(c *gin.Context) {
	id, err := studentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.RecordFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.students.RecordFee(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrNotFound.Code {
			response.NoContent(c)
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// ClearFee godoc
// @Summary Clear a student's fee status
// @Tags Fees
// @Param id path int true "Student ID"
// @Success 204
// @Router /api/v1/students/{id}/fee [delete]
func (h *StudentHandler) ClearFee(c *gin.Context) {
	id, err := studentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.students.ClearFee(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func studentID(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.WithFields(
			appErrors.Clone(appErrors.ErrValidation, "invalid student id"),
			map[string]string{"id": "id must be a positive integer"},
		)
	}
	return id, nil
}
