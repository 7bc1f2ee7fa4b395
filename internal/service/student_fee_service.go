package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-fee-api/internal/models"
	appErrors "github.com/noah-isme/school-fee-api/pkg/errors"
	"github.com/noah-isme/school-fee-api/pkg/validator"
)

const (
	cacheKeyClasses    = "fees:classes"
	cacheKeyTotal      = "fees:total"
	cacheKeyClassTotal = "fees:total:class:"
	cachePatternFees   = "fees:*"
)

type studentFeeRepository interface {
	Ping(ctx context.Context) error
	CreateStudent(ctx context.Context, rollNo int, name, className string) (int64, error)
	RecordFee(ctx context.Context, id int64, amount int64, note string) error
	ClearFee(ctx context.Context, id int64) error
	DeleteStudent(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.StudentFeeRecord, error)
	ListStudentsInClass(ctx context.Context, className string) ([]models.StudentSummary, error)
	ListClassRecords(ctx context.Context, className string) ([]models.ClassRecord, error)
	ListDistinctClasses(ctx context.Context) ([]string, error)
	TotalFeeCollected(ctx context.Context) (int64, error)
	TotalFeeForClass(ctx context.Context, className string) (int64, error)
	ListRecordsForMonth(ctx context.Context, yearMonth string) ([]models.MonthlyFeeRecord, error)
}

// CreateStudentRequest holds payload for adding a student.
type CreateStudentRequest struct {
	RollNo    int    `json:"roll_no" validate:"required,min=1"`
	Name      string `json:"name" validate:"required"`
	ClassName string `json:"class_name" validate:"required"`
}

// RecordFeeRequest holds payload for recording a fee payment.
type RecordFeeRequest struct {
	Amount *int64 `json:"amount" validate:"required,gte=0"`
	Note   string `json:"note" validate:"required,oneof=Full Less"`
}

// StudentFeeService handles the student and fee use-cases.
type StudentFeeService struct {
	repo      studentFeeRepository
	validator *validator.Validator
	cache     *CacheService
	metrics   *MetricsService
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// StudentFeeServiceParams groups constructor dependencies. Cache and Metrics
// are optional.
type StudentFeeServiceParams struct {
	Repo      studentFeeRepository
	Validator *validator.Validator
	Cache     *CacheService
	Metrics   *MetricsService
	CacheTTL  time.Duration
	Logger    *zap.Logger
}

// NewStudentFeeService constructs the service.
func NewStudentFeeService(params StudentFeeServiceParams) *StudentFeeService {
	validate := params.Validator
	if validate == nil {
		validate = validator.MustNew()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentFeeService{
		repo:      params.Repo,
		validator: validate,
		cache:     params.Cache,
		metrics:   params.Metrics,
		cacheTTL:  params.CacheTTL,
		logger:    logger,
	}
}

// Ping reports whether the fee store is reachable.
func (s *StudentFeeService) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return s.storeError("reach fee store", err)
	}
	return nil
}

// CreateStudent adds a student without any fee recorded. Name and class are
// stored trimmed; class lookups trim their argument the same way.
func (s *StudentFeeService) CreateStudent(ctx context.Context, req CreateStudentRequest) (*models.StudentFeeRecord, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ClassName = strings.TrimSpace(req.ClassName)
	if err := s.validate(req, "invalid student payload"); err != nil {
		return nil, err
	}

	start := time.Now()
	id, err := s.repo.CreateStudent(ctx, req.RollNo, req.Name, req.ClassName)
	s.metrics.ObserveDBQuery("create_student", time.Since(start), err)
	if err != nil {
		return nil, s.storeError("create student", err)
	}
	s.afterWrite(ctx, "create_student")
	s.logger.Info("student created", zap.Int64("student_id", id), zap.Int("roll_no", req.RollNo), zap.String("class_name", req.ClassName))

	return &models.StudentFeeRecord{ID: id, RollNo: req.RollNo, Name: req.Name, ClassName: req.ClassName}, nil
}

// RecordFee overwrites the student's fee status with amount and note, dated
// today. Unknown ids are ignored.
func (s *StudentFeeService) RecordFee(ctx context.Context, studentID int64, req RecordFeeRequest) error {
	if err := s.requireID(studentID); err != nil {
		return err
	}
	req.Note = strings.TrimSpace(req.Note)
	if err := s.validate(req, "invalid fee payload"); err != nil {
		return err
	}

	start := time.Now()
	err := s.repo.RecordFee(ctx, studentID, *req.Amount, req.Note)
	s.metrics.ObserveDBQuery("record_fee", time.Since(start), err)
	if err != nil {
		return s.storeError("record fee", err)
	}
	s.afterWrite(ctx, "record_fee")
	s.logger.Info("fee recorded", zap.Int64("student_id", studentID), zap.Int64("amount", *req.Amount), zap.String("note", req.Note))
	return nil
}

// ClearFee removes the student's fee status. Unknown ids are ignored.
func (s *StudentFeeService) ClearFee(ctx context.Context, studentID int64) error {
	if err := s.requireID(studentID); err != nil {
		return err
	}
	start := time.Now()
	err := s.repo.ClearFee(ctx, studentID)
	s.metrics.ObserveDBQuery("clear_fee", time.Since(start), err)
	if err != nil {
		return s.storeError("clear fee", err)
	}
	s.afterWrite(ctx, "clear_fee")
	s.logger.Info("fee cleared", zap.Int64("student_id", studentID))
	return nil
}

// DeleteStudent removes the student record. Unknown ids are ignored.
func (s *StudentFeeService) DeleteStudent(ctx context.Context, studentID int64) error {
	if err := s.requireID(studentID); err != nil {
		return err
	}
	start := time.Now()
	err := s.repo.DeleteStudent(ctx, studentID)
	s.metrics.ObserveDBQuery("delete_student", time.Since(start), err)
	if err != nil {
		return s.storeError("delete student", err)
	}
	s.afterWrite(ctx, "delete_student")
	s.logger.Info("student deleted", zap.Int64("student_id", studentID))
	return nil
}

// Get returns a single record.
func (s *StudentFeeService) Get(ctx context.Context, studentID int64) (*models.StudentFeeRecord, error) {
	if err := s.requireID(studentID); err != nil {
		return nil, err
	}
	start := time.Now()
	record, err := s.repo.FindByID(ctx, studentID)
	if errors.Is(err, sql.ErrNoRows) {
		s.metrics.ObserveDBQuery("find_student", time.Since(start), nil)
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	s.metrics.ObserveDBQuery("find_student", time.Since(start), err)
	if err != nil {
		return nil, s.storeError("load student", err)
	}
	return record, nil
}

// ListStudentsInClass returns id, roll number and name for a class.
func (s *StudentFeeService) ListStudentsInClass(ctx context.Context, className string) ([]models.StudentSummary, error) {
	className = strings.TrimSpace(className)
	start := time.Now()
	students, err := s.repo.ListStudentsInClass(ctx, className)
	s.metrics.ObserveDBQuery("list_class_students", time.Since(start), err)
	if err != nil {
		return nil, s.storeError("list class students", err)
	}
	return students, nil
}

// ListClassRecords returns the class listing including fee fields.
func (s *StudentFeeService) ListClassRecords(ctx context.Context, className string) ([]models.ClassRecord, error) {
	className = strings.TrimSpace(className)
	start := time.Now()
	records, err := s.repo.ListClassRecords(ctx, className)
	s.metrics.ObserveDBQuery("list_class_records", time.Since(start), err)
	if err != nil {
		return nil, s.storeError("list class records", err)
	}
	return records, nil
}

// ListClasses returns the distinct class names and whether the cache served them.
func (s *StudentFeeService) ListClasses(ctx context.Context) ([]string, bool, error) {
	var classes []string
	if hit, _ := s.cache.Get(ctx, cacheKeyClasses, &classes); hit {
		return classes, true, nil
	}
	start := time.Now()
	classes, err := s.repo.ListDistinctClasses(ctx)
	s.metrics.ObserveDBQuery("list_classes", time.Since(start), err)
	if err != nil {
		return nil, false, s.storeError("list classes", err)
	}
	_ = s.cache.Set(ctx, cacheKeyClasses, classes, s.cacheTTL)
	return classes, false, nil
}

// TotalFeeCollected sums every recorded fee.
func (s *StudentFeeService) TotalFeeCollected(ctx context.Context) (int64, bool, error) {
	return s.cachedTotal(ctx, cacheKeyTotal, "total_fee", func() (int64, error) {
		return s.repo.TotalFeeCollected(ctx)
	})
}

// TotalFeeForClass sums recorded fees of one class.
func (s *StudentFeeService) TotalFeeForClass(ctx context.Context, className string) (int64, bool, error) {
	className = strings.TrimSpace(className)
	return s.cachedTotal(ctx, cacheKeyClassTotal+className, "total_fee_for_class", func() (int64, error) {
		return s.repo.TotalFeeForClass(ctx, className)
	})
}

// ListRecordsForMonth returns the fee records dated in yearMonth ("YYYY-MM").
// The value is not validated; anything malformed yields an empty list.
func (s *StudentFeeService) ListRecordsForMonth(ctx context.Context, yearMonth string) ([]models.MonthlyFeeRecord, error) {
	start := time.Now()
	records, err := s.repo.ListRecordsForMonth(ctx, yearMonth)
	s.metrics.ObserveDBQuery("list_month_records", time.Since(start), err)
	if err != nil {
		return nil, s.storeError("list monthly records", err)
	}
	return records, nil
}

func (s *StudentFeeService) cachedTotal(ctx context.Context, key, label string, load func() (int64, error)) (int64, bool, error) {
	var total int64
	if hit, _ := s.cache.Get(ctx, key, &total); hit {
		return total, true, nil
	}
	start := time.Now()
	total, err := load()
	s.metrics.ObserveDBQuery(label, time.Since(start), err)
	if err != nil {
		return 0, false, s.storeError("sum fees", err)
	}
	_ = s.cache.Set(ctx, key, total, s.cacheTTL)
	return total, false, nil
}

// afterWrite drops cached aggregates; a failed invalidation is logged by the
// cache service and leaves entries to expire on their TTL.
func (s *StudentFeeService) afterWrite(ctx context.Context, operation string) {
	_ = s.cache.Invalidate(ctx, cachePatternFees)
	s.metrics.RecordFeeWrite(operation)
}

func (s *StudentFeeService) requireID(id int64) error {
	if id <= 0 {
		return appErrors.WithFields(
			appErrors.Clone(appErrors.ErrValidation, "select a class and student first"),
			map[string]string{"id": "id must be a positive student id"},
		)
	}
	return nil
}

func (s *StudentFeeService) validate(req interface{}, message string) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.WithFields(
			appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message),
			s.validator.Translate(err),
		)
	}
	return nil
}

func (s *StudentFeeService) storeError(action string, err error) error {
	s.logger.Error("fee store call failed", zap.String("action", action), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to "+action)
}
