package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

const (
	studentListCacheKey      = "students:list"
	studentCacheInvalidation = "students:*"
)

func studentDetailCacheKey(id int64) string {
	return fmt.Sprintf("students:detail:%d", id)
}

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, id int64, changes models.StudentChanges) (*models.Student, error)
	SetStatus(ctx context.Context, id int64, status models.StudentStatus) (*models.Student, error)
}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewStudentService constructs the student service. cache and metrics may be nil.
func NewStudentService(repo studentRepository, validate *validator.Validate, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, cache: cache, metrics: metrics, logger: logger}
}

// List returns every student.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	var cached []models.Student
	if hit, _ := s.cache.Get(ctx, studentListCacheKey, &cached); hit && cached != nil {
		return cached, nil
	}

	start := time.Now()
	students, err := s.repo.List(ctx)
	s.metrics.ObserveDBQuery("students_list", time.Since(start), err)
	if err != nil {
		return nil, s.databaseError(err, "list", "failed to list students")
	}

	_ = s.cache.Set(ctx, studentListCacheKey, students, 0)
	return students, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid student id")
	}

	var cached models.Student
	if hit, _ := s.cache.Get(ctx, studentDetailCacheKey(id), &cached); hit && cached.ID == id {
		return &cached, nil
	}

	start := time.Now()
	student, err := s.repo.FindByID(ctx, id)
	s.metrics.ObserveDBQuery("students_detail", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, s.databaseError(err, "detail", "failed to load student")
	}

	_ = s.cache.Set(ctx, studentDetailCacheKey(id), student, 0)
	return student, nil
}

// Create registers a new student. Status defaults to active.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	req.Normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, describeValidation(err))
	}
	status := req.Status
	if status == "" {
		status = models.StudentStatusActive
	}

	student := &models.Student{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Gender:         req.Gender,
		Class:          req.Class,
		BirthDate:      req.BirthDate,
		EnrollmentDate: req.EnrollmentDate,
		Status:         status,
	}

	start := time.Now()
	err := s.repo.Create(ctx, student)
	s.metrics.ObserveDBQuery("students_create", time.Since(start), err)
	if err != nil {
		return nil, s.databaseError(err, "create", "failed to create student")
	}

	s.afterWrite(ctx, "create", student)
	return student, nil
}

// Update applies a partial update; only supplied columns change.
func (s *StudentService) Update(ctx context.Context, id int64, req dto.UpdateStudentRequest) (*models.Student, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid student id")
	}
	req.Normalize()
	if req.Name != nil && *req.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name must not be empty")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, describeValidation(err))
	}
	changes := req.Changes()
	if len(changes) == 0 {
		return nil, appErrors.Validation(dto.ErrEmptyPatch, dto.ErrEmptyPatch.Error())
	}

	start := time.Now()
	student, err := s.repo.Update(ctx, id, changes)
	s.metrics.ObserveDBQuery("students_update", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, s.databaseError(err, "update", "failed to update student")
	}

	s.afterWrite(ctx, "update", student)
	return student, nil
}

// SetStatus moves a student to the requested status. Repeating the call is a no-op.
func (s *StudentService) SetStatus(ctx context.Context, id int64, req dto.SetStudentStatusRequest) (*models.Student, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid student id")
	}
	req.Status = models.StudentStatus(strings.TrimSpace(string(req.Status)))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, describeValidation(err))
	}

	start := time.Now()
	student, err := s.repo.SetStatus(ctx, id, req.Status)
	s.metrics.ObserveDBQuery("students_set_status", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, s.databaseError(err, "set_status", "failed to update student status")
	}

	s.afterWrite(ctx, "set_status", student)
	return student, nil
}

// afterWrite refreshes the cache for a written row. Besides the pattern sweep,
// the detail entry is overwritten with the stored row and the list key is dropped by name.
func (s *StudentService) afterWrite(ctx context.Context, operation string, student *models.Student) {
	s.metrics.IncStudentMutation(operation)
	if err := s.cache.Invalidate(ctx, studentCacheInvalidation); err != nil {
		s.logger.Warn("student cache sweep failed", zap.String("operation", operation), zap.Int64("student_id", student.ID), zap.Error(err))
	}
	detailErr := s.cache.Set(ctx, studentDetailCacheKey(student.ID), student, 0)
	if listErr := s.cache.Delete(ctx, studentListCacheKey); listErr != nil || detailErr != nil {
		s.logger.Error("student cache may be stale",
			zap.String("operation", operation),
			zap.Int64("student_id", student.ID),
			zap.NamedError("detail_error", detailErr),
			zap.NamedError("list_error", listErr),
		)
	}
	s.logger.Info("student written", zap.String("operation", operation), zap.Int64("student_id", student.ID))
}

// databaseError logs the store failure and hides it behind a client-safe message.
func (s *StudentService) databaseError(err error, operation, message string) error {
	fields := []zap.Field{zap.String("operation", operation), zap.Error(err)}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		fields = append(fields,
			zap.String("sqlstate", string(pqErr.Code)),
			zap.String("sqlstate_name", pqErr.Code.Name()),
			zap.String("constraint", pqErr.Constraint),
		)
	}
	s.logger.Error("student query failed", fields...)
	return appErrors.Internal(err, message)
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid student payload"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}
