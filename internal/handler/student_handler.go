package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context) ([]models.Student, error)
	Get(ctx context.Context, id int64) (*models.Student, error)
	Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error)
	Update(ctx context.Context, id int64, req dto.UpdateStudentRequest) (*models.Student, error)
	SetStatus(ctx context.Context, id int64, req dto.SetStudentStatusRequest) (*models.Student, error)
}

type studentReportService interface {
	StudentDetail(ctx context.Context, id int64) (*models.ReportFile, error)
	Roster(ctx context.Context, format models.ReportFormat) (*models.ReportFile, error)
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students studentService
	reports  studentReportService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService, reports studentReportService) *StudentHandler {
	return &StudentHandler{students: students, reports: reports}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Success 200 {array} models.Student
// @Failure 500 {object} response.ErrorBody
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.students.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} models.Student
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	id, err := studentIDParam(c)
	if err != nil {
		fail(c, err)
		return
	}
	student, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.CreateStudentRequest true "Student payload"
// @Success 201 {object} models.Student
// @Failure 400 {object} response.ErrorBody
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, appErrors.Validation(err, "malformed JSON body"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Description Only the supplied fields change. id, status and timestamps cannot be set here.
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body dto.UpdateStudentRequest true "Fields to change"
// @Success 200 {object} models.Student
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /students/{id} [put]
// @Router /students/{id} [patch]
func (h *StudentHandler) Update(c *gin.Context) {
	id, err := studentIDParam(c)
	if err != nil {
		fail(c, err)
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		fail(c, appErrors.Validation(err, "malformed JSON body"))
		return
	}
	req, err := dto.DecodeStudentPatch(raw)
	if err != nil {
		fail(c, appErrors.Validation(err, err.Error()))
		return
	}
	student, err := h.students.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// SetStatus godoc
// @Summary Change student status
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body dto.SetStudentStatusRequest true "Target status"
// @Success 200 {object} models.Student
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /students/{id}/status [patch]
func (h *StudentHandler) SetStatus(c *gin.Context) {
	id, err := studentIDParam(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req dto.SetStudentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, appErrors.Validation(err, "malformed JSON body"))
		return
	}
	student, err := h.students.SetStatus(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Report godoc
// @Summary Download a student detail report
// @Tags Reports
// @Produce application/pdf
// @Param id path int true "Student ID"
// @Success 200 {file} file
// @Failure 404 {object} response.ErrorBody
// @Router /students/{id}/report [get]
func (h *StudentHandler) Report(c *gin.Context) {
	id, err := studentIDParam(c)
	if err != nil {
		fail(c, err)
		return
	}
	file, err := h.reports.StudentDetail(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.Filename, file.Payload)
}

// Export godoc
// @Summary Export the student roster
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Router /students/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	format := models.ReportFormat(strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", string(models.ReportFormatCSV)))))
	file, err := h.reports.Roster(c.Request.Context(), format)
	if err != nil {
		fail(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.Filename, file.Payload)
}
