package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/export"
)

const dateLayout = "2006-01-02"

var rosterHeaders = []string{"id", "name", "email", "phone", "gender", "class", "birth_date", "enrollment_date", "status"}

type studentReader interface {
	List(ctx context.Context) ([]models.Student, error)
	Get(ctx context.Context, id int64) (*models.Student, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	RenderRecord(fields []export.Field, title string) ([]byte, error)
	ContentType() string
}

// ReportService renders student data into downloadable documents.
type ReportService struct {
	students studentReader
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService constructs a ReportService. Nil renderers fall back to the defaults.
func NewReportService(students studentReader, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ReportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{students: students, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// StudentDetail renders a single student as a PDF. Lookup errors pass through unchanged.
func (s *ReportService) StudentDetail(ctx context.Context, id int64) (*models.ReportFile, error) {
	student, err := s.students.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := []export.Field{
		{Label: "Student ID:", Value: strconv.FormatInt(student.ID, 10)},
		{Label: "Name:", Value: student.Name},
		{Label: "Email:", Value: student.Email},
		{Label: "Phone:", Value: student.Phone},
		{Label: "Gender:", Value: student.Gender},
		{Label: "Class:", Value: student.Class},
		{Label: "Birth Date:", Value: formatDate(student.BirthDate)},
		{Label: "Enrollment Date:", Value: formatDate(student.EnrollmentDate)},
		{Label: "Status:", Value: string(student.Status)},
	}
	payload, err := s.pdf.RenderRecord(fields, "Student Details Report")
	if err != nil {
		s.logger.Error("render student report", zap.Int64("student_id", id), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to render report")
	}

	return &models.ReportFile{
		Filename:    fmt.Sprintf("%d_%d_%s.pdf", s.now().UTC().Unix(), student.ID, sanitizeFilename(student.Name)),
		ContentType: s.pdf.ContentType(),
		Payload:     payload,
	}, nil
}

// Roster renders every student in the requested format.
func (s *ReportService) Roster(ctx context.Context, format models.ReportFormat) (*models.ReportFile, error) {
	if format != models.ReportFormatCSV && format != models.ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be one of: csv, pdf")
	}

	students, err := s.students.List(ctx)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: rosterHeaders, Rows: make([]map[string]string, 0, len(students))}
	for _, st := range students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"id":              strconv.FormatInt(st.ID, 10),
			"name":            st.Name,
			"email":           st.Email,
			"phone":           st.Phone,
			"gender":          st.Gender,
			"class":           st.Class,
			"birth_date":      formatDate(st.BirthDate),
			"enrollment_date": formatDate(st.EnrollmentDate),
			"status":          string(st.Status),
		})
	}

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = s.csv.ContentType()
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Student Roster")
		contentType = s.pdf.ContentType()
	}
	if err != nil {
		s.logger.Error("render roster", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to render report")
	}

	return &models.ReportFile{
		Filename:    fmt.Sprintf("students_%s.%s", s.now().UTC().Format("20060102"), format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func sanitizeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '_'
	}, strings.TrimSpace(name))
	if cleaned == "" {
		return "student"
	}
	return cleaned
}
