package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/student-records-api/internal/models"
)

const studentColumns = "id, name, email, phone, gender, class, birth_date, enrollment_date, status, created_at, updated_at"

// ErrNoChanges is returned by Update when no column was supplied.
var ErrNoChanges = errors.New("no columns to update")

// updatableColumns is the only source of column names interpolated into SQL.
var updatableColumns = map[string]struct{}{
	"name":            {},
	"email":           {},
	"phone":           {},
	"gender":          {},
	"class":           {},
	"birth_date":      {},
	"enrollment_date": {},
}

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db QueryExecutor
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db QueryExecutor) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns every student ordered by id.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	const query = "SELECT " + studentColumns + " FROM students ORDER BY id"
	students := make([]models.Student, 0)
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID. A missing row surfaces as sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	const query = "SELECT " + studentColumns + " FROM students WHERE id = $1"
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, fmt.Errorf("find student %d: %w", id, err)
	}
	return &student, nil
}

// Create inserts a new student and fills in the generated id and timestamps.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	const query = `INSERT INTO students (name, email, phone, gender, class, birth_date, enrollment_date, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING ` + studentColumns
	err := r.db.GetContext(ctx, student, query,
		student.Name,
		student.Email,
		student.Phone,
		student.Gender,
		student.Class,
		student.BirthDate,
		student.EnrollmentDate,
		string(student.Status),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update sets only the supplied columns. A missing row surfaces as sql.ErrNoRows.
func (r *StudentRepository) Update(ctx context.Context, id int64, changes models.StudentChanges) (*models.Student, error) {
	if len(changes) == 0 {
		return nil, ErrNoChanges
	}

	columns := make([]string, 0, len(changes))
	for column := range changes {
		if _, ok := updatableColumns[column]; !ok {
			return nil, fmt.Errorf("update student: column %q is not updatable", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	sets := make([]string, 0, len(columns)+1)
	args := make([]interface{}, 0, len(columns)+2)
	for _, column := range columns {
		args = append(args, changes[column])
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE students SET %s WHERE id = $%d RETURNING %s", strings.Join(sets, ", "), len(args), studentColumns)

	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, args...); err != nil {
		return nil, fmt.Errorf("update student %d: %w", id, err)
	}
	return &student, nil
}

// SetStatus changes the status column. updated_at only moves when the status
// actually changes, so repeating the call leaves the row untouched.
func (r *StudentRepository) SetStatus(ctx context.Context, id int64, status models.StudentStatus) (*models.Student, error) {
	const query = `UPDATE students
        SET status = $1, updated_at = CASE WHEN status IS DISTINCT FROM $1 THEN $2 ELSE updated_at END
        WHERE id = $3
        RETURNING ` + studentColumns
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, string(status), time.Now().UTC(), id); err != nil {
		return nil, fmt.Errorf("set student %d status: %w", id, err)
	}
	return &student, nil
}
