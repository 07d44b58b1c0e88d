package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/models"
)

var studentRowColumns = []string{"id", "name", "email", "phone", "gender", "class", "birth_date", "enrollment_date", "status", "created_at", "updated_at"}

func newStudentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRow(rows *sqlmock.Rows, id int64, name, class, status string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, name, "", "", "", class, nil, nil, status, now, now)
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows(studentRowColumns)
	studentRow(rows, 1, "Alice", "10A", "active")
	studentRow(rows, 2, "Bob", "10B", "inactive")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + studentColumns + " FROM students ORDER BY id")).
		WillReturnRows(rows)

	students, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, int64(1), students[0].ID)
	assert.Equal(t, models.StudentStatusInactive, students[1].Status)
	assert.Nil(t, students[0].BirthDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListEmpty(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("FROM students ORDER BY id").WillReturnRows(sqlmock.NewRows(studentRowColumns))

	students, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func TestStudentRepositoryListError(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("FROM students").WillReturnError(sql.ErrConnDone)

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrConnDone))
}

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + studentColumns + " FROM students WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(studentRow(sqlmock.NewRows(studentRowColumns), 1, "Alice", "10A", "active"))

	student, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), student.ID)
	assert.Equal(t, "Alice", student.Name)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("FROM students WHERE id = \\$1").
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows(studentRowColumns))

	_, err := repo.FindByID(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("INSERT INTO students").
		WithArgs("Alice", "alice@school.test", "", "F", "10A", sqlmock.AnyArg(), sqlmock.AnyArg(), "active", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(studentRow(sqlmock.NewRows(studentRowColumns), 7, "Alice", "10A", "active"))

	student := &models.Student{Name: "Alice", Email: "alice@school.test", Gender: "F", Class: "10A", Status: models.StudentStatusActive}
	err := repo.Create(context.Background(), student)
	require.NoError(t, err)
	assert.Equal(t, int64(7), student.ID)
	assert.False(t, student.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateOnlySuppliedColumns(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE students SET class = $1, name = $2, updated_at = $3 WHERE id = $4 RETURNING " + studentColumns)).
		WithArgs("11A", "Alice B", sqlmock.AnyArg(), int64(1)).
		WillReturnRows(studentRow(sqlmock.NewRows(studentRowColumns), 1, "Alice B", "11A", "active"))

	student, err := repo.Update(context.Background(), 1, models.StudentChanges{"name": "Alice B", "class": "11A"})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", student.Name)
	assert.Equal(t, "11A", student.Class)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateRejectsBadInput(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	_, err := repo.Update(context.Background(), 1, models.StudentChanges{})
	assert.True(t, errors.Is(err, ErrNoChanges))

	_, err = repo.Update(context.Background(), 1, models.StudentChanges{"status = 'inactive'; --": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not updatable")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateNotFound(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("UPDATE students SET").
		WithArgs("x@school.test", sqlmock.AnyArg(), int64(42)).
		WillReturnRows(sqlmock.NewRows(studentRowColumns))

	_, err := repo.Update(context.Background(), 42, models.StudentChanges{"email": "x@school.test"})
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestStudentRepositorySetStatus(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	query := regexp.QuoteMeta("SET status = $1, updated_at = CASE WHEN status IS DISTINCT FROM $1 THEN $2 ELSE updated_at END")
	mock.ExpectQuery(query).
		WithArgs("inactive", sqlmock.AnyArg(), int64(1)).
		WillReturnRows(studentRow(sqlmock.NewRows(studentRowColumns), 1, "Alice", "10A", "inactive"))

	student, err := repo.SetStatus(context.Background(), 1, models.StudentStatusInactive)
	require.NoError(t, err)
	assert.Equal(t, models.StudentStatusInactive, student.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySetStatusNotFound(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("UPDATE students").
		WithArgs("active", sqlmock.AnyArg(), int64(5)).
		WillReturnRows(sqlmock.NewRows(studentRowColumns))

	_, err := repo.SetStatus(context.Background(), 5, models.StudentStatusActive)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}
