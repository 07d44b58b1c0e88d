package models

import "time"

// StudentStatus is the enrolment state of a student record.
type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "active"
	StudentStatusInactive StudentStatus = "inactive"
)

// Valid reports whether s is one of the known statuses.
func (s StudentStatus) Valid() bool {
	switch s {
	case StudentStatusActive, StudentStatusInactive:
		return true
	}
	return false
}

// Student represents a learner registered in the institution.
type Student struct {
	ID             int64         `db:"id" json:"id"`
	Name           string        `db:"name" json:"name"`
	Email          string        `db:"email" json:"email"`
	Phone          string        `db:"phone" json:"phone"`
	Gender         string        `db:"gender" json:"gender"`
	Class          string        `db:"class" json:"class"`
	BirthDate      *time.Time    `db:"birth_date" json:"birth_date"`
	EnrollmentDate *time.Time    `db:"enrollment_date" json:"enrollment_date"`
	Status         StudentStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentChanges maps column names to new values for a partial update.
type StudentChanges map[string]interface{}
