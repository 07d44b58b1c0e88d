package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/student-records-api/internal/models"
)

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	Name           string               `json:"name" validate:"required,max=200"`
	Email          string               `json:"email" validate:"omitempty,email,max=200"`
	Phone          string               `json:"phone" validate:"omitempty,max=32"`
	Gender         string               `json:"gender" validate:"omitempty,oneof=M F"`
	Class          string               `json:"class" validate:"omitempty,max=64"`
	BirthDate      *time.Time           `json:"birth_date"`
	EnrollmentDate *time.Time           `json:"enrollment_date"`
	Status         models.StudentStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}

// Normalize trims text fields in place.
func (r *CreateStudentRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Gender = strings.TrimSpace(r.Gender)
	r.Class = strings.TrimSpace(r.Class)
	r.Status = models.StudentStatus(strings.TrimSpace(string(r.Status)))
}

// UpdateStudentRequest is a partial update; nil fields are left untouched.
type UpdateStudentRequest struct {
	Name           *string    `json:"name" validate:"omitempty,max=200"`
	Email          *string    `json:"email" validate:"omitempty,email,max=200"`
	Phone          *string    `json:"phone" validate:"omitempty,max=32"`
	Gender         *string    `json:"gender" validate:"omitempty,oneof=M F"`
	Class          *string    `json:"class" validate:"omitempty,max=64"`
	BirthDate      *time.Time `json:"birth_date"`
	EnrollmentDate *time.Time `json:"enrollment_date"`
}

// UpdatableStudentColumns lists the columns a partial update may touch.
var UpdatableStudentColumns = []string{"name", "email", "phone", "gender", "class", "birth_date", "enrollment_date"}

// ErrEmptyPatch is returned when an update names no columns.
var ErrEmptyPatch = errors.New("at least one field must be provided")

// Normalize trims supplied text fields in place.
func (r *UpdateStudentRequest) Normalize() {
	for _, p := range []*string{r.Name, r.Email, r.Phone, r.Gender, r.Class} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}

// Changes returns the supplied columns and their values.
func (r UpdateStudentRequest) Changes() models.StudentChanges {
	changes := models.StudentChanges{}
	setString := func(column string, v *string) {
		if v != nil {
			changes[column] = *v
		}
	}
	setString("name", r.Name)
	setString("email", r.Email)
	setString("phone", r.Phone)
	setString("gender", r.Gender)
	setString("class", r.Class)
	if r.BirthDate != nil {
		changes["birth_date"] = *r.BirthDate
	}
	if r.EnrollmentDate != nil {
		changes["enrollment_date"] = *r.EnrollmentDate
	}
	return changes
}

// DecodeStudentPatch parses a partial update body, rejecting unknown or
// read-only keys before decoding into the typed request.
func DecodeStudentPatch(raw []byte) (UpdateStudentRequest, error) {
	var req UpdateStudentRequest
	if len(bytes.TrimSpace(raw)) == 0 {
		return req, ErrEmptyPatch
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return req, fmt.Errorf("malformed JSON body: %w", err)
	}
	if len(keys) == 0 {
		return req, ErrEmptyPatch
	}

	allowed := make(map[string]struct{}, len(UpdatableStudentColumns))
	for _, c := range UpdatableStudentColumns {
		allowed[c] = struct{}{}
	}
	var rejected []string
	for k := range keys {
		if _, ok := allowed[k]; !ok {
			rejected = append(rejected, k)
		}
	}
	if len(rejected) > 0 {
		sort.Strings(rejected)
		return req, fmt.Errorf("fields not allowed: %s", strings.Join(rejected, ", "))
	}

	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("invalid field value: %w", err)
	}
	return req, nil
}

// SetStudentStatusRequest holds payload for the status endpoint.
type SetStudentStatusRequest struct {
	Status models.StudentStatus `json:"status" validate:"required,oneof=active inactive"`
}
