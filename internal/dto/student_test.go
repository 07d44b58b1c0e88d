package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStudentPatch(t *testing.T) {
	req, err := DecodeStudentPatch([]byte(`{"name":"  Alice B  ","birth_date":"2008-04-01T00:00:00Z"}`))
	require.NoError(t, err)
	req.Normalize()

	changes := req.Changes()
	require.Len(t, changes, 2)
	assert.Equal(t, "Alice B", changes["name"])
	assert.Equal(t, time.Date(2008, 4, 1, 0, 0, 0, 0, time.UTC), changes["birth_date"])
}

func TestDecodeStudentPatchRejectsUnknownAndReadOnly(t *testing.T) {
	_, err := DecodeStudentPatch([]byte(`{"name":"A","status":"inactive","id":4,"nickname":"x"}`))
	require.Error(t, err)
	assert.Equal(t, "fields not allowed: id, nickname, status", err.Error())
}

func TestDecodeStudentPatchEmpty(t *testing.T) {
	for _, body := range []string{"", "  ", "{}"} {
		_, err := DecodeStudentPatch([]byte(body))
		assert.True(t, errors.Is(err, ErrEmptyPatch), "body %q", body)
	}
}

func TestDecodeStudentPatchMalformed(t *testing.T) {
	_, err := DecodeStudentPatch([]byte(`{"name":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed JSON body")

	_, err = DecodeStudentPatch([]byte(`{"name":42}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid field value")
}

func TestCreateStudentRequestNormalize(t *testing.T) {
	req := CreateStudentRequest{Name: " Alice ", Status: " active "}
	req.Normalize()
	assert.Equal(t, "Alice", req.Name)
	assert.Equal(t, "active", string(req.Status))
}
