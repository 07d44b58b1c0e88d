package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/response"
)

var errInvalidStudentID = appErrors.Clone(appErrors.ErrValidation, "invalid student id")

// studentIDParam reads the :id path segment. Only positive integers are accepted.
func studentIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidStudentID
	}
	return id, nil
}

// fail writes client errors directly and hands server errors to the error middleware.
func fail(c *gin.Context, err error) {
	if appErrors.IsServerError(err) {
		_ = c.Error(err)
		c.Abort()
		return
	}
	response.Error(c, err)
}
