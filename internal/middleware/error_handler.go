package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/middleware/requestid"
	"github.com/noah-isme/student-records-api/pkg/response"
)

// ErrorHandler renders errors attached with c.Error and recovers panics.
// Causes are logged; clients only see the typed error message.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				if errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				logger.Error("panic recovered",
					zap.String("request_id", requestid.Value(c)),
					zap.String("path", c.Request.URL.Path),
					zap.Error(err),
					zap.Stack("stack"),
				)
				if !c.Writer.Written() {
					response.Error(c, appErrors.ErrInternal)
				}
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		appErr := appErrors.FromError(err)
		logger.Error("request failed",
			zap.String("request_id", requestid.Value(c)),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", appErr.Status),
			zap.Error(err),
		)
		if !c.Writer.Written() {
			response.Error(c, appErr)
		}
	}
}
