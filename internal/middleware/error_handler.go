package middleware

import (
	"encoding/json"
	"strings"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/logger"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler renders the last error a handler attached with c.Error.
// Infrastructure faults are logged and shown with a generic message.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := ierr.HTTPStatusFromErr(err)

		response := ErrorResponse{
			Error:   ierr.Hint(err, "An unexpected error occurred"),
			Details: safeDetails(err),
		}
		if status >= 500 {
			log.Errorw("request failed", "error", err, "path", c.FullPath(), "request_id", c.GetString(requestIDKey))
			if !ierr.IsIntegrity(err) {
				response.Error = "An unexpected error occurred"
				response.Details = nil
			}
		}
		c.JSON(status, response)
	}
}

func safeDetails(err error) map[string]any {
	details := make(map[string]any)
	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, payload := range sdp.SafeDetails {
			jsonStr, ok := strings.CutPrefix(payload, "__json__:")
			if !ok {
				continue
			}
			var decoded map[string]any
			if err := json.Unmarshal([]byte(jsonStr), &decoded); err == nil {
				for k, v := range decoded {
					details[k] = v
				}
			}
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}
