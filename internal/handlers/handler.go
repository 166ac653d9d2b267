package handlers

import (
	"strconv"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// abortBind reports a malformed request body or query
func abortBind(c *gin.Context, err error) {
	_ = c.Error(ierr.WithError(err).
		WithHint("Invalid request: " + err.Error()).
		Mark(ierr.ErrValidation))
}

// pagination reads page and limit query parameters. Bad values fall back to
// the defaults and limit is capped.
func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if err != nil || page < 1 {
		page = defaultPage
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// ListResponse wraps paged listings
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}
