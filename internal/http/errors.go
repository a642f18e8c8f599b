package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/database"
	"github.com/mrlokans/bookstore/internal/schema"
)

const internalErrorMessage = "internal server error"

// respondError maps a failure from any stage of a book request to the
// error envelope. Unknown errors are logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	status, message := classifyError(c, err)
	if status == http.StatusInternalServerError {
		log.Printf("Internal error (%s %s, request %s): %v",
			c.Request.Method, c.Request.URL.Path, c.GetString(ContextKeyRequestID), err)
	}
	c.JSON(status, newErrorResponse(status, message))
}

func classifyError(c *gin.Context, err error) (int, any) {
	var validationErrors schema.ValidationErrors
	var reqErr *requestError

	switch {
	case errors.As(err, &validationErrors):
		return http.StatusBadRequest, validationErrors.Messages()
	case errors.As(err, &reqErr):
		return reqErr.status, reqErr.message
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound, fmt.Sprintf("There is no book with an isbn '%s'", c.Param("isbn"))
	case errors.Is(err, database.ErrConstraintViolation):
		return http.StatusConflict, conflictMessage(c, err)
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

// conflictKey is set by handlers that know which ISBN caused a conflict.
const conflictKey = "conflict_isbn"

func conflictMessage(c *gin.Context, err error) string {
	if isbn := c.GetString(conflictKey); isbn != "" {
		return fmt.Sprintf("A book with isbn '%s' already exists", isbn)
	}
	return "book conflicts with an existing record"
}

// abortWithError stops the middleware chain with the error envelope.
func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, newErrorResponse(status, message))
}
