package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/audit"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries either a single message or, for validation failures,
// one message per violated field.
type ErrorBody struct {
	Message any `json:"message"`
	Status  int `json:"status"`
}

// SuccessResponse is a standard success response with a message.
type SuccessResponse struct {
	Message string `json:"message"`
}

func newErrorResponse(status int, message any) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Message: message, Status: status}}
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Request Parsing ---

// requestError is a client error detected while reading the request itself.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string {
	return e.message
}

func badRequest(format string, args ...any) *requestError {
	return &requestError{status: http.StatusBadRequest, message: fmt.Sprintf(format, args...)}
}

func tooLarge(limit int64) *requestError {
	return &requestError{
		status:  http.StatusRequestEntityTooLarge,
		message: fmt.Sprintf("request body must not be larger than %d bytes", limit),
	}
}

// decodeObject reads the request body as a single JSON object. Numbers are
// kept as json.Number so integer checks stay exact.
func decodeObject(c *gin.Context, maxBytes int64) (map[string]any, error) {
	body := c.Request.Body
	if maxBytes > 0 {
		body = http.MaxBytesReader(c.Writer, body, maxBytes)
	}

	dec := json.NewDecoder(body)
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		var syntaxError *json.SyntaxError
		var typeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &maxBytesError):
			return nil, tooLarge(maxBytesError.Limit)
		case errors.Is(err, io.EOF):
			return nil, badRequest("request body must not be empty")
		case errors.As(err, &syntaxError):
			return nil, badRequest("request body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, badRequest("request body contains badly-formed JSON")
		case errors.As(err, &typeError):
			return nil, badRequest("request body must be a JSON object")
		default:
			return nil, badRequest("request body could not be read")
		}
	}

	if payload == nil {
		return nil, badRequest("request body must be a JSON object")
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return nil, tooLarge(maxBytesError.Limit)
		}
		return nil, badRequest("request body must only contain a single JSON object")
	}

	return payload, nil
}

// requestMeta collects the request details recorded with audit events.
func requestMeta(c *gin.Context) audit.RequestMeta {
	return audit.RequestMeta{
		RequestID: c.GetString(ContextKeyRequestID),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
