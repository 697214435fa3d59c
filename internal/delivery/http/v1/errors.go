package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/tracklin/internal/services"
)

var (
	errInvalidRequestBody      = errors.New("invalid request body")
	errMandatoryCookieNotFound = errors.New("mandatory cookie not found")
	errValidationFailed        = errors.New("the given data was invalid")
)

type apiError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	body := gin.H{"error": err.Message}
	if len(err.Fields) > 0 {
		body["fields"] = err.Fields
	}
	c.AbortWithStatusJSON(err.Code, body)
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newForbiddenError(message string) apiError {
	return newAPIError(http.StatusForbidden, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

func newValidationError(errs services.ValidationErrors) apiError {
	e := newAPIError(http.StatusUnprocessableEntity, errValidationFailed.Error())
	e.Fields = errs.Fields()
	return e
}

// taskError maps a task service error onto its response. Anything not in
// the task error set is reported as an internal error.
func taskError(err error) apiError {
	var validationErrs services.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		return newValidationError(validationErrs)
	case errors.Is(err, services.ErrTaskForbidden):
		return newForbiddenError(http.StatusText(http.StatusForbidden))
	case errors.Is(err, services.ErrTaskNotFound):
		return newNotFoundError(services.ErrTaskNotFound.Error())
	case errors.Is(err, services.ErrTaskMalformed):
		return newBadRequestError(errInvalidRequestBody.Error())
	case errors.Is(err, services.ErrStoreUnavailable):
		return newStatusTextError(http.StatusServiceUnavailable)
	default:
		return newStatusTextError(http.StatusInternalServerError)
	}
}
