package response

import (
	"net/http"
	"time"

	deliverycontext "storefront/internal/delivery/context"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/query"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// SuccessResponse defines the structure for successful responses
type SuccessResponse struct {
	Data any       `json:"data"`
	Meta *MetaInfo `json:"meta"`
}

// ErrorResponse defines the structure for error responses
type ErrorResponse struct {
	Error *ErrorInfo `json:"error"`
	Meta  *MetaInfo  `json:"meta"`
}

// ErrorInfo contains detailed error information
type ErrorInfo struct {
	Code    string `json:"code"`              // Machine-readable error code, e.g., "VALIDATION_FAILED"
	Message string `json:"message"`           // User-friendly error message
	Details any    `json:"details,omitempty"` // Field errors or extra context (only for 4xx errors)
}

// MetaInfo represents response metadata. The cache fields are set for reads
// served from the storefront client's query cache.
type MetaInfo struct {
	RequestID string     `json:"request_id"`
	Stale     bool       `json:"stale,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	// Warning carries the refetch error when stale data is served instead.
	Warning string `json:"warning,omitempty"`
}

func meta(c echo.Context) *MetaInfo {
	return &MetaInfo{RequestID: deliverycontext.GetRequestID(c)}
}

// Success returns a successful response
func Success(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, SuccessResponse{
		Data: data,
		Meta: meta(c),
	})
}

// Query renders a cached read. A failed read without data becomes an error;
// a failed refetch with cached data is served as stale with a warning. A
// disabled read renders null data.
func Query[T any](c echo.Context, res query.Result[T]) error {
	if res.IsError && !res.HasData {
		return errors.WithStack(res.Err)
	}

	m := meta(c)
	m.Stale = res.IsStale
	if !res.UpdatedAt.IsZero() {
		updatedAt := res.UpdatedAt
		m.UpdatedAt = &updatedAt
	}
	if res.IsError {
		m.Warning = domainerrors.AsAppError(res.Err).Message()
	}

	var data any
	if res.HasData {
		data = res.Data
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: data, Meta: m})
}

// Error returns an error response
func Error(c echo.Context, statusCode int, errorCode string, message string, details any) error {
	// Details should not be included for 5xx errors or authentication/authorization errors
	if statusCode >= 500 || statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		details = nil
	}

	return c.JSON(statusCode, ErrorResponse{
		Error: &ErrorInfo{
			Code:    errorCode,
			Message: message,
			Details: details,
		},
		Meta: meta(c),
	})
}

// AppError renders an application error. Validation failures carry their
// field errors as details.
func AppError(c echo.Context, appErr domainerrors.AppError) error {
	var details any
	if fields := appErr.Fields(); len(fields) > 0 {
		details = fields
	} else if appErr.Details() != "" {
		details = appErr.Details()
	}

	return Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), details)
}

// BindingError returns a binding error response
func BindingError(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusBadRequest, errorCode, message, nil)
}

// InternalServerError returns a 500 error
func InternalServerError(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusInternalServerError, errorCode, message, nil)
}

// PNG writes an image response.
func PNG(c echo.Context, body []byte) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=300")

	return c.Blob(http.StatusOK, "image/png", body)
}
