package errors

import "errors"

// Codes shared by the domain services and mapped to transport statuses.
const (
	CodeInvalidInput = "invalid_input"
	CodeCancelled    = "cancelled"
	CodeStock        = "stock_error"
	CodeWeather      = "weather_error"
	CodeHistory      = "history_error"
	CodeReport       = "report_error"
)

// AppError carries a machine readable code alongside the message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	return &AppError{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the outermost AppError in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
