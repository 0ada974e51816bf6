package utils

// ErrorBody is the uniform error payload. Every error response carries at
// least this `error` string; the UI renders it directly.
type ErrorBody struct {
	Error string `json:"error"`
}

// NewErrorBody creates an ErrorBody with the given message.
func NewErrorBody(message string) ErrorBody {
	return ErrorBody{Error: message}
}
