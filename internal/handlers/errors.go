package handlers

import "github.com/danielgtaylor/huma/v2"

// APIError is the error model for all JSON endpoints: a success flag and a
// human-readable message, nothing internal.
type APIError struct {
	status  int
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) GetStatus() int {
	return e.status
}

// UseAPIErrors replaces huma's default RFC 7807 error model with APIError
// so API failures come back as {"success": false, "message": ...}.
func UseAPIErrors() {
	huma.NewError = func(status int, message string, _ ...error) huma.StatusError {
		return &APIError{
			status:  status,
			Success: false,
			Message: message,
		}
	}
}
