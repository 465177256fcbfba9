// Package apierror holds the error envelopes returned to API clients.
package apierror

// APIError is the canonical error envelope for 4xx/5xx responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError lists the failing field tags.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validação", Fields: fields}
}

// Falha is the {success, message} shape the closing endpoints answer with
// when an operation is refused; the app shows Message verbatim.
type Falha struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewFalha(msg string) *Falha {
	return &Falha{Success: false, Message: msg}
}
