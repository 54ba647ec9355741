package dto

import "blog-api/validation"

// ErrorResponseDTO is the body of every non-2xx API response.
// Fields is set only for validation failures.
type ErrorResponseDTO struct {
	Error  string                  `json:"error" example:"Blog not found"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

type MessageResponseDTO struct {
	Message string `json:"message" example:"Blog deleted successfully"`
}
