package dto

import "github.com/antoniovct/api-biblioteca/data"

// RegisterUserRequestBody defines a request body for RegisterUser service.
type RegisterUserRequestBody struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	NationalID string `json:"national_id"`
	Role       string `json:"role"`
}

// VerifyEmailRequestBody defines a request body for VerifyEmail service.
type VerifyEmailRequestBody struct {
	Code string `json:"code"`
}

// UpdateUserRequestBody defines a request body for UpdateUser service.
type UpdateUserRequestBody struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// QsListUsers defines query strings for ListUsers service.
type QsListUsers struct {
	Filters data.Filters
}
