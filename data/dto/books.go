package dto

import "github.com/antoniovct/api-biblioteca/data"

// CreateBookRequestBody defines the request body for CreateBook service.
type CreateBookRequestBody struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Category string `json:"category"`
	Stock    int    `json:"stock"`
}

// UpdateBookRequestBody defines the request body for UpdateBook service. The
// fields are set to a pointer type to allow partial updates based on whether
// the value is set to nil.
type UpdateBookRequestBody struct {
	Title     *string `json:"title"`
	Author    *string `json:"author"`
	Category  *string `json:"category"`
	Stock     *int    `json:"stock"`
	Available *bool   `json:"available"`
}

// QsListBooks defines the query strings used for listing books.
type QsListBooks struct {
	Title    string
	Category string
	Filters  data.Filters
}
