package dto

import "github.com/antoniovct/api-biblioteca/data"

// CreateLoanRequestBody defines a request body for CreateLoan service.
type CreateLoanRequestBody struct {
	UserID int64 `json:"user_id"`
	BookID int64 `json:"book_id"`
}

// QsListLoans defines query strings for ListLoans service.
type QsListLoans struct {
	UserID  int64
	Status  string
	Filters data.Filters
}
