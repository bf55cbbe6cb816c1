package dto

import "github.com/antoniovct/api-biblioteca/data"

// CreateReservationRequestBody defines a request body for CreateReservation service.
type CreateReservationRequestBody struct {
	UserID int64 `json:"user_id"`
	BookID int64 `json:"book_id"`
}

// UpdateReservationRequestBody defines a request body for UpdateReservationStatus service.
type UpdateReservationRequestBody struct {
	Status string `json:"status"`
}

// QsListReservations defines query strings for ListReservations service.
type QsListReservations struct {
	UserID  int64
	Status  string
	Filters data.Filters
}
