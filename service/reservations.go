package service

import (
	"errors"
	"strings"

	"github.com/antoniovct/api-biblioteca/data"
	"github.com/antoniovct/api-biblioteca/data/dto"
	"github.com/antoniovct/api-biblioteca/internal/validator"
	"github.com/antoniovct/api-biblioteca/repository"
)

type reservations interface {
	CreateReservation(requestBody dto.CreateReservationRequestBody) (*data.Reservation, error)
	GetReservation(reservationID int64) (*data.Reservation, error)
	ListReservations(userID int64, status string, filters data.Filters) ([]*data.Reservation, data.Metadata, error)
	UpdateReservationStatus(reservationID int64, status string) (*data.Reservation, error)
	DeleteReservation(reservationID int64) error
}

// CreateReservation service queues a pending reservation. Reservations exist
// for books that are currently lent out, so a book with copies on the shelf
// cannot be reserved, and a user may not hold more than three active
// reservations.
func (s *service) CreateReservation(requestBody dto.CreateReservationRequestBody) (*data.Reservation, error) {
	user, err := s.repo.GetUserByID(requestBody.UserID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	book, err := s.repo.GetBook(requestBody.BookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if book.Stock > 0 {
		return nil, ErrBookNotReservable
	}
	active, err := s.repo.CountActiveReservationsForUser(user.ID)
	if err != nil {
		return nil, err
	}
	if active >= data.MaxActiveReservations {
		return nil, ErrReservationLimitReached
	}
	reservation := data.NewReservation(user.ID, book.ID, s.now())
	err = s.repo.CreateReservation(reservation)
	if err != nil {
		return nil, err
	}
	reservation.BookTitle = book.Title
	reservation.UserName = user.Name
	return reservation, nil
}

// GetReservation service retrieves the details of a reservation.
func (s *service) GetReservation(reservationID int64) (*data.Reservation, error) {
	reservation, err := s.repo.GetReservation(reservationID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return reservation, nil
}

// ListReservations service retrieves a paginated list of reservations. The
// list can be filtered by user and status, and sorted.
func (s *service) ListReservations(userID int64, status string, filters data.Filters) ([]*data.Reservation, data.Metadata, error) {
	v := validator.New()
	data.ValidateFilters(v, filters)
	if status != "" {
		v.Check(data.IsReservationStatus(status), "status", "must be one of pending, active, finalized or expired")
	}
	if !v.Valid() {
		return nil, data.Metadata{}, s.failedValidation(v.Errors)
	}
	reservations, metadata, err := s.repo.GetAllReservations(userID, status, filters)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	return reservations, metadata, nil
}

// UpdateReservationStatus service transitions a reservation to a new status.
// Activation opens the 48-hour pickup window; finalized and expired close the
// reservation so it no longer competes for the book. A reservation cannot be
// moved back to pending.
func (s *service) UpdateReservationStatus(reservationID int64, status string) (*data.Reservation, error) {
	reservation, err := s.repo.GetReservation(reservationID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	switch strings.ToLower(status) {
	case data.ReservationStatusActive:
		reservation.Activate(s.now())
	case data.ReservationStatusFinalized:
		reservation.Finalize()
	case data.ReservationStatusExpired:
		reservation.Expire()
	default:
		return nil, ErrInvalidReservationStatus
	}
	err = s.repo.UpdateReservation(reservation)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return reservation, nil
}

// DeleteReservation service deletes a reservation.
func (s *service) DeleteReservation(reservationID int64) error {
	err := s.repo.DeleteReservation(reservationID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return ErrRecordNotFound
		default:
			return err
		}
	}
	return nil
}
