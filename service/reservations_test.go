package service

import (
	"testing"
	"time"

	"github.com/antoniovct/api-biblioteca/data"
	"github.com/antoniovct/api-biblioteca/data/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReservation(t *testing.T) {
	request := dto.CreateReservationRequestBody{UserID: 7, BookID: 3}
	lentOutBook := func() *data.Book {
		return &data.Book{ID: 3, Title: "Dom Casmurro", Stock: 0, Available: false}
	}

	t.Run("queues a pending reservation", func(t *testing.T) {
		repo := &fakeRepo{
			getUserByID: func(int64) (*data.User, error) { return borrower(), nil },
			getBook:     func(int64) (*data.Book, error) { return lentOutBook(), nil },
			createReservation: func(reservation *data.Reservation) error {
				reservation.ID = 9
				return nil
			},
		}
		s, _ := newTestService(repo)

		reservation, err := s.CreateReservation(request)

		require.NoError(t, err)
		assert.Equal(t, int64(9), reservation.ID)
		assert.Equal(t, data.ReservationStatusPending, reservation.Status)
		assert.Nil(t, reservation.ExpiresAt)
	})

	t.Run("rejects a book with copies on the shelf", func(t *testing.T) {
		repo := &fakeRepo{
			getUserByID: func(int64) (*data.User, error) { return borrower(), nil },
			getBook: func(int64) (*data.Book, error) {
				return &data.Book{ID: 3, Stock: 1, Available: true}, nil
			},
		}
		s, _ := newTestService(repo)

		_, err := s.CreateReservation(request)

		assert.ErrorIs(t, err, ErrBookNotReservable)
		assert.ErrorIs(t, err, ErrPolicyViolation)
	})

	t.Run("rejects a user at the active reservation limit", func(t *testing.T) {
		repo := &fakeRepo{
			getUserByID:                    func(int64) (*data.User, error) { return borrower(), nil },
			getBook:                        func(int64) (*data.Book, error) { return lentOutBook(), nil },
			countActiveReservationsForUser: func(int64) (int, error) { return data.MaxActiveReservations, nil },
		}
		s, _ := newTestService(repo)

		_, err := s.CreateReservation(request)

		assert.ErrorIs(t, err, ErrReservationLimitReached)
	})

	t.Run("unknown book", func(t *testing.T) {
		repo := &fakeRepo{
			getUserByID: func(int64) (*data.User, error) { return borrower(), nil },
		}
		s, _ := newTestService(repo)

		_, err := s.CreateReservation(request)

		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestUpdateReservationStatus(t *testing.T) {
	pendingReservation := func() *data.Reservation {
		return &data.Reservation{ID: 9, BookID: 3, UserID: 7, Status: data.ReservationStatusPending}
	}

	t.Run("activation opens the pickup window", func(t *testing.T) {
		repo := &fakeRepo{
			getReservation: func(int64) (*data.Reservation, error) { return pendingReservation(), nil },
		}
		s, _ := newTestService(repo)

		reservation, err := s.UpdateReservationStatus(9, "Active")

		require.NoError(t, err)
		assert.Equal(t, data.ReservationStatusActive, reservation.Status)
		require.NotNil(t, reservation.ExpiresAt)
		assert.True(t, reservation.ExpiresAt.Equal(testNow.Add(48*time.Hour)))
	})

	t.Run("finalized and expired close the reservation", func(t *testing.T) {
		for status, want := range map[string]string{
			"finalized": data.ReservationStatusFinalized,
			"EXPIRED":   data.ReservationStatusExpired,
		} {
			repo := &fakeRepo{
				getReservation: func(int64) (*data.Reservation, error) { return pendingReservation(), nil },
			}
			s, _ := newTestService(repo)

			reservation, err := s.UpdateReservationStatus(9, status)

			require.NoError(t, err)
			assert.Equal(t, want, reservation.Status)
		}
	})

	t.Run("rejects pending and unknown statuses", func(t *testing.T) {
		for _, status := range []string{"pending", "cancelled", ""} {
			repo := &fakeRepo{
				getReservation: func(int64) (*data.Reservation, error) { return pendingReservation(), nil },
			}
			s, _ := newTestService(repo)

			_, err := s.UpdateReservationStatus(9, status)

			assert.ErrorIs(t, err, ErrInvalidReservationStatus)
		}
	})
}

func TestListReservations(t *testing.T) {
	filters := data.Filters{Page: 1, PageSize: 10, Sort: "created_at", SortSafeList: []string{"created_at"}}

	t.Run("rejects an unknown status", func(t *testing.T) {
		s, _ := newTestService(&fakeRepo{})

		_, _, err := s.ListReservations(0, "cancelled", filters)

		assert.ErrorIs(t, err, ErrFailedValidation)
	})

	t.Run("accepts a case-insensitive status", func(t *testing.T) {
		repo := &fakeRepo{
			getAllReservations: func(userID int64, status string, filters data.Filters) ([]*data.Reservation, data.Metadata, error) {
				return []*data.Reservation{}, data.Metadata{}, nil
			},
		}
		s, _ := newTestService(repo)

		_, _, err := s.ListReservations(7, "Pending", filters)

		assert.NoError(t, err)
	})
}
