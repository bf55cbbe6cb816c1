package service

import (
	"testing"
	"time"

	"github.com/antoniovct/api-biblioteca/data"
	"github.com/antoniovct/api-biblioteca/data/dto"
	"github.com/antoniovct/api-biblioteca/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func borrower() *data.User {
	return &data.User{ID: 7, Name: "Ana Souza", Email: "ana@example.com", Active: true, EmailVerified: true}
}

func shelfBook() *data.Book {
	return &data.Book{ID: 3, Title: "Dom Casmurro", Stock: 2, Available: true, Version: 1}
}

func TestCreateLoan(t *testing.T) {
	request := dto.CreateLoanRequestBody{UserID: 7, BookID: 3}

	t.Run("opens an active loan and decrements stock", func(t *testing.T) {
		var gotBook *data.Book
		var gotConsumed *data.Reservation
		repo := &fakeRepo{
			getUserByID: func(int64) (*data.User, error) { return borrower(), nil },
			getBook:     func(int64) (*data.Book, error) { return shelfBook(), nil },
			createLoan: func(loan *data.Loan, book *data.Book, consumed *data.Reservation) error {
				loan.ID = 42
				gotBook = book
				gotConsumed = consumed
				return nil
			},
		}
		s, _ := newTestService(repo)

		loan, err := s.CreateLoan(request)

		require.NoError(t, err)
		assert.Equal(t, int64(42), loan.ID)
		assert.Equal(t, data.LoanStatusActive, loan.Status)
		assert.True(t, loan.DueDate.Equal(time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, 1, gotBook.Stock)
		assert.Nil(t, gotConsumed)
	})

	t.Run("rejects a blocked user", func(t *testing.T) {
		user := borrower()
		user.Active = false
		repo := &fakeRepo{
			getUserByID: func(int64) (*data.User, error) { return user, nil },
			getBook:     func(int64) (*data.Book, error) { return shelfBook(), nil },
		}
		s, _ := newTestService(repo)

		_, err := s.CreateLoan(request)

		assert.ErrorIs(t, err, ErrUserBlocked)
		assert.ErrorIs(t, err, ErrPolicyViolation)
	})

	t.Run("rejects an unverified email", func(t *testing.T) {
		user := borrower()
		user.EmailVerified = false
		repo := &fakeRepo{
			getUserByID: func(int64) (*data.User, error) { return user, nil },
			getBook:     func(int64) (*data.Book, error) { return shelfBook(), nil },
		}
		s, _ := newTestService(repo)

		_, err := s.CreateLoan(request)

		assert.ErrorIs(t, err, ErrEmailNotVerified)
	})

	t.Run("rejects a user with a pending loan", func(t *testing.T) {
		repo := &fakeRepo{
			getUserByID: func(int64) (*data.User, error) { return borrower(), nil },
			getBook:     func(int64) (*data.Book, error) { return shelfBook(), nil },
			countLoansForUser: func(userID int64, status string) (int, error) {
				if status == data.LoanStatusPending {
					return 1, nil
				}
				return 0, nil
			},
		}
		s, _ := newTestService(repo)

		_, err := s.CreateLoan(request)

		assert.ErrorIs(t, err, ErrPendingLoan)
	})

	t.Run("rejects a user at the active loan limit", func(t *testing.T) {
		repo := &fakeRepo{
			getUserByID: func(int64) (*data.User, error) { return borrower(), nil },
			getBook:     func(int64) (*data.Book, error) { return shelfBook(), nil },
			countLoansForUser: func(userID int64, status string) (int, error) {
				if status == data.LoanStatusActive {
					return data.MaxActiveLoans, nil
				}
				return 0, nil
			},
		}
		s, _ := newTestService(repo)

		_, err := s.CreateLoan(request)

		assert.ErrorIs(t, err, ErrLoanLimitReached)
	})

	t.Run("rejects a book with no stock", func(t *testing.T) {
		book := shelfBook()
		book.Stock = 0
		repo := &fakeRepo{
			getUserByID: func(int64) (*data.User, error) { return borrower(), nil },
			getBook:     func(int64) (*data.Book, error) { return book, nil },
		}
		s, _ := newTestService(repo)

		_, err := s.CreateLoan(request)

		assert.ErrorIs(t, err, ErrBookUnavailable)
	})

	t.Run("rejects when another user holds the active reservation", func(t *testing.T) {
		repo := &fakeRepo{
			getUserByID: func(int64) (*data.User, error) { return borrower(), nil },
			getBook:     func(int64) (*data.Book, error) { return shelfBook(), nil },
			getActiveReservationForBook: func(int64) (*data.Reservation, error) {
				return &data.Reservation{ID: 9, BookID: 3, UserID: 99, Status: data.ReservationStatusActive}, nil
			},
		}
		s, _ := newTestService(repo)

		_, err := s.CreateLoan(request)

		assert.ErrorIs(t, err, ErrBookReserved)
	})

	t.Run("consumes the borrower's own reservation", func(t *testing.T) {
		var gotConsumed *data.Reservation
		repo := &fakeRepo{
			getUserByID: func(int64) (*data.User, error) { return borrower(), nil },
			getBook:     func(int64) (*data.Book, error) { return shelfBook(), nil },
			getActiveReservationForBook: func(int64) (*data.Reservation, error) {
				return &data.Reservation{ID: 9, BookID: 3, UserID: 7, Status: data.ReservationStatusActive}, nil
			},
			createLoan: func(loan *data.Loan, book *data.Book, consumed *data.Reservation) error {
				gotConsumed = consumed
				return nil
			},
		}
		s, _ := newTestService(repo)

		_, err := s.CreateLoan(request)

		require.NoError(t, err)
		require.NotNil(t, gotConsumed)
		assert.Equal(t, data.ReservationStatusFinalized, gotConsumed.Status)
	})

	t.Run("unknown user", func(t *testing.T) {
		s, _ := newTestService(&fakeRepo{})

		_, err := s.CreateLoan(request)

		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestRenewLoan(t *testing.T) {
	activeLoan := func() *data.Loan {
		return &data.Loan{
			ID:      42,
			BookID:  3,
			UserID:  7,
			DueDate: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
			Status:  data.LoanStatusActive,
		}
	}

	t.Run("pushes the due date out fourteen days", func(t *testing.T) {
		repo := &fakeRepo{
			getLoan: func(int64) (*data.Loan, error) { return activeLoan(), nil },
		}
		s, _ := newTestService(repo)

		loan, err := s.RenewLoan(42)

		require.NoError(t, err)
		assert.True(t, loan.DueDate.Equal(time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("rejects a finalized loan", func(t *testing.T) {
		loan := activeLoan()
		loan.Status = data.LoanStatusFinalized
		repo := &fakeRepo{
			getLoan: func(int64) (*data.Loan, error) { return loan, nil },
		}
		s, _ := newTestService(repo)

		_, err := s.RenewLoan(42)

		assert.ErrorIs(t, err, ErrLoanFinalized)
	})

	t.Run("rejects when the book has a pending reservation", func(t *testing.T) {
		repo := &fakeRepo{
			getLoan:                      func(int64) (*data.Loan, error) { return activeLoan(), nil },
			hasPendingReservationForBook: func(int64) (bool, error) { return true, nil },
		}
		s, _ := newTestService(repo)

		_, err := s.RenewLoan(42)

		assert.ErrorIs(t, err, ErrRenewalBlocked)
	})

	t.Run("surfaces an edit conflict", func(t *testing.T) {
		repo := &fakeRepo{
			getLoan:    func(int64) (*data.Loan, error) { return activeLoan(), nil },
			updateLoan: func(*data.Loan) error { return repository.ErrEditConflict },
		}
		s, _ := newTestService(repo)

		_, err := s.RenewLoan(42)

		assert.ErrorIs(t, err, ErrEditConflict)
	})
}

func TestReturnLoan(t *testing.T) {
	lateLoan := func() *data.Loan {
		return &data.Loan{
			ID:      42,
			BookID:  3,
			UserID:  7,
			DueDate: time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
			Status:  data.LoanStatusActive,
		}
	}

	t.Run("charges the late fine and restocks", func(t *testing.T) {
		book := shelfBook()
		book.Stock = 1
		var gotBook *data.Book
		repo := &fakeRepo{
			getLoan: func(int64) (*data.Loan, error) { return lateLoan(), nil },
			getBook: func(int64) (*data.Book, error) { return book, nil },
			finalizeLoan: func(loan *data.Loan, book *data.Book, promoted *data.Reservation) error {
				gotBook = book
				return nil
			},
		}
		s, _ := newTestService(repo)

		loan, err := s.ReturnLoan(42)

		require.NoError(t, err)
		assert.Equal(t, data.LoanStatusFinalized, loan.Status)
		assert.Equal(t, 3*data.FinePerDay, loan.Fine)
		assert.Equal(t, 2, gotBook.Stock)
	})

	t.Run("promotes the earliest pending reservation and emails its holder", func(t *testing.T) {
		book := shelfBook()
		book.Stock = 0
		book.Available = false
		var gotPromoted *data.Reservation
		repo := &fakeRepo{
			getLoan: func(int64) (*data.Loan, error) { return lateLoan(), nil },
			getBook: func(int64) (*data.Book, error) { return book, nil },
			getNextPendingReservationForBook: func(int64) (*data.Reservation, error) {
				return &data.Reservation{ID: 9, BookID: 3, UserID: 11, Status: data.ReservationStatusPending}, nil
			},
			getUserByID: func(int64) (*data.User, error) {
				return &data.User{ID: 11, Name: "Bruno Lima", Email: "bruno@example.com"}, nil
			},
			finalizeLoan: func(loan *data.Loan, book *data.Book, promoted *data.Reservation) error {
				gotPromoted = promoted
				return nil
			},
		}
		s, notifier := newTestService(repo)

		_, err := s.ReturnLoan(42)
		require.NoError(t, err)
		s.wg.Wait()

		require.NotNil(t, gotPromoted)
		assert.Equal(t, data.ReservationStatusActive, gotPromoted.Status)
		require.NotNil(t, gotPromoted.ExpiresAt)
		assert.True(t, gotPromoted.ExpiresAt.Equal(testNow.Add(48*time.Hour)))
		// Restocking leaves the availability flag alone while the book waits
		// for its reservation holder.
		assert.Equal(t, 1, book.Stock)
		assert.False(t, book.Available)

		sends := notifier.all()
		require.Len(t, sends, 1)
		assert.Equal(t, "bruno@example.com", sends[0].recipient)
		assert.Equal(t, "book_available.tmpl", sends[0].templateFile)
	})

	t.Run("no promotion while copies remain on the shelf", func(t *testing.T) {
		book := shelfBook()
		book.Stock = 1
		repo := &fakeRepo{
			getLoan: func(int64) (*data.Loan, error) { return lateLoan(), nil },
			getBook: func(int64) (*data.Book, error) { return book, nil },
			getNextPendingReservationForBook: func(int64) (*data.Reservation, error) {
				t.Fatal("reservation queue should not be consulted")
				return nil, nil
			},
		}
		s, notifier := newTestService(repo)

		_, err := s.ReturnLoan(42)
		require.NoError(t, err)
		s.wg.Wait()

		assert.Empty(t, notifier.all())
	})

	t.Run("rejects a finalized loan", func(t *testing.T) {
		loan := lateLoan()
		loan.Status = data.LoanStatusFinalized
		repo := &fakeRepo{
			getLoan: func(int64) (*data.Loan, error) { return loan, nil },
		}
		s, _ := newTestService(repo)

		_, err := s.ReturnLoan(42)

		assert.ErrorIs(t, err, ErrLoanFinalized)
	})
}

func TestListLoans(t *testing.T) {
	filters := data.Filters{Page: 1, PageSize: 10, Sort: "start_date", SortSafeList: []string{"start_date"}}

	t.Run("rejects an unknown status", func(t *testing.T) {
		s, _ := newTestService(&fakeRepo{})

		_, _, err := s.ListLoans(0, "cancelled", filters)

		assert.ErrorIs(t, err, ErrFailedValidation)
	})

	t.Run("passes the user and status filters through", func(t *testing.T) {
		var gotUserID int64
		var gotStatus string
		repo := &fakeRepo{
			getAllLoans: func(userID int64, status string, filters data.Filters) ([]*data.Loan, data.Metadata, error) {
				gotUserID = userID
				gotStatus = status
				return []*data.Loan{}, data.Metadata{}, nil
			},
		}
		s, _ := newTestService(repo)

		_, _, err := s.ListLoans(7, data.LoanStatusActive, filters)

		require.NoError(t, err)
		assert.Equal(t, int64(7), gotUserID)
		assert.Equal(t, data.LoanStatusActive, gotStatus)
	})
}
