package service

import (
	"errors"

	"github.com/antoniovct/api-biblioteca/data"
	"github.com/antoniovct/api-biblioteca/data/dto"
	"github.com/antoniovct/api-biblioteca/internal/validator"
	"github.com/antoniovct/api-biblioteca/repository"
)

type loans interface {
	CreateLoan(requestBody dto.CreateLoanRequestBody) (*data.Loan, error)
	GetLoan(loanID int64) (*data.Loan, error)
	ListLoans(userID int64, status string, filters data.Filters) ([]*data.Loan, data.Metadata, error)
	RenewLoan(loanID int64) (*data.Loan, error)
	ReturnLoan(loanID int64) (*data.Loan, error)
	DeleteLoan(loanID int64) error
}

// CreateLoan service opens a new loan after checking every lending rule:
// the borrower must be active and email-verified, hold no pending loan and
// fewer than two active ones, and the book must have a copy on the shelf.
// When the book carries an active reservation, only the reservation holder
// may borrow it, and their reservation is consumed by the loan.
func (s *service) CreateLoan(requestBody dto.CreateLoanRequestBody) (*data.Loan, error) {
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
	if !user.Active {
		return nil, ErrUserBlocked
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	pending, err := s.repo.CountLoansForUser(user.ID, data.LoanStatusPending)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, ErrPendingLoan
	}
	active, err := s.repo.CountLoansForUser(user.ID, data.LoanStatusActive)
	if err != nil {
		return nil, err
	}
	if active >= data.MaxActiveLoans {
		return nil, ErrLoanLimitReached
	}
	// Reservation-holder exclusivity comes before the general availability
	// rule: while a reservation is active the book is held for its owner.
	var consumed *data.Reservation
	reservation, err := s.repo.GetActiveReservationForBook(book.ID)
	switch {
	case err == nil:
		if reservation.UserID != user.ID {
			return nil, ErrBookReserved
		}
		reservation.Finalize()
		consumed = reservation
	case errors.Is(err, repository.ErrRecordNotFound):
	default:
		return nil, err
	}
	if book.Stock < 1 {
		return nil, ErrBookUnavailable
	}
	loan := data.NewLoan(user.ID, book.ID, s.now())
	book.RegisterLoan()
	err = s.repo.CreateLoan(loan, book, consumed)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	loan.BookTitle = book.Title
	loan.UserName = user.Name
	return loan, nil
}

// GetLoan service retrieves the details of a loan.
func (s *service) GetLoan(loanID int64) (*data.Loan, error) {
	loan, err := s.repo.GetLoan(loanID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return loan, nil
}

// ListLoans service retrieves a paginated list of loans. The list can be
// filtered by user and status, and sorted.
func (s *service) ListLoans(userID int64, status string, filters data.Filters) ([]*data.Loan, data.Metadata, error) {
	v := validator.New()
	data.ValidateFilters(v, filters)
	if status != "" {
		v.Check(validator.In(status, data.LoanStatusPending, data.LoanStatusActive, data.LoanStatusFinalized), "status", "must be one of pending, active or finalized")
	}
	if !v.Valid() {
		return nil, data.Metadata{}, s.failedValidation(v.Errors)
	}
	loans, metadata, err := s.repo.GetAllLoans(userID, status, filters)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	return loans, metadata, nil
}

// RenewLoan service pushes a loan's due date out by another loan period. A
// pending reservation on the book blocks renewal, whoever owns it.
func (s *service) RenewLoan(loanID int64) (*data.Loan, error) {
	loan, err := s.repo.GetLoan(loanID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if loan.Status == data.LoanStatusFinalized {
		return nil, ErrLoanFinalized
	}
	blocked, err := s.repo.HasPendingReservationForBook(loan.BookID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrRenewalBlocked
	}
	loan.Renew(s.now())
	err = s.repo.UpdateLoan(loan)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return loan, nil
}

// ReturnLoan service finalizes a loan, charging a fine when it comes back
// late. When the returned book had no copies on the shelf, the earliest
// pending reservation is promoted to active and its holder notified by
// email after the transaction commits. The stock increment does not flip the
// availability flag back on; the book catalog update flow owns that flag.
func (s *service) ReturnLoan(loanID int64) (*data.Loan, error) {
	loan, err := s.repo.GetLoan(loanID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if loan.Status == data.LoanStatusFinalized {
		return nil, ErrLoanFinalized
	}
	book, err := s.repo.GetBook(loan.BookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	loan.Finalize(s.now())
	var promoted *data.Reservation
	if book.Stock == 0 {
		next, err := s.repo.GetNextPendingReservationForBook(book.ID)
		switch {
		case err == nil:
			next.Activate(s.now())
			promoted = next
		case errors.Is(err, repository.ErrRecordNotFound):
		default:
			return nil, err
		}
	}
	book.Restock(1)
	err = s.repo.FinalizeLoan(loan, book, promoted)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	if promoted != nil {
		holder, err := s.repo.GetUserByID(promoted.UserID)
		if err != nil {
			s.logger.PrintError(err, map[string]string{"context": "reservation promotion notification skipped"})
			return loan, nil
		}
		expiresAt := promoted.ExpiresAt.Format("Mon, 02 Jan 2006 15:04")
		s.background(func() {
			mailData := map[string]string{
				"name":      firstName(holder.Name),
				"bookTitle": book.Title,
				"expiresAt": expiresAt,
			}
			err := s.notifier.Send(holder.Email, "book_available.tmpl", mailData)
			if err != nil {
				s.logger.PrintError(err, nil)
			}
		})
	}
	return loan, nil
}

// DeleteLoan service deletes a loan.
func (s *service) DeleteLoan(loanID int64) error {
	err := s.repo.DeleteLoan(loanID)
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
