package service

import (
	"io"
	"sync"
	"time"

	"github.com/antoniovct/api-biblioteca/config"
	"github.com/antoniovct/api-biblioteca/data"
	"github.com/antoniovct/api-biblioteca/internal/jsonlog"
	"github.com/antoniovct/api-biblioteca/repository"
)

// fakeRepo satisfies repository.Repository through overridable function
// fields. Methods without an override return ErrRecordNotFound for getters
// and succeed silently for mutations.
type fakeRepo struct {
	createBook  func(book *data.Book) error
	getBook     func(ID int64) (*data.Book, error)
	getAllBooks func(title, category string, filters data.Filters) ([]*data.Book, data.Metadata, error)
	updateBook  func(book *data.Book) error
	deleteBook  func(bookID int64) error

	registerUser    func(user *data.User) error
	getUserByID     func(ID int64) (*data.User, error)
	getUserByEmail  func(email string) (*data.User, error)
	getAllUsers     func(name string, filters data.Filters) ([]*data.User, data.Metadata, error)
	updateUser      func(user *data.User) error
	deleteUser      func(ID int64) error
	getUserForToken func(tokenScope, tokenPlaintext string) (*data.User, error)

	createLoan        func(loan *data.Loan, book *data.Book, consumed *data.Reservation) error
	getLoan           func(ID int64) (*data.Loan, error)
	getAllLoans       func(userID int64, status string, filters data.Filters) ([]*data.Loan, data.Metadata, error)
	countLoansForUser func(userID int64, status string) (int, error)
	updateLoan        func(loan *data.Loan) error
	finalizeLoan      func(loan *data.Loan, book *data.Book, promoted *data.Reservation) error
	deleteLoan        func(loanID int64) error
	getLoansDueOn     func(day time.Time) ([]*data.Loan, error)
	getOverdueLoans   func(now time.Time) ([]*data.Loan, error)

	createReservation                func(reservation *data.Reservation) error
	getReservation                   func(ID int64) (*data.Reservation, error)
	getAllReservations               func(userID int64, status string, filters data.Filters) ([]*data.Reservation, data.Metadata, error)
	countActiveReservationsForUser   func(userID int64) (int, error)
	getActiveReservationForBook      func(bookID int64) (*data.Reservation, error)
	hasPendingReservationForBook     func(bookID int64) (bool, error)
	getNextPendingReservationForBook func(bookID int64) (*data.Reservation, error)
	updateReservation                func(reservation *data.Reservation) error
	deleteReservation                func(reservationID int64) error
	getExpiredReservations           func(now time.Time) ([]*data.Reservation, error)

	createNewToken         func(userID int64, ttl time.Duration, scope string) (*data.Token, error)
	deleteAllTokensForUser func(scope string, userID int64) error
}

func (f *fakeRepo) CreateBook(book *data.Book) error {
	if f.createBook != nil {
		return f.createBook(book)
	}
	return nil
}

func (f *fakeRepo) GetBook(ID int64) (*data.Book, error) {
	if f.getBook != nil {
		return f.getBook(ID)
	}
	return nil, repository.ErrRecordNotFound
}

func (f *fakeRepo) GetAllBooks(title, category string, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	if f.getAllBooks != nil {
		return f.getAllBooks(title, category, filters)
	}
	return nil, data.Metadata{}, nil
}

func (f *fakeRepo) UpdateBook(book *data.Book) error {
	if f.updateBook != nil {
		return f.updateBook(book)
	}
	return nil
}

func (f *fakeRepo) DeleteBook(bookID int64) error {
	if f.deleteBook != nil {
		return f.deleteBook(bookID)
	}
	return nil
}

func (f *fakeRepo) RegisterUser(user *data.User) error {
	if f.registerUser != nil {
		return f.registerUser(user)
	}
	return nil
}

func (f *fakeRepo) GetUserByID(ID int64) (*data.User, error) {
	if f.getUserByID != nil {
		return f.getUserByID(ID)
	}
	return nil, repository.ErrRecordNotFound
}

func (f *fakeRepo) GetUserByEmail(email string) (*data.User, error) {
	if f.getUserByEmail != nil {
		return f.getUserByEmail(email)
	}
	return nil, repository.ErrRecordNotFound
}

func (f *fakeRepo) GetAllUsers(name string, filters data.Filters) ([]*data.User, data.Metadata, error) {
	if f.getAllUsers != nil {
		return f.getAllUsers(name, filters)
	}
	return nil, data.Metadata{}, nil
}

func (f *fakeRepo) UpdateUser(user *data.User) error {
	if f.updateUser != nil {
		return f.updateUser(user)
	}
	return nil
}

func (f *fakeRepo) DeleteUser(ID int64) error {
	if f.deleteUser != nil {
		return f.deleteUser(ID)
	}
	return nil
}

func (f *fakeRepo) GetUserForToken(tokenScope, tokenPlaintext string) (*data.User, error) {
	if f.getUserForToken != nil {
		return f.getUserForToken(tokenScope, tokenPlaintext)
	}
	return nil, repository.ErrRecordNotFound
}

func (f *fakeRepo) CreateLoan(loan *data.Loan, book *data.Book, consumed *data.Reservation) error {
	if f.createLoan != nil {
		return f.createLoan(loan, book, consumed)
	}
	return nil
}

func (f *fakeRepo) GetLoan(ID int64) (*data.Loan, error) {
	if f.getLoan != nil {
		return f.getLoan(ID)
	}
	return nil, repository.ErrRecordNotFound
}

func (f *fakeRepo) GetAllLoans(userID int64, status string, filters data.Filters) ([]*data.Loan, data.Metadata, error) {
	if f.getAllLoans != nil {
		return f.getAllLoans(userID, status, filters)
	}
	return nil, data.Metadata{}, nil
}

func (f *fakeRepo) CountLoansForUser(userID int64, status string) (int, error) {
	if f.countLoansForUser != nil {
		return f.countLoansForUser(userID, status)
	}
	return 0, nil
}

func (f *fakeRepo) UpdateLoan(loan *data.Loan) error {
	if f.updateLoan != nil {
		return f.updateLoan(loan)
	}
	return nil
}

func (f *fakeRepo) FinalizeLoan(loan *data.Loan, book *data.Book, promoted *data.Reservation) error {
	if f.finalizeLoan != nil {
		return f.finalizeLoan(loan, book, promoted)
	}
	return nil
}

func (f *fakeRepo) DeleteLoan(loanID int64) error {
	if f.deleteLoan != nil {
		return f.deleteLoan(loanID)
	}
	return nil
}

func (f *fakeRepo) GetLoansDueOn(day time.Time) ([]*data.Loan, error) {
	if f.getLoansDueOn != nil {
		return f.getLoansDueOn(day)
	}
	return nil, nil
}

func (f *fakeRepo) GetOverdueLoans(now time.Time) ([]*data.Loan, error) {
	if f.getOverdueLoans != nil {
		return f.getOverdueLoans(now)
	}
	return nil, nil
}

func (f *fakeRepo) CreateReservation(reservation *data.Reservation) error {
	if f.createReservation != nil {
		return f.createReservation(reservation)
	}
	return nil
}

func (f *fakeRepo) GetReservation(ID int64) (*data.Reservation, error) {
	if f.getReservation != nil {
		return f.getReservation(ID)
	}
	return nil, repository.ErrRecordNotFound
}

func (f *fakeRepo) GetAllReservations(userID int64, status string, filters data.Filters) ([]*data.Reservation, data.Metadata, error) {
	if f.getAllReservations != nil {
		return f.getAllReservations(userID, status, filters)
	}
	return nil, data.Metadata{}, nil
}

func (f *fakeRepo) CountActiveReservationsForUser(userID int64) (int, error) {
	if f.countActiveReservationsForUser != nil {
		return f.countActiveReservationsForUser(userID)
	}
	return 0, nil
}

func (f *fakeRepo) GetActiveReservationForBook(bookID int64) (*data.Reservation, error) {
	if f.getActiveReservationForBook != nil {
		return f.getActiveReservationForBook(bookID)
	}
	return nil, repository.ErrRecordNotFound
}

func (f *fakeRepo) HasPendingReservationForBook(bookID int64) (bool, error) {
	if f.hasPendingReservationForBook != nil {
		return f.hasPendingReservationForBook(bookID)
	}
	return false, nil
}

func (f *fakeRepo) GetNextPendingReservationForBook(bookID int64) (*data.Reservation, error) {
	if f.getNextPendingReservationForBook != nil {
		return f.getNextPendingReservationForBook(bookID)
	}
	return nil, repository.ErrRecordNotFound
}

func (f *fakeRepo) UpdateReservation(reservation *data.Reservation) error {
	if f.updateReservation != nil {
		return f.updateReservation(reservation)
	}
	return nil
}

func (f *fakeRepo) DeleteReservation(reservationID int64) error {
	if f.deleteReservation != nil {
		return f.deleteReservation(reservationID)
	}
	return nil
}

func (f *fakeRepo) GetExpiredReservations(now time.Time) ([]*data.Reservation, error) {
	if f.getExpiredReservations != nil {
		return f.getExpiredReservations(now)
	}
	return nil, nil
}

func (f *fakeRepo) CreateNewToken(userID int64, ttl time.Duration, scope string) (*data.Token, error) {
	if f.createNewToken != nil {
		return f.createNewToken(userID, ttl, scope)
	}
	return nil, nil
}

func (f *fakeRepo) DeleteAllTokensForUser(scope string, userID int64) error {
	if f.deleteAllTokensForUser != nil {
		return f.deleteAllTokensForUser(scope, userID)
	}
	return nil
}

// fakeNotifier records every send. Safe for concurrent use because email
// sends happen on background goroutines.
type fakeNotifier struct {
	mu    sync.Mutex
	sends []notification
}

type notification struct {
	recipient    string
	templateFile string
	data         interface{}
}

func (f *fakeNotifier) Send(recipient, templateFile string, data interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, notification{recipient, templateFile, data})
	return nil
}

func (f *fakeNotifier) all() []notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notification(nil), f.sends...)
}

// testNow is the frozen clock used across service tests.
var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(repo *fakeRepo) (*service, *fakeNotifier) {
	notifier := &fakeNotifier{}
	return &service{
		config:   config.Config{},
		wg:       &sync.WaitGroup{},
		logger:   jsonlog.New(io.Discard, jsonlog.LevelOff),
		repo:     repo,
		notifier: notifier,
		now:      func() time.Time { return testNow },
	}, notifier
}
