package data

import (
	"strings"
	"time"

	"github.com/antoniovct/api-biblioteca/internal/validator"
)

// Reservation statuses. Finalized and expired are terminal.
const (
	ReservationStatusPending   = "pending"
	ReservationStatusActive    = "active"
	ReservationStatusFinalized = "finalized"
	ReservationStatusExpired   = "expired"
)

// ReservationStatuses lists every known reservation status.
var ReservationStatuses = []string{
	ReservationStatusPending,
	ReservationStatusActive,
	ReservationStatusFinalized,
	ReservationStatusExpired,
}

const (
	// ReservationWindow is how long an activated reservation holds the book
	// for its owner before expiring.
	ReservationWindow = 48 * time.Hour

	// MaxActiveReservations is the maximum number of active reservations a
	// user may hold when requesting a new one.
	MaxActiveReservations = 3
)

// IsReservationStatus reports whether name matches a known reservation
// status. The match is case-insensitive.
func IsReservationStatus(name string) bool {
	return validator.In(strings.ToLower(name), ReservationStatuses...)
}

// Reservation defines a reservation model: a queued claim on a book that is
// currently lent out. ActivatedAt and ExpiresAt are nil until the
// reservation is activated.
type Reservation struct {
	ID          int64      `json:"id"`
	BookID      int64      `json:"book_id"`
	UserID      int64      `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Status      string     `json:"status"`
	BookTitle   string     `json:"book_title,omitempty"`
	UserName    string     `json:"user_name,omitempty"`
	UserEmail   string     `json:"-"`
	Version     int32      `json:"-"`
}

// NewReservation queues a pending reservation created now.
func NewReservation(userID, bookID int64, now time.Time) *Reservation {
	return &Reservation{
		BookID:    bookID,
		UserID:    userID,
		CreatedAt: now,
		Status:    ReservationStatusPending,
	}
}

// Activate opens the holder's borrowing window: the reservation becomes
// active now and expires ReservationWindow later.
func (r *Reservation) Activate(now time.Time) {
	activated := now
	expires := now.Add(ReservationWindow)
	r.ActivatedAt = &activated
	r.ExpiresAt = &expires
	r.Status = ReservationStatusActive
}

// Expire marks the reservation expired. The book no longer waits for its
// holder.
func (r *Reservation) Expire() {
	r.Status = ReservationStatusExpired
}

// Finalize closes the reservation, either consumed by a loan or manually.
func (r *Reservation) Finalize() {
	r.Status = ReservationStatusFinalized
}
