package service

import (
	"errors"
	"testing"
	"time"

	"github.com/antoniovct/api-biblioteca/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpireReservations(t *testing.T) {
	expiredAt := testNow.Add(-time.Hour)

	t.Run("expires every elapsed reservation", func(t *testing.T) {
		reservations := []*data.Reservation{
			{ID: 1, Status: data.ReservationStatusActive, ExpiresAt: &expiredAt},
			{ID: 2, Status: data.ReservationStatusActive, ExpiresAt: &expiredAt},
		}
		var updated []int64
		repo := &fakeRepo{
			getExpiredReservations: func(time.Time) ([]*data.Reservation, error) { return reservations, nil },
			updateReservation: func(reservation *data.Reservation) error {
				updated = append(updated, reservation.ID)
				return nil
			},
		}
		s, _ := newTestService(repo)

		s.ExpireReservations()

		assert.Equal(t, []int64{1, 2}, updated)
		for _, reservation := range reservations {
			assert.Equal(t, data.ReservationStatusExpired, reservation.Status)
		}
	})

	t.Run("one failed update does not abort the batch", func(t *testing.T) {
		reservations := []*data.Reservation{
			{ID: 1, Status: data.ReservationStatusActive, ExpiresAt: &expiredAt},
			{ID: 2, Status: data.ReservationStatusActive, ExpiresAt: &expiredAt},
			{ID: 3, Status: data.ReservationStatusActive, ExpiresAt: &expiredAt},
		}
		var updated []int64
		repo := &fakeRepo{
			getExpiredReservations: func(time.Time) ([]*data.Reservation, error) { return reservations, nil },
			updateReservation: func(reservation *data.Reservation) error {
				if reservation.ID == 2 {
					return errors.New("connection reset")
				}
				updated = append(updated, reservation.ID)
				return nil
			},
		}
		s, _ := newTestService(repo)

		s.ExpireReservations()

		assert.Equal(t, []int64{1, 3}, updated)
	})
}

func TestSendDueReminders(t *testing.T) {
	var gotDay time.Time
	repo := &fakeRepo{
		getLoansDueOn: func(day time.Time) ([]*data.Loan, error) {
			gotDay = day
			return []*data.Loan{
				{
					ID:        42,
					DueDate:   time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
					BookTitle: "Dom Casmurro",
					UserName:  "Ana Souza",
					UserEmail: "ana@example.com",
				},
			}, nil
		},
	}
	s, notifier := newTestService(repo)

	s.SendDueReminders()

	assert.True(t, gotDay.Equal(testNow.AddDate(0, 0, 1)))
	sends := notifier.all()
	require.Len(t, sends, 1)
	assert.Equal(t, "ana@example.com", sends[0].recipient)
	assert.Equal(t, "due_reminder.tmpl", sends[0].templateFile)
	mailData, ok := sends[0].data.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "Ana", mailData["name"])
	assert.Equal(t, "Mon, 11 Mar 2024", mailData["dueDate"])
}

func TestSendOverdueNotices(t *testing.T) {
	repo := &fakeRepo{
		getOverdueLoans: func(time.Time) ([]*data.Loan, error) {
			return []*data.Loan{
				{
					ID:        42,
					DueDate:   time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
					BookTitle: "Dom Casmurro",
					UserName:  "Ana Souza",
					UserEmail: "ana@example.com",
				},
			}, nil
		},
	}
	s, notifier := newTestService(repo)

	s.SendOverdueNotices()

	sends := notifier.all()
	require.Len(t, sends, 1)
	assert.Equal(t, "overdue_notice.tmpl", sends[0].templateFile)
	mailData, ok := sends[0].data.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "2.00", mailData["finePerDay"])
}

func TestUntilNextDailyNotice(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{
			name: "before the notice hour",
			now:  time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC),
			want: 2 * time.Hour,
		},
		{
			name: "after the notice hour",
			now:  time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
			want: 23 * time.Hour,
		},
		{
			name: "exactly at the notice hour",
			now:  time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
			want: 24 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, untilNextDailyNotice(tt.now))
		})
	}
}
