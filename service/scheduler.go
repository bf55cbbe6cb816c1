package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/antoniovct/api-biblioteca/data"
)

type jobs interface {
	StartScheduler(stop <-chan struct{})
	ExpireReservations()
	SendDueReminders()
	SendOverdueNotices()
}

// reservationScanInterval is how often the scheduler sweeps active
// reservations for elapsed pickup windows.
const reservationScanInterval = 60 * time.Second

// dailyNoticeHour is the local hour at which due-date reminders and overdue
// notices go out.
const dailyNoticeHour = 8

// StartScheduler runs the background jobs until stop is closed: the
// reservation expiry sweep on a fixed interval and the loan notices once a
// day. Runs are serialized on a single goroutine, so a slow sweep delays the
// next tick instead of overlapping it.
func (s *service) StartScheduler(stop <-chan struct{}) {
	s.background(func() {
		ticker := time.NewTicker(reservationScanInterval)
		defer ticker.Stop()
		daily := time.NewTimer(untilNextDailyNotice(s.now()))
		defer daily.Stop()
		for {
			select {
			case <-ticker.C:
				s.ExpireReservations()
			case <-daily.C:
				s.SendDueReminders()
				s.SendOverdueNotices()
				daily.Reset(untilNextDailyNotice(s.now()))
			case <-stop:
				return
			}
		}
	})
}

// ExpireReservations expires every active reservation whose pickup window has
// elapsed. A failure updating one reservation is logged and does not abort
// the rest of the batch.
func (s *service) ExpireReservations() {
	reservations, err := s.repo.GetExpiredReservations(s.now())
	if err != nil {
		s.logger.PrintError(err, map[string]string{"job": "expire reservations"})
		return
	}
	expired := 0
	for _, reservation := range reservations {
		reservation.Expire()
		err := s.repo.UpdateReservation(reservation)
		if err != nil {
			s.logger.PrintError(err, map[string]string{
				"job":            "expire reservations",
				"reservation_id": strconv.FormatInt(reservation.ID, 10),
			})
			continue
		}
		expired++
	}
	if expired > 0 {
		s.logger.PrintInfo("expired reservations", map[string]string{"count": strconv.Itoa(expired)})
	}
}

// SendDueReminders emails every borrower whose active loan is due tomorrow.
func (s *service) SendDueReminders() {
	loans, err := s.repo.GetLoansDueOn(s.now().AddDate(0, 0, 1))
	if err != nil {
		s.logger.PrintError(err, map[string]string{"job": "due reminders"})
		return
	}
	for _, loan := range loans {
		mailData := map[string]string{
			"name":      firstName(loan.UserName),
			"bookTitle": loan.BookTitle,
			"dueDate":   loan.DueDate.Format("Mon, 02 Jan 2006"),
		}
		err := s.notifier.Send(loan.UserEmail, "due_reminder.tmpl", mailData)
		if err != nil {
			s.logger.PrintError(err, map[string]string{
				"job":     "due reminders",
				"loan_id": strconv.FormatInt(loan.ID, 10),
			})
		}
	}
}

// SendOverdueNotices emails every borrower whose active loan is past its due
// date.
func (s *service) SendOverdueNotices() {
	loans, err := s.repo.GetOverdueLoans(s.now())
	if err != nil {
		s.logger.PrintError(err, map[string]string{"job": "overdue notices"})
		return
	}
	for _, loan := range loans {
		mailData := map[string]string{
			"name":       firstName(loan.UserName),
			"bookTitle":  loan.BookTitle,
			"dueDate":    loan.DueDate.Format("Mon, 02 Jan 2006"),
			"finePerDay": fmt.Sprintf("%.2f", data.FinePerDay),
		}
		err := s.notifier.Send(loan.UserEmail, "overdue_notice.tmpl", mailData)
		if err != nil {
			s.logger.PrintError(err, map[string]string{
				"job":     "overdue notices",
				"loan_id": strconv.FormatInt(loan.ID, 10),
			})
		}
	}
}

// untilNextDailyNotice returns the duration from now until the next daily
// notice hour.
func untilNextDailyNotice(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), dailyNoticeHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
