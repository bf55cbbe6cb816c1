package service

import (
	"sync"
	"time"

	"github.com/antoniovct/api-biblioteca/config"
	"github.com/antoniovct/api-biblioteca/internal/jsonlog"
	"github.com/antoniovct/api-biblioteca/internal/mailer"
	"github.com/antoniovct/api-biblioteca/repository"
)

type Service interface {
	books
	users
	loans
	reservations
	tokens
	jobs
	failedValidation(map[string]string) error
}

// Notifier sends a templated email to a recipient. The SMTP mailer satisfies
// it in production.
type Notifier interface {
	Send(recipient, templateFile string, data interface{}) error
}

// Service defines a service layer.
type service struct {
	config   config.Config
	wg       *sync.WaitGroup
	logger   *jsonlog.Logger
	repo     repository.Repository
	notifier Notifier
	now      func() time.Time
}

// New creates a new instance of Service.
func New(cfg config.Config, wg *sync.WaitGroup, logger *jsonlog.Logger, repo repository.Repository) *service {
	return &service{
		config:   cfg,
		wg:       wg,
		logger:   logger,
		repo:     repo,
		notifier: mailer.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender),
		now:      time.Now,
	}
}
