package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// TokenSource signs or returns a cached API token.
type TokenSource interface {
	UsesJWT() bool
	Token() (string, error)
}

// Scheduler periodically refreshes the API token so queries rarely pay for
// signing it.
type Scheduler struct {
	scheduler *gocron.Scheduler
	tokens    TokenSource
	interval  time.Duration
}

// New creates a new Scheduler.
func New(tokens TokenSource, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		tokens:    tokens,
		interval:  interval,
	}
}

// Start schedules the refresh job and starts the underlying scheduler.
// It does nothing when requests use a static API key.
func (s *Scheduler) Start() error {
	if !s.tokens.UsesJWT() {
		log.Println("scheduler: static API key configured; nothing to schedule")
		return nil
	}

	if s.interval <= 0 {
		return fmt.Errorf("scheduler: invalid refresh interval %s", s.interval)
	}

	_, err := s.scheduler.Every(s.interval).Do(s.refresh)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) refresh() {
	if _, err := s.tokens.Token(); err != nil {
		log.Printf("scheduler: token refresh failed: %v", err)
		return
	}
	log.Println("scheduler: token refreshed")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
