// Package poll drives the background refresh cycle: a coarse list poll, a
// faster detail poll for long-running jobs, and short-lived burst watches
// for files expected to settle within seconds.
package poll

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/scandesk/scandesk/internal/config"
	"github.com/scandesk/scandesk/internal/session"
)

// Runner owns the scheduler behind the polling tiers. All jobs run in
// singleton mode, so a slow backend can never stack overlapping refreshes.
type Runner struct {
	scheduler *gocron.Scheduler
	session   *session.Session
	cfg       *config.Config
}

// New wires a runner to the session and registers itself as the session's
// burst hook, so short-batch uploads start a burst watch automatically.
func New(sess *session.Session, cfg *config.Config) *Runner {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	r := &Runner{scheduler: s, session: sess, cfg: cfg}
	sess.SetBurstHook(r.Burst)
	return r
}

// Start schedules the list and detail polls and starts the scheduler.
func (r *Runner) Start() {
	listEvery := r.cfg.Poll.ListInterval
	if listEvery <= 0 {
		listEvery = 30
	}
	log.Printf("Scheduling job: 'list-refresh' to run every %d seconds.", listEvery)
	_, err := r.scheduler.Every(listEvery).Seconds().Do(func() {
		if err := r.session.RefreshList(context.Background()); err != nil {
			log.Printf("Scheduled list refresh failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling 'list-refresh' job: %v", err)
	}

	detailEvery := r.cfg.Poll.DetailInterval
	if detailEvery <= 0 {
		detailEvery = 5
	}
	log.Printf("Scheduling job: 'detail-refresh' to run every %d seconds.", detailEvery)
	_, err = r.scheduler.Every(detailEvery).Seconds().Do(func() {
		r.session.RefreshDetails(context.Background())
	})
	if err != nil {
		log.Printf("Error scheduling 'detail-refresh' job: %v", err)
	}

	r.scheduler.StartAsync()
}

// Burst watches one file at the burst cadence until it reaches a terminal
// status or the run budget is spent. Most short-batch jobs settle on the
// first or second check.
func (r *Runner) Burst(fileID string) {
	tag := "burst:" + fileID
	if jobs, _ := r.scheduler.FindJobsByTag(tag); len(jobs) > 0 {
		return
	}

	interval := r.cfg.Poll.BurstInterval
	if interval <= 0 {
		interval = 3
	}
	limit := r.cfg.Poll.BurstLimit
	if limit <= 0 {
		limit = 40
	}

	_, err := r.scheduler.Every(interval).Seconds().LimitRunsTo(limit).Tag(tag).StartImmediately().Do(func() {
		terminal, err := r.session.RefreshDetail(context.Background(), fileID)
		if err != nil {
			log.Printf("Burst poll for %s failed: %v", fileID, err)
			return
		}
		if terminal {
			if err := r.scheduler.RemoveByTag(tag); err != nil {
				log.Printf("Could not retire burst poll for %s: %v", fileID, err)
			}
		}
	})
	if err != nil {
		log.Printf("Error scheduling burst poll for %s: %v", fileID, err)
	}
}

// Stop halts all scheduled work, including any active burst watches.
func (r *Runner) Stop() {
	r.scheduler.Stop()
	r.scheduler.Clear()
}
