package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ExpiredSessionPurger удаляет из хранилища истёкшие серверные сессии.
type ExpiredSessionPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// IdlePurger закрывает давно не используемые редакторы.
type IdlePurger interface {
	PurgeIdle(now time.Time) int
}

// Janitor периодически чистит простаивающие редакторы и истёкшие сессии.
type Janitor struct {
	sched    gocron.Scheduler
	interval time.Duration
	editors  IdlePurger
	sessions ExpiredSessionPurger
	log      *slog.Logger
}

// NewJanitor. sessions может быть nil, если сессии хранятся только в cookie.
func NewJanitor(interval time.Duration, editors IdlePurger, sessions ExpiredSessionPurger, log *slog.Logger) (*Janitor, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("janitor interval must be positive, got %s", interval)
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	j := &Janitor{sched: sched, interval: interval, editors: editors, sessions: sessions, log: log}

	if _, err := sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(j.PurgeEditors),
		gocron.WithName("purge-idle-editors"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return nil, fmt.Errorf("schedule editor purge: %w", err)
	}
	if sessions != nil {
		if _, err := sched.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(j.PurgeSessions),
			gocron.WithName("purge-expired-sessions"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		); err != nil {
			return nil, fmt.Errorf("schedule session purge: %w", err)
		}
	}
	return j, nil
}

// Every добавляет ещё одну периодическую задачу с тем же интервалом.
func (j *Janitor) Every(name string, task func()) error {
	if _, err := j.sched.NewJob(
		gocron.DurationJob(j.interval),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

func (j *Janitor) Start() {
	j.sched.Start()
	j.log.Info("janitor started", slog.Int("jobs", len(j.sched.Jobs())))
}

func (j *Janitor) Shutdown() error {
	return j.sched.Shutdown()
}

func (j *Janitor) PurgeEditors() {
	if n := j.editors.PurgeIdle(time.Now()); n > 0 {
		j.log.Debug("idle editors purged", slog.Int("count", n))
	}
}

func (j *Janitor) PurgeSessions() {
	if j.sessions == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		j.log.Error("failed to purge expired sessions", slog.Any("error", err))
		return
	}
	if n > 0 {
		j.log.Info("expired sessions purged", slog.Int64("count", n))
	}
}
