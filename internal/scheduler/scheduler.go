package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

type JobFunc func(ctx context.Context) error

type job struct {
	spec string
	name string
	fn   JobFunc
}

// Scheduler runs named jobs on cron specs until its context is done.
type Scheduler struct {
	logger *slog.Logger
	s      *gocron.Scheduler
	ctx    context.Context
	jobs   []job
}

func New(ctx context.Context, logger *slog.Logger, loc *time.Location) *Scheduler {
	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()

	return &Scheduler{logger: logger.With("component", "scheduler"), s: s, ctx: ctx}
}

func (sch *Scheduler) Add(spec string, name string, fn JobFunc) {
	sch.jobs = append(sch.jobs, job{spec: spec, name: name, fn: fn})
}

// Start registers the jobs and blocks until the context is done.
func (sch *Scheduler) Start() error {
	for _, j := range sch.jobs {
		if _, err := sch.s.Cron(j.spec).Do(sch.run, j); err != nil {
			return fmt.Errorf("schedule %s: %w", j.name, err)
		}
		sch.logger.Info("job scheduled", "job", j.name, "spec", j.spec)
	}
	sch.s.StartAsync()

	<-sch.ctx.Done()
	sch.s.Stop()
	return nil
}

func (sch *Scheduler) run(j job) {
	log := sch.logger.With("job", j.name)

	select {
	case <-sch.ctx.Done():
		return
	default:
	}

	started := time.Now()
	if err := j.fn(sch.ctx); err != nil {
		log.Error("job failed", "error", err, "duration", time.Since(started))
		return
	}
	log.Info("job finished", "duration", time.Since(started))
}
