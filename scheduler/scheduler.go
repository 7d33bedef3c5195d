// Package scheduler runs housekeeping jobs on an interval or at a fixed time
// of day.
package scheduler

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultTick is how often due jobs are checked.
const DefaultTick = 30 * time.Second

// Job is one run of a task.
type Job func(ctx context.Context, now time.Time) error

// Task is a named job with either an interval (Every) or a daily time of
// day ("HH:MM", local time).
type Task struct {
	Name      string
	Every     time.Duration
	TimeOfDay string
	Run       Job
}

type Scheduler struct {
	mu      sync.Mutex
	tasks   []Task
	lastRun map[string]time.Time
	running map[string]bool
	tick    time.Duration
	logger  *log.Logger
	wg      sync.WaitGroup
}

func New(logger *log.Logger, tasks ...Task) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		tasks:   append([]Task(nil), tasks...),
		lastRun: make(map[string]time.Time),
		running: make(map[string]bool),
		tick:    DefaultTick,
		logger:  logger.WithPrefix("scheduler"),
	}
}

// Start checks for due tasks immediately and then on every tick until ctx
// is done.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		s.logger.Info("started", "tasks", len(s.tasks))
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		s.check(ctx, time.Now())
		for {
			select {
			case <-ctx.Done():
				s.wg.Wait()
				s.logger.Info("stopped")
				return
			case now := <-ticker.C:
				s.check(ctx, now)
			}
		}
	}()
}

func (s *Scheduler) check(ctx context.Context, now time.Time) {
	s.mu.Lock()
	var due []Task
	for _, t := range s.tasks {
		if t.Name == "" || t.Run == nil || s.running[t.Name] {
			continue
		}
		if !shouldRun(t, s.lastRun[t.Name], now) {
			continue
		}
		s.running[t.Name] = true
		due = append(due, t)
	}
	s.mu.Unlock()

	for _, t := range due {
		s.wg.Add(1)
		go s.runOnce(ctx, t, now)
	}
}

func (s *Scheduler) runOnce(ctx context.Context, t Task, now time.Time) {
	defer s.wg.Done()

	err := t.Run(ctx, now)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running[t.Name] = false
	if err != nil {
		s.logger.Error("task failed", "task", t.Name, "err", err)
		return
	}
	s.lastRun[t.Name] = now
}

// LastRun reports when the named task last succeeded.
func (s *Scheduler) LastRun(name string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.lastRun[name]
	return t, ok
}

func shouldRun(t Task, lastRun time.Time, now time.Time) bool {
	switch {
	case t.Every > 0:
		if lastRun.IsZero() {
			return true
		}
		return now.Sub(lastRun) >= t.Every

	case t.TimeOfDay != "":
		parts := strings.Split(t.TimeOfDay, ":")
		if len(parts) < 2 {
			return false
		}
		hour, err1 := strconv.Atoi(parts[0])
		min, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil || hour < 0 || hour > 23 || min < 0 || min > 59 {
			return false
		}

		loc := now.Location()
		target := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, loc)

		if now.Before(target) {
			return false
		}
		if !lastRun.IsZero() && sameDay(lastRun.In(loc), now) {
			return false
		}
		return true

	default:
		return false
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
