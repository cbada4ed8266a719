package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"PostCatalog/internal/ports"
)

// CronScheduler runs the sync job on a cron expression.
type CronScheduler struct {
	spec       string
	location   *time.Location
	runOnStart bool

	mu   sync.Mutex
	cron *cron.Cron
	stop chan struct{}
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler configured via a five-field cron expression or descriptor.
func NewCronScheduler(spec string, location *time.Location, runOnStart bool) *CronScheduler {
	if location == nil {
		location = time.UTC
	}
	return &CronScheduler{spec: spec, location: location, runOnStart: runOnStart}
}

// Start registers the job; overlapping runs are skipped.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cron != nil {
		return nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	runner := cron.New(cron.WithParser(parser), cron.WithLocation(c.location))

	// The start-up run shares the skip guard with scheduled ticks.
	wrapped := cron.NewChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)).
		Then(cron.FuncJob(func() { job(time.Now().In(c.location)) }))

	if _, err := runner.AddJob(c.spec, wrapped); err != nil {
		return fmt.Errorf("schedule %q: %w", c.spec, err)
	}

	c.cron = runner
	c.stop = make(chan struct{})
	runner.Start()

	if c.runOnStart {
		go wrapped.Run()
	}

	stop := c.stop
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Stop(context.Background())
		case <-stop:
		}
	}()

	return nil
}

// Stop halts scheduling and waits for a running job up to ctx.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	runner := c.cron
	if runner == nil {
		c.mu.Unlock()
		return nil
	}
	close(c.stop)
	c.cron = nil
	c.stop = nil
	c.mu.Unlock()

	select {
	case <-runner.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
