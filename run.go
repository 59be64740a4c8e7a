package microgram

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Run polls for updates and dispatches them across the configured
// number of workers until ctx ends or polling gives up. A scheduler
// goroutine fires tasks registered with Schedule, and a supervisor
// samples worker liveness into Status.
func (b *Bot) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := make(chan Update)

	var wg sync.WaitGroup
	for i := 0; i < b.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.work(ctx, queue)
		}()
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		b.runScheduler(ctx)
	}()
	go func() {
		defer wg.Done()
		b.supervise(ctx)
	}()

	err := b.poll(ctx, queue)
	cancel()
	wg.Wait()
	return err
}

func (b *Bot) work(ctx context.Context, queue <-chan Update) {
	b.activeWorkers.Add(1)
	defer b.activeWorkers.Add(-1)

	for {
		select {
		case <-ctx.Done():
			return
		case u := <-queue:
			b.dispatch(ctx, u)
		}
	}
}

// dispatch runs the handlers in order until one reports the update
// handled. Errors and panics go to OnError; a failing handler stops
// the chain for this update.
func (b *Bot) dispatch(ctx context.Context, u Update) {
	defer func() {
		if r := recover(); r != nil {
			b.cfg.OnError(u, errors.Errorf("handler panicked: %v", r))
		}
	}()

	for _, handle := range b.handlers {
		done, err := handle(ctx, u)
		if err != nil {
			b.cfg.OnError(u, err)
			return
		}
		if done {
			return
		}
	}
}

type task struct {
	when time.Time
	fn   func(context.Context)
}

// Schedule registers fn to run once, no earlier than when. The list is
// kept sorted by time; tasks are checked every second while Run is
// active.
func (b *Bot) Schedule(when time.Time, fn func(context.Context)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := sort.Search(len(b.tasks), func(i int) bool {
		return b.tasks[i].when.After(when)
	})
	b.tasks = append(b.tasks, task{})
	copy(b.tasks[i+1:], b.tasks[i:])
	b.tasks[i] = task{when: when, fn: fn}
}

// dueTasks pops every task scheduled at or before now.
func (b *Bot) dueTasks(now time.Time) []task {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for n < len(b.tasks) && !b.tasks[n].when.After(now) {
		n++
	}
	due := make([]task, n)
	copy(due, b.tasks[:n])
	b.tasks = b.tasks[n:]
	return due
}

func (b *Bot) runScheduler(ctx context.Context) {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			for _, t := range b.dueTasks(now) {
				b.runTask(ctx, t)
			}
		}
	}
}

func (b *Bot) runTask(ctx context.Context, t task) {
	defer func() {
		if r := recover(); r != nil {
			b.cfg.OnError(Update{}, errors.Errorf("scheduled task panicked: %v", r))
		}
	}()
	t.fn(ctx)
}

func (b *Bot) supervise(ctx context.Context) {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			b.lastCheck.Store(now.UnixNano())
		}
	}
}
