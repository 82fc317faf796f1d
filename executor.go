package forge

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Executor runs a built Schedule's systems level by level, dispatching
// every system within a level to a bounded worker pool and waiting for
// the level to finish before starting the next — a level-barrier form of
// the dispatch/wait/completion loop from §3's parallel executor, built on
// golang.org/x/sync rather than a hand-rolled goroutine/WaitGroup pool.
type Executor struct {
	world      *World
	workers    int64
	computeSem *semaphore.Weighted
	ioSem      *semaphore.Weighted
}

// NewExecutor builds an executor bounded to n concurrent compute
// systems. n <= 0 falls back to Config.DefaultWorkers(). IO-tagged
// systems (see WorkerGroup) get their own, larger pool so a blocking
// syscall doesn't starve the compute pool.
func NewExecutor(w *World, n int) *Executor {
	if n <= 0 {
		n = Config.DefaultWorkers()
	}
	return &Executor{
		world:      w,
		workers:    int64(n),
		computeSem: semaphore.NewWeighted(int64(n)),
		ioSem:      semaphore.NewWeighted(int64(n) * 4),
	}
}

func (ex *Executor) semFor(group WorkerGroup) *semaphore.Weighted {
	if group == GroupIO {
		return ex.ioSem
	}
	return ex.computeSem
}

// RunOnce executes every level of sched exactly once, advancing the
// world's change tick first and swapping event buffers last, matching
// one frame of §3's schedule/tick/event lifecycle. A system panic is
// recovered, stops the frame immediately (no further levels dispatch),
// and is returned as SystemPanickedError.
func (ex *Executor) RunOnce(sched *Schedule) error {
	if !sched.built {
		if err := sched.Build(); err != nil {
			return err
		}
	}
	ex.world.AdvanceTick()

	for _, level := range sched.batches {
		if err := ex.runLevel(sched, level); err != nil {
			return err
		}
		ex.world.Lock()
		ex.world.Unlock() // drains any commands queued by this level before the next starts
	}

	ex.world.SwapEventBuffers()
	return nil
}

func (ex *Executor) runLevel(sched *Schedule, level []int) error {
	// Exclusive systems in a level run alone: if any system in the
	// level is exclusive, the level degenerates to sequential. In
	// practice Build() already forces an exclusive system into its own
	// level, since it conflicts with everything, but this stays
	// correct even if a level somehow mixes one in.
	hasExclusive := false
	for _, idx := range level {
		if sched.systems[idx].access.exclusive {
			hasExclusive = true
			break
		}
	}
	if hasExclusive {
		for _, idx := range level {
			if err := ex.runOne(sched.systems[idx]); err != nil {
				return err
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(context.Background())
	for _, idx := range level {
		sys := sched.systems[idx]
		g.Go(func() error {
			if sys.pinned {
				// Pinned systems don't consume a pool slot; they run
				// on this goroutine regardless of workerID.
				return ex.runOne(sys)
			}
			sem := ex.semFor(sys.group)
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			return ex.runOne(sys)
		})
	}
	return g.Wait()
}

func (ex *Executor) runOne(sys *System) (err error) {
	if !sys.shouldRun() {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = SystemPanickedError{System: sys.Name, Value: r}
		}
	}()
	sys.run()
	return nil
}
