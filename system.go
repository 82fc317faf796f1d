package forge

// RunCondition gates whether a system executes this frame without
// removing it from the schedule — it still occupies its slot in
// ordering and access computation, it just may no-op (§3).
type RunCondition func() bool

// And composes conditions: the system runs only if every condition
// passes.
func And(conds ...RunCondition) RunCondition {
	return func() bool {
		for _, c := range conds {
			if !c() {
				return false
			}
		}
		return true
	}
}

// Or composes conditions: the system runs if any condition passes.
func Or(conds ...RunCondition) RunCondition {
	return func() bool {
		for _, c := range conds {
			if c() {
				return true
			}
		}
		return false
	}
}

// Not negates a condition.
func Not(c RunCondition) RunCondition {
	return func() bool { return !c() }
}

// WorkerGroup tags which pool an executor dispatches a system to,
// generalizing bevy's Compute/IO/AsyncCompute task pools: compute-bound
// systems share the CPU-sized worker pool, IO-bound ones (network
// calls, disk reads) get a separate, typically larger pool so a slow
// syscall doesn't starve compute work, and AsyncCompute sits alongside
// Compute but is allowed to be dropped under load in a fuller scheduler
// than this one — here it simply shares the compute pool.
type WorkerGroup int

const (
	GroupCompute WorkerGroup = iota
	GroupAsyncCompute
	GroupIO
)

// System is one runnable unit of frame logic: a name (for ordering and
// error messages), its declared access footprint, an optional run
// condition, and the closure the executor invokes.
type System struct {
	Name      string
	run       func()
	access    paramAccess
	condition RunCondition
	pinned    bool // true if this system must run on a specific worker (non-Send)
	workerID  int
	group     WorkerGroup
}

// WithWorkerGroup assigns sys to a worker pool other than the default
// compute pool.
func (s *System) WithWorkerGroup(g WorkerGroup) *System {
	s.group = g
	return s
}

// NewSystem builds a System from its captured parameters. Params
// determine the declared access the scheduler uses for conflict
// detection and parallel dispatch; the closure itself may ignore them
// entirely, since Go has no way to force a function to only touch what
// it declares — this mirrors the teacher's convention of trusting the
// caller to be honest about intent.
func NewSystem(name string, run func(), params ...Param) *System {
	return &System{Name: name, run: run, access: mergeAccess(params)}
}

// WithRunCondition attaches a condition, returning the same System for
// chaining.
func (s *System) WithRunCondition(c RunCondition) *System {
	s.condition = c
	return s
}

// Pinned marks the system as non-Send and records workerID. The
// executor runs a pinned system on a goroutine of its own without
// taking a worker-pool slot; workerID is not consulted, and the
// goroutine is not tied to a particular worker or OS thread.
func (s *System) Pinned(workerID int) *System {
	s.pinned = true
	s.workerID = workerID
	return s
}

// Exclusive marks the system as requiring sole access to the world for
// its duration — it never runs concurrently with any other system.
func (s *System) Exclusive() *System {
	s.access.exclusive = true
	return s
}

func (s *System) shouldRun() bool {
	return s.condition == nil || s.condition()
}
