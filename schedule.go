package forge

// Schedule is a named, ordered collection of systems plus the "before"/
// "after" edges a caller declares between them (§3's system-set
// ordering). Build resolves those edges into an executable DAG,
// detecting cycles and unresolved access conflicts.
type Schedule struct {
	Name    string
	systems []*System
	index   map[string]int
	before  map[string][]string
	after   map[string][]string
	sets    map[string][]string

	built   bool
	batches [][]int // topological levels once Build succeeds
}

// NewSchedule creates an empty, named schedule.
func NewSchedule(name string) *Schedule {
	return &Schedule{
		Name:   name,
		index:  make(map[string]int),
		before: make(map[string][]string),
		after:  make(map[string][]string),
		sets:   make(map[string][]string),
	}
}

// AddSet registers a named grouping of systems (bevy's SystemSet,
// flattened to system-to-system ordering edges at Build time) so an
// ordering edge can target the whole group by name instead of naming
// every member.
func (s *Schedule) AddSet(name string, members ...string) *Schedule {
	s.sets[name] = append(s.sets[name], members...)
	s.built = false
	return s
}

// InSet adds one system to a named set, creating the set if it doesn't
// exist yet — the per-system counterpart to AddSet's bulk form.
func (s *Schedule) InSet(name string, sysName string) *Schedule {
	s.sets[name] = append(s.sets[name], sysName)
	s.built = false
	return s
}

// AddSystem registers s under its own name, which must be unique within
// the schedule.
func (s *Schedule) AddSystem(sys *System) *Schedule {
	s.index[sys.Name] = len(s.systems)
	s.systems = append(s.systems, sys)
	s.built = false
	return s
}

// OrderBefore records that `name` must run before every system named in
// others.
func (s *Schedule) OrderBefore(name string, others ...string) *Schedule {
	s.before[name] = append(s.before[name], others...)
	s.built = false
	return s
}

// OrderAfter records that `name` must run after every system named in
// others.
func (s *Schedule) OrderAfter(name string, others ...string) *Schedule {
	s.after[name] = append(s.after[name], others...)
	s.built = false
	return s
}

// Build resolves ordering edges into topological levels (systems within
// one level may run concurrently), returning CycleInScheduleError for
// an ordering cycle or ConflictingAccessError for any pair of systems
// with overlapping access and no resolved ordering between them (§3).
func (s *Schedule) Build() error {
	n := len(s.systems)
	adj := make([][]bool, n)
	for i := range adj {
		adj[i] = make([]bool, n)
	}
	addEdge := func(from, to string) {
		fi, ok := s.index[from]
		if !ok {
			return
		}
		ti, ok := s.index[to]
		if !ok {
			return
		}
		adj[fi][ti] = true
	}
	// expand resolves a name that might be a set into its member system
	// names, or returns the name itself if it isn't one.
	expand := func(name string) []string {
		if members, ok := s.sets[name]; ok {
			return members
		}
		return []string{name}
	}
	for name, others := range s.before {
		for _, from := range expand(name) {
			for _, o := range others {
				for _, to := range expand(o) {
					addEdge(from, to)
				}
			}
		}
	}
	for name, others := range s.after {
		for _, to := range expand(name) {
			for _, o := range others {
				for _, from := range expand(o) {
					addEdge(from, to)
				}
			}
		}
	}

	order, err := topologicalLevels(adj, n)
	if err != nil {
		return s.namedCycleError(err)
	}

	reach := transitiveClosure(adj, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !s.systems[i].access.conflictsWith(s.systems[j].access) {
				continue
			}
			if reach[i][j] || reach[j][i] {
				continue
			}
			return ConflictingAccessError{
				System: s.systems[i].Name,
				Detail: "unordered, overlapping access with " + s.systems[j].Name,
			}
		}
	}

	s.batches = order
	s.built = true
	return nil
}

func (s *Schedule) namedCycleError(err error) error {
	ce, ok := err.(cycleIndices)
	if !ok {
		return err
	}
	names := make([]string, len(ce.nodes))
	for i, idx := range ce.nodes {
		names[i] = s.systems[idx].Name
	}
	return CycleInScheduleError{Cycle: names}
}

type cycleIndices struct{ nodes []int }

func (c cycleIndices) Error() string { return "schedule ordering cycle" }

// topologicalLevels performs Kahn's algorithm, grouping into levels so
// every system in a level has no edge to any other system in the same
// level — the shape the parallel executor dispatches by.
func topologicalLevels(adj [][]bool, n int) ([][]int, error) {
	indeg := make([]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if adj[i][j] {
				indeg[j]++
			}
		}
	}

	var batches [][]int
	remaining := n
	done := make([]bool, n)
	for remaining > 0 {
		var level []int
		for i := 0; i < n; i++ {
			if !done[i] && indeg[i] == 0 {
				level = append(level, i)
			}
		}
		if len(level) == 0 {
			var cyc []int
			for i := 0; i < n; i++ {
				if !done[i] {
					cyc = append(cyc, i)
				}
			}
			return nil, cycleIndices{nodes: cyc}
		}
		for _, i := range level {
			done[i] = true
			remaining--
			for j := 0; j < n; j++ {
				if adj[i][j] {
					indeg[j]--
				}
			}
		}
		batches = append(batches, level)
	}
	return batches, nil
}

// transitiveClosure computes reachability via Floyd-Warshall over the
// boolean adjacency matrix — schedules are small (dozens of systems),
// so O(n^3) is the right tradeoff against implementation complexity.
func transitiveClosure(adj [][]bool, n int) [][]bool {
	reach := make([][]bool, n)
	for i := range reach {
		reach[i] = make([]bool, n)
		copy(reach[i], adj[i])
	}
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if !reach[i][k] {
				continue
			}
			for j := 0; j < n; j++ {
				if reach[k][j] {
					reach[i][j] = true
				}
			}
		}
	}
	return reach
}
