package forge

import (
	"runtime"

	"github.com/TheBitDrifter/table"
)

// Config holds process-global defaults for worlds and schedules created
// without explicit overrides.
var Config config = config{
	workers: runtime.GOMAXPROCS(0),
}

type config struct {
	tableEvents table.TableEvents
	workers     int
}

// SetTableEvents configures the table event callbacks used by every
// archetype's underlying table.
func (c *config) SetTableEvents(te table.TableEvents) {
	c.tableEvents = te
}

// SetDefaultWorkers overrides the worker pool size new executors use
// when none is supplied explicitly.
func (c *config) SetDefaultWorkers(n int) {
	if n < 1 {
		n = 1
	}
	c.workers = n
}

// DefaultWorkers reports the worker pool size new executors use absent
// an explicit override.
func (c *config) DefaultWorkers() int {
	if c.workers < 1 {
		return 1
	}
	return c.workers
}
