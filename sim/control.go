package sim

import (
	"fmt"

	"github.com/overlaysim/overlaysim/sim/metrics"
	"github.com/sirupsen/logrus"
)

// Initializer runs once before the first cycle or event, e.g. to wire a
// topology or assign initial values. An error aborts the run.
type Initializer interface {
	Initialize(ctx *Context) error
}

// Dynamics mutates global state on a schedule (population, topology, values).
type Dynamics interface {
	Modify(ctx *Context)
}

// Observer inspects global state on a schedule. Returning true requests the
// run to stop at the next safe boundary.
type Observer interface {
	Analyze(ctx *Context) bool
}

// InitializerFunc adapts a function to Initializer.
type InitializerFunc func(ctx *Context) error

func (f InitializerFunc) Initialize(ctx *Context) error { return f(ctx) }

// DynamicsFunc adapts a function to Dynamics.
type DynamicsFunc func(ctx *Context)

func (f DynamicsFunc) Modify(ctx *Context) { f(ctx) }

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx *Context) bool

func (f ObserverFunc) Analyze(ctx *Context) bool { return f(ctx) }

// NamedInitializer is an initializer in configured order.
type NamedInitializer struct {
	Name        string
	Initializer Initializer
}

// ScheduledDynamics is a dynamics component with its activation schedule.
type ScheduledDynamics struct {
	Name     string
	Schedule Scheduler
	Dynamics Dynamics
}

// ScheduledObserver is an observer with its activation schedule.
type ScheduledObserver struct {
	Name     string
	Schedule Scheduler
	Observer Observer
}

// ProtocolConfig holds the engine-level settings of one protocol slot.
// A zero ProtocolConfig is treated as "every step, not idle".
type ProtocolConfig struct {
	Name     string
	Schedule Scheduler
	// Idle excludes the slot from cycle execution even if it implements CycleProtocol.
	Idle bool
}

// Components is the ordered, fully wired set of pluggable parts of a run.
// Protocols is indexed by protocol id; missing entries get defaults.
type Components struct {
	Initializers []NamedInitializer
	Dynamics     []ScheduledDynamics
	Observers    []ScheduledObserver
	Protocols    []ProtocolConfig
}

// RunResult summarizes a finished run.
type RunResult struct {
	// Time is the clock when the run ended (cycles executed, or last event time).
	Time       int64
	Stopped    bool
	Dispatched int64
	Dropped    int64
}

// RunState is the lifecycle of an engine.
type RunState int

const (
	RunInit RunState = iota
	RunRunning
	RunFinalizing
	RunDone
)

func (s RunState) String() string {
	switch s {
	case RunInit:
		return "init"
	case RunRunning:
		return "running"
	case RunFinalizing:
		return "finalizing"
	case RunDone:
		return "done"
	default:
		return fmt.Sprintf("RunState(%d)", int(s))
	}
}

// Engine is implemented by CycleSimulator and EventSimulator.
type Engine interface {
	Run() (RunResult, error)
	State() RunState
	Context() *Context
}

const (
	kindInitializer = "initializer"
	kindDynamics    = "dynamics"
	kindObserver    = "observer"
	kindProtocol    = "protocol"
)

// control is a dynamics or observer in configured order, the unit both
// engines schedule.
type control struct {
	name     string
	kind     string
	order    int
	schedule Scheduler
	dynamics Dynamics
	observer Observer
	pid      int // kindProtocol only (event engine cycle emulation)
}

// run executes the control and reports whether it requested a stop.
func (c *control) run(ctx *Context, m *metrics.Engine) bool {
	m.ControlRun(c.kind, c.name)
	ctx.PID = -1
	if c.dynamics != nil {
		logrus.Debugf("[t %010d] dynamics %s", ctx.Time, c.name)
		c.dynamics.Modify(ctx)
		return false
	}
	stop := c.observer.Analyze(ctx)
	if stop {
		logrus.Infof("[t %010d] observer %s requested stop", ctx.Time, c.name)
	}
	return stop
}

// controls flattens dynamics then observers into configured order.
func (c Components) controls() []*control {
	out := make([]*control, 0, len(c.Dynamics)+len(c.Observers))
	for _, d := range c.Dynamics {
		out = append(out, &control{name: d.Name, kind: kindDynamics, order: len(out), schedule: d.Schedule, dynamics: d.Dynamics})
	}
	for _, o := range c.Observers {
		out = append(out, &control{name: o.Name, kind: kindObserver, order: len(out), schedule: o.Schedule, observer: o.Observer})
	}
	return out
}

// validate rejects nil components and degenerate schedules.
func (c Components) validate() error {
	for _, in := range c.Initializers {
		if in.Initializer == nil {
			return fmt.Errorf("initializer %q: nil implementation", in.Name)
		}
	}
	for _, d := range c.Dynamics {
		if d.Dynamics == nil {
			return fmt.Errorf("dynamics %q: nil implementation", d.Name)
		}
		if err := d.Schedule.Validate(); err != nil {
			return fmt.Errorf("dynamics %q: %w", d.Name, err)
		}
	}
	for _, o := range c.Observers {
		if o.Observer == nil {
			return fmt.Errorf("observer %q: nil implementation", o.Name)
		}
		if err := o.Schedule.Validate(); err != nil {
			return fmt.Errorf("observer %q: %w", o.Name, err)
		}
	}
	for pid, p := range c.Protocols {
		if p.Schedule == (Scheduler{}) {
			continue
		}
		if err := p.Schedule.Validate(); err != nil {
			return fmt.Errorf("protocol %d (%s): %w", pid, p.Name, err)
		}
	}
	return nil
}

// protocol returns the settings for pid with defaults filled in.
func (c Components) protocol(pid int) ProtocolConfig {
	var p ProtocolConfig
	if pid < len(c.Protocols) {
		p = c.Protocols[pid]
	}
	if p.Name == "" {
		p.Name = fmt.Sprintf("protocol-%d", pid)
	}
	if p.Schedule == (Scheduler{}) {
		p.Schedule = EveryStep()
	}
	return p
}

// initialize runs every initializer in order.
func (c Components) initialize(ctx *Context, m *metrics.Engine) error {
	ctx.Phase = PhaseInit
	ctx.PID = -1
	for _, in := range c.Initializers {
		logrus.Debugf("running initializer %s", in.Name)
		m.ControlRun(kindInitializer, in.Name)
		if err := in.Initializer.Initialize(ctx); err != nil {
			return fmt.Errorf("initializer %q: %w", in.Name, err)
		}
	}
	return nil
}

// finalize runs every control whose schedule has the final flag, in configured order.
func finalize(ctx *Context, controls []*control, m *metrics.Engine) {
	ctx.Phase = PhaseFinal
	for _, c := range controls {
		if c.kind == kindProtocol || !c.schedule.ActiveFinal() {
			continue
		}
		c.run(ctx, m)
	}
}
