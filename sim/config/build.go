package config

import (
	"fmt"
	"math/rand"

	"github.com/overlaysim/overlaysim/sim"
	"github.com/overlaysim/overlaysim/sim/metrics"
	"github.com/overlaysim/overlaysim/sim/protocols"
	"github.com/overlaysim/overlaysim/sim/trace"
	"github.com/sirupsen/logrus"
)

// Options carries the optional collaborators of a Runner.
type Options struct {
	// Registry resolves component types. Nil means DefaultRegistry().
	Registry *Registry
	// Trace collects observer records. Nil disables tracing.
	Trace *trace.SimulationTrace
	// Metrics receives engine counters. Nil disables instrumentation.
	Metrics *metrics.Engine
}

// Experiment is one fully wired repetition of a scenario.
type Experiment struct {
	Index      int
	Context    *sim.Context
	Engine     sim.Engine
	Components sim.Components
}

// Runner owns the state shared by the experiments of a scenario: the random
// source, the prototype and the network. Experiments run sequentially on the
// same generator, so a scenario with N experiments is reproducible as a
// whole.
type Runner struct {
	scenario  *Scenario
	opts      Options
	rng       *rand.Rand
	network   *sim.Network
	pids      map[string]int
	protocols []sim.ProtocolConfig
	order     []int
	next      int
}

// NewRunner validates the scenario, builds the prototype node and the
// initial population.
func NewRunner(sc *Scenario, opts Options) (*Runner, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}
	r := &Runner{
		scenario: sc,
		opts:     opts,
		rng:      sim.NewSimulationKey(sc.Seed).NewRand(),
		pids:     make(map[string]int, len(sc.Protocols)),
	}
	for pid, p := range sc.Protocols {
		r.pids[p.Name] = pid
	}

	slots := make([]sim.Protocol, len(sc.Protocols))
	for pid, p := range sc.Protocols {
		factory, ok := opts.Registry.protocols[p.Type]
		if !ok {
			return nil, fmt.Errorf("protocols[%d] (%s): unknown protocol type %q; valid: %v", pid, p.Name, p.Type, opts.Registry.ProtocolTypes())
		}
		proto, err := factory(newScope(p.Name, p.Params, r.pids, opts.Trace))
		if err != nil {
			return nil, fmt.Errorf("protocols[%d]: %w", pid, err)
		}
		schedule, err := p.Schedule.Scheduler()
		if err != nil {
			return nil, fmt.Errorf("protocols[%d] (%s): %w", pid, p.Name, err)
		}
		slots[pid] = proto
		r.protocols = append(r.protocols, sim.ProtocolConfig{Name: p.Name, Schedule: schedule, Idle: p.Idle})
	}

	for pid, proto := range slots {
		lu, ok := proto.(protocols.LinkUser)
		if !ok {
			continue
		}
		if link := lu.LinkableSlot(); sim.CapabilitiesOf(slots[link]).Link == nil {
			return nil, fmt.Errorf("protocols[%d] (%s): protocol %s is not Linkable: %w",
				pid, sc.Protocols[pid].Name, sc.Protocols[link].Name, sim.ErrMissingCapability)
		}
	}

	for _, name := range sc.ProtocolOrder {
		pid, ok := r.pids[name]
		if !ok {
			return nil, fmt.Errorf("protocol_order: unknown protocol %q", name)
		}
		r.order = append(r.order, pid)
	}
	if len(r.order) > 0 && len(r.order) != len(sc.Protocols) {
		return nil, fmt.Errorf("protocol_order lists %d of %d protocols", len(r.order), len(sc.Protocols))
	}

	r.network = sim.NewNetwork(sim.NewNode(-1, slots...), sc.Network.Capacity)
	if err := r.network.Reset(sc.Network.Size); err != nil {
		return nil, err
	}
	return r, nil
}

// Network returns the simulated network.
func (r *Runner) Network() *sim.Network {
	return r.network
}

// PID returns the protocol id of a declared protocol name.
func (r *Runner) PID(name string) (int, bool) {
	pid, ok := r.pids[name]
	return pid, ok
}

// Experiments returns the number of repetitions the scenario asks for.
func (r *Runner) Experiments() int {
	if r.scenario.Experiments == 0 {
		return 1
	}
	return r.scenario.Experiments
}

// NextExperiment wires the next repetition. Every repetition after the first
// starts from a freshly reset network.
func (r *Runner) NextExperiment() (*Experiment, error) {
	k := r.next
	r.next++
	if k > 0 {
		if err := r.network.Reset(r.scenario.Network.Size); err != nil {
			return nil, err
		}
	}
	comps, err := r.components()
	if err != nil {
		return nil, err
	}
	ctx := sim.NewContext(r.network, r.rng)
	sc := r.scenario
	var engine sim.Engine
	switch sc.Engine {
	case EngineCycle:
		engine, err = sim.NewCycleSimulator(ctx, sim.CycleConfig{
			Cycles:        sc.Cycles,
			Shuffle:       sc.Shuffle,
			ProtocolOrder: r.order,
		}, comps, r.opts.Metrics)
	case EngineEvent:
		engine, err = sim.NewEventSimulator(ctx, sim.EventConfig{
			EndTime:        sc.EndTime,
			Shuffle:        sc.Shuffle,
			CycleProtocols: r.emulated(),
		}, comps, r.opts.Metrics)
	}
	if err != nil {
		return nil, err
	}
	return &Experiment{Index: k, Context: ctx, Engine: engine, Components: comps}, nil
}

// emulated lists the cycle-driven, non-idle protocols the event engine
// drives through periodic global events.
func (r *Runner) emulated() []int {
	proto := r.network.Prototype()
	var pids []int
	for pid, pc := range r.protocols {
		if !pc.Idle && proto.Capabilities(pid).Cycle != nil {
			pids = append(pids, pid)
		}
	}
	return pids
}

// components builds fresh initializers and controls for one repetition.
func (r *Runner) components() (sim.Components, error) {
	reg := r.opts.Registry
	comps := sim.Components{Protocols: r.protocols}
	for i, c := range r.scenario.Initializers {
		factory, ok := reg.initializers[c.Type]
		if !ok {
			return sim.Components{}, fmt.Errorf("initializers[%d] (%s): unknown initializer type %q; valid: %v", i, c.Name, c.Type, reg.InitializerTypes())
		}
		in, err := factory(newScope(c.Name, c.Params, r.pids, r.opts.Trace))
		if err != nil {
			return sim.Components{}, fmt.Errorf("initializers[%d]: %w", i, err)
		}
		comps.Initializers = append(comps.Initializers, sim.NamedInitializer{Name: c.Name, Initializer: in})
	}
	for i, c := range r.scenario.Controls {
		kind, err := reg.control(c)
		if err != nil {
			return sim.Components{}, fmt.Errorf("controls[%d] (%s): %w", i, c.Name, err)
		}
		schedule, err := c.Schedule.Scheduler()
		if err != nil {
			return sim.Components{}, fmt.Errorf("controls[%d] (%s): %w", i, c.Name, err)
		}
		scope := newScope(c.Name, c.Params, r.pids, r.opts.Trace)
		switch kind {
		case KindDynamics:
			d, err := reg.dynamics[c.Type](scope)
			if err != nil {
				return sim.Components{}, fmt.Errorf("controls[%d]: %w", i, err)
			}
			comps.Dynamics = append(comps.Dynamics, sim.ScheduledDynamics{Name: c.Name, Schedule: schedule, Dynamics: d})
		case KindObserver:
			o, err := reg.observers[c.Type](scope)
			if err != nil {
				return sim.Components{}, fmt.Errorf("controls[%d]: %w", i, err)
			}
			comps.Observers = append(comps.Observers, sim.ScheduledObserver{Name: c.Name, Schedule: schedule, Observer: o})
		}
	}
	return comps, nil
}

// Run executes every experiment in sequence and returns their results.
func (r *Runner) Run() ([]sim.RunResult, error) {
	n := r.Experiments()
	results := make([]sim.RunResult, 0, n)
	for k := 0; k < n; k++ {
		exp, err := r.NextExperiment()
		if err != nil {
			return results, fmt.Errorf("experiment %d: %w", k, err)
		}
		r.opts.Trace.SetExperiment(exp.Index)
		logrus.Infof("experiment %d/%d: %s engine, %d nodes, seed %d", k+1, n, r.scenario.Engine, r.network.Size(), r.scenario.Seed)
		res, err := exp.Engine.Run()
		if err != nil {
			return results, fmt.Errorf("experiment %d: %w", k, err)
		}
		results = append(results, res)
	}
	return results, nil
}
