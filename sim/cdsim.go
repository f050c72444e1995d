package sim

import (
	"fmt"

	"github.com/overlaysim/overlaysim/sim/metrics"
	"github.com/sirupsen/logrus"
)

// CycleConfig configures the cycle-driven engine.
type CycleConfig struct {
	// Cycles is the number of cycles to run.
	Cycles int
	// Shuffle re-permutes the node visitation order before every cycle.
	Shuffle bool
	// ProtocolOrder is the order in which protocol slots run on each node.
	// Nil means ascending protocol id.
	ProtocolOrder []int
}

// CycleSimulator drives every node's cycle protocols once per cycle.
//
// Each cycle i runs, in order: the dynamics active at i, the observers active
// at i (collecting stop requests), and, unless a stop was requested, one pass
// over all up nodes invoking NextCycle of every non-idle protocol slot whose
// schedule is active at i. Afterwards every control with a final schedule runs.
type CycleSimulator struct {
	cfg      CycleConfig
	ctx      *Context
	comps    Components
	metrics  *metrics.Engine
	controls []*control
	state    RunState
	hasRun   bool

	// resolved once before RUNNING
	pids      []int
	schedules []Scheduler
}

// NewCycleSimulator validates the configuration and resolves the idle
// protocol slots from the network prototype. m may be nil.
func NewCycleSimulator(ctx *Context, cfg CycleConfig, comps Components, m *metrics.Engine) (*CycleSimulator, error) {
	if cfg.Cycles < 0 {
		return nil, fmt.Errorf("cycle engine: negative cycle count %d", cfg.Cycles)
	}
	if err := comps.validate(); err != nil {
		return nil, fmt.Errorf("cycle engine: %w", err)
	}
	proto := ctx.Network().Prototype()
	order := cfg.ProtocolOrder
	if order == nil {
		order = make([]int, proto.ProtocolCount())
		for pid := range order {
			order[pid] = pid
		}
	}
	s := &CycleSimulator{
		cfg:       cfg,
		ctx:       ctx,
		comps:     comps,
		metrics:   m,
		controls:  comps.controls(),
		schedules: make([]Scheduler, proto.ProtocolCount()),
	}
	seen := make(map[int]bool, len(order))
	for _, pid := range order {
		if pid < 0 || pid >= proto.ProtocolCount() {
			return nil, fmt.Errorf("cycle engine: protocol order references pid %d, prototype has %d slots", pid, proto.ProtocolCount())
		}
		if seen[pid] {
			return nil, fmt.Errorf("cycle engine: pid %d listed twice in protocol order", pid)
		}
		seen[pid] = true
		pc := comps.protocol(pid)
		s.schedules[pid] = pc.Schedule
		switch {
		case pc.Idle:
			logrus.Debugf("protocol %s (pid %d) configured idle", pc.Name, pid)
		case proto.Capabilities(pid).Cycle == nil:
			logrus.Debugf("protocol %s (pid %d) is not cycle-driven, treated as idle", pc.Name, pid)
		default:
			s.pids = append(s.pids, pid)
		}
	}
	return s, nil
}

// Context returns the run context.
func (s *CycleSimulator) Context() *Context {
	return s.ctx
}

// State returns the lifecycle state.
func (s *CycleSimulator) State() RunState {
	return s.state
}

// ActiveProtocols returns the non-idle protocol ids in visitation order.
func (s *CycleSimulator) ActiveProtocols() []int {
	return append([]int(nil), s.pids...)
}

// Run executes the whole experiment.
// Panics if called more than once.
func (s *CycleSimulator) Run() (RunResult, error) {
	if s.hasRun {
		panic("CycleSimulator.Run() called more than once")
	}
	s.hasRun = true
	ctx := s.ctx

	s.state = RunInit
	ctx.Time = 0
	if err := s.comps.initialize(ctx, s.metrics); err != nil {
		return RunResult{}, err
	}

	due := NewCycleHeap()
	for _, c := range s.controls {
		s.reschedule(due, c, 0)
	}

	s.state = RunRunning
	ctx.Phase = PhaseRunning
	logrus.Infof("[cycle %05d] starting %d cycles over %d nodes", 0, s.cfg.Cycles, ctx.Network().Size())
	var res RunResult
	cycle := 0
	for ; cycle < s.cfg.Cycles; cycle++ {
		ctx.Time = int64(cycle)
		if s.runControls(due, cycle) {
			res.Stopped = true
			break
		}
		s.nextCycle(cycle)
		s.metrics.CycleRun()
		s.metrics.Observe(ctx.Network().Size(), ctx.Time)
	}
	res.Time = int64(cycle)

	s.state = RunFinalizing
	ctx.Time = res.Time
	finalize(ctx, s.controls, s.metrics)
	s.state = RunDone
	logrus.Infof("[cycle %05d] simulation ended (stopped=%t)", cycle, res.Stopped)
	return res, nil
}

// runControls runs every control due in cycle, in configured order, and
// reschedules each at its next activation. All controls due in the cycle run
// even after one of them requested a stop.
func (s *CycleSimulator) runControls(due *CycleHeap, cycle int) bool {
	stop := false
	for {
		e, ok := due.Peek()
		if !ok || e.Cycle > cycle {
			return stop
		}
		due.RemoveMin()
		c := e.Item.(*control)
		if c.run(s.ctx, s.metrics) {
			stop = true
		}
		s.reschedule(due, c, int64(cycle)+1)
	}
}

func (s *CycleSimulator) reschedule(due *CycleHeap, c *control, from int64) {
	next, ok := c.schedule.Next(from)
	if !ok || next >= int64(s.cfg.Cycles) {
		return
	}
	due.Insert(int(next), c.order, c)
}

// nextCycle performs one pass over the network.
func (s *CycleSimulator) nextCycle(cycle int) {
	ctx := s.ctx
	nw := ctx.Network()
	if s.cfg.Shuffle {
		nw.Shuffle(ctx.Rand())
	}
	pids := make([]int, 0, len(s.pids))
	for _, pid := range s.pids {
		if s.schedules[pid].Active(int64(cycle)) {
			pids = append(pids, pid)
		}
	}
	if len(pids) == 0 {
		return
	}
	for i := 0; i < nw.Size(); i++ {
		node := nw.Get(i)
		for _, pid := range pids {
			// a protocol may kill its own node mid-pass
			if !node.IsUp() {
				break
			}
			if cp := node.Capabilities(pid).Cycle; cp != nil {
				ctx.PID = pid
				cp.NextCycle(ctx, node, pid)
			}
		}
	}
	ctx.PID = -1
}
