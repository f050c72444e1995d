package sim

import (
	"fmt"

	"github.com/overlaysim/overlaysim/sim/metrics"
	"github.com/sirupsen/logrus"
)

// EventConfig configures the event-driven engine.
type EventConfig struct {
	// EndTime is the last simulated time processed; later events stop the run.
	EndTime int64
	// Shuffle re-permutes the node order before each emulated protocol cycle.
	Shuffle bool
	// CycleProtocols lists the protocol ids whose NextCycle is emulated by a
	// self-rescheduling global event following ProtocolConfig.Schedule.
	CycleProtocols []int
}

// EventSimulator processes timestamped events one at a time in time order.
//
// Global items (events with a nil node) are controls, observers and protocol
// cycle emulations. Each is one self-rescheduling chain inserted with its
// configured order as tie-break, so at equal times they run in configured
// order and before node messages. Node messages to a node that is not up are
// dropped silently.
type EventSimulator struct {
	cfg      EventConfig
	ctx      *Context
	comps    Components
	metrics  *metrics.Engine
	heap     *EventHeap
	controls []*control
	state    RunState
	hasRun   bool
}

// NewEventSimulator validates the configuration and attaches the event queue
// to ctx, enabling ctx.Schedule. m may be nil.
func NewEventSimulator(ctx *Context, cfg EventConfig, comps Components, m *metrics.Engine) (*EventSimulator, error) {
	if cfg.EndTime < 0 {
		return nil, fmt.Errorf("event engine: negative end time %d", cfg.EndTime)
	}
	if err := comps.validate(); err != nil {
		return nil, fmt.Errorf("event engine: %w", err)
	}
	proto := ctx.Network().Prototype()
	controls := comps.controls()
	for _, pid := range cfg.CycleProtocols {
		if pid < 0 || pid >= proto.ProtocolCount() {
			return nil, fmt.Errorf("event engine: cycle protocol pid %d out of range [0,%d)", pid, proto.ProtocolCount())
		}
		pc := comps.protocol(pid)
		if proto.Capabilities(pid).Cycle == nil {
			return nil, fmt.Errorf("event engine: protocol %s (pid %d): cycle emulation requested: %w", pc.Name, pid, ErrMissingCapability)
		}
		if pc.Idle {
			continue
		}
		controls = append(controls, &control{name: pc.Name, kind: kindProtocol, order: len(controls), schedule: pc.Schedule, pid: pid})
	}
	s := &EventSimulator{
		cfg:      cfg,
		ctx:      ctx,
		comps:    comps,
		metrics:  m,
		heap:     NewEventHeap(),
		controls: controls,
	}
	ctx.events = s.heap
	return s, nil
}

// Context returns the run context.
func (s *EventSimulator) Context() *Context {
	return s.ctx
}

// State returns the lifecycle state.
func (s *EventSimulator) State() RunState {
	return s.state
}

// Pending returns the number of queued events.
func (s *EventSimulator) Pending() int {
	return s.heap.Len()
}

// Run executes the whole experiment.
// Returns an error wrapping ErrMissingCapability when an event reaches a
// protocol slot that cannot process events.
// Panics if called more than once.
func (s *EventSimulator) Run() (RunResult, error) {
	if s.hasRun {
		panic("EventSimulator.Run() called more than once")
	}
	s.hasRun = true
	ctx := s.ctx

	s.state = RunInit
	ctx.Time = 0
	if err := s.comps.initialize(ctx, s.metrics); err != nil {
		return RunResult{}, err
	}
	for _, c := range s.controls {
		s.reschedule(c, 0)
	}

	s.state = RunRunning
	ctx.Phase = PhaseRunning
	logrus.Infof("[t %010d] starting event loop, end time %d, %d nodes", 0, s.cfg.EndTime, ctx.Network().Size())
	var res RunResult
	for {
		ev, ok := s.heap.RemoveMin()
		if !ok {
			break
		}
		if ev.Time > s.cfg.EndTime {
			break
		}
		ctx.Time = ev.Time
		res.Time = ev.Time
		if ev.Node == nil {
			c := ev.Payload.(*control)
			stop := s.runGlobal(c)
			if ev.Time < Forever {
				s.reschedule(c, ev.Time+1)
			}
			s.metrics.Observe(ctx.Network().Size(), ctx.Time)
			if stop {
				res.Stopped = true
				break
			}
			continue
		}
		if !ev.Node.IsUp() {
			logrus.Debugf("[t %010d] dropping event for %s (pid %d)", ev.Time, ev.Node, ev.PID)
			res.Dropped++
			s.metrics.EventDropped()
			continue
		}
		ep := ev.Node.Capabilities(ev.PID).Event
		if ep == nil {
			s.state = RunDone
			return res, fmt.Errorf("event engine: delivering %T to pid %d on %s: %w",
				ev.Payload, ev.PID, ev.Node, ErrMissingCapability)
		}
		ctx.PID = ev.PID
		ep.ProcessEvent(ctx, ev.Node, ev.PID, ev.Payload)
		ctx.PID = -1
		res.Dispatched++
		s.metrics.EventDispatched()
	}

	s.state = RunFinalizing
	if res.Time > s.cfg.EndTime {
		res.Time = s.cfg.EndTime
	}
	ctx.Time = res.Time
	finalize(ctx, s.controls, s.metrics)
	s.state = RunDone
	logrus.Infof("[t %010d] simulation ended (stopped=%t, dispatched=%d, dropped=%d)", res.Time, res.Stopped, res.Dispatched, res.Dropped)
	return res, nil
}

// reschedule queues c at its first activation >= from.
// Global items sort before node messages at equal times and keep their
// configured order among themselves.
func (s *EventSimulator) reschedule(c *control, from int64) {
	next, ok := c.schedule.Next(from)
	if !ok || next > s.cfg.EndTime {
		return
	}
	s.heap.InsertOrdered(next, c.order-len(s.controls), c, nil, -1)
}

// runGlobal executes a control, observer or emulated protocol cycle.
func (s *EventSimulator) runGlobal(c *control) bool {
	if c.kind != kindProtocol {
		return c.run(s.ctx, s.metrics)
	}
	ctx := s.ctx
	nw := ctx.Network()
	if s.cfg.Shuffle {
		nw.Shuffle(ctx.Rand())
	}
	s.metrics.ControlRun(c.kind, c.name)
	for i := 0; i < nw.Size(); i++ {
		node := nw.Get(i)
		if !node.IsUp() {
			continue
		}
		if cp := node.Capabilities(c.pid).Cycle; cp != nil {
			ctx.PID = c.pid
			cp.NextCycle(ctx, node, c.pid)
		}
	}
	ctx.PID = -1
	s.metrics.CycleRun()
	return false
}
