package config

import (
	"fmt"

	"github.com/overlaysim/overlaysim/sim"
	"github.com/overlaysim/overlaysim/sim/controls"
	"github.com/overlaysim/overlaysim/sim/protocols"
)

func registerBuiltins(r *Registry) {
	r.RegisterProtocol("neighbors", func(s *Scope) (sim.Protocol, error) {
		capacity := s.IntOr("capacity", 0)
		if capacity < 0 {
			s.fail("%s.capacity: must be non-negative, got %d", s.Name(), capacity)
		}
		return protocols.NewNeighborList(capacity), s.Err()
	})
	r.RegisterProtocol("average", func(s *Scope) (sim.Protocol, error) {
		return protocols.NewAverage(s.Protocol("linkable")), s.Err()
	})
	r.RegisterProtocol("broadcast", func(s *Scope) (sim.Protocol, error) {
		link := s.Protocol("linkable")
		minDelay := s.IntOr("min_delay", 1)
		maxDelay := s.IntOr("max_delay", minDelay)
		if minDelay < 0 {
			s.fail("%s.min_delay: must be non-negative, got %d", s.Name(), minDelay)
		}
		if maxDelay < minDelay {
			s.fail("%s.max_delay: must be at least min_delay %d, got %d", s.Name(), minDelay, maxDelay)
		}
		return protocols.NewBroadcast(link, int64(minDelay), int64(maxDelay)), s.Err()
	})

	registerWiring(r, "wire-kout", func(s *Scope) *controls.WireTopology {
		return controls.NewWireKOut(s.Protocol("protocol"), s.Int("k"), s.BoolOr("undirected", false))
	})
	registerWiring(r, "wire-ring", func(s *Scope) *controls.WireTopology {
		return controls.NewWireRingLattice(s.Protocol("protocol"), s.IntOr("k", 2))
	})
	registerWiring(r, "wire-star", func(s *Scope) *controls.WireTopology {
		return controls.NewWireStar(s.Protocol("protocol"))
	})
	registerWiring(r, "wire-ws", func(s *Scope) *controls.WireTopology {
		beta := s.FloatOr("beta", 0.1)
		if beta < 0 || beta > 1 {
			s.fail("%s.beta: must be in [0,1], got %g", s.Name(), beta)
		}
		return controls.NewWireWattsStrogatz(s.Protocol("protocol"), s.Int("k"), beta, s.BoolOr("undirected", false))
	})

	r.RegisterInitializer("values-uniform", func(s *Scope) (sim.Initializer, error) {
		return &controls.UniformValues{PID: s.Protocol("protocol"), Min: s.FloatOr("min", 0), Max: s.FloatOr("max", 1)}, s.Err()
	})
	r.RegisterInitializer("values-peak", func(s *Scope) (sim.Initializer, error) {
		return &controls.PeakValue{PID: s.Protocol("protocol"), Value: s.FloatOr("value", 1)}, s.Err()
	})
	r.RegisterInitializer("values-linear", func(s *Scope) (sim.Initializer, error) {
		return &controls.LinearValues{PID: s.Protocol("protocol"), Min: s.FloatOr("min", 0), Max: s.FloatOr("max", 1)}, s.Err()
	})

	rumor := func(s *Scope) *controls.RumorSeed {
		sources := s.IntOr("sources", 1)
		if sources < 1 {
			s.fail("%s.sources: must be positive, got %d", s.Name(), sources)
		}
		return &controls.RumorSeed{PID: s.Protocol("protocol"), Sources: sources, Delay: int64(s.IntOr("delay", 0))}
	}
	r.RegisterInitializer("rumor-seed", func(s *Scope) (sim.Initializer, error) {
		return rumor(s), s.Err()
	})
	r.RegisterDynamics("rumor-seed", func(s *Scope) (sim.Dynamics, error) {
		return rumor(s), s.Err()
	})

	r.RegisterDynamics("dynamic-network", newDynamicNetwork)
	r.RegisterDynamics("crash", func(s *Scope) (sim.Dynamics, error) {
		probability := s.Float("probability")
		recovery := s.FloatOr("recover", 0)
		var state sim.FailState
		switch mode := s.StringOr("state", "down"); mode {
		case "down":
			state = sim.StateDown
		case "dead":
			state = sim.StateDead
		default:
			s.fail("%s.state: unknown state %q; valid: down, dead", s.Name(), mode)
		}
		if err := s.Err(); err != nil {
			return nil, err
		}
		return controls.NewCrash(probability, recovery, state)
	})

	r.RegisterObserver("average-observer", func(s *Scope) (sim.Observer, error) {
		return controls.NewAverageObserver(s.Name(), s.Protocol("protocol"), s.FloatOr("epsilon", 0), s.Trace()), s.Err()
	})
	r.RegisterObserver("degree-observer", func(s *Scope) (sim.Observer, error) {
		return controls.NewDegreeObserver(s.Name(), s.Protocol("protocol"), s.Trace()), s.Err()
	})
	r.RegisterObserver("connectivity-observer", func(s *Scope) (sim.Observer, error) {
		return controls.NewConnectivityObserver(s.Name(), s.Protocol("protocol"), s.Trace()), s.Err()
	})
	r.RegisterObserver("broadcast-observer", func(s *Scope) (sim.Observer, error) {
		return controls.NewBroadcastObserver(s.Name(), s.Protocol("protocol"), s.BoolOr("stop_when_complete", false), s.Trace()), s.Err()
	})
}

// registerWiring registers a topology factory both as initializer and as
// dynamics. Every wiring type accepts "pack".
func registerWiring(r *Registry, name string, build func(s *Scope) *controls.WireTopology) {
	construct := func(s *Scope) (*controls.WireTopology, error) {
		w := build(s)
		w.Pack = s.BoolOr("pack", false)
		return w, s.Err()
	}
	r.RegisterInitializer(name, func(s *Scope) (sim.Initializer, error) { return construct(s) })
	r.RegisterDynamics(name, func(s *Scope) (sim.Dynamics, error) { return construct(s) })
}

// newDynamicNetwork builds population churn. Joining nodes are linked to
// "links" random peers of protocol "linkable" and, when "values" names a
// SingleValue protocol, given a uniform value in [min, max).
func newDynamicNetwork(s *Scope) (sim.Dynamics, error) {
	d := &controls.DynamicNetwork{
		Add:        s.Int("add"),
		MinSize:    s.IntOr("min_size", 0),
		MaxSize:    s.IntOr("max_size", 0),
		Substitute: s.BoolOr("substitute", false),
	}
	if d.MinSize < 0 || d.MaxSize < 0 {
		s.fail("%s: min_size and max_size must be non-negative", s.Name())
	}
	if s.Has("linkable") {
		d.Inits = append(d.Inits, &controls.RandomLinks{
			PID:           s.Protocol("linkable"),
			K:             s.IntOr("links", 1),
			Bidirectional: s.BoolOr("bidirectional", false),
		})
	}
	if s.Has("values") {
		d.Inits = append(d.Inits, &controls.UniformValues{
			PID: s.Protocol("values"),
			Min: s.FloatOr("min", 0),
			Max: s.FloatOr("max", 1),
		})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if d.Add == 0 {
		return nil, fmt.Errorf("%s.add: must be non-zero", s.Name())
	}
	return d, nil
}
