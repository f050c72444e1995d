package controls

import (
	"fmt"

	"github.com/overlaysim/overlaysim/sim"
	"github.com/overlaysim/overlaysim/sim/protocols"
)

func singleValueOf(node *sim.Node, pid int) (protocols.SingleValue, error) {
	v, ok := node.Protocol(pid).(protocols.SingleValue)
	if !ok {
		return nil, fmt.Errorf("pid %d of %s (%T) holds no single value: %w", pid, node, node.Protocol(pid), sim.ErrMissingCapability)
	}
	return v, nil
}

// Dead nodes hold no protocols and are skipped by every value initializer.

// UniformValues draws every value uniformly from [Min, Max).
type UniformValues struct {
	PID      int
	Min, Max float64
}

func (u *UniformValues) Initialize(ctx *sim.Context) error {
	nw := ctx.Network()
	for i := 0; i < nw.Size(); i++ {
		node := nw.Get(i)
		if node.FailState() == sim.StateDead {
			continue
		}
		if err := u.InitializeNode(ctx, node); err != nil {
			return err
		}
	}
	return nil
}

// InitializeNode gives a node joining mid-run a fresh value.
func (u *UniformValues) InitializeNode(ctx *sim.Context, node *sim.Node) error {
	v, err := singleValueOf(node, u.PID)
	if err != nil {
		return err
	}
	v.SetValue(u.Min + ctx.Rand().Float64()*(u.Max-u.Min))
	return nil
}

// PeakValue sets Value on one random node and zero everywhere else, the
// hardest starting point for aggregation.
type PeakValue struct {
	PID   int
	Value float64
}

func (p *PeakValue) Initialize(ctx *sim.Context) error {
	nw := ctx.Network()
	if nw.Size() == 0 {
		return nil
	}
	peak := ctx.Rand().Intn(nw.Size())
	for i := 0; i < nw.Size(); i++ {
		if nw.Get(i).FailState() == sim.StateDead {
			continue
		}
		v, err := singleValueOf(nw.Get(i), p.PID)
		if err != nil {
			return err
		}
		if i == peak {
			v.SetValue(p.Value)
		} else {
			v.SetValue(0)
		}
	}
	return nil
}

// LinearValues spreads values evenly over [Min, Max] by network index.
type LinearValues struct {
	PID      int
	Min, Max float64
}

func (l *LinearValues) Initialize(ctx *sim.Context) error {
	nw := ctx.Network()
	n := nw.Size()
	for i := 0; i < n; i++ {
		if nw.Get(i).FailState() == sim.StateDead {
			continue
		}
		v, err := singleValueOf(nw.Get(i), l.PID)
		if err != nil {
			return err
		}
		if n == 1 {
			v.SetValue(l.Min)
			continue
		}
		v.SetValue(l.Min + float64(i)*(l.Max-l.Min)/float64(n-1))
	}
	return nil
}
