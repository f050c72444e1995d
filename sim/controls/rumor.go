package controls

import (
	"errors"

	"github.com/overlaysim/overlaysim/sim"
	"github.com/overlaysim/overlaysim/sim/protocols"
	"github.com/sirupsen/logrus"
)

// ErrNotEventDriven is returned by components that schedule events in a
// cycle-driven run.
var ErrNotEventDriven = errors.New("component requires the event engine")

// RumorSeed delivers a fresh protocols.Rumor to Sources random up nodes.
// As an initializer the rumors arrive at time 0; as a dynamics they arrive
// Delay time units after the activation.
type RumorSeed struct {
	PID     int
	Sources int
	Delay   int64
}

func (r *RumorSeed) Initialize(ctx *sim.Context) error {
	if !ctx.CanSchedule() {
		return ErrNotEventDriven
	}
	r.seed(ctx)
	return nil
}

func (r *RumorSeed) Modify(ctx *sim.Context) {
	if !ctx.CanSchedule() {
		logrus.Warnf("[t %010d] rumor seed skipped: %v", ctx.Time, ErrNotEventDriven)
		return
	}
	r.seed(ctx)
}

func (r *RumorSeed) seed(ctx *sim.Context) {
	nw := ctx.Network()
	up := make([]*sim.Node, 0, nw.Size())
	for i := 0; i < nw.Size(); i++ {
		if n := nw.Get(i); n.IsUp() {
			up = append(up, n)
		}
	}
	k := r.Sources
	if k > len(up) {
		k = len(up)
	}
	for s := 0; s < k; s++ {
		j := s + ctx.Rand().Intn(len(up)-s)
		up[s], up[j] = up[j], up[s]
		ctx.Schedule(r.Delay, protocols.Rumor{Origin: up[s].ID()}, up[s], r.PID)
		logrus.Debugf("[t %010d] rumor seeded at %s", ctx.Time, up[s])
	}
}
