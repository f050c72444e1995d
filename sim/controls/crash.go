package controls

import (
	"fmt"

	"github.com/overlaysim/overlaysim/sim"
	"github.com/sirupsen/logrus"
)

// Crash fails every up node with probability Probability at each
// activation, moving it to State (DOWN or DEAD). With Recover > 0 each DOWN
// node comes back up with that probability first. Dead nodes stay in the
// network; overlays and engines skip them.
type Crash struct {
	Probability float64
	Recover     float64
	State       sim.FailState
}

// NewCrash validates the target state.
func NewCrash(probability, recovery float64, state sim.FailState) (*Crash, error) {
	if state == sim.StateOK {
		return nil, fmt.Errorf("crash: target state must be %s or %s", sim.StateDown, sim.StateDead)
	}
	if probability < 0 || probability > 1 || recovery < 0 || recovery > 1 {
		return nil, fmt.Errorf("crash: probabilities must be in [0,1], got %g and %g", probability, recovery)
	}
	return &Crash{Probability: probability, Recover: recovery, State: state}, nil
}

func (c *Crash) Modify(ctx *sim.Context) {
	nw := ctx.Network()
	crashed, recovered := 0, 0
	for i := 0; i < nw.Size(); i++ {
		node := nw.Get(i)
		switch node.FailState() {
		case sim.StateDown:
			if c.Recover > 0 && ctx.Rand().Float64() < c.Recover {
				if err := node.SetFailState(sim.StateOK); err == nil {
					recovered++
				}
			}
		case sim.StateOK:
			if ctx.Rand().Float64() < c.Probability {
				if err := node.SetFailState(c.State); err == nil {
					crashed++
				}
			}
		}
	}
	logrus.Debugf("[t %010d] crash: %d failed (%s), %d recovered", ctx.Time, crashed, c.State, recovered)
}
