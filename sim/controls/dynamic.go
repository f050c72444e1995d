package controls

import (
	"errors"
	"fmt"

	"github.com/overlaysim/overlaysim/sim"
	"github.com/sirupsen/logrus"
)

// NodeInitializer prepares a node that joins the network mid-run.
type NodeInitializer interface {
	InitializeNode(ctx *sim.Context, node *sim.Node) error
}

// DynamicNetwork grows or shrinks the population at every activation.
//
// A positive Add clones that many nodes from the prototype (never beyond
// MaxSize or the network capacity), appends them and runs the node
// initializers on each. A negative Add removes that many uniformly random
// nodes (never below MinSize) and marks them DEAD. With Substitute set, |Add|
// nodes are removed and the same number added, keeping the size constant.
type DynamicNetwork struct {
	Add        int
	MinSize    int
	MaxSize    int // 0: bounded only by the network capacity
	Substitute bool
	Inits      []NodeInitializer
}

func (d *DynamicNetwork) Modify(ctx *sim.Context) {
	switch {
	case d.Substitute:
		n := d.Add
		if n < 0 {
			n = -n
		}
		removed := d.remove(ctx, n, 0)
		d.add(ctx, removed, 0)
	case d.Add > 0:
		d.add(ctx, d.Add, d.MaxSize)
	case d.Add < 0:
		d.remove(ctx, -d.Add, d.MinSize)
	}
}

// add appends up to n nodes and returns how many were added.
func (d *DynamicNetwork) add(ctx *sim.Context, n, maxSize int) int {
	nw := ctx.Network()
	if maxSize > 0 && nw.Size()+n > maxSize {
		n = maxSize - nw.Size()
	}
	added := 0
	for ; added < n; added++ {
		node := nw.NewNode()
		if err := nw.Add(node); err != nil {
			if errors.Is(err, sim.ErrCapacityExceeded) {
				logrus.Warnf("[t %010d] network full at %d nodes, %d additions dropped", ctx.Time, nw.Size(), n-added)
				break
			}
			panic(fmt.Sprintf("DynamicNetwork: adding %s: %v", node, err))
		}
		for _, in := range d.Inits {
			if err := in.InitializeNode(ctx, node); err != nil {
				logrus.Warnf("[t %010d] initializing %s: %v", ctx.Time, node, err)
			}
		}
	}
	if added > 0 {
		logrus.Debugf("[t %010d] added %d nodes, size %d", ctx.Time, added, nw.Size())
	}
	return added
}

// remove kills up to n random nodes and returns how many were removed.
func (d *DynamicNetwork) remove(ctx *sim.Context, n, minSize int) int {
	nw := ctx.Network()
	if nw.Size()-n < minSize {
		n = nw.Size() - minSize
	}
	removed := 0
	for ; removed < n && nw.Size() > 0; removed++ {
		nw.Swap(ctx.Rand().Intn(nw.Size()), nw.Size()-1)
		node := nw.Remove()
		if err := node.SetFailState(sim.StateDead); err != nil {
			panic(fmt.Sprintf("DynamicNetwork: removing %s: %v", node, err))
		}
	}
	if removed > 0 {
		logrus.Debugf("[t %010d] removed %d nodes, size %d", ctx.Time, removed, nw.Size())
	}
	return removed
}
