package controls

import (
	"fmt"
	"math"
	"strings"

	"github.com/overlaysim/overlaysim/sim"
	"github.com/overlaysim/overlaysim/sim/overlay"
	"github.com/overlaysim/overlaysim/sim/protocols"
	"github.com/overlaysim/overlaysim/sim/trace"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
)

// recorder emits one observation to the log and, when enabled, the trace.
type recorder struct {
	name  string
	trace *trace.SimulationTrace
}

func (r recorder) record(ctx *sim.Context, fields ...trace.Field) {
	var b strings.Builder
	for k, f := range fields {
		if k > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%g", f.Name, f.Value)
	}
	logrus.Infof("[t %010d] %s: %s", ctx.Time, r.name, b.String())
	r.trace.RecordObservation(trace.ObservationRecord{
		Time:     ctx.Time,
		Final:    ctx.Phase == sim.PhaseFinal,
		Observer: r.name,
		Fields:   fields,
	})
}

// AverageObserver reports the distribution of the SingleValue protocol in
// slot PID over up nodes. It requests a stop once the population variance
// drops to Epsilon or below (Epsilon <= 0 never stops).
type AverageObserver struct {
	PID     int
	Epsilon float64
	rec     recorder
}

func NewAverageObserver(name string, pid int, epsilon float64, st *trace.SimulationTrace) *AverageObserver {
	return &AverageObserver{PID: pid, Epsilon: epsilon, rec: recorder{name: name, trace: st}}
}

func (o *AverageObserver) Analyze(ctx *sim.Context) bool {
	nw := ctx.Network()
	values := make([]float64, 0, nw.Size())
	for i := 0; i < nw.Size(); i++ {
		node := nw.Get(i)
		if !node.IsUp() {
			continue
		}
		if v, ok := node.Protocol(o.PID).(protocols.SingleValue); ok {
			values = append(values, v.Value())
		}
	}
	if len(values) == 0 {
		o.rec.record(ctx, trace.Field{Name: "count", Value: 0})
		return false
	}
	mean, variance := stat.PopMeanVariance(values, nil)
	o.rec.record(ctx,
		trace.Field{Name: "count", Value: float64(len(values))},
		trace.Field{Name: "mean", Value: mean},
		trace.Field{Name: "variance", Value: variance},
		trace.Field{Name: "min", Value: slices.Min(values)},
		trace.Field{Name: "max", Value: slices.Max(values)},
	)
	return o.Epsilon > 0 && variance <= o.Epsilon
}

// DegreeObserver reports the out-degree distribution of the overlay in slot
// PID over up nodes.
type DegreeObserver struct {
	PID int
	rec recorder
}

func NewDegreeObserver(name string, pid int, st *trace.SimulationTrace) *DegreeObserver {
	return &DegreeObserver{PID: pid, rec: recorder{name: name, trace: st}}
}

func (o *DegreeObserver) Analyze(ctx *sim.Context) bool {
	g, err := overlay.NewReadOnly(ctx.Network(), o.PID)
	if err != nil {
		logrus.Warnf("[t %010d] %s: %v", ctx.Time, o.rec.name, err)
		return false
	}
	degrees := make([]float64, 0, g.Size())
	for i := 0; i < g.Size(); i++ {
		if ctx.Network().Get(i).IsUp() {
			degrees = append(degrees, float64(g.Degree(i)))
		}
	}
	if len(degrees) == 0 {
		o.rec.record(ctx, trace.Field{Name: "count", Value: 0})
		return false
	}
	slices.Sort(degrees)
	mean, variance := stat.PopMeanVariance(degrees, nil)
	o.rec.record(ctx,
		trace.Field{Name: "count", Value: float64(len(degrees))},
		trace.Field{Name: "mean", Value: mean},
		trace.Field{Name: "variance", Value: variance},
		trace.Field{Name: "min", Value: degrees[0]},
		trace.Field{Name: "median", Value: stat.Quantile(0.5, stat.Empirical, degrees, nil)},
		trace.Field{Name: "max", Value: degrees[len(degrees)-1]},
	)
	return false
}

// ConnectivityObserver reports the weakly connected components of the
// overlay in slot PID restricted to up nodes, and the hop eccentricity of the
// first up node.
type ConnectivityObserver struct {
	PID int
	rec recorder
}

func NewConnectivityObserver(name string, pid int, st *trace.SimulationTrace) *ConnectivityObserver {
	return &ConnectivityObserver{PID: pid, rec: recorder{name: name, trace: st}}
}

func (o *ConnectivityObserver) Analyze(ctx *sim.Context) bool {
	nw := ctx.Network()
	g, err := overlay.NewReadOnly(nw, o.PID)
	if err != nil {
		logrus.Warnf("[t %010d] %s: %v", ctx.Time, o.rec.name, err)
		return false
	}
	var up []int
	for i := 0; i < nw.Size(); i++ {
		if nw.Get(i).IsUp() {
			up = append(up, i)
		}
	}
	view := g.Restrict(up)
	components, largest := 0, 0
	for _, comp := range overlay.ConnectedComponents(view) {
		if !nw.Get(comp[0]).IsUp() {
			continue
		}
		components++
		if len(comp) > largest {
			largest = len(comp)
		}
	}
	eccentricity := 0
	if len(up) > 0 {
		for _, d := range overlay.HopDistances(view, up[0]) {
			if d > eccentricity {
				eccentricity = d
			}
		}
	}
	fraction := 0.0
	if len(up) > 0 {
		fraction = float64(largest) / float64(len(up))
	}
	o.rec.record(ctx,
		trace.Field{Name: "up", Value: float64(len(up))},
		trace.Field{Name: "components", Value: float64(components)},
		trace.Field{Name: "largest", Value: float64(largest)},
		trace.Field{Name: "largest_fraction", Value: fraction},
		trace.Field{Name: "eccentricity", Value: float64(eccentricity)},
	)
	return false
}

// BroadcastObserver reports how far the rumor of the Broadcast protocol in
// slot PID has spread among up nodes. With StopWhenComplete it requests a
// stop once every up node is informed.
type BroadcastObserver struct {
	PID              int
	StopWhenComplete bool
	rec              recorder
}

func NewBroadcastObserver(name string, pid int, stopWhenComplete bool, st *trace.SimulationTrace) *BroadcastObserver {
	return &BroadcastObserver{PID: pid, StopWhenComplete: stopWhenComplete, rec: recorder{name: name, trace: st}}
}

func (o *BroadcastObserver) Analyze(ctx *sim.Context) bool {
	nw := ctx.Network()
	up, informed := 0, 0
	var hops, latency []float64
	messages := 0
	for i := 0; i < nw.Size(); i++ {
		node := nw.Get(i)
		if !node.IsUp() {
			continue
		}
		b, ok := node.Protocol(o.PID).(*protocols.Broadcast)
		if !ok {
			continue
		}
		up++
		messages += b.Received()
		if b.Informed() {
			informed++
			hops = append(hops, float64(b.Hops()))
			latency = append(latency, float64(b.InformedAt()))
		}
	}
	coverage := 0.0
	if up > 0 {
		coverage = float64(informed) / float64(up)
	}
	meanHops, lastInformed := math.NaN(), math.NaN()
	if len(hops) > 0 {
		meanHops = stat.Mean(hops, nil)
		lastInformed = slices.Max(latency)
	}
	o.rec.record(ctx,
		trace.Field{Name: "up", Value: float64(up)},
		trace.Field{Name: "informed", Value: float64(informed)},
		trace.Field{Name: "coverage", Value: coverage},
		trace.Field{Name: "messages", Value: float64(messages)},
		trace.Field{Name: "mean_hops", Value: meanHops},
		trace.Field{Name: "last_informed", Value: lastInformed},
	)
	return o.StopWhenComplete && informed > 0 && informed == up
}
