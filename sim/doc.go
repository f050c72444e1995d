// Package sim provides the simulation kernel of overlaysim: nodes with
// fail-states, the network registry, activation schedules, the event and cycle
// heaps, and the two engines that drive protocols through simulated time.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - node.go and protocol.go: a Node holds protocol slots; each protocol
//     advertises capabilities (cycle-driven, event-driven, Linkable, Cleanable)
//   - network.go: the dense index registry every engine iterates
//   - cdsim.go: cycle-driven engine (controls, then one pass over all nodes)
//   - edsim.go: event-driven engine (global event heap, dropped deliveries)
//
// # Execution model
//
// A run is single-threaded and deterministic: one Context carries the clock,
// the executing protocol id and the only random source of the run. Protocol
// callbacks run to completion; message passing between nodes is either a
// direct call on the remote protocol or an event scheduled with
// Context.Schedule (event engine only).
//
// # Sub-packages
//
//   - sim/overlay: graph view of a Linkable protocol, graph factories, gonum bridge
//   - sim/config: YAML scenarios and the component registry
//   - sim/protocols: plug-in protocols (neighbour list, averaging, broadcast)
//   - sim/controls: initializers, dynamics and observers
//   - sim/trace: observation records
//   - sim/metrics: Prometheus engine counters
package sim
