// Package controls provides initializers, dynamics and observers for
// overlaysim scenarios: topology wiring, value assignment, rumor seeding,
// population churn, crashes, and observers that record into a
// trace.SimulationTrace.
//
// Every component here is plain sim.Initializer, sim.Dynamics or
// sim.Observer; sim/config builds them from scenario parameters.
package controls
