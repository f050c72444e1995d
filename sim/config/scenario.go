// Package config loads scenario files and wires them into runnable
// experiments.
//
// A scenario names its protocols, initializers and controls by registered
// type (see Registry). A Runner resolves names to protocol ids, constructs
// every component from its parameters and hands out one Experiment (network,
// context and engine) per repetition.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/overlaysim/overlaysim/sim"
	"gopkg.in/yaml.v3"
)

// Engine names accepted by Scenario.Engine.
const (
	EngineCycle = "cycle"
	EngineEvent = "event"
)

// Control kinds accepted by ComponentSpec.Kind.
const (
	KindDynamics = "dynamics"
	KindObserver = "observer"
)

// Scenario is the top-level scenario file.
// Loaded from YAML via LoadScenario(path).
type Scenario struct {
	Seed        int64  `yaml:"seed"`
	Engine      string `yaml:"engine"`
	Cycles      int    `yaml:"cycles,omitempty"`
	EndTime     int64  `yaml:"end_time,omitempty"`
	Experiments int    `yaml:"experiments,omitempty"` // 0 means 1
	Shuffle     bool   `yaml:"shuffle,omitempty"`
	// ProtocolOrder lists protocol names in cycle visitation order.
	// Empty means declaration order.
	ProtocolOrder []string        `yaml:"protocol_order,omitempty"`
	Network       NetworkSpec     `yaml:"network"`
	Protocols     []ComponentSpec `yaml:"protocols"`
	Initializers  []ComponentSpec `yaml:"initializers,omitempty"`
	Controls      []ComponentSpec `yaml:"controls,omitempty"`
}

// NetworkSpec sizes the initial population.
type NetworkSpec struct {
	Size     int `yaml:"size"`
	Capacity int `yaml:"capacity,omitempty"` // 0: unbounded
}

// ComponentSpec declares one protocol, initializer or control.
type ComponentSpec struct {
	Name     string         `yaml:"name"`
	Type     string         `yaml:"type"`
	Kind     string         `yaml:"kind,omitempty"` // controls only: dynamics or observer
	Params   map[string]any `yaml:"params,omitempty"`
	Schedule *ScheduleSpec  `yaml:"schedule,omitempty"`
	Idle     bool           `yaml:"idle,omitempty"` // protocols only
}

// ScheduleSpec is the YAML form of sim.Scheduler. Unset fields default to
// from 0, until forever, step 1.
type ScheduleSpec struct {
	From      *int64 `yaml:"from,omitempty"`
	Until     *int64 `yaml:"until,omitempty"`
	Step      *int64 `yaml:"step,omitempty"`
	At        *int64 `yaml:"at,omitempty"`
	Final     bool   `yaml:"final,omitempty"`
	OnlyFinal bool   `yaml:"only_final,omitempty"`
}

// LoadScenario reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &s, nil
}

// Validate checks the structural fields of the scenario. Component types and
// parameters are checked by NewRunner and Runner.NextExperiment.
func (s *Scenario) Validate() error {
	switch s.Engine {
	case EngineCycle:
		if s.Cycles < 0 {
			return fmt.Errorf("cycles must be non-negative, got %d", s.Cycles)
		}
	case EngineEvent:
		if s.EndTime < 0 {
			return fmt.Errorf("end_time must be non-negative, got %d", s.EndTime)
		}
	default:
		return fmt.Errorf("unknown engine %q; valid: %s, %s", s.Engine, EngineCycle, EngineEvent)
	}
	if s.Experiments < 0 {
		return fmt.Errorf("experiments must be non-negative, got %d", s.Experiments)
	}
	if s.Network.Size < 0 {
		return fmt.Errorf("network.size must be non-negative, got %d", s.Network.Size)
	}
	if s.Network.Capacity > 0 && s.Network.Size > s.Network.Capacity {
		return fmt.Errorf("network.size %d exceeds network.capacity %d", s.Network.Size, s.Network.Capacity)
	}
	if len(s.Protocols) == 0 {
		return fmt.Errorf("at least one protocol required")
	}
	names := make(map[string]string)
	check := func(section string, i int, c ComponentSpec) error {
		prefix := fmt.Sprintf("%s[%d]", section, i)
		if c.Name == "" {
			return fmt.Errorf("%s: name required", prefix)
		}
		if c.Type == "" {
			return fmt.Errorf("%s (%s): type required", prefix, c.Name)
		}
		if prev, dup := names[c.Name]; dup {
			return fmt.Errorf("%s: name %q already used by %s", prefix, c.Name, prev)
		}
		names[c.Name] = prefix
		if c.Schedule != nil {
			if _, err := c.Schedule.Scheduler(); err != nil {
				return fmt.Errorf("%s (%s): %w", prefix, c.Name, err)
			}
		}
		return nil
	}
	for i, c := range s.Protocols {
		if err := check("protocols", i, c); err != nil {
			return err
		}
		if c.Kind != "" {
			return fmt.Errorf("protocols[%d] (%s): kind is only valid for controls", i, c.Name)
		}
	}
	for i, c := range s.Initializers {
		if err := check("initializers", i, c); err != nil {
			return err
		}
		if c.Schedule != nil || c.Idle || c.Kind != "" {
			return fmt.Errorf("initializers[%d] (%s): schedule, idle and kind are not valid for initializers", i, c.Name)
		}
	}
	for i, c := range s.Controls {
		if err := check("controls", i, c); err != nil {
			return err
		}
		if c.Kind != "" && c.Kind != KindDynamics && c.Kind != KindObserver {
			return fmt.Errorf("controls[%d] (%s): unknown kind %q; valid: %s, %s", i, c.Name, c.Kind, KindDynamics, KindObserver)
		}
		if c.Idle {
			return fmt.Errorf("controls[%d] (%s): idle is only valid for protocols", i, c.Name)
		}
	}
	seen := make(map[string]bool)
	for _, name := range s.ProtocolOrder {
		if seen[name] {
			return fmt.Errorf("protocol_order: %q listed twice", name)
		}
		seen[name] = true
	}
	return nil
}

// Scheduler converts the YAML schedule to a sim.Scheduler, applying defaults.
func (ss *ScheduleSpec) Scheduler() (sim.Scheduler, error) {
	if ss == nil {
		return sim.EveryStep(), nil
	}
	if ss.OnlyFinal {
		if ss.From != nil || ss.Until != nil || ss.Step != nil || ss.At != nil {
			return sim.Scheduler{}, fmt.Errorf("schedule: only_final excludes from, until, step and at")
		}
		return sim.FinalOnly(), nil
	}
	if ss.At != nil {
		if ss.From != nil || ss.Until != nil || ss.Step != nil {
			return sim.Scheduler{}, fmt.Errorf("schedule: at excludes from, until and step")
		}
		s := sim.At(*ss.At)
		s.Final = ss.Final
		return s, s.Validate()
	}
	from, until, step := int64(0), sim.Forever, int64(1)
	if ss.From != nil {
		from = *ss.From
	}
	if ss.Until != nil {
		until = *ss.Until
	}
	if ss.Step != nil {
		step = *ss.Step
	}
	return sim.NewScheduler(from, until, step, ss.Final)
}
