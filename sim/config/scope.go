package config

import (
	"fmt"
	"math"

	"github.com/overlaysim/overlaysim/sim/trace"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Scope gives a factory typed access to one component's parameters.
//
// Getters never fail directly: the first problem (missing required
// parameter, wrong type, unknown protocol name) is kept and reported by Err,
// prefixed with the component name, so factories read every parameter and
// check once.
type Scope struct {
	component string
	params    map[string]any
	used      map[string]bool
	pids      map[string]int
	trace     *trace.SimulationTrace
	err       error
}

func newScope(component string, params map[string]any, pids map[string]int, st *trace.SimulationTrace) *Scope {
	return &Scope{
		component: component,
		params:    params,
		used:      make(map[string]bool, len(params)),
		pids:      pids,
		trace:     st,
	}
}

// Name returns the component name.
func (s *Scope) Name() string {
	return s.component
}

// Trace returns the run trace (nil-safe to record into).
func (s *Scope) Trace() *trace.SimulationTrace {
	return s.trace
}

// Err returns the first parameter error, or an error naming any parameter
// the factory never read.
func (s *Scope) Err() error {
	if s.err != nil {
		return s.err
	}
	var unknown []string
	for name := range s.params {
		if !s.used[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return fmt.Errorf("%s: unknown parameter(s) %v", s.component, unknown)
	}
	return nil
}

func (s *Scope) fail(format string, args ...any) {
	if s.err == nil {
		s.err = fmt.Errorf(format, args...)
	}
}

func (s *Scope) lookup(name string, required bool) (any, bool) {
	s.used[name] = true
	v, ok := s.params[name]
	if !ok && required {
		s.fail("%s.%s: missing required parameter", s.component, name)
	}
	return v, ok
}

// Has reports whether the parameter is set.
func (s *Scope) Has(name string) bool {
	_, ok := s.params[name]
	return ok
}

func (s *Scope) toInt(name string, v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case uint64:
		return int(x)
	case float64:
		if x == math.Trunc(x) {
			return int(x)
		}
	}
	s.fail("%s.%s: expected an integer, got %v", s.component, name, v)
	return 0
}

func (s *Scope) toFloat(name string, v any) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float64:
		return x
	}
	s.fail("%s.%s: expected a number, got %v", s.component, name, v)
	return 0
}

// Int returns a required integer parameter.
func (s *Scope) Int(name string) int {
	v, ok := s.lookup(name, true)
	if !ok {
		return 0
	}
	return s.toInt(name, v)
}

// IntOr returns an integer parameter or def when unset.
func (s *Scope) IntOr(name string, def int) int {
	v, ok := s.lookup(name, false)
	if !ok {
		return def
	}
	return s.toInt(name, v)
}

// Float returns a required numeric parameter.
func (s *Scope) Float(name string) float64 {
	v, ok := s.lookup(name, true)
	if !ok {
		return 0
	}
	return s.toFloat(name, v)
}

// FloatOr returns a numeric parameter or def when unset.
func (s *Scope) FloatOr(name string, def float64) float64 {
	v, ok := s.lookup(name, false)
	if !ok {
		return def
	}
	return s.toFloat(name, v)
}

// BoolOr returns a boolean parameter or def when unset.
func (s *Scope) BoolOr(name string, def bool) bool {
	v, ok := s.lookup(name, false)
	if !ok {
		return def
	}
	b, isBool := v.(bool)
	if !isBool {
		s.fail("%s.%s: expected a boolean, got %v", s.component, name, v)
	}
	return b
}

// StringOr returns a string parameter or def when unset.
func (s *Scope) StringOr(name, def string) string {
	v, ok := s.lookup(name, false)
	if !ok {
		return def
	}
	str, isString := v.(string)
	if !isString {
		s.fail("%s.%s: expected a string, got %v", s.component, name, v)
	}
	return str
}

// Protocol resolves a required parameter holding a protocol name to its id.
func (s *Scope) Protocol(name string) int {
	v, ok := s.lookup(name, true)
	if !ok {
		return -1
	}
	ref, isString := v.(string)
	if !isString {
		s.fail("%s.%s: expected a protocol name, got %v", s.component, name, v)
		return -1
	}
	pid, known := s.pids[ref]
	if !known {
		names := maps.Keys(s.pids)
		slices.Sort(names)
		s.fail("%s.%s: unknown protocol %q; declared: %v", s.component, name, ref, names)
		return -1
	}
	return pid
}
