package sim

import (
	"fmt"
	"math"
)

// Forever is the Until value of an open-ended schedule.
const Forever int64 = math.MaxInt64

// Scheduler decides when a schedulable component (control, observer or
// protocol) is active. The activation points are From, From+Step,
// From+2*Step, ... strictly below Until. Final additionally activates the
// component once after the last cycle or event.
type Scheduler struct {
	From  int64
	Until int64
	Step  int64
	Final bool

	finalOnly bool
}

// NewScheduler validates and returns a schedule.
// Returns ErrDegenerateSchedule if step <= 0 or from >= until.
func NewScheduler(from, until, step int64, final bool) (Scheduler, error) {
	s := Scheduler{From: from, Until: until, Step: step, Final: final}
	if err := s.Validate(); err != nil {
		return Scheduler{}, err
	}
	return s, nil
}

// EveryStep is active at every time point from 0 on.
func EveryStep() Scheduler {
	return Scheduler{From: 0, Until: Forever, Step: 1}
}

// At is active exactly once, at time t.
func At(t int64) Scheduler {
	return Scheduler{From: t, Until: t + 1, Step: 1}
}

// FinalOnly is never active during the run and active at the FINAL point.
func FinalOnly() Scheduler {
	return Scheduler{Final: true, finalOnly: true}
}

// Validate reports whether the schedule can activate and advance.
func (s Scheduler) Validate() error {
	if s.finalOnly {
		return nil
	}
	if s.Step <= 0 {
		return fmt.Errorf("step %d: %w", s.Step, ErrDegenerateSchedule)
	}
	if s.From >= s.Until {
		return fmt.Errorf("from %d >= until %d: %w", s.From, s.Until, ErrDegenerateSchedule)
	}
	return nil
}

// Active reports whether t is an activation point.
func (s Scheduler) Active(t int64) bool {
	if s.finalOnly || s.Step <= 0 || t < s.From || t >= s.Until {
		return false
	}
	return (t-s.From)%s.Step == 0
}

// ActiveFinal reports whether the component runs at the FINAL point.
func (s Scheduler) ActiveFinal() bool {
	return s.Final
}

// FinalOnly reports whether the schedule is only active at the FINAL point.
func (s Scheduler) FinalOnly() bool {
	return s.finalOnly
}

// Next returns the smallest activation point >= now.
// ok is false when no activation point remains.
func (s Scheduler) Next(now int64) (next int64, ok bool) {
	if s.finalOnly || s.Step <= 0 {
		return 0, false
	}
	if now <= s.From {
		next = s.From
	} else {
		next = s.From + (now-s.From)/s.Step*s.Step
		if next < now {
			next += s.Step
			if next < now { // overflow
				return 0, false
			}
		}
	}
	if next >= s.Until {
		return 0, false
	}
	return next, true
}

func (s Scheduler) String() string {
	if s.finalOnly {
		return "final-only"
	}
	until := "forever"
	if s.Until != Forever {
		until = fmt.Sprint(s.Until)
	}
	return fmt.Sprintf("from=%d until=%s step=%d final=%t", s.From, until, s.Step, s.Final)
}
