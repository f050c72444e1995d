// Package trace records what observers see during a run.
// It stores pure data types and does not import sim.
package trace

// Field is one named measurement of an observation.
type Field struct {
	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`
}

// ObservationRecord captures one observer execution.
// Fields keep the order the observer emitted them in, so two runs of the same
// scenario serialize to identical bytes.
type ObservationRecord struct {
	Experiment int     `yaml:"experiment"`
	Time       int64   `yaml:"time"`
	Final      bool    `yaml:"final,omitempty"`
	Observer   string  `yaml:"observer"`
	Fields     []Field `yaml:"fields"`
}

// Get returns the value of the named field.
func (r ObservationRecord) Get(name string) (float64, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}
