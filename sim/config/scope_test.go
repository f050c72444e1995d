package config

import (
	"testing"

	"github.com/overlaysim/overlaysim/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_TypedGetters(t *testing.T) {
	s := newScope("c", map[string]any{
		"k":     3,
		"whole": 4.0,
		"rate":  1,
		"flag":  true,
		"mode":  "dead",
		"lnk":   "links",
	}, map[string]int{"links": 0, "avg": 1}, nil)

	assert.Equal(t, 3, s.Int("k"))
	assert.Equal(t, 4, s.Int("whole"))
	assert.Equal(t, 1.0, s.Float("rate"))
	assert.True(t, s.BoolOr("flag", false))
	assert.Equal(t, "dead", s.StringOr("mode", "down"))
	assert.Equal(t, 0, s.Protocol("lnk"))
	assert.Equal(t, 7, s.IntOr("absent", 7))
	assert.Equal(t, 0.5, s.FloatOr("absent2", 0.5))
	assert.NoError(t, s.Err())
}

func TestScope_Err_FirstProblemWins(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		read   func(s *Scope)
		want   string
	}{
		{
			name:   "missing required",
			params: map[string]any{},
			read:   func(s *Scope) { s.Int("k") },
			want:   "c.k: missing required parameter",
		},
		{
			name:   "fractional integer",
			params: map[string]any{"k": 2.5},
			read:   func(s *Scope) { s.IntOr("k", 1) },
			want:   "c.k: expected an integer",
		},
		{
			name:   "string as number",
			params: map[string]any{"p": "high"},
			read:   func(s *Scope) { s.Float("p") },
			want:   "c.p: expected a number",
		},
		{
			name:   "unknown protocol",
			params: map[string]any{"protocol": "nope"},
			read:   func(s *Scope) { s.Protocol("protocol") },
			want:   `c.protocol: unknown protocol "nope"; declared: [avg links]`,
		},
		{
			name:   "unread parameters",
			params: map[string]any{"k": 1, "typo": 2, "extra": 3},
			read:   func(s *Scope) { s.Int("k") },
			want:   "c: unknown parameter(s) [extra typo]",
		},
		{
			name:   "first error kept",
			params: map[string]any{"flag": 1},
			read: func(s *Scope) {
				s.BoolOr("flag", false)
				s.Int("missing")
			},
			want: "c.flag: expected a boolean",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScope("c", tt.params, map[string]int{"links": 0, "avg": 1}, nil)
			tt.read(s)
			err := s.Err()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRegistry_DuplicateRegistration_Panics(t *testing.T) {
	r := NewRegistry()
	f := func(s *Scope) (sim.Observer, error) { return nil, nil }
	r.RegisterObserver("probe", f)

	assert.Panics(t, func() { r.RegisterObserver("probe", f) })
	// the same name under another kind is allowed
	assert.NotPanics(t, func() {
		r.RegisterDynamics("probe", func(s *Scope) (sim.Dynamics, error) { return nil, nil })
	})
}

func TestRegistry_TypesAreSorted(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, []string{"average", "broadcast", "neighbors"}, r.ProtocolTypes())
	assert.Equal(t, []string{"average-observer", "broadcast-observer", "connectivity-observer", "degree-observer"}, r.ObserverTypes())
	assert.Contains(t, r.InitializerTypes(), "wire-kout")
	assert.Contains(t, r.DynamicsTypes(), "crash")
}

func TestRegistry_Control_KindInference(t *testing.T) {
	r := DefaultRegistry()
	r.RegisterObserver("crash", func(s *Scope) (sim.Observer, error) { return nil, nil })

	tests := []struct {
		spec    ComponentSpec
		want    string
		wantErr string
	}{
		{spec: ComponentSpec{Type: "dynamic-network"}, want: KindDynamics},
		{spec: ComponentSpec{Type: "degree-observer"}, want: KindObserver},
		{spec: ComponentSpec{Type: "crash"}, wantErr: "both dynamics and observer"},
		{spec: ComponentSpec{Type: "crash", Kind: KindObserver}, want: KindObserver},
		{spec: ComponentSpec{Type: "degree-observer", Kind: KindDynamics}, wantErr: "unknown dynamics type"},
		{spec: ComponentSpec{Type: "bogus"}, wantErr: "unknown control type"},
	}
	for _, tt := range tests {
		t.Run(tt.spec.Type+"/"+tt.spec.Kind, func(t *testing.T) {
			kind, err := r.control(tt.spec)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}
