package v01

import (
	"encoding/json"
	"strconv"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// AutoInt is an integer option that may be left to the server. The zero
// value is "auto".
type AutoInt struct {
	Value int
	Set   bool
}

// Int returns an explicit AutoInt.
func Int(v int) AutoInt { return AutoInt{Value: v, Set: true} }

func (a AutoInt) String() string {
	if !a.Set {
		return "auto"
	}
	return strconv.Itoa(a.Value)
}

// MarshalJSON implements json.Marshaler.
func (a AutoInt) MarshalJSON() ([]byte, error) {
	if !a.Set {
		return []byte(`"auto"`), nil
	}
	return json.Marshal(a.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *AutoInt) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != "auto" {
			return validation.Errorf(validation.ErrInvalidField, "", `input should be an integer or "auto", got %q`, s)
		}
		*a = AutoInt{}
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return validation.Errorf(validation.ErrInvalidField, "", `input should be an integer or "auto"`)
	}
	*a = Int(n)
	return nil
}

// Measurement return types.
const (
	MeasClassified  = "classified"
	MeasKerneled    = "kerneled"
	MeasAvgKerneled = "avg_kerneled"
)

// ExecutionOptions are execution-time options.
type ExecutionOptions struct {
	InitQubits bool `json:"init_qubits"`
	// RepDelay is in seconds; nil uses the backend default.
	RepDelay *float64 `json:"rep_delay"`
	// MeasType sets the return type of every classical register: bit arrays
	// for classified, IQ points per shot for kerneled, and shot-averaged IQ
	// points for avg_kerneled.
	MeasType string `json:"meas_type" validate:"oneof=classified kerneled avg_kerneled"`
}

// DynamicalDecouplingOptions configure dynamical decoupling.
type DynamicalDecouplingOptions struct {
	Enable                 bool   `json:"enable"`
	SequenceType           string `json:"sequence_type" validate:"oneof=XX XpXm XY4"`
	ExtraSlackDistribution string `json:"extra_slack_distribution" validate:"oneof=middle edges"`
	SchedulingMethod       string `json:"scheduling_method" validate:"oneof=alap asap"`
	SkipResetQubits        bool   `json:"skip_reset_qubits"`
}

// TwirlingOptions configure gate and measurement twirling.
type TwirlingOptions struct {
	EnableGates           bool    `json:"enable_gates"`
	EnableMeasure         bool    `json:"enable_measure"`
	NumRandomizations     AutoInt `json:"num_randomizations"`
	ShotsPerRandomization AutoInt `json:"shots_per_randomization"`
	Strategy              string  `json:"strategy" validate:"oneof=active active-circuit active-accum all"`
}

// Options are the SamplerV2 runtime options.
type Options struct {
	DefaultShots        int                        `json:"default_shots"`
	Execution           ExecutionOptions           `json:"execution"`
	DynamicalDecoupling DynamicalDecouplingOptions `json:"dynamical_decoupling"`
	Twirling            TwirlingOptions            `json:"twirling"`
	// Experimental values must be JSON-serializable.
	Experimental map[string]any `json:"experimental"`
}

// DefaultOptions returns Options with every default filled in.
func DefaultOptions() Options {
	return Options{
		DefaultShots: 4096,
		Execution: ExecutionOptions{
			InitQubits: true,
			MeasType:   MeasClassified,
		},
		DynamicalDecoupling: DynamicalDecouplingOptions{
			SequenceType:           "XX",
			ExtraSlackDistribution: "middle",
			SchedulingMethod:       "alap",
		},
		Twirling: TwirlingOptions{
			Strategy: "active-accum",
		},
		Experimental: map[string]any{},
	}
}

var optionRules = validation.MustRuleSet("options",
	validation.Rule{
		Field: "twirling.enable_measure",
		Expr:  `options.execution.meas_type == "classified" || !options.twirling.enable_measure`,
		Message: "kerneled measurement return and measurement twirling are not compatible; " +
			"set twirling.enable_measure=false or execution.meas_type='classified'",
	},
)

// Validate checks option values and their cross-field compatibility.
func (o *Options) Validate() error {
	if err := validation.Struct(o); err != nil {
		return err
	}
	return optionRules.Check(o)
}

// UnmarshalJSON decodes on top of DefaultOptions and validates the result.
func (o *Options) UnmarshalJSON(b []byte) error {
	type plain Options
	p := plain(DefaultOptions())
	if err := validation.Decode(b, &p); err != nil {
		return err
	}
	out := Options(p)
	if out.Experimental == nil {
		out.Experimental = map[string]any{}
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*o = out
	return nil
}
