package v01

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// AutoInt is a positive integer or "auto". The zero value is auto.
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

// Validate requires explicit values to be at least 1.
func (a AutoInt) Validate() error {
	if a.Set && a.Value < 1 {
		return validation.Errorf(validation.ErrInvalidField, "", "input should be greater than or equal to 1, got %d", a.Value)
	}
	return nil
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
	var out AutoInt
	if err := decodeAuto(b, &out.Value, &out.Set); err != nil {
		return err
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*a = out
	return nil
}

// AutoFloat is a non-negative float or "auto". The zero value is auto.
type AutoFloat struct {
	Value float64
	Set   bool
}

// Float returns an explicit AutoFloat.
func Float(v float64) AutoFloat { return AutoFloat{Value: v, Set: true} }

// MarshalJSON implements json.Marshaler.
func (a AutoFloat) MarshalJSON() ([]byte, error) {
	if !a.Set {
		return []byte(`"auto"`), nil
	}
	return json.Marshal(a.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *AutoFloat) UnmarshalJSON(b []byte) error {
	var out AutoFloat
	if err := decodeAuto(b, &out.Value, &out.Set); err != nil {
		return err
	}
	if out.Set && out.Value < 0 {
		return validation.Errorf(validation.ErrInvalidField, "", "input should be greater than or equal to 0, got %v", out.Value)
	}
	*a = out
	return nil
}

func decodeAuto(b []byte, dst any, set *bool) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil || s != "auto" {
			return validation.Errorf(validation.ErrInvalidField, "", `input should be a number or "auto", got %s`, b)
		}
		*set = false
		return nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return validation.Errorf(validation.ErrInvalidField, "", `input should be a number or "auto", got %s`, b)
	}
	*set = true
	return nil
}

// ExecutionOptions are execution-time options.
type ExecutionOptions struct {
	InitQubits bool `json:"init_qubits"`
	// RepDelay is in seconds; nil uses the backend default.
	RepDelay *float64 `json:"rep_delay"`
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
	Strategy              string  `json:"strategy" validate:"oneof=active active-accum active-circuit all"`
}

// MeasureNoiseLearningOptions configure readout noise learning.
type MeasureNoiseLearningOptions struct {
	NumRandomizations     int     `json:"num_randomizations" validate:"min=1"`
	ShotsPerRandomization AutoInt `json:"shots_per_randomization"`
}

// LayerNoiseLearningOptions configure learning of the noise of entangling
// layers.
type LayerNoiseLearningOptions struct {
	// MaxLayersToLearn is nil for no limit.
	MaxLayersToLearn      *int  `json:"max_layers_to_learn" validate:"omitempty,min=0"`
	ShotsPerRandomization int   `json:"shots_per_randomization" validate:"min=1"`
	NumRandomizations     int   `json:"num_randomizations" validate:"min=1"`
	LayerPairDepths       []int `json:"layer_pair_depths"`
}

// Extrapolators lists the ZNE extrapolators. On the wire it is one name or
// a list of names.
type Extrapolators struct {
	Names  []string
	Single bool
}

// MarshalJSON implements json.Marshaler.
func (e Extrapolators) MarshalJSON() ([]byte, error) {
	if e.Single && len(e.Names) == 1 {
		return json.Marshal(e.Names[0])
	}
	if e.Names == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e.Names)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Extrapolators) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*e = Extrapolators{Names: []string{one}, Single: true}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return validation.Errorf(validation.ErrInvalidField, "", "input should be an extrapolator name or a list of them")
	}
	*e = Extrapolators{Names: many}
	return nil
}

// requiredNoiseFactors is the number of noise factors each extrapolator
// needs.
var requiredNoiseFactors = map[string]int{
	"linear":              2,
	"exponential":         2,
	"double_exponential":  4,
	"fallback":            1,
	"polynomial_degree_1": 2,
	"polynomial_degree_2": 3,
	"polynomial_degree_3": 4,
	"polynomial_degree_4": 5,
	"polynomial_degree_5": 6,
	"polynomial_degree_6": 7,
	"polynomial_degree_7": 8,
}

// ZneOptions configure zero-noise extrapolation.
type ZneOptions struct {
	Amplifier string `json:"amplifier" validate:"oneof=gate_folding gate_folding_front gate_folding_back pea"`
	// NoiseFactors defaults by amplifier: (1, 1.5, 2, 2.5, 3) for pea and
	// (1, 3, 5) otherwise.
	NoiseFactors []float64    `json:"noise_factors" validate:"dive,gte=1"`
	Extrapolator Extrapolators `json:"extrapolator"`
	// ExtrapolatedNoiseFactors defaults to 0 followed by NoiseFactors.
	ExtrapolatedNoiseFactors []float64 `json:"extrapolated_noise_factors"`
}

// normalize fills the defaults that depend on other fields and checks
// that every extrapolator has enough noise factors.
func (z *ZneOptions) normalize() error {
	if z.NoiseFactors == nil {
		if z.Amplifier == "pea" {
			z.NoiseFactors = []float64{1, 1.5, 2, 2.5, 3}
		} else {
			z.NoiseFactors = []float64{1, 3, 5}
		}
	}
	if len(z.ExtrapolatedNoiseFactors) == 0 {
		z.ExtrapolatedNoiseFactors = append([]float64{0}, z.NoiseFactors...)
	}
	for i, name := range z.Extrapolator.Names {
		need, ok := requiredNoiseFactors[name]
		if !ok {
			field := "extrapolator"
			if !z.Extrapolator.Single {
				field += "." + strconv.Itoa(i)
			}
			return validation.Errorf(validation.ErrInvalidField, field, "unknown extrapolator %q", name)
		}
		if len(z.NoiseFactors) < need {
			return validation.Errorf(validation.ErrInvalidField, "noise_factors",
				"%s requires at least %d noise_factors", name, need)
		}
	}
	return nil
}

// PecOptions configure probabilistic error cancellation.
type PecOptions struct {
	// MaxOverhead is nil for no limit.
	MaxOverhead *float64  `json:"max_overhead" validate:"omitempty,gt=0"`
	NoiseGain   AutoFloat `json:"noise_gain"`
}

// ResilienceOptions select and tune error mitigation.
type ResilienceOptions struct {
	MeasureMitigation    bool                        `json:"measure_mitigation"`
	MeasureNoiseLearning MeasureNoiseLearningOptions `json:"measure_noise_learning"`
	ZneMitigation        bool                        `json:"zne_mitigation"`
	Zne                  ZneOptions                  `json:"zne"`
	PecMitigation        bool                        `json:"pec_mitigation"`
	Pec                  PecOptions                  `json:"pec"`
	LayerNoiseLearning   LayerNoiseLearningOptions   `json:"layer_noise_learning"`
	// LayerNoiseModel must be null in this version.
	LayerNoiseModel json.RawMessage `json:"layer_noise_model"`
}

// NoiseModel is a simulator noise model as the runtime encoder writes it.
// An empty Type stands for "NoiseModel".
type NoiseModel struct {
	Type  string         `json:"__type__" validate:"omitempty,eq=NoiseModel"`
	Value map[string]any `json:"__value__" validate:"required"`
}

// SimulatorOptions configure local and cloud simulators.
type SimulatorOptions struct {
	NoiseModel    *NoiseModel `json:"noise_model"`
	SeedSimulator *int        `json:"seed_simulator"`
	// CouplingMap lists directed two-qubit interactions.
	CouplingMap [][]int  `json:"coupling_map" validate:"omitempty,dive,len=2"`
	BasisGates  []string `json:"basis_gates"`
}

// Options are the Estimator runtime options.
type Options struct {
	DefaultPrecision    float64                    `json:"default_precision" validate:"gte=0"`
	DefaultShots        *int                       `json:"default_shots" validate:"omitempty,min=1"`
	SeedEstimator       *int                       `json:"seed_estimator" validate:"omitempty,min=0"`
	DynamicalDecoupling DynamicalDecouplingOptions `json:"dynamical_decoupling"`
	Resilience          ResilienceOptions          `json:"resilience"`
	Execution           ExecutionOptions           `json:"execution"`
	Twirling            TwirlingOptions            `json:"twirling"`
	Simulator           SimulatorOptions           `json:"simulator"`
	// Experimental values must be JSON-serializable.
	Experimental map[string]any `json:"experimental"`
}

// DefaultOptions returns Options with every static default filled in.
// Defaults that depend on other options are filled when options are
// decoded.
func DefaultOptions() Options {
	maxLayers := 4
	maxOverhead := 100.0
	return Options{
		DefaultPrecision: 0.015625,
		DynamicalDecoupling: DynamicalDecouplingOptions{
			SequenceType:           "XX",
			ExtraSlackDistribution: "middle",
			SchedulingMethod:       "alap",
		},
		Resilience: ResilienceOptions{
			MeasureMitigation:    true,
			MeasureNoiseLearning: MeasureNoiseLearningOptions{NumRandomizations: 32},
			Zne: ZneOptions{
				Amplifier:    "gate_folding",
				Extrapolator: Extrapolators{Names: []string{"exponential", "linear"}},
			},
			Pec: PecOptions{MaxOverhead: &maxOverhead},
			LayerNoiseLearning: LayerNoiseLearningOptions{
				MaxLayersToLearn:      &maxLayers,
				ShotsPerRandomization: 128,
				NumRandomizations:     32,
				LayerPairDepths:       []int{0, 1, 2, 4, 16, 32},
			},
		},
		Execution: ExecutionOptions{InitQubits: true},
		Twirling: TwirlingOptions{
			EnableMeasure: true,
			Strategy:      "active-accum",
		},
		Experimental: map[string]any{},
	}
}

var optionRules = validation.MustRuleSet("options",
	validation.Rule{
		Field: "resilience",
		Expr:  `!(options.resilience.pec_mitigation && options.resilience.zne_mitigation)`,
		Message: "'pec_mitigation' and 'zne_mitigation' options cannot be simultaneously enabled; " +
			"set one of them to false",
	},
)

// Validate checks option values and their cross-field compatibility.
func (o *Options) Validate() error {
	if err := validation.Struct(o); err != nil {
		return err
	}
	if len(o.Resilience.LayerNoiseModel) > 0 && !validation.IsNull(o.Resilience.LayerNoiseModel) {
		return validation.Errorf(validation.ErrInvalidField, "resilience.layer_noise_model", "input should be None")
	}
	if err := validation.At("resilience.zne", o.Resilience.Zne.normalize()); err != nil {
		return err
	}
	return optionRules.Check(o)
}

// UnmarshalJSON decodes on top of DefaultOptions, rejecting unknown members,
// and validates the result.
func (o *Options) UnmarshalJSON(b []byte) error {
	type plain Options
	p := plain(DefaultOptions())
	if err := validation.DecodeStrict(b, &p); err != nil {
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
