package procspec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigurationError marks an invalid spec shape or a cross-field invariant
// violation. It is raised at construction time only; a ProcessSpec that
// survives Parse never fails configuration checks at decision time.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return "configuration: " + e.Msg }

func configf(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// IsConfiguration reports whether err is (or wraps) a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// Default values applied before validation.
const (
	DefaultDuplicatePolicy = DupKeepFirst
	DefaultMinInBandPct    = 95.0
)

var jobIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,100}$`)

// ProcessSpec is the full declarative configuration for one decision call.
// Unknown fields in the serialized form are rejected.
type ProcessSpec struct {
	Job              Job              `json:"job" yaml:"job"`
	Spec             Process          `json:"spec" yaml:"spec"`
	DataRequirements DataRequirements `json:"data_requirements" yaml:"data_requirements"`
	SensorSelection  *SensorSelection `json:"sensor_selection,omitempty" yaml:"sensor_selection,omitempty"`
	Logic            *Logic           `json:"logic,omitempty" yaml:"logic,omitempty"`
	Preconditions    *Preconditions   `json:"preconditions,omitempty" yaml:"preconditions,omitempty"`
	Environment      *Environment     `json:"environment,omitempty" yaml:"environment,omitempty"`
	Industry         Industry         `json:"industry,omitempty" yaml:"industry,omitempty"`
}

// Job identifies the process run being certified.
type Job struct {
	JobID string `json:"job_id" yaml:"job_id"`
}

// Process holds the thermal targets of the run.
type Process struct {
	// Method is a free-form label for the process ("cure", "sterilize", ...).
	Method string `json:"method" yaml:"method"`

	TargetTempC        float64 `json:"target_temp_C" yaml:"target_temp_C"`
	HoldTimeS          float64 `json:"hold_time_s" yaml:"hold_time_s"`
	SensorUncertaintyC float64 `json:"sensor_uncertainty_C" yaml:"sensor_uncertainty_C"`

	// HysteresisC is the margin below the conservative threshold a reading
	// must cross before the engine treats the process as having left the
	// above-threshold state. Zero disables the band.
	HysteresisC float64 `json:"hysteresis_C,omitempty" yaml:"hysteresis_C,omitempty"`

	// Band is the storage temperature window used by the cold-chain policy.
	Band *Band `json:"band,omitempty" yaml:"band,omitempty"`
}

// Band is an inclusive temperature window plus the fraction of samples that
// must fall inside it.
type Band struct {
	MinC         float64  `json:"min_C" yaml:"min_C"`
	MaxC         float64  `json:"max_C" yaml:"max_C"`
	MinInBandPct *float64 `json:"min_in_band_pct,omitempty" yaml:"min_in_band_pct,omitempty"`
}

// EffectiveMinInBandPct returns the configured in-band percentage, or the
// default of 95.
func (b *Band) EffectiveMinInBandPct() float64 {
	if b.MinInBandPct != nil {
		return *b.MinInBandPct
	}
	return DefaultMinInBandPct
}

// DataRequirements bounds the acceptable sampling quality of the input.
type DataRequirements struct {
	// MaxSamplePeriodS is the declared nominal cadence ceiling. Sparser
	// sampling is a warning; too few rows to infer the hold time at this
	// cadence is a hard error.
	MaxSamplePeriodS float64 `json:"max_sample_period_s" yaml:"max_sample_period_s"`

	// AllowedGapsS is the widest tolerable silence between consecutive
	// samples. Wider gaps are recorded; their materiality depends on where
	// they fall.
	AllowedGapsS float64 `json:"allowed_gaps_s" yaml:"allowed_gaps_s"`

	// DuplicatePolicy resolves duplicate timestamps. Default keep_first.
	DuplicatePolicy DuplicatePolicy `json:"duplicate_policy,omitempty" yaml:"duplicate_policy,omitempty"`
}

// SensorSelection declares which channels feed fusion and how.
type SensorSelection struct {
	Mode           FusionMode `json:"mode" yaml:"mode"`
	Sensors        []string   `json:"sensors,omitempty" yaml:"sensors,omitempty"`
	RequireAtLeast int        `json:"require_at_least,omitempty" yaml:"require_at_least,omitempty"`
}

// Logic selects continuous vs. cumulative hold accounting.
type Logic struct {
	Continuous    bool    `json:"continuous" yaml:"continuous"`
	MaxTotalDipsS float64 `json:"max_total_dips_s,omitempty" yaml:"max_total_dips_s,omitempty"`
}

// Preconditions are soft business checks evaluated against the measured
// series; violations contribute FAIL reasons but never abort the call.
type Preconditions struct {
	MaxRampRateCPerMin  *float64 `json:"max_ramp_rate_C_per_min,omitempty" yaml:"max_ramp_rate_C_per_min,omitempty"`
	MaxTimeToThresholdS *float64 `json:"max_time_to_threshold_s,omitempty" yaml:"max_time_to_threshold_s,omitempty"`
	MinPreheatTempC     *float64 `json:"min_preheat_temp_C,omitempty" yaml:"min_preheat_temp_C,omitempty"`
}

// Environment holds the humidity/gas windows consumed by the
// EtO-sterilization policy.
type Environment struct {
	HumidityMinPct *float64 `json:"humidity_min_pct,omitempty" yaml:"humidity_min_pct,omitempty"`
	HumidityMaxPct *float64 `json:"humidity_max_pct,omitempty" yaml:"humidity_max_pct,omitempty"`
	GasMinMgL      *float64 `json:"gas_min_mg_l,omitempty" yaml:"gas_min_mg_l,omitempty"`
}

// ConservativeThresholdC is the actual pass/fail comparison point:
// target temperature plus sensor uncertainty, always.
func (s *ProcessSpec) ConservativeThresholdC() float64 {
	return s.Spec.TargetTempC + s.Spec.SensorUncertaintyC
}

// Continuous reports whether hold accounting is continuous (single
// uninterrupted run). Absent logic defaults to continuous.
func (s *ProcessSpec) Continuous() bool {
	return s.Logic == nil || s.Logic.Continuous
}

// MaxTotalDipsS returns the cumulative-mode dip budget, zero when unset.
func (s *ProcessSpec) MaxTotalDipsS() float64 {
	if s.Logic == nil {
		return 0
	}
	return s.Logic.MaxTotalDipsS
}

// FusionMode returns the declared fusion strategy, defaulting to min_of_set.
func (s *ProcessSpec) FusionMode() FusionMode {
	if s.SensorSelection == nil || s.SensorSelection.Mode == "" {
		return FusionMinOfSet
	}
	return s.SensorSelection.Mode
}

// Parse decodes a JSON-serialized ProcessSpec, rejecting unknown fields, and
// validates it. This is the only way a ProcessSpec should come into
// existence from the wire.
func Parse(data []byte) (*ProcessSpec, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	s := &ProcessSpec{}
	if err := dec.Decode(s); err != nil {
		return nil, configf("parse json: %v", err)
	}
	if dec.More() {
		return nil, configf("trailing data after spec document")
	}
	applyDefaults(s)
	if err := validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// ParseYAML decodes a YAML-serialized ProcessSpec with the same strictness
// and validation as Parse.
func ParseYAML(data []byte) (*ProcessSpec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	s := &ProcessSpec{}
	if err := dec.Decode(s); err != nil {
		return nil, configf("parse yaml: %v", err)
	}
	applyDefaults(s)
	if err := validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads and parses the spec file at path. Files ending in .yaml or .yml
// are parsed as YAML; everything else as JSON.
func Load(path string) (*ProcessSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configf("read %q: %v", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// applyDefaults fills optional fields with their documented defaults.
func applyDefaults(s *ProcessSpec) {
	if s.DataRequirements.DuplicatePolicy == "" {
		s.DataRequirements.DuplicatePolicy = DefaultDuplicatePolicy
	}
	if s.Industry == "" {
		s.Industry = IndustryGeneric
	}
	if s.SensorSelection != nil && s.SensorSelection.Mode == "" {
		s.SensorSelection.Mode = FusionMinOfSet
	}
}

// validate checks structural constraints and cross-field invariants.
func validate(s *ProcessSpec) error {
	if !jobIDPattern.MatchString(s.Job.JobID) {
		return configf("job.job_id %q must match [A-Za-z0-9_-]{1,100}", s.Job.JobID)
	}
	if s.Spec.HoldTimeS <= 0 {
		return configf("spec.hold_time_s must be positive, got %g", s.Spec.HoldTimeS)
	}
	if s.Spec.SensorUncertaintyC < 0 {
		return configf("spec.sensor_uncertainty_C must not be negative")
	}
	if s.Spec.HysteresisC < 0 {
		return configf("spec.hysteresis_C must not be negative")
	}
	if b := s.Spec.Band; b != nil {
		if b.MinC > b.MaxC {
			return configf("spec.band: min_C %g exceeds max_C %g", b.MinC, b.MaxC)
		}
		if p := b.EffectiveMinInBandPct(); p <= 0 || p > 100 {
			return configf("spec.band.min_in_band_pct %g out of range (0, 100]", p)
		}
	}
	if s.DataRequirements.MaxSamplePeriodS <= 0 {
		return configf("data_requirements.max_sample_period_s must be positive")
	}
	if s.DataRequirements.AllowedGapsS < 0 {
		return configf("data_requirements.allowed_gaps_s must not be negative")
	}
	if !s.DataRequirements.DuplicatePolicy.known() {
		return configf("data_requirements.duplicate_policy %q unknown: want keep_first|mean|reject",
			s.DataRequirements.DuplicatePolicy)
	}
	if sel := s.SensorSelection; sel != nil {
		if !sel.Mode.known() {
			return configf("sensor_selection.mode %q unknown: want min_of_set|mean_of_set|majority_over_threshold", sel.Mode)
		}
		if sel.RequireAtLeast < 0 {
			return configf("sensor_selection.require_at_least must not be negative")
		}
		if len(sel.Sensors) > 0 && sel.RequireAtLeast > len(sel.Sensors) {
			return configf("sensor_selection.require_at_least %d exceeds named sensor count %d",
				sel.RequireAtLeast, len(sel.Sensors))
		}
		for _, name := range sel.Sensors {
			if strings.TrimSpace(name) == "" {
				return configf("sensor_selection.sensors contains an empty name")
			}
		}
	}
	if s.Logic != nil && s.Logic.MaxTotalDipsS < 0 {
		return configf("logic.max_total_dips_s must not be negative")
	}
	if p := s.Preconditions; p != nil {
		if p.MaxRampRateCPerMin != nil && *p.MaxRampRateCPerMin <= 0 {
			return configf("preconditions.max_ramp_rate_C_per_min must be positive")
		}
		if p.MaxTimeToThresholdS != nil && *p.MaxTimeToThresholdS <= 0 {
			return configf("preconditions.max_time_to_threshold_s must be positive")
		}
	}
	if e := s.Environment; e != nil {
		if e.HumidityMinPct != nil && e.HumidityMaxPct != nil && *e.HumidityMinPct > *e.HumidityMaxPct {
			return configf("environment: humidity_min_pct %g exceeds humidity_max_pct %g",
				*e.HumidityMinPct, *e.HumidityMaxPct)
		}
		if e.GasMinMgL != nil && *e.GasMinMgL < 0 {
			return configf("environment.gas_min_mg_l must not be negative")
		}
	}
	if !s.Industry.known() {
		return configf("industry %q unknown: want generic|cold_chain|eto_sterilization|autoclave|heat_treat", s.Industry)
	}
	if s.Industry == IndustryColdChain && s.Spec.Band == nil {
		return configf("industry cold_chain requires spec.band")
	}
	return nil
}
