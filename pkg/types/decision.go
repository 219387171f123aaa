package types

// DecisionResult is the sealed output of one decision call. It is built
// incrementally during computation, then frozen; callers must treat it as
// read-only. Reasons is non-empty whenever Pass is false, and carries
// informational entries on success so the audit trail is never empty.
type DecisionResult struct {
	Pass                   bool    `json:"pass"`
	TargetTempC            float64 `json:"target_temp_C"`
	ConservativeThresholdC float64 `json:"conservative_threshold_C"`
	ActualHoldTimeS        float64 `json:"actual_hold_time_s"`
	RequiredHoldTimeS      float64 `json:"required_hold_time_s"`
	MaxTempC               float64 `json:"max_temp_C"`
	MinTempC               float64 `json:"min_temp_C"`

	// TimeToThresholdS is the elapsed time from series start to the first
	// fused sample at/above the conservative threshold. Nil when the
	// threshold was never reached.
	TimeToThresholdS *float64 `json:"time_to_threshold_s,omitempty"`

	// MaxRampRateCPerMin is the steepest observed per-step heating rate.
	// Nil when fewer than two usable samples exist.
	MaxRampRateCPerMin *float64 `json:"max_ramp_rate_C_per_min,omitempty"`

	Reasons  []string `json:"reasons"`
	Warnings []string `json:"warnings"`
}
