package procspec

// FusionMode selects how N sensor channels collapse into one signal.
type FusionMode string

const (
	// FusionMinOfSet takes the per-timestamp minimum of valid readings;
	// the most conservative strategy and the default.
	FusionMinOfSet FusionMode = "min_of_set"

	// FusionMeanOfSet takes the per-timestamp arithmetic mean of valid
	// readings.
	FusionMeanOfSet FusionMode = "mean_of_set"

	// FusionMajorityOverThreshold produces a boolean vote per timestamp:
	// true iff enough channels read at/above the threshold.
	FusionMajorityOverThreshold FusionMode = "majority_over_threshold"
)

func (m FusionMode) known() bool {
	switch m {
	case FusionMinOfSet, FusionMeanOfSet, FusionMajorityOverThreshold:
		return true
	}
	return false
}

// DuplicatePolicy selects how duplicate timestamps are resolved during
// ingestion.
type DuplicatePolicy string

const (
	// DupKeepFirst keeps the first sample seen for an instant and drops the
	// rest. The default.
	DupKeepFirst DuplicatePolicy = "keep_first"

	// DupMean averages the valid readings of each channel across duplicates.
	DupMean DuplicatePolicy = "mean"

	// DupReject treats any duplicate instant as a structural data-quality
	// error.
	DupReject DuplicatePolicy = "reject"
)

func (p DuplicatePolicy) known() bool {
	switch p {
	case DupKeepFirst, DupMean, DupReject:
		return true
	}
	return false
}

// Industry names the regulatory/process standard the decision should follow.
// Tags without a registered policy dispatch to the generic algorithm.
type Industry string

const (
	IndustryGeneric          Industry = "generic"
	IndustryColdChain        Industry = "cold_chain"
	IndustryEtOSterilization Industry = "eto_sterilization"
	IndustryAutoclave        Industry = "autoclave"
	IndustryHeatTreat        Industry = "heat_treat"
)

func (i Industry) known() bool {
	switch i {
	case "", IndustryGeneric, IndustryColdChain, IndustryEtOSterilization,
		IndustryAutoclave, IndustryHeatTreat:
		return true
	}
	return false
}

// UsesEnvironmentChannels reports whether the industry's policy consumes
// humidity/pressure/gas columns; ingestion excludes them otherwise.
func (i Industry) UsesEnvironmentChannels() bool {
	return i == IndustryEtOSterilization
}
