package engine

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Thresholds holds every empirically tuned constant in the engine. The
// defaults reflect observed supplier files; deployments can override them
// from a YAML file without rebuilding.
type Thresholds struct {
	// Header location.
	HeaderScanRows int `yaml:"header_scan_rows" mapstructure:"header_scan_rows"`

	// Statistical sampling.
	SampleRows int `yaml:"sample_rows" mapstructure:"sample_rows"`

	// Identifier column selection.
	IdentifierStrongRatio float64 `yaml:"identifier_strong_ratio" mapstructure:"identifier_strong_ratio"`
	IdentifierMinHits     int     `yaml:"identifier_min_hits" mapstructure:"identifier_min_hits"`
	IdentifierWeakRatio   float64 `yaml:"identifier_weak_ratio" mapstructure:"identifier_weak_ratio"`

	// Small-integer band counted during sampling (case-pack shaped values).
	SmallIntMin float64 `yaml:"small_int_min" mapstructure:"small_int_min"`
	SmallIntMax float64 `yaml:"small_int_max" mapstructure:"small_int_max"`

	// Case-pack column selection.
	CasePackMinSamples int     `yaml:"case_pack_min_samples" mapstructure:"case_pack_min_samples"`
	CasePackMinRatio   float64 `yaml:"case_pack_min_ratio" mapstructure:"case_pack_min_ratio"`
	CasePackMeanMin    float64 `yaml:"case_pack_mean_min" mapstructure:"case_pack_mean_min"`
	CasePackMeanMax    float64 `yaml:"case_pack_mean_max" mapstructure:"case_pack_mean_max"`

	// Cost column scoring.
	CostMinNumericRatio  float64 `yaml:"cost_min_numeric_ratio" mapstructure:"cost_min_numeric_ratio"`
	CostNumericWeight    float64 `yaml:"cost_numeric_weight" mapstructure:"cost_numeric_weight"`
	CostMagnitudeDivisor float64 `yaml:"cost_magnitude_divisor" mapstructure:"cost_magnitude_divisor"`
	CostMagnitudeCap     float64 `yaml:"cost_magnitude_cap" mapstructure:"cost_magnitude_cap"`
	CostSmallIntPenalty  float64 `yaml:"cost_small_int_penalty" mapstructure:"cost_small_int_penalty"`
	CostCasePackPenalty  float64 `yaml:"cost_case_pack_penalty" mapstructure:"cost_case_pack_penalty"`

	// Product-name column selection.
	NameMinSamples      int     `yaml:"name_min_samples" mapstructure:"name_min_samples"`
	NameMinAlphaRatio   float64 `yaml:"name_min_alpha_ratio" mapstructure:"name_min_alpha_ratio"`
	NameMaxNumericRatio float64 `yaml:"name_max_numeric_ratio" mapstructure:"name_max_numeric_ratio"`
}

// DefaultThresholds returns the tuned production defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HeaderScanRows: 30,
		SampleRows:     400,

		IdentifierStrongRatio: 0.15,
		IdentifierMinHits:     3,
		IdentifierWeakRatio:   0.05,

		SmallIntMin: 2,
		SmallIntMax: 500,

		CasePackMinSamples: 4,
		CasePackMinRatio:   0.8,
		CasePackMeanMin:    2,
		CasePackMeanMax:    200,

		CostMinNumericRatio:  0.35,
		CostNumericWeight:    4,
		CostMagnitudeDivisor: 100,
		CostMagnitudeCap:     0.75,
		CostSmallIntPenalty:  1.5,
		CostCasePackPenalty:  2,

		NameMinSamples:      3,
		NameMinAlphaRatio:   0.5,
		NameMaxNumericRatio: 0.5,
	}
}

// Validate checks that a Thresholds is internally consistent.
func (t Thresholds) Validate() error {
	var errs []string

	if t.HeaderScanRows < 1 {
		errs = append(errs, "header_scan_rows must be >= 1")
	}
	if t.SampleRows < 1 {
		errs = append(errs, "sample_rows must be >= 1")
	}
	for name, r := range map[string]float64{
		"identifier_strong_ratio": t.IdentifierStrongRatio,
		"identifier_weak_ratio":   t.IdentifierWeakRatio,
		"case_pack_min_ratio":     t.CasePackMinRatio,
		"cost_min_numeric_ratio":  t.CostMinNumericRatio,
		"name_min_alpha_ratio":    t.NameMinAlphaRatio,
		"name_max_numeric_ratio":  t.NameMaxNumericRatio,
	} {
		if r < 0 || r > 1 {
			errs = append(errs, fmt.Sprintf("%s must be between 0 and 1", name))
		}
	}
	if t.IdentifierWeakRatio > t.IdentifierStrongRatio {
		errs = append(errs, "identifier_weak_ratio must be <= identifier_strong_ratio")
	}
	if t.SmallIntMin < 0 || t.SmallIntMax < t.SmallIntMin {
		errs = append(errs, "small_int_max must be >= small_int_min >= 0")
	}
	if t.CasePackMeanMax < t.CasePackMeanMin {
		errs = append(errs, "case_pack_mean_max must be >= case_pack_mean_min")
	}
	if t.CasePackMinSamples < 1 {
		errs = append(errs, "case_pack_min_samples must be >= 1")
	}
	if t.CostMagnitudeDivisor <= 0 {
		errs = append(errs, "cost_magnitude_divisor must be > 0")
	}
	if t.NameMinSamples < 1 {
		errs = append(errs, "name_min_samples must be >= 1")
	}

	if len(errs) > 0 {
		return eris.Errorf("engine: threshold validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// LoadThresholds reads threshold overrides from a YAML file, layered on top
// of the defaults. Keys absent from the file keep their default values.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()

	data, err := os.ReadFile(path)
	if err != nil {
		return t, eris.Wrapf(err, "engine: read thresholds %s", path)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, eris.Wrap(err, "engine: parse thresholds")
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}
