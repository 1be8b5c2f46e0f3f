package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The defaults are load-bearing: classification behavior is tuned against
// them, so changing any value must be a deliberate act.
func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()

	assert.Equal(t, 30, th.HeaderScanRows)
	assert.Equal(t, 400, th.SampleRows)

	assert.InDelta(t, 0.15, th.IdentifierStrongRatio, 0.001)
	assert.Equal(t, 3, th.IdentifierMinHits)
	assert.InDelta(t, 0.05, th.IdentifierWeakRatio, 0.001)

	assert.InDelta(t, 2, th.SmallIntMin, 0.001)
	assert.InDelta(t, 500, th.SmallIntMax, 0.001)

	assert.Equal(t, 4, th.CasePackMinSamples)
	assert.InDelta(t, 0.8, th.CasePackMinRatio, 0.001)
	assert.InDelta(t, 2, th.CasePackMeanMin, 0.001)
	assert.InDelta(t, 200, th.CasePackMeanMax, 0.001)

	assert.InDelta(t, 0.35, th.CostMinNumericRatio, 0.001)
	assert.InDelta(t, 4, th.CostNumericWeight, 0.001)
	assert.InDelta(t, 100, th.CostMagnitudeDivisor, 0.001)
	assert.InDelta(t, 0.75, th.CostMagnitudeCap, 0.001)
	assert.InDelta(t, 1.5, th.CostSmallIntPenalty, 0.001)
	assert.InDelta(t, 2, th.CostCasePackPenalty, 0.001)

	assert.Equal(t, 3, th.NameMinSamples)
	assert.InDelta(t, 0.5, th.NameMinAlphaRatio, 0.001)
	assert.InDelta(t, 0.5, th.NameMaxNumericRatio, 0.001)

	assert.NoError(t, th.Validate())
}

func TestThresholdsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Thresholds)
		valid  bool
	}{
		{"defaults", func(*Thresholds) {}, true},
		{"zero scan rows", func(t *Thresholds) { t.HeaderScanRows = 0 }, false},
		{"zero sample rows", func(t *Thresholds) { t.SampleRows = 0 }, false},
		{"ratio above one", func(t *Thresholds) { t.CasePackMinRatio = 1.5 }, false},
		{"negative ratio", func(t *Thresholds) { t.NameMinAlphaRatio = -0.1 }, false},
		{"weak above strong", func(t *Thresholds) {
			t.IdentifierWeakRatio = 0.5
			t.IdentifierStrongRatio = 0.2
		}, false},
		{"inverted small int band", func(t *Thresholds) {
			t.SmallIntMin = 10
			t.SmallIntMax = 5
		}, false},
		{"inverted mean band", func(t *Thresholds) {
			t.CasePackMeanMin = 50
			t.CasePackMeanMax = 10
		}, false},
		{"zero magnitude divisor", func(t *Thresholds) { t.CostMagnitudeDivisor = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultThresholds()
			tt.mutate(&th)
			err := th.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoadThresholdsOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thresholds.yaml")

	yaml := `
sample_rows: 100
small_int_max: 200
identifier_min_hits: 5
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	th, err := LoadThresholds(path)
	require.NoError(t, err)

	assert.Equal(t, 100, th.SampleRows)
	assert.InDelta(t, 200, th.SmallIntMax, 0.001)
	assert.Equal(t, 5, th.IdentifierMinHits)

	// Untouched keys keep their defaults.
	assert.Equal(t, 30, th.HeaderScanRows)
	assert.InDelta(t, 0.15, th.IdentifierStrongRatio, 0.001)
}

func TestLoadThresholdsMissingFile(t *testing.T) {
	_, err := LoadThresholds(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadThresholdsRejectsInvalidOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("case_pack_min_ratio: 3.0\n"), 0644))

	_, err := LoadThresholds(path)
	assert.Error(t, err)
}
