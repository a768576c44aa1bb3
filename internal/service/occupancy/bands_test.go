package occupancy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/triage-gateway/internal/model"
)

func TestClassifyBand(t *testing.T) {
	tests := []struct {
		percentage float64
		want       model.Band
	}{
		{0, model.BandLow},
		{39.9, model.BandLow},
		{40, model.BandMedium},
		{59.9, model.BandMedium},
		{60, model.BandHigh},
		{79.9, model.BandHigh},
		{80, model.BandCritical},
		{100, model.BandCritical},
		{112.5, model.BandCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyBand(tt.percentage), "percentage %v", tt.percentage)
	}
}

func TestNormalizeRecomputesDerivedFields(t *testing.T) {
	now := time.Now()
	snap := Normalize(&model.OccupancySnapshot{
		Timestamp: now,
		Departments: map[string]model.DepartmentOccupancy{
			// Derived fields arrive wrong on purpose; the recomputed
			// values must win.
			"SOR":         {Current: 45, Capacity: 50, Percentage: 1, Band: model.BandLow},
			"Kardiologia": {Current: 5, Capacity: 20},
			"Interna":     {Current: 25, Capacity: 20},
		},
	})

	require.NotNil(t, snap)
	assert.Equal(t, now, snap.Timestamp)

	sor := snap.Departments["SOR"]
	assert.Equal(t, "SOR", sor.Name)
	assert.Equal(t, 90.0, sor.Percentage)
	assert.Equal(t, model.BandCritical, sor.Band)
	assert.Equal(t, 5, sor.AvailableBeds)

	kard := snap.Departments["Kardiologia"]
	assert.Equal(t, 25.0, kard.Percentage)
	assert.Equal(t, model.BandLow, kard.Band)
	assert.Equal(t, 15, kard.AvailableBeds)

	// Over capacity clamps available beds at zero.
	interna := snap.Departments["Interna"]
	assert.Equal(t, 125.0, interna.Percentage)
	assert.Equal(t, model.BandCritical, interna.Band)
	assert.Equal(t, 0, interna.AvailableBeds)

	assert.Equal(t, 75, snap.TotalOccupancy)
	assert.Equal(t, 90, snap.TotalCapacity)
	assert.Equal(t, 83.3, snap.OverallPercentage)
}

func TestNormalizeZeroCapacity(t *testing.T) {
	snap := Normalize(&model.OccupancySnapshot{
		Departments: map[string]model.DepartmentOccupancy{
			"Pediatria": {Current: 3, Capacity: 0},
		},
	})

	require.NotNil(t, snap)
	dept := snap.Departments["Pediatria"]
	assert.Equal(t, 0.0, dept.Percentage)
	assert.Equal(t, model.BandLow, dept.Band)
	assert.Equal(t, 0, dept.AvailableBeds)
}

func TestNormalizeNil(t *testing.T) {
	assert.Nil(t, Normalize(nil))
}
