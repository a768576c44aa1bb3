package occupancy

import (
	"math"

	"github.com/jwalitptl/triage-gateway/internal/model"
)

// Band thresholds on occupancy percentage, inclusive at the lower
// bound of each band.
const (
	mediumThreshold   = 40.0
	highThreshold     = 60.0
	criticalThreshold = 80.0
)

// ClassifyBand maps an occupancy percentage onto a severity band.
// Pure function of the percentage.
func ClassifyBand(percentage float64) model.Band {
	switch {
	case percentage >= criticalThreshold:
		return model.BandCritical
	case percentage >= highThreshold:
		return model.BandHigh
	case percentage >= mediumThreshold:
		return model.BandMedium
	default:
		return model.BandLow
	}
}

// Normalize recomputes the derived per-department fields and the
// aggregate totals from the raw counts. The upstream source may or may
// not fill these in; the gateway's classification is authoritative for
// display.
func Normalize(snap *model.OccupancySnapshot) *model.OccupancySnapshot {
	if snap == nil {
		return nil
	}

	out := &model.OccupancySnapshot{
		Timestamp:   snap.Timestamp,
		Departments: make(map[string]model.DepartmentOccupancy, len(snap.Departments)),
	}

	for name, dept := range snap.Departments {
		d := dept
		d.Name = name
		if d.Capacity > 0 {
			d.Percentage = roundPct(float64(d.Current) / float64(d.Capacity) * 100)
		} else {
			d.Percentage = 0
		}
		d.Band = ClassifyBand(d.Percentage)
		d.AvailableBeds = d.Capacity - d.Current
		if d.AvailableBeds < 0 {
			d.AvailableBeds = 0
		}
		out.Departments[name] = d

		out.TotalOccupancy += d.Current
		out.TotalCapacity += d.Capacity
	}

	if out.TotalCapacity > 0 {
		out.OverallPercentage = roundPct(float64(out.TotalOccupancy) / float64(out.TotalCapacity) * 100)
	}
	return out
}

func roundPct(v float64) float64 {
	return math.Round(v*10) / 10
}
