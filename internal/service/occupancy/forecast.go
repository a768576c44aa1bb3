package occupancy

import "github.com/jwalitptl/triage-gateway/internal/model"

// ForecastHorizon is the number of points in a shaped forecast series:
// now, +1h, +2h, +3h.
const ForecastHorizon = 4

// ShapeForecast builds the ordered forecast series for one department.
// Offset 0 is always the current occupancy; a missing projection at any
// later offset substitutes the current value. Pure data shaping, the
// source payload is not mutated.
func ShapeForecast(current int, f *model.DeptForecast) []model.ForecastPoint {
	points := make([]model.ForecastPoint, ForecastHorizon)
	points[0] = model.ForecastPoint{OffsetHours: 0, ProjectedCount: current}

	projections := []*int{nil, nil, nil}
	if f != nil {
		projections = []*int{f.Hour1, f.Hour2, f.Hour3}
	}

	for i, p := range projections {
		count := current
		if p != nil {
			count = *p
		}
		points[i+1] = model.ForecastPoint{OffsetHours: i + 1, ProjectedCount: count}
	}
	return points
}
