package model

import "time"

// Band classifies a department's occupancy percentage.
type Band string

const (
	BandLow      Band = "low"
	BandMedium   Band = "medium"
	BandHigh     Band = "high"
	BandCritical Band = "critical"
)

// DepartmentOccupancy is one department's slice of a snapshot.
type DepartmentOccupancy struct {
	Name          string  `json:"name"`
	Current       int     `json:"current"`
	Capacity      int     `json:"capacity"`
	Percentage    float64 `json:"percentage"`
	Band          Band    `json:"band"`
	AvailableBeds int     `json:"available_beds"`
}

// OccupancySnapshot is the full occupancy picture at one point in
// time. Snapshots are replaced wholesale on each poll, never merged.
type OccupancySnapshot struct {
	Timestamp         time.Time                      `json:"timestamp"`
	Departments       map[string]DepartmentOccupancy `json:"departments"`
	TotalOccupancy    int                            `json:"total_occupancy"`
	TotalCapacity     int                            `json:"total_capacity"`
	OverallPercentage float64                        `json:"overall_percentage"`
}

// ForecastPoint is a projected occupancy count at a forecast offset.
type ForecastPoint struct {
	OffsetHours    int `json:"offset_hours"`
	ProjectedCount int `json:"projected_count"`
}

// DeptForecast carries per-offset projections for one department as
// returned by the forecasting source. Offsets without a projection
// are left nil.
type DeptForecast struct {
	Hour1 *int `json:"hour_1,omitempty"`
	Hour2 *int `json:"hour_2,omitempty"`
	Hour3 *int `json:"hour_3,omitempty"`
}

// ForecastSet maps department name to its forecast payload.
type ForecastSet map[string]DeptForecast

// AlternativeCandidate is a fallback department ranked against the
// assigned one. Recomputed from the current snapshot on every request.
type AlternativeCandidate struct {
	Department string  `json:"department"`
	Current    int     `json:"current"`
	Capacity   int     `json:"capacity"`
	Percentage float64 `json:"percentage"`
	// Score ranks by free capacity only. The platform has no
	// department-suitability model; this is not a clinical confidence.
	Score float64 `json:"score"`
}
