package upstream

import (
	"context"
	"net/http"

	"github.com/jwalitptl/triage-gateway/internal/model"
)

// OccupancySource is the external capacity and forecasting source.
type OccupancySource interface {
	Fetch(ctx context.Context, sess *model.Session) (*model.OccupancySnapshot, error)
	Forecast(ctx context.Context, sess *model.Session) (model.ForecastSet, error)
}

type occupancySource struct {
	client  *Client
	baseURL string
}

func NewOccupancySource(client *Client, baseURL string) OccupancySource {
	return &occupancySource{client: client, baseURL: baseURL}
}

func (s *occupancySource) Fetch(ctx context.Context, sess *model.Session) (*model.OccupancySnapshot, error) {
	var snap model.OccupancySnapshot
	err := s.client.do(ctx, "occupancy", http.MethodGet, s.baseURL+"/departments/occupancy", sess, nil, &snap)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *occupancySource) Forecast(ctx context.Context, sess *model.Session) (model.ForecastSet, error) {
	var set model.ForecastSet
	err := s.client.do(ctx, "occupancy", http.MethodGet, s.baseURL+"/departments/forecast", sess, nil, &set)
	if err != nil {
		return nil, err
	}
	return set, nil
}
