package upstream

import (
	"context"
	"net/http"

	"github.com/jwalitptl/triage-gateway/internal/model"
)

// ClassifierService is the external ML classifier. Classify is a dry
// run: nothing is persisted on either side.
type ClassifierService interface {
	Classify(ctx context.Context, sess *model.Session, vitals *model.Vitals) (*model.Prediction, error)
}

type classifierService struct {
	client  *Client
	baseURL string
}

func NewClassifierService(client *Client, baseURL string) ClassifierService {
	return &classifierService{client: client, baseURL: baseURL}
}

func (s *classifierService) Classify(ctx context.Context, sess *model.Session, vitals *model.Vitals) (*model.Prediction, error) {
	var pred model.Prediction
	err := s.client.do(ctx, "classifier", http.MethodPost, s.baseURL+"/triage/preview", sess, vitals, &pred)
	if err != nil {
		return nil, err
	}
	return &pred, nil
}
