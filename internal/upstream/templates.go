package upstream

import (
	"context"
	"net/http"

	"github.com/jwalitptl/triage-gateway/internal/model"
)

// TemplateSource is the external case-template lookup.
type TemplateSource interface {
	List(ctx context.Context, sess *model.Session) ([]model.CaseTemplate, error)
}

type templateSource struct {
	client  *Client
	baseURL string
}

func NewTemplateSource(client *Client, baseURL string) TemplateSource {
	return &templateSource{client: client, baseURL: baseURL}
}

func (s *templateSource) List(ctx context.Context, sess *model.Session) ([]model.CaseTemplate, error) {
	var templates []model.CaseTemplate
	err := s.client.do(ctx, "templates", http.MethodGet, s.baseURL+"/templates", sess, nil, &templates)
	if err != nil {
		return nil, err
	}
	return templates, nil
}
