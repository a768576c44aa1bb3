package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jwalitptl/triage-gateway/internal/model"
)

// PatientService is the external patient store.
type PatientService interface {
	Create(ctx context.Context, sess *model.Session, req *model.CreatePatientRequest) (*model.Patient, error)
	Get(ctx context.Context, sess *model.Session, id string) (*model.Patient, error)
}

type patientService struct {
	client  *Client
	baseURL string
}

func NewPatientService(client *Client, baseURL string) PatientService {
	return &patientService{client: client, baseURL: baseURL}
}

func (s *patientService) Create(ctx context.Context, sess *model.Session, req *model.CreatePatientRequest) (*model.Patient, error) {
	var patient model.Patient
	err := s.client.do(ctx, "patients", http.MethodPost, s.baseURL+"/patients", sess, req, &patient)
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

func (s *patientService) Get(ctx context.Context, sess *model.Session, id string) (*model.Patient, error) {
	var patient model.Patient
	url := fmt.Sprintf("%s/patients/%s", s.baseURL, id)
	err := s.client.do(ctx, "patients", http.MethodGet, url, sess, nil, &patient)
	if err != nil {
		return nil, err
	}
	return &patient, nil
}
