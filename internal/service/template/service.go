package template

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/triage-gateway/internal/model"
	"github.com/jwalitptl/triage-gateway/internal/upstream"
)

const (
	cacheKey = "case_templates"
	cacheTTL = 5 * time.Minute
)

// fallbackTemplates is the built-in case list used when the lookup
// service is unavailable. The form must never block on templates.
var fallbackTemplates = []model.CaseTemplate{
	{Value: "abdominal_pain_mild", Label: "Abdominal pain (mild)"},
	{Value: "urinary_infection", Label: "Urinary tract infection"},
	{Value: "checkup", Label: "Checkup / follow-up"},
	{Value: "migraine", Label: "Migraine / headache"},
	{Value: "common_cold", Label: "Common cold"},
	{Value: "prescription", Label: "Prescription refill"},
	{Value: "severe_bleeding", Label: "Severe bleeding"},
	{Value: "sprain_minor", Label: "Sprain (minor)"},
	{Value: "stroke_severe", Label: "Stroke (severe)"},
	{Value: "multi_organ_trauma", Label: "Multi-organ trauma"},
	{Value: "asthma_exacerbation", Label: "Asthma exacerbation"},
	{Value: "pneumonia_severe", Label: "Pneumonia (severe)"},
	{Value: "appendicitis", Label: "Appendicitis"},
	{Value: "mi_stemi", Label: "Myocardial infarction (STEMI)"},
	{Value: "fracture_simple", Label: "Fracture (simple)"},
}

// Service serves the case-template selector, caching the upstream
// list briefly and degrading to the built-in fallback on failure.
type Service struct {
	source upstream.TemplateSource
	cache  *cache.Cache
}

func NewService(source upstream.TemplateSource) *Service {
	return &Service{
		source: source,
		cache:  cache.New(cacheTTL, 2*cacheTTL),
	}
}

// List returns the case templates and whether they came from the
// fallback list.
func (s *Service) List(ctx context.Context, sess *model.Session) ([]model.CaseTemplate, bool) {
	if v, ok := s.cache.Get(cacheKey); ok {
		return v.([]model.CaseTemplate), false
	}

	templates, err := s.source.List(ctx, sess)
	if err != nil || len(templates) == 0 {
		if err != nil {
			log.Warn().Err(err).Msg("template lookup failed, serving built-in list")
		}
		return Fallback(), true
	}

	s.cache.Set(cacheKey, templates, cacheTTL)
	return templates, false
}

// Fallback returns a copy of the built-in template list.
func Fallback() []model.CaseTemplate {
	out := make([]model.CaseTemplate, len(fallbackTemplates))
	copy(out, fallbackTemplates)
	return out
}
