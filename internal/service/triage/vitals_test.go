package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/triage-gateway/internal/model"
	apperrors "github.com/jwalitptl/triage-gateway/pkg/errors"
)

func validForm() map[string]string {
	return map[string]string{
		"age":               "54",
		"sex":               "m",
		"heart_rate":        "92.5",
		"systolic_bp":       "135",
		"diastolic_bp":      "85",
		"temperature":       "37.2",
		"oxygen_saturation": "96",
		"respiratory_rate":  "18",
		"gcs":               "15",
		"pain_score":        "4",
		"hours_since_onset": "2.5",
		"case_template":     "  migraine ",
	}
}

func TestParseVitalsFormCoercesValues(t *testing.T) {
	vitals, err := ParseVitalsForm(validForm())
	require.NoError(t, err)

	assert.Equal(t, 54, vitals.Age)
	assert.Equal(t, model.SexMale, vitals.Sex)
	assert.Equal(t, 92.5, vitals.HeartRate)
	assert.Equal(t, 37.2, vitals.Temperature)
	assert.Equal(t, 15, vitals.GCS)
	assert.Equal(t, 2.5, vitals.HoursSinceOnset)
	assert.Equal(t, "migraine", vitals.CaseTemplate)
}

func TestParseVitalsFormMissingFields(t *testing.T) {
	form := validForm()
	delete(form, "gcs")
	form["heart_rate"] = "   "

	_, err := ParseVitalsForm(form)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrValidation, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "heart_rate")
	assert.Contains(t, err.Error(), "gcs")
}

func TestParseVitalsFormCaseTemplateOptional(t *testing.T) {
	form := validForm()
	delete(form, "case_template")

	vitals, err := ParseVitalsForm(form)
	require.NoError(t, err)
	assert.Empty(t, vitals.CaseTemplate)
}

func TestParseVitalsFormRejectsBadSex(t *testing.T) {
	form := validForm()
	form["sex"] = "X"

	_, err := ParseVitalsForm(form)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrValidation, apperrors.CodeOf(err))
}

func TestParseVitalsFormBounds(t *testing.T) {
	tests := []struct {
		field string
		value string
	}{
		{"age", "121"},
		{"age", "-1"},
		{"heart_rate", "301"},
		{"systolic_bp", "310"},
		{"diastolic_bp", "201"},
		{"temperature", "29.9"},
		{"temperature", "45.1"},
		{"oxygen_saturation", "101"},
		{"respiratory_rate", "120"},
		{"gcs", "2"},
		{"gcs", "16"},
		{"pain_score", "11"},
		{"hours_since_onset", "-0.5"},
	}

	for _, tt := range tests {
		form := validForm()
		form[tt.field] = tt.value

		_, err := ParseVitalsForm(form)
		require.Error(t, err, "%s=%s", tt.field, tt.value)
		assert.Equal(t, apperrors.ErrValidation, apperrors.CodeOf(err))
		assert.Contains(t, err.Error(), tt.field)
	}
}

func TestParseVitalsFormRejectsNonNumeric(t *testing.T) {
	form := validForm()
	form["temperature"] = "warm"

	_, err := ParseVitalsForm(form)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temperature")
}
