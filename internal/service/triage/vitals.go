package triage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jwalitptl/triage-gateway/internal/model"
	apperrors "github.com/jwalitptl/triage-gateway/pkg/errors"
)

// numericBounds declares the accepted range per form field.
var numericBounds = map[string][2]float64{
	"age":               {0, 120},
	"heart_rate":        {0, 300},
	"systolic_bp":       {0, 300},
	"diastolic_bp":      {0, 200},
	"temperature":       {30, 45},
	"oxygen_saturation": {0, 100},
	"respiratory_rate":  {0, 100},
	"gcs":               {3, 15},
	"pain_score":        {0, 10},
}

var requiredFields = []string{
	"age", "sex", "heart_rate", "systolic_bp", "diastolic_bp",
	"temperature", "oxygen_saturation", "respiratory_rate",
	"gcs", "pain_score", "hours_since_onset",
}

// ParseVitalsForm coerces raw string-typed form input into a canonical
// vitals record. Any missing required field or failed coercion rejects
// the submission with a validation error naming the field; the form
// stays editable on the client.
func ParseVitalsForm(form map[string]string) (*model.Vitals, error) {
	var missing []string
	for _, field := range requiredFields {
		if strings.TrimSpace(form[field]) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.Validation(
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")), nil)
	}

	sex := model.Sex(strings.ToUpper(strings.TrimSpace(form["sex"])))
	if sex != model.SexMale && sex != model.SexFemale {
		return nil, apperrors.Validation("sex must be M or F", nil)
	}

	age, err := parseIntField(form, "age")
	if err != nil {
		return nil, err
	}
	gcs, err := parseIntField(form, "gcs")
	if err != nil {
		return nil, err
	}
	pain, err := parseIntField(form, "pain_score")
	if err != nil {
		return nil, err
	}

	heartRate, err := parseFloatField(form, "heart_rate")
	if err != nil {
		return nil, err
	}
	systolic, err := parseFloatField(form, "systolic_bp")
	if err != nil {
		return nil, err
	}
	diastolic, err := parseFloatField(form, "diastolic_bp")
	if err != nil {
		return nil, err
	}
	temperature, err := parseFloatField(form, "temperature")
	if err != nil {
		return nil, err
	}
	saturation, err := parseFloatField(form, "oxygen_saturation")
	if err != nil {
		return nil, err
	}
	respiratory, err := parseFloatField(form, "respiratory_rate")
	if err != nil {
		return nil, err
	}

	onset, err := strconv.ParseFloat(strings.TrimSpace(form["hours_since_onset"]), 64)
	if err != nil {
		return nil, apperrors.Validation("hours_since_onset must be a number", err)
	}
	if onset < 0 {
		return nil, apperrors.Validation("hours_since_onset must not be negative", nil)
	}

	return &model.Vitals{
		Age:             age,
		Sex:             sex,
		HeartRate:       heartRate,
		SystolicBP:      systolic,
		DiastolicBP:     diastolic,
		Temperature:     temperature,
		OxygenSat:       saturation,
		RespiratoryRate: respiratory,
		GCS:             gcs,
		PainScore:       pain,
		HoursSinceOnset: onset,
		CaseTemplate:    strings.TrimSpace(form["case_template"]),
	}, nil
}

func parseFloatField(form map[string]string, field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(form[field]), 64)
	if err != nil {
		return 0, apperrors.Validation(fmt.Sprintf("%s must be a number", field), err)
	}
	return v, checkBounds(field, v)
}

func parseIntField(form map[string]string, field string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(form[field]))
	if err != nil {
		return 0, apperrors.Validation(fmt.Sprintf("%s must be an integer", field), err)
	}
	return v, checkBounds(field, float64(v))
}

func checkBounds(field string, v float64) error {
	bounds, ok := numericBounds[field]
	if !ok {
		return nil
	}
	if v < bounds[0] || v > bounds[1] {
		return apperrors.Validation(
			fmt.Sprintf("%s must be between %g and %g", field, bounds[0], bounds[1]), nil)
	}
	return nil
}
