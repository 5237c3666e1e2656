// Package vitals validates vital-sign measurements against a fixed rule
// table. Both the batch validator and the single-field validator share the
// same constants so the two paths cannot drift.
package vitals

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/upmhealth/patient-records-api/internal/model"
)

// Range bounds a numeric measurement.
type Range struct {
	Min  float64
	Max  float64
	Unit string
}

// Rule table. Not configurable at runtime.
var (
	ranges = map[model.VitalType]Range{
		model.VitalTemperature:     {Min: 95.0, Max: 105.0, Unit: "°F"},
		model.VitalHeartRate:       {Min: 40, Max: 200, Unit: "bpm"},
		model.VitalRespiratoryRate: {Min: 8, Max: 40, Unit: "breaths/min"},
		model.VitalWeight:          {Min: 50, Max: 500, Unit: "lbs"},
		model.VitalHeight:          {Min: 24, Max: 84, Unit: "inches"},
	}

	systolicRange  = Range{Min: 80, Max: 200, Unit: "mmHg"}
	diastolicRange = Range{Min: 50, Max: 120, Unit: "mmHg"}

	validUnits = map[model.VitalType][]string{
		model.VitalTemperature:     {"°F"},
		model.VitalBloodPressure:   {"mmHg"},
		model.VitalHeartRate:       {"bpm"},
		model.VitalRespiratoryRate: {"breaths/min"},
		model.VitalWeight:          {"lbs", "kg"},
		model.VitalHeight:          {"inches", "cm"},
	}

	bloodPressureRe = regexp.MustCompile(`^\d{2,3}/\d{2,3}$`)
)

// Result is the outcome of validating one measurement. On acceptance
// Parsed holds the normalized numeric value, or "systolic/diastolic" for
// blood pressure.
type Result struct {
	Valid  bool
	Errors []string
	Parsed string
}

func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(r.Errors, "; "))
}

// ValidateOne validates a single measurement, suitable for incremental
// form feedback.
func ValidateOne(vt model.VitalType, value, unit string) Result {
	units, ok := validUnits[vt]
	if !ok {
		return Result{Errors: []string{fmt.Sprintf("invalid vital sign type: %s", vt)}}
	}

	var errs []string
	if !contains(units, unit) {
		errs = append(errs, fmt.Sprintf("invalid unit %q for %s, valid units: %s",
			unit, vt, strings.Join(units, ", ")))
	}

	if vt == model.VitalBloodPressure {
		return validateBloodPressure(value, errs)
	}

	num, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		errs = append(errs, fmt.Sprintf("%s value must be a valid number", vt))
		return Result{Errors: errs}
	}

	rng := ranges[vt]
	if num < rng.Min || num > rng.Max {
		errs = append(errs, fmt.Sprintf("%s must be between %g and %g %s",
			vt, rng.Min, rng.Max, rng.Unit))
	}

	if len(errs) > 0 {
		return Result{Errors: errs}
	}
	return Result{Valid: true, Parsed: strconv.FormatFloat(num, 'f', -1, 64)}
}

func validateBloodPressure(value string, errs []string) Result {
	trimmed := strings.TrimSpace(value)
	if !bloodPressureRe.MatchString(trimmed) {
		errs = append(errs, `blood pressure must be in format "systolic/diastolic" with numeric values`)
		return Result{Errors: errs}
	}

	parts := strings.SplitN(trimmed, "/", 2)
	systolic, _ := strconv.ParseFloat(parts[0], 64)
	diastolic, _ := strconv.ParseFloat(parts[1], 64)

	if systolic < systolicRange.Min || systolic > systolicRange.Max {
		errs = append(errs, fmt.Sprintf("systolic blood pressure must be between %g and %g %s",
			systolicRange.Min, systolicRange.Max, systolicRange.Unit))
	}
	if diastolic < diastolicRange.Min || diastolic > diastolicRange.Max {
		errs = append(errs, fmt.Sprintf("diastolic blood pressure must be between %g and %g %s",
			diastolicRange.Min, diastolicRange.Max, diastolicRange.Unit))
	}
	if systolic <= diastolic {
		errs = append(errs, "systolic blood pressure must be greater than diastolic")
	}

	if len(errs) > 0 {
		return Result{Errors: errs}
	}
	return Result{Valid: true, Parsed: fmt.Sprintf("%g/%g", systolic, diastolic)}
}

// ValidateBatch validates a slice of measurements, collecting every
// per-item error and returning the subset that passed with normalized
// values in place.
func ValidateBatch(inputs []model.VitalSignInput) (valid []model.VitalSignInput, errs []string) {
	for i, in := range inputs {
		if in.Type == "" || in.Value == "" || in.Unit == "" {
			errs = append(errs, fmt.Sprintf("vital sign %d: measure_type, value, and unit are required", i+1))
			continue
		}

		res := ValidateOne(in.Type, in.Value, in.Unit)
		if !res.Valid {
			for _, e := range res.Errors {
				errs = append(errs, fmt.Sprintf("vital sign %d (%s): %s", i+1, in.Type, e))
			}
			continue
		}

		in.Value = res.Parsed
		valid = append(valid, in)
	}
	return valid, errs
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
