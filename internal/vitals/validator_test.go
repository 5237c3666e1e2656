package vitals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/upmhealth/patient-records-api/internal/model"
)

func TestValidateOneTemperature(t *testing.T) {
	res := ValidateOne(model.VitalTemperature, "98.6", "°F")
	assert.True(t, res.Valid)
	assert.Equal(t, "98.6", res.Parsed)

	res = ValidateOne(model.VitalTemperature, "106.2", "°F")
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "between 95 and 105")

	res = ValidateOne(model.VitalTemperature, "98.6", "°C")
	assert.False(t, res.Valid)

	res = ValidateOne(model.VitalTemperature, "warm", "°F")
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "valid number")
}

func TestValidateOneBloodPressure(t *testing.T) {
	res := ValidateOne(model.VitalBloodPressure, "120/80", "mmHg")
	assert.True(t, res.Valid)
	assert.Equal(t, "120/80", res.Parsed)

	// Systolic must exceed diastolic.
	res = ValidateOne(model.VitalBloodPressure, "70/85", "mmHg")
	assert.False(t, res.Valid)

	res = ValidateOne(model.VitalBloodPressure, "120-80", "mmHg")
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "systolic/diastolic")

	res = ValidateOne(model.VitalBloodPressure, "250/80", "mmHg")
	assert.False(t, res.Valid)
}

func TestValidateOneHeartRate(t *testing.T) {
	res := ValidateOne(model.VitalHeartRate, "72", "bpm")
	assert.True(t, res.Valid)

	res = ValidateOne(model.VitalHeartRate, "250", "bpm")
	assert.False(t, res.Valid)

	res = ValidateOne(model.VitalHeartRate, "39", "bpm")
	assert.False(t, res.Valid)
}

func TestValidateOneWeightUnits(t *testing.T) {
	assert.True(t, ValidateOne(model.VitalWeight, "180", "lbs").Valid)
	assert.True(t, ValidateOne(model.VitalWeight, "82", "kg").Valid)
	assert.False(t, ValidateOne(model.VitalWeight, "180", "stone").Valid)
}

func TestValidateOneUnknownType(t *testing.T) {
	res := ValidateOne("pulse_oximetry", "98", "%")
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "invalid vital sign type")
}

func TestValidateBatchPartial(t *testing.T) {
	inputs := []model.VitalSignInput{
		{Type: model.VitalTemperature, Value: "98.6", Unit: "°F"},
		{Type: model.VitalHeartRate, Value: "300", Unit: "bpm"},
		{Type: model.VitalBloodPressure, Value: "118/76", Unit: "mmHg"},
		{Type: model.VitalRespiratoryRate, Value: "", Unit: "breaths/min"},
	}

	valid, errs := ValidateBatch(inputs)
	assert.Len(t, valid, 2)
	assert.Len(t, errs, 2)
	assert.Equal(t, "98.6", valid[0].Value)
	assert.Equal(t, "118/76", valid[1].Value)
	assert.Contains(t, errs[0], "vital sign 2 (heart_rate)")
	assert.Contains(t, errs[1], "vital sign 4")
}

func TestValidateBatchNormalizes(t *testing.T) {
	valid, errs := ValidateBatch([]model.VitalSignInput{
		{Type: model.VitalWeight, Value: " 180.50 ", Unit: "lbs"},
	})
	assert.Empty(t, errs)
	assert.Equal(t, "180.5", valid[0].Value)
}
