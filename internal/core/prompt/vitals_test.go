package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssessmentMarksAbnormalVitals(t *testing.T) {
	v := testVitals() // HR 110, BP 140/90, rest normal

	lines := strings.Split(Assessment(v), "\n")

	assert.Len(t, lines, 7)
	assert.Equal(t, "Temperature 98.6°F is within the normal range 97-99", lines[0])
	assert.Equal(t, "Heart rate 110.0 bpm is ABOVE the normal range 60-100 (tachycardia)", lines[1])
	assert.Equal(t, "Respiratory rate 16.0/min is within the normal range 12-20", lines[2])
	assert.Equal(t, "Oxygen saturation 98.0% is within the normal range 95-100", lines[3])
	assert.Equal(t, "Systolic BP 140.0 mmHg is ABOVE the normal range 90-120 (hypertension)", lines[4])
	assert.Equal(t, "Diastolic BP 90.0 mmHg is ABOVE the normal range 60-80 (hypertension)", lines[5])
	assert.Equal(t, "Pain score 5/10 (moderate pain)", lines[6])
}

func TestAssessmentLowReadings(t *testing.T) {
	v := testVitals()
	v.HeartRate = f(45)
	v.O2Sat = f(89)
	v.SBP = f(82)

	assessment := Assessment(v)

	assert.Contains(t, assessment, "Heart rate 45.0 bpm is BELOW the normal range 60-100 (bradycardia)")
	assert.Contains(t, assessment, "Oxygen saturation 89.0% is BELOW the normal range 95-100 (hypoxia)")
	assert.Contains(t, assessment, "Systolic BP 82.0 mmHg is BELOW the normal range 90-120 (hypotension)")
}

func TestAlerts(t *testing.T) {
	v := testVitals()
	v.Temperature = f(101.2)
	v.O2Sat = f(91)
	v.SBP = f(152)

	alerts := Alerts(v)

	assert.True(t, strings.HasPrefix(alerts, "CRITICAL ABNORMALITIES:"))
	assert.Contains(t, alerts, "FEVER (101.2°F)")
	assert.Contains(t, alerts, "TACHYCARDIA (HR 110)")
	assert.Contains(t, alerts, "HYPOXIA (O2 91%)")
	assert.Contains(t, alerts, "HYPERTENSION (152/90)")
}

func TestAlertsNormal(t *testing.T) {
	v := testVitals()
	v.HeartRate = f(72)
	v.SBP = f(118)
	v.DBP = f(76)

	assert.Equal(t, "Vitals within normal limits.", Alerts(v))
}
