package prompt

import (
	"fmt"
	"strings"

	"github.com/genmedx/genmedx/internal/core/model"
)

// Accepted normal ranges for adult triage vitals. Temperature in Fahrenheit,
// pressures in mmHg.
const (
	tempLow, tempHigh = 97.0, 99.0
	hrLow, hrHigh     = 60.0, 100.0
	rrLow, rrHigh     = 12.0, 20.0
	o2Low             = 95.0
	sbpLow, sbpHigh   = 90.0, 120.0
	dbpLow, dbpHigh   = 60.0, 80.0

	feverTemp       = 100.4
	hypothermiaTemp = 95.0
	hypertensionSBP = 140.0
	hypertensionDBP = 90.0
)

// Assessment renders the per-vital verification block in a fixed order:
// each line echoes the vital's value, states the accepted normal range, and
// marks the reading in or out of range. The downstream parser depends on
// the model having been walked through this order, so the order is part of
// the contract, not presentation.
func Assessment(v *model.Vitals) string {
	lines := []string{
		rangeLine("Temperature", *v.Temperature, "°F", tempLow, tempHigh, "hypothermia risk", "fever"),
		rangeLine("Heart rate", *v.HeartRate, " bpm", hrLow, hrHigh, "bradycardia", "tachycardia"),
		rangeLine("Respiratory rate", *v.RespRate, "/min", rrLow, rrHigh, "bradypnea", "tachypnea"),
		o2Line(*v.O2Sat),
		rangeLine("Systolic BP", *v.SBP, " mmHg", sbpLow, sbpHigh, "hypotension", "hypertension"),
		rangeLine("Diastolic BP", *v.DBP, " mmHg", dbpLow, dbpHigh, "hypotension", "hypertension"),
		painLine(v.PainScore()),
	}
	return strings.Join(lines, "\n")
}

func rangeLine(name string, value float64, unit string, low, high float64, belowLabel, aboveLabel string) string {
	switch {
	case value < low:
		return fmt.Sprintf("%s %.1f%s is BELOW the normal range %.0f-%.0f (%s)", name, value, unit, low, high, belowLabel)
	case value > high:
		return fmt.Sprintf("%s %.1f%s is ABOVE the normal range %.0f-%.0f (%s)", name, value, unit, low, high, aboveLabel)
	default:
		return fmt.Sprintf("%s %.1f%s is within the normal range %.0f-%.0f", name, value, unit, low, high)
	}
}

func o2Line(o2 float64) string {
	if o2 < o2Low {
		return fmt.Sprintf("Oxygen saturation %.1f%% is BELOW the normal range %.0f-100 (hypoxia)", o2, o2Low)
	}
	return fmt.Sprintf("Oxygen saturation %.1f%% is within the normal range %.0f-100", o2, o2Low)
}

func painLine(pain float64) string {
	switch {
	case pain == 0:
		return fmt.Sprintf("Pain score %.0f/10 (no pain)", pain)
	case pain <= 3:
		return fmt.Sprintf("Pain score %.0f/10 (mild pain)", pain)
	case pain <= 7:
		return fmt.Sprintf("Pain score %.0f/10 (moderate pain)", pain)
	default:
		return fmt.Sprintf("Pain score %.0f/10 (severe pain)", pain)
	}
}

// Alerts summarizes the critical abnormalities, mirroring triage escalation
// thresholds rather than the plain normal ranges above.
func Alerts(v *model.Vitals) string {
	var alerts []string

	temp, hr, rr := *v.Temperature, *v.HeartRate, *v.RespRate
	o2, sbp, dbp := *v.O2Sat, *v.SBP, *v.DBP

	if temp > feverTemp {
		alerts = append(alerts, fmt.Sprintf("FEVER (%.1f°F)", temp))
	} else if temp < hypothermiaTemp {
		alerts = append(alerts, fmt.Sprintf("HYPOTHERMIA (%.1f°F)", temp))
	}

	if hr > hrHigh {
		alerts = append(alerts, fmt.Sprintf("TACHYCARDIA (HR %.0f)", hr))
	} else if hr < hrLow {
		alerts = append(alerts, fmt.Sprintf("BRADYCARDIA (HR %.0f)", hr))
	}

	if rr > rrHigh {
		alerts = append(alerts, fmt.Sprintf("TACHYPNEA (RR %.0f)", rr))
	} else if rr < rrLow {
		alerts = append(alerts, fmt.Sprintf("BRADYPNEA (RR %.0f)", rr))
	}

	if o2 < o2Low {
		alerts = append(alerts, fmt.Sprintf("HYPOXIA (O2 %.0f%%)", o2))
	}

	if sbp > hypertensionSBP || dbp > hypertensionDBP {
		alerts = append(alerts, fmt.Sprintf("HYPERTENSION (%.0f/%.0f)", sbp, dbp))
	} else if sbp < sbpLow {
		alerts = append(alerts, fmt.Sprintf("HYPOTENSION (%.0f/%.0f)", sbp, dbp))
	}

	if len(alerts) == 0 {
		return "Vitals within normal limits."
	}
	return "CRITICAL ABNORMALITIES: " + strings.Join(alerts, ", ")
}
