package model

import (
	"fmt"

	"github.com/genmedx/genmedx/internal/core/fault"
)

// Vitals holds the triage measurements for one presentation. Fields are
// pointers so an absent measurement is distinguishable from a zero reading.
// Temperature is Fahrenheit, pressures are mmHg.
type Vitals struct {
	Temperature *float64 `json:"temperature"`
	HeartRate   *float64 `json:"heart_rate"`
	RespRate    *float64 `json:"resp_rate"`
	O2Sat       *float64 `json:"o2_sat"`
	SBP         *float64 `json:"sbp"`
	DBP         *float64 `json:"dbp"`
	Pain        *float64 `json:"pain"`
}

type vitalBound struct {
	field    string
	value    *float64
	min, max float64
	required bool
}

// Validate rejects absent or physiologically impossible readings before any
// billable call is made. The first offending field is named in the error.
// Pain is optional and defaults to 0 when omitted.
func (v *Vitals) Validate() error {
	if v == nil {
		return &fault.ValidationError{Field: "vitals", Reason: "missing"}
	}

	bounds := []vitalBound{
		{"temperature", v.Temperature, 80, 115, true},
		{"heart_rate", v.HeartRate, 0, 300, true},
		{"resp_rate", v.RespRate, 0, 80, true},
		{"o2_sat", v.O2Sat, 0, 100, true},
		{"sbp", v.SBP, 30, 300, true},
		{"dbp", v.DBP, 10, 200, true},
		{"pain", v.Pain, 0, 10, false},
	}

	for _, b := range bounds {
		if b.value == nil {
			if b.required {
				return &fault.ValidationError{Field: b.field, Reason: "missing"}
			}
			continue
		}
		if *b.value < b.min || *b.value > b.max {
			return &fault.ValidationError{
				Field:  b.field,
				Reason: fmt.Sprintf("value %.1f outside accepted range [%.0f, %.0f]", *b.value, b.min, b.max),
			}
		}
	}

	return nil
}

// PainScore returns the pain reading, defaulting to 0 when omitted.
func (v *Vitals) PainScore() float64 {
	if v.Pain == nil {
		return 0
	}
	return *v.Pain
}
