package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genmedx/genmedx/internal/core/fault"
)

func f(v float64) *float64 { return &v }

func validVitals() *Vitals {
	return &Vitals{
		Temperature: f(98.6),
		HeartRate:   f(80),
		RespRate:    f(16),
		O2Sat:       f(98),
		SBP:         f(120),
		DBP:         f(80),
		Pain:        f(2),
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validVitals().Validate())
}

func TestValidate_MissingField(t *testing.T) {
	v := validVitals()
	v.HeartRate = nil

	err := v.Validate()

	var ve *fault.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "heart_rate", ve.Field)
	assert.Equal(t, "missing", ve.Reason)
}

func TestValidate_OutOfRange(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(*Vitals)
	}{
		{"heart_rate", func(v *Vitals) { v.HeartRate = f(-20) }},
		{"temperature", func(v *Vitals) { v.Temperature = f(240) }},
		{"o2_sat", func(v *Vitals) { v.O2Sat = f(120) }},
		{"pain", func(v *Vitals) { v.Pain = f(15) }},
	}

	for _, c := range cases {
		v := validVitals()
		c.mutate(v)

		err := v.Validate()

		var ve *fault.ValidationError
		require.True(t, errors.As(err, &ve), c.field)
		assert.Equal(t, c.field, ve.Field)
	}
}

func TestValidate_NilVitals(t *testing.T) {
	var v *Vitals

	err := v.Validate()

	var ve *fault.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "vitals", ve.Field)
}

func TestPainScoreDefaultsToZero(t *testing.T) {
	v := validVitals()
	v.Pain = nil

	assert.NoError(t, v.Validate())
	assert.Zero(t, v.PainScore())
}
