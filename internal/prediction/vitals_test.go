package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySpO2(t *testing.T) {
	cases := []struct {
		value float64
		want  Band
	}{
		{100.0, BandNormal},
		{95.0, BandNormal}, // boundary is inclusive
		{94.999, BandConcerning},
		{90.0, BandConcerning},
		{89.999, BandCritical},
		{70.0, BandCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(VitalSpO2, tc.value), "spo2 %v", tc.value)
	}
}

func TestClassifyHeartRate(t *testing.T) {
	cases := []struct {
		value float64
		want  Band
	}{
		{60.0, BandNormal},
		{100.0, BandNormal},
		{72.0, BandNormal},
		{59.999, BandConcerning},
		{100.001, BandConcerning},
		{40.0, BandConcerning},
		{120.0, BandConcerning},
		{39.999, BandCritical},
		{120.001, BandCritical},
		{180.0, BandCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(VitalHeartRate, tc.value), "heart rate %v", tc.value)
	}
}

func TestClassifySkinTemperature(t *testing.T) {
	cases := []struct {
		value float64
		want  Band
	}{
		{36.1, BandNormal},
		{37.2, BandNormal},
		{36.6, BandNormal},
		{35.0, BandConcerning},
		{36.099, BandConcerning},
		{37.3, BandConcerning},
		{38.0, BandConcerning},
		{34.999, BandCritical},
		{38.001, BandCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(VitalSkinTemperature, tc.value), "skin temp %v", tc.value)
	}
}

func TestBandScore(t *testing.T) {
	assert.Equal(t, 1.0, BandNormal.Score())
	assert.Equal(t, 0.5, BandConcerning.Score())
	assert.Equal(t, 0.0, BandCritical.Score())
}

func TestVitalUnits(t *testing.T) {
	assert.Equal(t, "%", VitalSpO2.Unit())
	assert.Equal(t, "BPM", VitalHeartRate.Unit())
	assert.Equal(t, "°C", VitalSkinTemperature.Unit())
}
