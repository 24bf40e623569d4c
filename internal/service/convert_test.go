package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContainersDerivesHoursAndEndTime(t *testing.T) {
	// Norm 4 containers per standard day, 2 filled = half a day.
	comp, err := FromContainers(2, 4, 480)
	require.NoError(t, err)

	assert.Equal(t, 4.0, comp.TotalHours)
	assert.Equal(t, 4.0, comp.Hours100)
	assert.Equal(t, 0.0, comp.Hours125)
	assert.Equal(t, 0.0, comp.Hours150)
	assert.Equal(t, 480, comp.StartMinutes)
	assert.Equal(t, 720, comp.EndMinutes)
	assert.Equal(t, 2.0, comp.ContainersFilled)
}

func TestFromContainersRejectsInvalidInput(t *testing.T) {
	_, err := FromContainers(2, 0, 480)
	assert.ErrorIs(t, err, ErrConversionInput)

	_, err = FromContainers(-1, 4, 480)
	assert.ErrorIs(t, err, ErrConversionInput)
}

func TestFromTimesDerivesContainers(t *testing.T) {
	// 08:00 to 19:00, norm 4: 11 hours = 1.375 standard days = 5.5 containers.
	comp, err := FromTimes(480, 1140, 4)
	require.NoError(t, err)

	assert.Equal(t, 11.0, comp.TotalHours)
	assert.Equal(t, 8.0, comp.Hours100)
	assert.Equal(t, 2.0, comp.Hours125)
	assert.Equal(t, 1.0, comp.Hours150)
	assert.Equal(t, 5.5, comp.ContainersFilled)
}

func TestFromTimesRejectsInvertedRange(t *testing.T) {
	_, err := FromTimes(600, 600, 4)
	assert.ErrorIs(t, err, ErrConversionInput)

	_, err = FromTimes(600, 480, 4)
	assert.ErrorIs(t, err, ErrConversionInput)
}

func TestConversionRoundTrip(t *testing.T) {
	cases := []struct {
		name       string
		containers float64
		norm       float64
	}{
		{"half day", 2, 4},
		{"full day", 4, 4},
		{"overtime", 7, 4},
		{"fractional", 2.5, 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fromC, err := FromContainers(tc.containers, tc.norm, 480)
			require.NoError(t, err)

			fromT, err := FromTimes(fromC.StartMinutes, fromC.EndMinutes, tc.norm)
			require.NoError(t, err)

			// Minute granularity on end times allows up to one minute of drift.
			assert.InDelta(t, fromC.TotalHours, fromT.TotalHours, 1.0/60)
			assert.InDelta(t, tc.containers, fromT.ContainersFilled, tc.norm/standardDayHours/60)
		})
	}
}

func TestSplitOvertimeWindows(t *testing.T) {
	cases := []struct {
		total            float64
		h100, h125, h150 float64
	}{
		{0, 0, 0, 0},
		{4, 4, 0, 0},
		{8, 8, 0, 0},
		{9.5, 8, 1.5, 0},
		{10, 8, 2, 0},
		{11, 8, 2, 1},
		{13.25, 8, 2, 3.25},
	}
	for _, tc := range cases {
		h100, h125, h150 := SplitOvertime(tc.total)
		assert.Equal(t, tc.h100, h100, "h100 for %v", tc.total)
		assert.Equal(t, tc.h125, h125, "h125 for %v", tc.total)
		assert.Equal(t, tc.h150, h150, "h150 for %v", tc.total)
		assert.InDelta(t, tc.total, h100+h125+h150, 1e-9)
	}
}

func TestSplitOvertimeNegativeClampsToZero(t *testing.T) {
	h100, h125, h150 := SplitOvertime(-3)
	assert.Zero(t, h100)
	assert.Zero(t, h125)
	assert.Zero(t, h150)
}

func TestSplitProportionalPartsSumToWhole(t *testing.T) {
	q100, q125, q150 := SplitProportional(5.5, 11, 8, 2, 1)
	assert.InDelta(t, 5.5, q100+q125+q150, 1e-9)
	assert.Equal(t, 4.0, q100)
	assert.Equal(t, 1.0, q125)
	assert.InDelta(t, 0.5, q150, 1e-9)
}

func TestSplitProportionalZeroInputs(t *testing.T) {
	q100, q125, q150 := SplitProportional(0, 8, 8, 0, 0)
	assert.Zero(t, q100+q125+q150)

	q100, q125, q150 = SplitProportional(3, 0, 0, 0, 0)
	assert.Zero(t, q100+q125+q150)
}

func TestRound2IsStable(t *testing.T) {
	assert.Equal(t, 0.1, round2(0.1))
	assert.Equal(t, 1.67, round2(5.0/3))
	assert.False(t, math.Signbit(round2(0)))
}
