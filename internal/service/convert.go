package service

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrConversionInput marks invalid converter input: a non-positive container
// norm, an end time at or before the start time, or a negative quantity.
// Callers fall back to "no recalculation" instead of failing the whole edit,
// except where the edit itself supplied the bad value.
var ErrConversionInput = errors.New("invalid conversion input")

// standardDayHours is the reference day a container norm is defined against.
const standardDayHours = 8.0

// DayComputation is the derived view of one worked day. Either input form
// (containers or start/end times) produces all fields so the two stay in
// agreement.
type DayComputation struct {
	TotalHours       float64
	Hours100         float64
	Hours125         float64
	Hours150         float64
	StartMinutes     int
	EndMinutes       int
	ContainersFilled float64
}

// FromContainers derives hours and end time from the number of containers
// filled against the pricing combination's norm.
func FromContainers(containersFilled, containerNorm float64, startMinutes int) (DayComputation, error) {
	if containerNorm <= 0 || containersFilled < 0 || startMinutes < 0 {
		return DayComputation{}, ErrConversionInput
	}

	total := round2(containersFilled / containerNorm * standardDayHours)
	endMinutes := startMinutes + int(decimal.NewFromFloat(total*60).Round(0).IntPart())

	h100, h125, h150 := SplitOvertime(total)
	return DayComputation{
		TotalHours:       total,
		Hours100:         h100,
		Hours125:         h125,
		Hours150:         h150,
		StartMinutes:     startMinutes,
		EndMinutes:       endMinutes,
		ContainersFilled: round2(containersFilled),
	}, nil
}

// FromTimes derives hours and the equivalent container count from explicit
// start and end times.
func FromTimes(startMinutes, endMinutes int, containerNorm float64) (DayComputation, error) {
	if containerNorm <= 0 || startMinutes < 0 || endMinutes <= startMinutes {
		return DayComputation{}, ErrConversionInput
	}

	total := round2(float64(endMinutes-startMinutes) / 60)
	containers := round2(total / standardDayHours * containerNorm)

	h100, h125, h150 := SplitOvertime(total)
	return DayComputation{
		TotalHours:       total,
		Hours100:         h100,
		Hours125:         h125,
		Hours150:         h150,
		StartMinutes:     startMinutes,
		EndMinutes:       endMinutes,
		ContainersFilled: containers,
	}, nil
}

// SplitOvertime splits total worked hours into the regulated pay windows:
// the first 8 hours at 100%, the next 2 at 125%, anything beyond at 150%.
// The three windows always sum back to the (2dp-rounded) total.
func SplitOvertime(totalHours float64) (h100, h125, h150 float64) {
	t := decimal.NewFromFloat(totalHours).Round(2)
	if t.IsNegative() {
		t = decimal.Zero
	}

	base := decimal.NewFromInt(8)
	cap125 := decimal.NewFromInt(2)

	w100 := decimal.Min(t, base)
	w125 := decimal.Min(decimal.Max(t.Sub(base), decimal.Zero), cap125)
	w150 := decimal.Max(t.Sub(decimal.NewFromInt(10)), decimal.Zero)

	h100, _ = w100.Float64()
	h125, _ = w125.Float64()
	h150, _ = w150.Float64()
	return h100, h125, h150
}

// SplitProportional distributes a quantity across the three windows in the
// same ratio as the window hours. Used to attribute containers to windows.
func SplitProportional(quantity, totalHours, h100, h125, h150 float64) (q100, q125, q150 float64) {
	if totalHours <= 0 || quantity <= 0 {
		return 0, 0, 0
	}
	q := decimal.NewFromFloat(quantity)
	t := decimal.NewFromFloat(totalHours)

	d100 := q.Mul(decimal.NewFromFloat(h100)).Div(t).Round(2)
	d125 := q.Mul(decimal.NewFromFloat(h125)).Div(t).Round(2)
	// The last window takes the remainder so the parts sum to the whole.
	d150 := q.Round(2).Sub(d100).Sub(d125)
	if d150.IsNegative() {
		d150 = decimal.Zero
	}

	q100, _ = d100.Float64()
	q125, _ = d125.Float64()
	q150, _ = d150.Float64()
	return q100, q125, q150
}

// round2 rounds to 2 decimal places using exact decimal arithmetic.
func round2(v float64) float64 {
	out, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return out
}
