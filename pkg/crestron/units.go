package crestron

import "math"

// The controller represents levels and positions on a 16-bit raw scale
// (0-65535) while the caller-facing contract uses percentages (0-100).
// Both directions round half away from zero to the nearest integer; using
// one rule for reads and writes makes pct -> raw -> pct exact for every
// integer percentage (the scale factor is 655.35, so a sub-half-unit raw
// rounding error can never move the percentage to a neighboring integer).

const rawScale = 65535

// PercentToRaw converts a caller-facing percentage to the controller's raw
// scale. The input must already be validated to 0-100.
func PercentToRaw(pct int) int {
	return int(math.Round(float64(pct) * rawScale / 100))
}

// RawToPercent converts a controller raw value to a percentage.
func RawToPercent(raw int) int {
	return int(math.Round(float64(raw) * 100 / rawScale))
}
