// Package scale converts the signed spawn-sequence byte of an object entry
// into a floating scale multiplier.
//
// The target game has no native scale field; community conventions repurpose
// the spawn-sequence byte as an encoded multiplier. Each Convention is one of
// those piecewise formulas, reproduced exactly, integer truncation of the
// compounding 330x routine included.
package scale

import "strings"

// Convention selects which encoding formula maps the byte to a multiplier.
type Convention uint8

const (
	OneX Convention = iota
	ThirtyThreeX
	SeventyOneX
	FortySevenX
	ThreeThirtyX
)

func (c Convention) String() string {
	switch c {
	case OneX:
		return "1x"
	case ThirtyThreeX:
		return "33x"
	case SeventyOneX:
		return "71x"
	case FortySevenX:
		return "47x"
	case ThreeThirtyX:
		return "330x"
	default:
		return "unknown"
	}
}

// onePercentSeq is the hard-coded "1%" breakpoint: one reserved input value
// per convention family maps to exactly 0.01, skipping all other logic.
func onePercentSeq(c Convention) int {
	if c == ThreeThirtyX {
		return -20
	}
	return -10
}

// Multiplier converts a signed spawn-sequence byte into a scale multiplier.
// defender selects the 330x compounding base (32732 instead of 100); the
// caller derives it from the team/color rule. Unknown conventions yield 1.0.
func Multiplier(value int8, c Convention, defender bool) float64 {
	v := int(value)
	if v == onePercentSeq(c) {
		return 0.01
	}

	switch c {
	case OneX:
		return 1.0

	case ThirtyThreeX:
		s := 0.1 * float64(v)
		if v < -10 {
			s *= -2
			if v > -81 {
				s += 8
			} else {
				s = 2*s - 8
			}
		}
		return s + 1

	case SeventyOneX:
		s := 0.1 * float64(v)
		if v < -10 {
			s *= -4
			if v > -81 {
				s += 6
			} else {
				s = 4*s - 90
			}
		}
		return s + 1

	case FortySevenX:
		s := v
		lt10 := v < -10
		gt71 := v > -71
		gt41 := v > -41
		if lt10 {
			s = 2 * (s + 101)
			if gt71 {
				if gt41 {
					s *= 3
				} else {
					s *= 2
				}
			}
		}
		s = 10*s + 100
		if lt10 {
			s += 1000
			if gt71 {
				if gt41 {
					s -= 1800
				} else {
					s -= 600
				}
			}
		}
		return float64(s) * 0.01

	case ThreeThirtyX:
		s := 100
		i := v
		if v < 0 {
			i *= 5
			s += i
			if v <= -20 {
				i = v + 201
			}
		}
		if v < -20 || v > 0 {
			base := 100
			if defender {
				base = 32732
			}
			s = Compound330(i, base)
		}
		return float64(s) * 0.01

	default:
		return 1.0
	}
}

// Compound330 iterates the 330x growth step i times: each iteration adds
// base/33 + base/228 with integer division, so the truncation compounds.
// Non-positive i returns base unchanged.
func Compound330(i, base int) int {
	for n := 0; n < i; n++ {
		base += base/33 + base/228
	}
	return base
}

// IsScaleLabel reports whether a label name designates a scale channel. Any
// name containing "scale", case-insensitive, activates scaling on the object
// carrying it.
func IsScaleLabel(name string) bool {
	return strings.Contains(strings.ToLower(strings.TrimSpace(name)), "scale")
}
