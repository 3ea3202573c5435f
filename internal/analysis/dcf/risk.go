package dcf

import (
	"fmt"
	"strings"
)

// RiskPosture selects how a set of historical ratios collapses to the single
// rate used for projection.
type RiskPosture int

const (
	Conservative RiskPosture = iota // minimum
	Moderate                        // arithmetic mean
	Bullish                         // maximum
)

var riskNames = [...]string{"conservative", "moderate", "bullish"}

// RiskPostures lists the accepted names in order.
func RiskPostures() []string {
	return riskNames[:]
}

// ParseRiskPosture accepts the names case-insensitively.
func ParseRiskPosture(s string) (RiskPosture, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range riskNames {
		if n == name {
			return RiskPosture(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown risk posture %q (want one of %s)",
		ErrInvalidConfiguration, s, strings.Join(riskNames[:], ", "))
}

func (p RiskPosture) valid() bool {
	return p >= Conservative && p <= Bullish
}

func (p RiskPosture) String() string {
	if !p.valid() {
		return fmt.Sprintf("RiskPosture(%d)", int(p))
	}
	return riskNames[p]
}

// MarshalText encodes the posture by name.
func (p RiskPosture) MarshalText() ([]byte, error) {
	if !p.valid() {
		return nil, fmt.Errorf("%w: risk posture %d", ErrInvalidConfiguration, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a posture name.
func (p *RiskPosture) UnmarshalText(b []byte) error {
	v, err := ParseRiskPosture(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Select reduces ratios to one value: min for Conservative, mean for
// Moderate, max for Bullish.
func (p RiskPosture) Select(ratios []float64) (float64, error) {
	if !p.valid() {
		return 0, fmt.Errorf("%w: risk posture %d", ErrInvalidConfiguration, int(p))
	}
	if len(ratios) == 0 {
		return 0, ErrEmptyRatioSet
	}

	lo, hi, sum := ratios[0], ratios[0], 0.0
	for _, r := range ratios {
		lo = min(lo, r)
		hi = max(hi, r)
		sum += r
	}

	switch p {
	case Conservative:
		return lo, nil
	case Bullish:
		return hi, nil
	default:
		// rounding in the sum can push the mean just outside [lo, hi]
		return min(max(sum/float64(len(ratios)), lo), hi), nil
	}
}
