// README: Fare formula and settings validation.
package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ComputeFare applies base + km*costPerKm + min*costPerMin with minFare as a floor.
// Rounding to cents happens once, on the final total.
func ComputeFare(p FareProfile, m RouteMetrics) (FareResult, error) {
	if !finite(p.BaseFare, p.MinFare, p.CostPerKm, p.CostPerMin, m.DistanceKm, m.DurationMin) {
		return FareResult{}, ErrComputation
	}

	distance := m.DistanceKm * p.CostPerKm
	duration := m.DurationMin * p.CostPerMin
	total := p.BaseFare + distance + duration
	if !finite(total) {
		return FareResult{}, ErrComputation
	}

	floored := false
	if total < p.MinFare {
		total = p.MinFare
		floored = true
	}

	res := FareResult{
		Total: Round2(total),
		Breakdown: Breakdown{
			Base:         Round2(p.BaseFare),
			Distance:     Round2(distance),
			Time:         Round2(duration),
			FloorApplied: floored,
		},
	}
	// scaling to cents can overflow values close to MaxFloat64
	if !finite(res.Total, res.Breakdown.Base, res.Breakdown.Distance, res.Breakdown.Time) {
		return FareResult{}, ErrComputation
	}
	return res, nil
}

// InvalidSettingsError names every field that failed to parse.
type InvalidSettingsError struct {
	Fields []string
}

func (e *InvalidSettingsError) Error() string {
	return fmt.Sprintf("invalid settings: %s", strings.Join(e.Fields, ", "))
}

func (e *InvalidSettingsError) Is(target error) bool {
	return target == ErrInvalidSettings
}

// ValidateSettings parses every field as a finite number. Negative values are accepted.
func ValidateSettings(in SettingsInput) (FareProfile, error) {
	var (
		p   FareProfile
		bad []string
	)
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"base_fare", in.BaseFare, &p.BaseFare},
		{"min_fare", in.MinFare, &p.MinFare},
		{"cost_per_km", in.CostPerKm, &p.CostPerKm},
		{"cost_per_min", in.CostPerMin, &p.CostPerMin},
	}
	for _, f := range fields {
		v, ok := parseFinite(f.raw)
		if !ok {
			bad = append(bad, f.name)
			continue
		}
		*f.dst = v
	}
	if len(bad) > 0 {
		return FareProfile{}, &InvalidSettingsError{Fields: bad}
	}
	return p, nil
}

// InputFromProfile formats a profile back into its raw input form.
func InputFromProfile(p FareProfile) SettingsInput {
	return SettingsInput{
		BaseFare:   formatFloat(p.BaseFare),
		MinFare:    formatFloat(p.MinFare),
		CostPerKm:  formatFloat(p.CostPerKm),
		CostPerMin: formatFloat(p.CostPerMin),
	}
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	scaled := v * 100
	// absorb representation error such as 1.005*100 = 100.49999999999999
	return math.Round(scaled+math.Copysign(1e-9, scaled)) / 100
}

func parseFinite(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
