// README: Named fare profiles and the active settings record.
package profile

import (
	"errors"

	"farecalc/internal/modules/pricing"
)

const (
	NameDefault = "padrao"
	NamePremium = "premium"
	// NameCustom stands for whatever settings are currently active; never stored under that name.
	NameCustom = "custom"
)

var (
	ErrUnknownProfile  = errors.New("unknown profile")
	ErrReservedProfile = errors.New("reserved profile name")
)

// Defaults returns the built-in profiles.
func Defaults() map[string]pricing.FareProfile {
	return map[string]pricing.FareProfile{
		NameDefault: {BaseFare: 5, MinFare: 10, CostPerKm: 2, CostPerMin: 0.5},
		NamePremium: {BaseFare: 10, MinFare: 20, CostPerKm: 3, CostPerMin: 1},
	}
}

// Settings is the persisted active tariff plus the profile it came from.
type Settings struct {
	Profile string `json:"profile"`
	pricing.FareProfile
}
